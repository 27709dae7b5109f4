// Package ve implements exact marginal inference over a node.Network
// by variable elimination, offering both a naive (full-join-then-sum)
// strategy and an efficient bucket-elimination strategy that eliminates
// one variable at a time against only the factors that mention it.
package ve

import (
	"fmt"

	"github.com/inferlab/bayeslab"
	"github.com/inferlab/bayeslab/elimorder"
	"github.com/inferlab/bayeslab/factor"
	"github.com/inferlab/bayeslab/node"
)

// Method selects the elimination strategy. Both compute the same
// answer; Bucket is the one a production query path should use.
type Method int

const (
	// Bucket eliminates non-target variables one at a time, each time
	// multiplying only the factors that currently mention it.
	Bucket Method = iota
	// Naive multiplies every factor into a single joint first, then
	// marginalizes out every non-target variable in one step. Useful
	// as a correctness oracle for small networks; its intermediate
	// factor can be exponentially larger than any bucket ever is.
	Naive
)

// Engine answers marginal queries over a network by variable
// elimination.
type Engine struct {
	Net    *node.Network
	Config *bayeslab.Config
}

// New creates an elimination engine over net. cfg is optional; a nil or
// omitted Config applies MinDegree ordering and DefaultFactorSizeLimit.
func New(net *node.Network, cfg ...*bayeslab.Config) *Engine {
	e := &Engine{Net: net}
	if len(cfg) > 0 {
		e.Config = cfg[0]
	}
	return e
}

func (e *Engine) baseFactors() ([]*factor.Factor, error) {
	var fs []*factor.Factor
	for _, name := range e.Net.DiscreteNames() {
		f, err := e.Net.ToFactor(name)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	return fs, nil
}

// Query computes P(targets | evidence), an unnormalized-then-normalized
// factor over targets. Evidence variables not named in targets are
// eliminated along with every other nuisance variable. Evidence here is
// always hard; use QueryObs for soft evidence.
func (e *Engine) Query(targets []string, evidence map[string]string, method Method) (*factor.Factor, error) {
	return e.QueryObs(targets, factor.HardObservations(evidence), false, method)
}

// QueryObs is Query generalized to the full evidence contract: each
// entry is a tagged Observation, and softPosteriors selects the
// all-things-considered interpretation for any soft entries (realizing
// it requires that variable's prior marginal, computed via a first,
// evidence-free elimination pass over exactly the soft-posterior
// variables before the real evidence factors are built).
func (e *Engine) QueryObs(targets []string, evidence map[string]factor.Observation, softPosteriors bool, method Method) (*factor.Factor, error) {
	fs, err := e.baseFactors()
	if err != nil {
		return nil, err
	}

	priors := make(map[string][]float64, len(evidence))
	if softPosteriors {
		for v, obs := range evidence {
			if obs.Soft == nil {
				continue
			}
			m, err := e.Query([]string{v}, nil, method)
			if err != nil {
				return nil, err
			}
			priors[v] = m.Table
		}
	}

	for v, obs := range evidence {
		n := e.Net.Node(v)
		if n == nil {
			return nil, fmt.Errorf("ve: unknown evidence variable %q: %w", v, bayeslab.ErrUnknownVariable)
		}
		ef, err := obs.ToFactor(v, n.Values, priors[v], softPosteriors)
		if err != nil {
			return nil, err
		}
		fs = append(fs, ef)
	}

	isTarget := make(map[string]bool, len(targets))
	for _, v := range targets {
		isTarget[v] = true
	}

	var result *factor.Factor
	switch method {
	case Naive:
		result, err = naive(fs, isTarget, e.Config.FactorSizeLimitOrDefault())
	default:
		result, err = bucket(e.Net, fs, isTarget, e.Config)
	}
	if err != nil {
		return nil, err
	}

	result.Normalize()
	return result, nil
}

func naive(fs []*factor.Factor, isTarget map[string]bool, sizeLimit int) (*factor.Factor, error) {
	if len(fs) == 0 {
		return nil, fmt.Errorf("ve: no factors to query: %w", bayeslab.ErrInvalidEvidence)
	}
	joint := fs[0]
	for _, f := range fs[1:] {
		var err error
		joint, err = joint.ProductWithLimit(f, sizeLimit)
		if err != nil {
			return nil, err
		}
	}

	var out []string
	for _, v := range joint.Vars {
		if !isTarget[v] {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return joint, nil
	}
	return joint.Marginalize(out)
}

func bucket(net *node.Network, fs []*factor.Factor, isTarget map[string]bool, cfg *bayeslab.Config) (*factor.Factor, error) {
	moral := net.DAG().MoralGraph()

	var toEliminate []string
	for _, name := range net.DiscreteNames() {
		if !isTarget[name] {
			toEliminate = append(toEliminate, name)
		}
	}

	var order []string
	if cfg.EliminationOrderOrDefault() == bayeslab.InsertionOrder {
		order = elimorder.InsertionOrder(moral, toEliminate)
	} else {
		order = elimorder.MinDegree(moral, toEliminate)
	}
	sizeLimit := cfg.FactorSizeLimitOrDefault()

	current := append([]*factor.Factor{}, fs...)
	for _, v := range order {
		var relevant, irrelevant []*factor.Factor
		for _, f := range current {
			if containsVar(f.Vars, v) {
				relevant = append(relevant, f)
			} else {
				irrelevant = append(irrelevant, f)
			}
		}
		if len(relevant) == 0 {
			continue
		}
		product := relevant[0]
		for _, f := range relevant[1:] {
			var err error
			product, err = product.ProductWithLimit(f, sizeLimit)
			if err != nil {
				return nil, err
			}
		}
		marginalized, err := product.Marginalize([]string{v})
		if err != nil {
			return nil, err
		}
		current = append(irrelevant, marginalized)
	}

	if len(current) == 0 {
		return nil, fmt.Errorf("ve: no factors remaining after elimination: %w", bayeslab.ErrInvalidEvidence)
	}
	joint := current[0]
	for _, f := range current[1:] {
		var err error
		joint, err = joint.ProductWithLimit(f, sizeLimit)
		if err != nil {
			return nil, err
		}
	}
	return joint, nil
}

func containsVar(vars []string, v string) bool {
	for _, x := range vars {
		if x == v {
			return true
		}
	}
	return false
}
