// Package temporal unrolls a two-slice dynamic Bayesian network one
// time step at a time, running exact junction-tree inference on each
// slice and feeding the result forward as the next slice's prior.
//
// A caller builds two ordinary node.Networks: Prior, holding one
// parentless node per persistent variable (its t=0 distribution), and
// Transition, holding one node per persistent variable named
// identically to Prior's, whose parents are drawn from "<var>_prev"
// (that variable's previous-slice copy) and/or other bare persistent
// variable names (same-slice dependencies). Unroller stitches a fresh
// two-slice network out of these for every step, so Transition's
// authoring convention — parents named with the "_prev" suffix for
// cross-slice edges — is the only contract this package imposes.
package temporal

import (
	"fmt"

	"github.com/inferlab/bayeslab"
	"github.com/inferlab/bayeslab/factor"
	"github.com/inferlab/bayeslab/junctiontree"
	"github.com/inferlab/bayeslab/node"
)

const prevSuffix = "_prev"

// Unroller drives a two-slice network forward, maintaining a rolling
// per-variable belief that becomes the next slice's prior.
type Unroller struct {
	Vars       []string
	Prior      *node.Network
	Transition *node.Network
	Policy     bayeslab.TemporalPolicy
	Config     *bayeslab.Config

	belief                map[string][]float64
	pending               map[string]factor.Observation
	pendingSoftPosteriors bool

	lastTree *junctiontree.Tree
}

// NewUnroller validates that every persistent variable has a parentless
// prior node and seeds the rolling belief from it. cfg is optional; a
// nil or omitted Config applies MinDegree triangulation and
// DefaultFactorSizeLimit to every slice's junction tree.
func NewUnroller(vars []string, prior, transition *node.Network, policy bayeslab.TemporalPolicy, cfg ...*bayeslab.Config) (*Unroller, error) {
	belief := make(map[string][]float64, len(vars))
	for _, v := range vars {
		n := prior.Node(v)
		if n == nil {
			return nil, fmt.Errorf("temporal: prior network has no variable %q: %w", v, bayeslab.ErrUnknownVariable)
		}
		if len(n.Parents) > 0 {
			return nil, fmt.Errorf("temporal: prior variable %q must be parentless: %w", v, bayeslab.ErrShapeMismatch)
		}
		if !n.Valid {
			return nil, fmt.Errorf("temporal: prior variable %q has no CPT assigned: %w", v, bayeslab.ErrShapeMismatch)
		}
		belief[v] = append([]float64{}, n.Table...)
	}
	u := &Unroller{Vars: append([]string{}, vars...), Prior: prior, Transition: transition, Policy: policy, belief: belief}
	if len(cfg) > 0 {
		u.Config = cfg[0]
	}
	return u, nil
}

// Belief returns a copy of the current rolling marginal for v.
func (u *Unroller) Belief(v string) ([]float64, error) {
	b, ok := u.belief[v]
	if !ok {
		return nil, fmt.Errorf("temporal: unknown variable %q: %w", v, bayeslab.ErrUnknownVariable)
	}
	return append([]float64{}, b...), nil
}

// stepNetwork builds the two-slice network for one transition: a
// "<v>_prev" node per variable carrying the rolling belief as its
// prior, and a "<v>" node per variable wired exactly as Transition
// specifies.
func (u *Unroller) stepNetwork() (*node.Network, error) {
	net := node.NewNetwork()

	for _, v := range u.Vars {
		prevNode := node.NewDiscreteNode(v+prevSuffix, u.Prior.Node(v).Values)
		if err := net.AddNode(prevNode); err != nil {
			return nil, err
		}
		if err := net.SetCPT(v+prevSuffix, u.belief[v]); err != nil {
			return nil, err
		}
	}

	for _, v := range u.Vars {
		tn := u.Transition.Node(v)
		if tn == nil {
			return nil, fmt.Errorf("temporal: transition network has no variable %q: %w", v, bayeslab.ErrUnknownVariable)
		}
		if err := net.AddNode(node.NewDiscreteNode(v, tn.Values)); err != nil {
			return nil, err
		}
	}

	for _, v := range u.Vars {
		tn := u.Transition.Node(v)
		for _, p := range tn.Parents {
			if net.Node(p) == nil {
				return nil, fmt.Errorf("temporal: transition parent %q of %q is neither a _prev node nor another current-slice variable: %w", p, v, bayeslab.ErrUnknownVariable)
			}
			if err := net.AddEdge(p, v); err != nil {
				return nil, err
			}
		}
	}

	for _, v := range u.Vars {
		tn := u.Transition.Node(v)
		if !tn.Valid {
			return nil, fmt.Errorf("temporal: transition variable %q has no CPT assigned: %w", v, bayeslab.ErrShapeMismatch)
		}
		if err := net.SetCPT(v, tn.Table); err != nil {
			return nil, err
		}
	}
	return net, nil
}

// SetEvidence queues evidence for the current (not yet advanced) slice
// without running inference or advancing t; a subsequent Unroll call
// applies it (merged with any evidence passed directly to Unroll, which
// wins on key conflicts).
func (u *Unroller) SetEvidence(obs map[string]factor.Observation, softPosteriors bool) {
	if u.pending == nil {
		u.pending = make(map[string]factor.Observation, len(obs))
	}
	for v, o := range obs {
		u.pending[v] = o
	}
	u.pendingSoftPosteriors = softPosteriors
}

// Step advances the unroller by one time slice using hard evidence
// only; it is a convenience wrapper around Unroll for callers that
// never need soft evidence.
func (u *Unroller) Step(evidence map[string]string) (map[string]*factor.Factor, error) {
	return u.Unroll(factor.HardObservations(evidence), false)
}

// Unroll advances t by 1: it builds the slice's two-slice network,
// merges any pending evidence queued by SetEvidence with obs (obs wins
// on key conflicts), injects the merged evidence (keyed by node name in
// the two-slice network: a bare persistent variable name for the
// current slice, "<var>_prev" for its previous-slice copy) with the given
// soft_posteriors interpretation, runs exact junction-tree inference,
// folds the resulting marginals forward per Policy, and returns those
// marginals. The built tree is retained so Marginals/
// MarginalProbabilities can query the current slice again without
// re-running inference.
func (u *Unroller) Unroll(obs map[string]factor.Observation, softPosteriors bool) (map[string]*factor.Factor, error) {
	merged := make(map[string]factor.Observation, len(u.pending)+len(obs))
	softPosteriorsEffective := softPosteriors
	for v, o := range u.pending {
		merged[v] = o
		softPosteriorsEffective = softPosteriorsEffective || u.pendingSoftPosteriors
	}
	for v, o := range obs {
		merged[v] = o
	}
	u.pending = nil
	u.pendingSoftPosteriors = false

	net, err := u.stepNetwork()
	if err != nil {
		return nil, err
	}

	tree, err := junctiontree.Build(net, u.Config)
	if err != nil {
		return nil, err
	}
	if len(merged) > 0 {
		if err := tree.SetEvidence(merged, softPosteriorsEffective); err != nil {
			return nil, err
		}
	}

	marginals := make(map[string]*factor.Factor, len(u.Vars))
	for _, v := range u.Vars {
		m, err := tree.Marginals(v)
		if err != nil {
			return nil, err
		}
		marginals[v] = m
	}

	if err := u.advance(marginals); err != nil {
		return nil, err
	}
	u.lastTree = tree
	return marginals, nil
}

// Marginals queries the current slice's calibrated tree for vars,
// without advancing. It errors if Step/Unroll has not been called yet.
func (u *Unroller) Marginals(vars []string) (*factor.Factor, error) {
	if u.lastTree == nil {
		return nil, fmt.Errorf("temporal: no slice has been unrolled yet: %w", bayeslab.ErrUnknownVariable)
	}
	if len(vars) == 1 {
		return u.lastTree.Marginals(vars[0])
	}
	return u.lastTree.JointMarginal(vars)
}

// MarginalProbabilities is a convenience wrapper around Marginals for a
// single variable, returning its probability table directly.
func (u *Unroller) MarginalProbabilities(v string) ([]float64, error) {
	m, err := u.Marginals([]string{v})
	if err != nil {
		return nil, err
	}
	return m.Table, nil
}

// advance folds this step's marginals forward per Policy. PriorFeedback
// replaces the rolling belief outright, so the next slice's "_prev" node
// is seeded directly from this step's posterior. SoftEvidenceFeedback
// leaves the rolling belief untouched — the next slice's "_prev" node
// stays seeded from the original t=0 prior — and instead queues this
// step's marginal as an all-things-considered soft Observation on that
// variable's "_prev" node, merged into u.pending exactly like a
// SetEvidence call, so the next Unroll call carries it forward as
// likelihood on the previous-slice copy rather than collapsing it into
// the prior (caller-supplied evidence at that next call still wins on
// key conflicts, per Unroll's merge order).
func (u *Unroller) advance(marginals map[string]*factor.Factor) error {
	for _, v := range u.Vars {
		m := marginals[v]
		switch u.Policy {
		case bayeslab.SoftEvidenceFeedback:
			if u.pending == nil {
				u.pending = make(map[string]factor.Observation, len(u.Vars))
			}
			u.pending[v+prevSuffix] = factor.SoftEvidence(append([]float64{}, m.Table...))
			u.pendingSoftPosteriors = true
		default: // PriorFeedback
			u.belief[v] = append([]float64{}, m.Table...)
		}
	}
	return nil
}

// Run steps the unroller forward once per entry of evidencePerStep (a
// nil entry means "no evidence that step"), returning the marginals
// produced at each step in order.
func (u *Unroller) Run(evidencePerStep []map[string]string) ([]map[string]*factor.Factor, error) {
	out := make([]map[string]*factor.Factor, len(evidencePerStep))
	for i, ev := range evidencePerStep {
		m, err := u.Step(ev)
		if err != nil {
			return nil, fmt.Errorf("temporal: step %d: %w", i, err)
		}
		out[i] = m
	}
	return out, nil
}
