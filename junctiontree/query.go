package junctiontree

import (
	"fmt"

	"github.com/inferlab/bayeslab"
	"github.com/inferlab/bayeslab/factor"
)

func factorUnit(vars []string, values map[string][]string) *factor.Factor {
	return factor.Unit(vars, values)
}

func errNoContainingClique(name string) error {
	return fmt.Errorf("junctiontree: no clique contains the scope of %q: %w", name, bayeslab.ErrNoCliqueContains)
}

func (t *Tree) checkFresh() error {
	if t.net.Version != t.netVersion {
		return fmt.Errorf("junctiontree: network structure changed since Build: %w", bayeslab.ErrStaleTree)
	}
	return nil
}

// bfsTree returns parent and children maps for a traversal rooted at
// bfsOrder[0], plus the visiting order itself (root first).
func (t *Tree) bfsTree() (visitOrder []string, parent map[string]string, children map[string][]string) {
	root := t.bfsOrder[0]
	parent = make(map[string]string)
	children = make(map[string][]string)
	visited := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		visitOrder = append(visitOrder, cur)

		var nbIDs []string
		for nb := range t.cliques[cur].neighbors {
			nbIDs = append(nbIDs, nb)
		}
		for _, nb := range nbIDs {
			if !visited[nb] {
				visited[nb] = true
				parent[nb] = cur
				children[cur] = append(children[cur], nb)
				queue = append(queue, nb)
			}
		}
	}
	return visitOrder, parent, children
}

// propagate runs one Hugin collect-to-root then distribute-from-root
// pass, leaving every clique's Belief calibrated (consistent with every
// other clique's belief restricted to their shared separator).
func (t *Tree) propagate() error {
	visitOrder, parent, children := t.bfsTree()

	for i := len(visitOrder) - 1; i >= 0; i-- {
		cur := visitOrder[i]
		p, ok := parent[cur]
		if !ok {
			continue
		}
		if err := t.sendMessage(cur, p); err != nil {
			return err
		}
	}

	for _, cur := range visitOrder {
		for _, ch := range children[cur] {
			if err := t.sendMessage(cur, ch); err != nil {
				return err
			}
		}
	}
	return nil
}

// sendMessage passes a Hugin message from -> to across their shared
// separator: marginalize from's belief down to the separator, divide
// by the separator's last-stored potential (1/0 := 0 makes this safe on
// the first pass, when the potential is still all-ones), multiply the
// ratio into to's belief, and remember the new separator potential.
func (t *Tree) sendMessage(from, to string) error {
	fromClique := t.cliques[from]
	e := fromClique.neighbors[to]

	marginalizeOut := varsNotIn(fromClique.Vars, e.sep)
	newSep := fromClique.Belief
	var err error
	if len(marginalizeOut) > 0 {
		newSep, err = fromClique.Belief.Marginalize(marginalizeOut)
		if err != nil {
			return err
		}
	}

	ratio, err := newSep.Divide(e.potential)
	if err != nil {
		return err
	}

	toClique := t.cliques[to]
	updated, err := toClique.Belief.ProductWithLimit(ratio, t.config.FactorSizeLimitOrDefault())
	if err != nil {
		return err
	}
	toClique.Belief = updated
	e.potential = newSep
	return nil
}

func varsNotIn(vars, sep []string) []string {
	in := make(map[string]bool, len(sep))
	for _, v := range sep {
		in[v] = true
	}
	var out []string
	for _, v := range vars {
		if !in[v] {
			out = append(out, v)
		}
	}
	return out
}

// ResetFactors rebuilds every clique's belief as the product of the CPT
// factors assigned to it, read from the network's current tables,
// clears every separator potential back to all-ones, and recalibrates — use after
// SetEvidence to clear previously injected evidence, or after mutating
// a node's CPT values in place (a change that does not bump the
// network's structural Version and so does not require a fresh Build).
func (t *Tree) ResetFactors() error {
	if err := t.checkFresh(); err != nil {
		return err
	}
	for _, c := range t.cliques {
		c.Belief = factor.Unit(c.Vars, c.base.Values)
		for _, e := range c.neighbors {
			values := make(map[string][]string, len(e.sep))
			for _, v := range e.sep {
				values[v] = t.net.Node(v).Values
			}
			e.potential = factor.Unit(e.sep, values)
		}
	}
	if err := t.assignFactors(); err != nil {
		return err
	}
	return t.propagate()
}

// SetEvidence resets every clique/separator factor, then injects one
// evidence factor per (variable, observation) pair into a clique
// containing it, and recalibrates. softPosteriors selects, for every
// soft observation, the all-things-considered (desired-posterior)
// interpretation over the default nothing-else-considered likelihood-
// ratio interpretation; realizing the former requires the variable's
// current prior marginal, which is why evidence is always applied
// against a freshly reset (i.e. prior) tree rather than layered onto
// whatever evidence was injected by a previous call.
func (t *Tree) SetEvidence(evidence map[string]factor.Observation, softPosteriors bool) error {
	if err := t.checkFresh(); err != nil {
		return err
	}
	if err := t.ResetFactors(); err != nil {
		return err
	}

	priors := make(map[string][]float64, len(evidence))
	if softPosteriors {
		for v, obs := range evidence {
			if obs.Soft == nil {
				continue
			}
			m, err := t.Marginals(v)
			if err != nil {
				return err
			}
			priors[v] = m.Table
		}
	}

	for v, obs := range evidence {
		n := t.net.Node(v)
		if n == nil {
			return fmt.Errorf("junctiontree: unknown evidence variable %q: %w", v, bayeslab.ErrUnknownVariable)
		}
		ef, err := obs.ToFactor(v, n.Values, priors[v], softPosteriors)
		if err != nil {
			return err
		}
		home := t.findContaining(ef.Vars)
		if home == "" {
			return errNoContainingClique(v)
		}
		c := t.cliques[home]
		updated, err := c.Belief.ProductWithLimit(ef, t.config.FactorSizeLimitOrDefault())
		if err != nil {
			return err
		}
		c.Belief = updated
	}
	return t.propagate()
}

// SetHardEvidence is a convenience wrapper around SetEvidence for
// callers that only ever observe hard labels.
func (t *Tree) SetHardEvidence(labels map[string]string) error {
	return t.SetEvidence(factor.HardObservations(labels), false)
}

// Marginals returns the calibrated marginal distribution over v,
// normalized. Build (and SetEvidence) must have already calibrated the
// tree; Marginals itself performs no propagation.
func (t *Tree) Marginals(v string) (*factor.Factor, error) {
	if err := t.checkFresh(); err != nil {
		return nil, err
	}
	homes, ok := t.varHome[v]
	if !ok || len(homes) == 0 {
		return nil, fmt.Errorf("junctiontree: no clique contains variable %q: %w", v, bayeslab.ErrUnknownVariable)
	}
	c := t.cliques[homes[0]]
	out := varsNotIn(c.Vars, []string{v})
	result := c.Belief
	var err error
	if len(out) > 0 {
		result, err = c.Belief.Marginalize(out)
		if err != nil {
			return nil, err
		}
	} else {
		result = c.Belief.Copy()
	}
	result.Normalize()
	return result, nil
}

// JointMarginal returns the calibrated joint marginal over vars, which
// must all lie within a single clique (true whenever vars is the scope
// of some original CPT, since that was the condition Build relied on to
// place it).
func (t *Tree) JointMarginal(vars []string) (*factor.Factor, error) {
	if err := t.checkFresh(); err != nil {
		return nil, err
	}
	home := t.findContaining(vars)
	if home == "" {
		return nil, errNoContainingClique(fmt.Sprintf("%v", vars))
	}
	c := t.cliques[home]
	out := varsNotIn(c.Vars, vars)
	result := c.Belief
	var err error
	if len(out) > 0 {
		result, err = c.Belief.Marginalize(out)
		if err != nil {
			return nil, err
		}
	} else {
		result = c.Belief.Copy()
	}
	result.Normalize()
	return result, nil
}
