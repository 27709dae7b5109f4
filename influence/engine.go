package influence

import (
	"fmt"
	"math"

	"github.com/inferlab/bayeslab"
	"github.com/inferlab/bayeslab/factor"
	"github.com/inferlab/bayeslab/node"
)

// Engine solves an influence diagram by generalized variable
// elimination.
type Engine struct {
	Net *node.Network
}

// New creates an Engine over net.
func New(net *node.Network) *Engine {
	return &Engine{Net: net}
}

// Result is the outcome of a full generalized VE run.
type Result struct {
	ExpectedUtility float64
	// Policies maps each decision variable eliminated to the policy
	// factor chosen for it: an indicator over (decision, remaining
	// context at the time it was eliminated) that is 1 for the
	// utility-maximizing decision and 0 elsewhere.
	Policies map[string]*factor.Factor
}

// DefaultOrder returns net's decision and chance variables in reverse
// topological order — decisions with no remaining descendants are
// eliminated first, which is a valid elimination order whenever the
// diagram's decision nodes were built with their informational parents
// preceding them in the DAG. Diagrams with unusual information
// structure should pass an explicit order to Solve instead.
func DefaultOrder(net *node.Network) ([]string, error) {
	topo, err := net.DAG().TopologicalSort()
	if err != nil {
		return nil, err
	}
	isUtility := make(map[string]bool)
	for _, name := range net.UtilityNames() {
		isUtility[name] = true
	}
	var order []string
	for i := len(topo) - 1; i >= 0; i-- {
		if !isUtility[topo[i]] {
			order = append(order, topo[i])
		}
	}
	return order, nil
}

// Solve eliminates every variable in order (computed via DefaultOrder
// when order is nil), returning the expected utility of optimal play
// and the policy chosen for every decision variable encountered.
func (e *Engine) Solve(order []string) (*Result, error) {
	if order == nil {
		var err error
		order, err = DefaultOrder(e.Net)
		if err != nil {
			return nil, err
		}
	}

	joints, err := baseJoints(e.Net)
	if err != nil {
		return nil, err
	}

	isDecision := make(map[string]bool)
	for _, name := range e.Net.DecisionNames() {
		isDecision[name] = true
	}

	policies := make(map[string]*factor.Factor)
	current := joints
	for _, v := range order {
		var relevant, irrelevant []Joint
		for _, j := range current {
			if mentions(j.Prob, v) || mentions(j.Util, v) {
				relevant = append(relevant, j)
			} else {
				irrelevant = append(irrelevant, j)
			}
		}
		if len(relevant) == 0 {
			continue
		}
		combined := relevant[0]
		for _, j := range relevant[1:] {
			combined, err = Combine(combined, j)
			if err != nil {
				return nil, err
			}
		}

		var eliminated Joint
		if isDecision[v] {
			eliminated, policies[v], err = eliminateDecision(combined, v)
		} else {
			eliminated, err = eliminateChance(combined, v)
		}
		if err != nil {
			return nil, err
		}
		current = append(irrelevant, eliminated)
	}

	if len(current) == 0 {
		return nil, fmt.Errorf("influence: no valuations remaining after elimination: %w", bayeslab.ErrInvalidEvidence)
	}
	final := current[0]
	for _, j := range current[1:] {
		final, err = Combine(final, j)
		if err != nil {
			return nil, err
		}
	}
	if len(final.Util.Table) != 1 {
		return nil, fmt.Errorf("influence: elimination order %v left %v unresolved: %w", order, final.Util.Vars, bayeslab.ErrInvalidEvidence)
	}

	return &Result{ExpectedUtility: final.Util.Table[0], Policies: policies}, nil
}

// ExpectedUtility is a convenience wrapper around Solve that discards
// the recovered policies.
func (e *Engine) ExpectedUtility(order []string) (float64, error) {
	res, err := e.Solve(order)
	if err != nil {
		return 0, err
	}
	return res.ExpectedUtility, nil
}

// ExpectedUtilityFor fixes each named decision node to a single chosen
// label — via a hard-evidence joint pinning it, rather than by letting
// elimination maximize over it — then sum-eliminates every variable
// (decisions included, since they're now just delta-constrained chance
// variables) in DefaultOrder, returning the scalar expected utility of
// that fully specified policy.
func (e *Engine) ExpectedUtilityFor(decisions map[string]string) (float64, error) {
	order, err := DefaultOrder(e.Net)
	if err != nil {
		return 0, err
	}

	joints, err := baseJoints(e.Net)
	if err != nil {
		return 0, err
	}
	for name, label := range decisions {
		n := e.Net.Node(name)
		if n == nil || n.Kind != node.Decision {
			return 0, fmt.Errorf("influence: %q is not a decision node: %w", name, bayeslab.ErrUnknownVariable)
		}
		ev, err := factor.HardEvidence(name, n.Values, label)
		if err != nil {
			return 0, err
		}
		joints = append(joints, Joint{Prob: ev, Util: factor.Trivial(0)})
	}

	current := joints
	for _, v := range order {
		var relevant, irrelevant []Joint
		for _, j := range current {
			if mentions(j.Prob, v) || mentions(j.Util, v) {
				relevant = append(relevant, j)
			} else {
				irrelevant = append(irrelevant, j)
			}
		}
		if len(relevant) == 0 {
			continue
		}
		combined := relevant[0]
		for _, j := range relevant[1:] {
			combined, err = Combine(combined, j)
			if err != nil {
				return 0, err
			}
		}
		var eliminated Joint
		eliminated, err = eliminateChance(combined, v)
		if err != nil {
			return 0, err
		}
		current = append(irrelevant, eliminated)
	}

	if len(current) == 0 {
		return 0, fmt.Errorf("influence: no valuations remaining after elimination: %w", bayeslab.ErrInvalidEvidence)
	}
	final := current[0]
	for _, j := range current[1:] {
		final, err = Combine(final, j)
		if err != nil {
			return 0, err
		}
	}
	if len(final.Util.Table) != 1 {
		return 0, fmt.Errorf("influence: elimination order %v left %v unresolved: %w", order, final.Util.Vars, bayeslab.ErrInvalidEvidence)
	}
	return final.Util.Table[0], nil
}

// eliminateChance sum-marginalizes a chance variable out of combined:
// the new probability potential is the straight marginal, and the new
// utility is the probability-weighted average utility, with 0/0 := 0
// where the marginal probability is zero (an unreachable configuration
// contributes no utility).
func eliminateChance(combined Joint, v string) (Joint, error) {
	newProb, err := combined.Prob.Marginalize([]string{v})
	if err != nil {
		return Joint{}, err
	}
	weighted, err := combined.Prob.Product(combined.Util)
	if err != nil {
		return Joint{}, err
	}
	weightedMarg, err := weighted.Marginalize([]string{v})
	if err != nil {
		return Joint{}, err
	}
	newUtil, err := weightedMarg.Divide(newProb)
	if err != nil {
		return Joint{}, err
	}
	return Joint{Prob: newProb, Util: newUtil}, nil
}

// eliminateDecision maximizes combined.Util over decision variable v,
// recording the maximizing policy as an indicator factor over v and
// whatever context remains after this step. The new probability
// potential is that policy summed over v, which is 1 everywhere since
// the policy selects exactly one value of v per context.
func eliminateDecision(combined Joint, v string) (Joint, *factor.Factor, error) {
	maxUtil, policy, err := maxMarginalizeWithPolicy(combined.Util, v)
	if err != nil {
		return Joint{}, nil, err
	}
	newProb, err := policy.Marginalize([]string{v})
	if err != nil {
		return Joint{}, nil, err
	}
	return Joint{Prob: newProb, Util: maxUtil}, policy, nil
}

// maxMarginalizeWithPolicy removes v from f by taking, for every
// assignment of the remaining variables, the maximum over v's values.
// It also returns a 0/1 indicator factor over f's full scope marking
// the maximizing value of v for each such assignment (ties broken
// toward the first-listed value).
func maxMarginalizeWithPolicy(f *factor.Factor, v string) (*factor.Factor, *factor.Factor, error) {
	pos := -1
	for i, name := range f.Vars {
		if name == v {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil, nil, fmt.Errorf("influence: %q is not a variable of the utility potential being eliminated: %w", v, bayeslab.ErrUnknownVariable)
	}

	newVars := make([]string, 0, len(f.Vars)-1)
	for i, name := range f.Vars {
		if i != pos {
			newVars = append(newVars, name)
		}
	}
	newValues := make(map[string][]string, len(newVars))
	for _, nv := range newVars {
		newValues[nv] = f.Values[nv]
	}

	newStr := localStrides(newVars, newValues)

	newSize := 1
	for _, nv := range newVars {
		newSize *= len(newValues[nv])
	}
	maxTable := make([]float64, newSize)
	argmax := make([]int, newSize)
	for i := range maxTable {
		maxTable[i] = math.Inf(-1)
	}

	assignment := make([]int, len(f.Vars))
	for idx := 0; idx < len(f.Table); idx++ {
		localDecode(idx, f.Vars, f.Values, assignment)
		newIdx := projectSkipping(assignment, pos, newStr)
		if f.Table[idx] > maxTable[newIdx] {
			maxTable[newIdx] = f.Table[idx]
			argmax[newIdx] = assignment[pos]
		}
	}

	policyTable := make([]float64, len(f.Table))
	for idx := 0; idx < len(f.Table); idx++ {
		localDecode(idx, f.Vars, f.Values, assignment)
		newIdx := projectSkipping(assignment, pos, newStr)
		if assignment[pos] == argmax[newIdx] {
			policyTable[idx] = 1
		}
	}

	maxFactor := &factor.Factor{Vars: newVars, Values: newValues, Table: maxTable}
	policyValues := make(map[string][]string, len(f.Vars))
	for _, name := range f.Vars {
		policyValues[name] = f.Values[name]
	}
	policy := &factor.Factor{Vars: append([]string{}, f.Vars...), Values: policyValues, Table: policyTable}
	return maxFactor, policy, nil
}

func localStrides(vars []string, values map[string][]string) []int {
	s := make([]int, len(vars))
	stride := 1
	for i := len(vars) - 1; i >= 0; i-- {
		s[i] = stride
		stride *= len(values[vars[i]])
	}
	return s
}

func localDecode(idx int, vars []string, values map[string][]string, assignment []int) {
	for i := len(vars) - 1; i >= 0; i-- {
		card := len(values[vars[i]])
		assignment[i] = idx % card
		idx /= card
	}
}

// projectSkipping maps assignment (indexed like the original f.Vars)
// onto a flat index over newStr, skipping position skip.
func projectSkipping(assignment []int, skip int, newStr []int) int {
	idx := 0
	j := 0
	for i, a := range assignment {
		if i == skip {
			continue
		}
		idx += a * newStr[j]
		j++
	}
	return idx
}
