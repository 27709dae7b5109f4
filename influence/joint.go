// Package influence implements generalized variable elimination over
// influence diagrams: networks that mix ordinary chance nodes with
// Decision and Utility nodes. Elimination operates on Joint valuations
// — a probability potential paired with a utility potential — combined
// by multiplying probabilities and adding utilities, and marginalized
// by summing out chance variables or maximizing out decision variables
// (recording the maximizing policy as it goes).
package influence

import (
	"github.com/inferlab/bayeslab/factor"
	"github.com/inferlab/bayeslab/node"
)

// Joint pairs a probability potential with a utility potential, the
// unit value generalized VE eliminates one variable at a time.
type Joint struct {
	Prob *factor.Factor
	Util *factor.Factor
}

// Combine implements the valuation ⊗ operator: probabilities multiply,
// utilities add.
func Combine(a, b Joint) (Joint, error) {
	prob, err := a.Prob.Product(b.Prob)
	if err != nil {
		return Joint{}, err
	}
	util, err := a.Util.Add(b.Util)
	if err != nil {
		return Joint{}, err
	}
	return Joint{Prob: prob, Util: util}, nil
}

// baseJoints builds one Joint per node of net: chance nodes contribute
// their CPT as Prob with a zero Util; decision nodes contribute a unit
// (all-choices-open) Prob with a zero Util, pending a policy; utility
// nodes contribute a unit Prob with their table as Util.
func baseJoints(net *node.Network) ([]Joint, error) {
	var joints []Joint
	for _, name := range net.DiscreteNames() {
		f, err := net.ToFactor(name)
		if err != nil {
			return nil, err
		}
		joints = append(joints, Joint{Prob: f, Util: factor.Trivial(0)})
	}
	for _, name := range net.DecisionNames() {
		n := net.Node(name)
		vars := append([]string{name}, n.Parents...)
		values := map[string][]string{name: n.Values}
		for _, p := range n.Parents {
			values[p] = net.Node(p).Values
		}
		joints = append(joints, Joint{Prob: factor.Unit(vars, values), Util: factor.Trivial(0)})
	}
	for _, name := range net.UtilityNames() {
		f, err := net.ToUtilityFactor(name)
		if err != nil {
			return nil, err
		}
		joints = append(joints, Joint{Prob: factor.Trivial(1), Util: f})
	}
	return joints, nil
}

func mentions(f *factor.Factor, v string) bool {
	for _, x := range f.Vars {
		if x == v {
			return true
		}
	}
	return false
}
