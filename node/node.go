// Package node provides the discrete, utility, and decision node types
// that populate a Network, plus the Network itself: a directed acyclic
// graph of nodes backed by the graph package's DAG.
package node

import "github.com/inferlab/bayeslab/variable"

// Kind distinguishes the three node flavors a Network can hold.
type Kind int

const (
	// Discrete is an ordinary random variable with a CPT.
	Discrete Kind = iota
	// Utility has no "self" axis; its table maps parent instantiations
	// to a real-valued utility.
	Utility
	// Decision carries a finite set of decisions and a decision rule
	// (a distribution over decisions conditioned on information
	// parents) instead of a CPT.
	Decision
)

// Node is a variable (or utility/decision node) plus its parent order
// and conditional probability/utility tensor. Nodes hold only parent
// *names*, in a deterministic order; they never hold back-references to
// other Node values — the owning Network dereferences parent names when
// needed. This avoids the cyclic-reference-ownership problem a naive
// parent-pointer design runs into.
type Node struct {
	Kind Kind
	Name string

	// Values holds the ordered value labels for Discrete and Decision
	// nodes (decisions, in the Decision case). Utility nodes leave this
	// nil.
	Values []string

	// Parents is the authoritative parent order: axis 0 of Table is
	// the node itself (Discrete/Decision) or absent (Utility); axis
	// k+1 follows Parents[k].
	Parents []string

	// Table is the dense tensor: shape (|Values|, |parent0|, …) for
	// Discrete/Decision, (|parent0|, …) for Utility.
	Table []float64

	// Valid is cleared whenever a structural edit invalidates Table's
	// shape and set once SetCPT accepts a matching tensor.
	Valid bool
}

// NewDiscreteNode creates an unattached discrete node with no parents
// and no CPT assigned yet.
func NewDiscreteNode(name string, values []string) *Node {
	return &Node{Kind: Discrete, Name: name, Values: append([]string{}, values...)}
}

// NewUtilityNode creates an unattached utility node.
func NewUtilityNode(name string) *Node {
	return &Node{Kind: Utility, Name: name}
}

// NewDecisionNode creates an unattached decision node over the given
// finite set of decisions.
func NewDecisionNode(name string, decisions []string) *Node {
	return &Node{Kind: Decision, Name: name, Values: append([]string{}, decisions...)}
}

// selfCardinality returns the size of axis 0, or 1 for Utility nodes
// (which have no self axis).
func (n *Node) selfCardinality() int {
	if n.Kind == Utility {
		return 1
	}
	return len(n.Values)
}

// Variable returns the shared name+value-labels view of n's own axis.
// Utility nodes have no self axis and return the zero Variable.
func (n *Node) Variable() variable.Variable {
	if n.Kind == Utility {
		return variable.Variable{}
	}
	return variable.New(n.Name, n.Values)
}
