package node

import (
	"fmt"

	"github.com/inferlab/bayeslab"
	"github.com/inferlab/bayeslab/graph"
)

// Network is a directed acyclic graph of Nodes: discrete random
// variables, optionally mixed with Utility and Decision nodes for
// influence diagrams. Structural edits bump Version, which downstream
// consumers (junction trees built from this Network) use to detect
// staleness.
type Network struct {
	nodes   map[string]*Node
	order   []string // insertion order, for deterministic iteration
	dag     *graph.DAG
	Version int
}

// NewNetwork creates an empty network.
func NewNetwork() *Network {
	return &Network{
		nodes: make(map[string]*Node),
		dag:   graph.NewDAG(),
	}
}

// AddNode registers n under its own name. It is an error to reuse a
// name already present in the network.
func (net *Network) AddNode(n *Node) error {
	if _, exists := net.nodes[n.Name]; exists {
		return fmt.Errorf("node: name %q already in use: %w", n.Name, bayeslab.ErrNameConflict)
	}
	net.nodes[n.Name] = n
	net.order = append(net.order, n.Name)
	net.dag.AddNode(n.Name)
	net.Version++
	return nil
}

// Node returns the node named name, or nil if none exists.
func (net *Network) Node(name string) *Node {
	return net.nodes[name]
}

// Names returns node names in insertion order.
func (net *Network) Names() []string {
	out := make([]string, len(net.order))
	copy(out, net.order)
	return out
}

// DAG exposes the network's underlying directed graph, e.g. for
// triangulation or ancestor queries.
func (net *Network) DAG() *graph.DAG {
	return net.dag
}

// AddEdge adds parent -> child, appending parent to child's Parents
// list and invalidating child's table. Both endpoints must already be
// registered via AddNode.
func (net *Network) AddEdge(parent, child string) error {
	p, ok := net.nodes[parent]
	if !ok {
		return fmt.Errorf("node: unknown parent %q: %w", parent, bayeslab.ErrUnknownVariable)
	}
	c, ok := net.nodes[child]
	if !ok {
		return fmt.Errorf("node: unknown child %q: %w", child, bayeslab.ErrUnknownVariable)
	}
	if err := net.dag.AddEdge(parent, child); err != nil {
		return fmt.Errorf("node: %v", err)
	}
	c.Parents = append(c.Parents, p.Name)
	c.Valid = false
	net.Version++
	return nil
}

// RemoveEdge removes parent -> child, dropping parent from child's
// Parents list and invalidating child's table.
func (net *Network) RemoveEdge(parent, child string) error {
	c, ok := net.nodes[child]
	if !ok {
		return fmt.Errorf("node: unknown child %q: %w", child, bayeslab.ErrUnknownVariable)
	}
	net.dag.RemoveEdge(parent, child)
	filtered := c.Parents[:0]
	for _, p := range c.Parents {
		if p != parent {
			filtered = append(filtered, p)
		}
	}
	c.Parents = filtered
	c.Valid = false
	net.Version++
	return nil
}

// ChangeValues replaces a discrete or decision node's value labels.
// The node itself and its direct children are invalidated — parents
// further up the graph are unaffected, since their tables don't
// reference this node's axis.
func (net *Network) ChangeValues(name string, values []string) error {
	n, ok := net.nodes[name]
	if !ok {
		return fmt.Errorf("node: unknown variable %q: %w", name, bayeslab.ErrUnknownVariable)
	}
	n.Values = append([]string{}, values...)
	n.Valid = false
	for _, child := range net.dag.Children(name) {
		net.nodes[child].Valid = false
	}
	net.Version++
	return nil
}

// Rename changes a node's name, atomically updating the node map,
// every child's Parents list, and the backing DAG.
func (net *Network) Rename(oldName, newName string) error {
	n, ok := net.nodes[oldName]
	if !ok {
		return fmt.Errorf("node: unknown variable %q: %w", oldName, bayeslab.ErrUnknownVariable)
	}
	if _, exists := net.nodes[newName]; exists {
		return fmt.Errorf("node: name %q already in use: %w", newName, bayeslab.ErrNameConflict)
	}

	parents := net.dag.Parents(oldName)
	children := net.dag.Children(oldName)

	newDag := graph.NewDAG()
	for _, name := range net.order {
		if name == oldName {
			newDag.AddNode(newName)
		} else {
			newDag.AddNode(name)
		}
	}
	for _, p := range net.order {
		src := p
		if src == oldName {
			src = newName
		}
		for _, c := range net.dag.Children(p) {
			dst := c
			if dst == oldName {
				dst = newName
			}
			_ = newDag.AddEdge(src, dst)
		}
	}
	net.dag = newDag

	n.Name = newName
	delete(net.nodes, oldName)
	net.nodes[newName] = n
	for i, name := range net.order {
		if name == oldName {
			net.order[i] = newName
		}
	}

	for _, c := range children {
		cn := net.nodes[c]
		for i, p := range cn.Parents {
			if p == oldName {
				cn.Parents[i] = newName
			}
		}
	}
	_ = parents // parents' own Parents lists are unaffected by renaming a child
	net.Version++
	return nil
}

// shape returns the expected tensor shape for n: (|self|, |parent0|, …).
func (net *Network) shape(n *Node) ([]int, error) {
	var shape []int
	if n.Kind != Utility {
		shape = append(shape, len(n.Values))
	}
	for _, p := range n.Parents {
		pn, ok := net.nodes[p]
		if !ok {
			return nil, fmt.Errorf("node: unknown parent %q of %q: %w", p, n.Name, bayeslab.ErrUnknownVariable)
		}
		shape = append(shape, len(pn.Values))
	}
	return shape, nil
}

func shapeSize(shape []int) int {
	size := 1
	for _, s := range shape {
		size *= s
	}
	return size
}

// SetCPT assigns a node's full conditional probability/utility/decision
// table. table must be in row-major order with axes (self, parent0,
// parent1, …) matching the node's current Parents order, and its
// length must equal the product of those cardinalities.
func (net *Network) SetCPT(name string, table []float64) error {
	n, ok := net.nodes[name]
	if !ok {
		return fmt.Errorf("node: unknown variable %q: %w", name, bayeslab.ErrUnknownVariable)
	}
	shape, err := net.shape(n)
	if err != nil {
		return err
	}
	want := shapeSize(shape)
	if len(table) != want {
		return fmt.Errorf("node: table for %q has %d entries, want %d: %w", name, len(table), want, bayeslab.ErrShapeMismatch)
	}
	n.Table = append([]float64{}, table...)
	n.Valid = true
	return nil
}

// strides computes row-major strides for shape.
func strides(shape []int) []int {
	str := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		str[i] = acc
		acc *= shape[i]
	}
	return str
}

// axisRange is one parent axis left underspecified by a "*" label: every
// position along it belongs to the addressed slab.
type axisRange struct {
	stride, card int
}

// addressRange resolves name's address for selfLabel/parentLabels into a
// base flat index plus the stride/cardinality of every parent axis given
// "*", for SetProbability/GetProbability to walk as a broadcast slab.
// Every parent must still have an entry in parentLabels; only its value
// may be "*".
func (net *Network) addressRange(n *Node, shape []int, selfLabel string, parentLabels map[string]string) (int, []axisRange, error) {
	str := strides(shape)
	base := 0
	axis := 0
	if n.Kind != Utility {
		pos := n.Variable().IndexOf(selfLabel)
		if pos < 0 {
			return 0, nil, fmt.Errorf("node: %q is not a value of %q: %w", selfLabel, n.Name, bayeslab.ErrUnknownLabel)
		}
		base += pos * str[0]
		axis = 1
	}
	var wildcards []axisRange
	for _, parent := range n.Parents {
		pn := net.nodes[parent]
		label, ok := parentLabels[parent]
		if !ok {
			return 0, nil, fmt.Errorf("node: missing value for parent %q of %q: %w", parent, n.Name, bayeslab.ErrInvalidEvidence)
		}
		if label == "*" {
			wildcards = append(wildcards, axisRange{stride: str[axis], card: len(pn.Values)})
			axis++
			continue
		}
		pos := pn.Variable().IndexOf(label)
		if pos < 0 {
			return 0, nil, fmt.Errorf("node: %q is not a value of %q: %w", label, parent, bayeslab.ErrUnknownLabel)
		}
		base += pos * str[axis]
		axis++
	}
	return base, wildcards, nil
}

// slabIndices enumerates every flat index addressed by base plus the
// given wildcard axes, one per combination of their positions.
func slabIndices(base int, wildcards []axisRange) []int {
	indices := []int{base}
	for _, w := range wildcards {
		next := make([]int, 0, len(indices)*w.card)
		for _, idx := range indices {
			for k := 0; k < w.card; k++ {
				next = append(next, idx+k*w.stride)
			}
		}
		indices = next
	}
	return indices
}

// SetProbability assigns one entry (or a broadcast slab, when some
// parent positions are given "*") of a discrete/decision node's table,
// indexed by the node's own value label followed by a value label per
// parent in Parents order. Entries outside the addressed slab are left
// untouched — callers typically call this repeatedly to fill in a full
// CPT one parent-configuration at a time.
func (net *Network) SetProbability(name string, selfLabel string, parentLabels map[string]string, p float64) error {
	n, ok := net.nodes[name]
	if !ok {
		return fmt.Errorf("node: unknown variable %q: %w", name, bayeslab.ErrUnknownVariable)
	}
	shape, err := net.shape(n)
	if err != nil {
		return err
	}
	if n.Table == nil {
		n.Table = make([]float64, shapeSize(shape))
	}
	base, wildcards, err := net.addressRange(n, shape, selfLabel, parentLabels)
	if err != nil {
		return err
	}
	for _, idx := range slabIndices(base, wildcards) {
		n.Table[idx] = p
	}
	return nil
}

// GetProbability reads back the sub-slice addressed by selfLabel and
// parentLabels, broadcasting over any parent given "*"; the result is a
// copy, a single-element slice when the address is fully specified.
func (net *Network) GetProbability(name string, selfLabel string, parentLabels map[string]string) ([]float64, error) {
	n, ok := net.nodes[name]
	if !ok {
		return nil, fmt.Errorf("node: unknown variable %q: %w", name, bayeslab.ErrUnknownVariable)
	}
	shape, err := net.shape(n)
	if err != nil {
		return nil, err
	}
	base, wildcards, err := net.addressRange(n, shape, selfLabel, parentLabels)
	if err != nil {
		return nil, err
	}
	indices := slabIndices(base, wildcards)
	out := make([]float64, len(indices))
	for i, idx := range indices {
		if idx >= len(n.Table) {
			return nil, fmt.Errorf("node: %q has no table assigned: %w", name, bayeslab.ErrShapeMismatch)
		}
		out[i] = n.Table[idx]
	}
	return out, nil
}
