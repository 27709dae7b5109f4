package node

import (
	"fmt"

	"github.com/inferlab/bayeslab"
	"github.com/inferlab/bayeslab/factor"
)

// ToFactor converts a Discrete node's CPT into a probability factor
// over (name, parents...), suitable for multiplying into a joint.
// Utility and Decision nodes use ToUtilityFactor and a fixed decision
// rule respectively; use the influence package for joint (probability,
// utility) handling of those.
func (net *Network) ToFactor(name string) (*factor.Factor, error) {
	n, ok := net.nodes[name]
	if !ok {
		return nil, fmt.Errorf("node: unknown variable %q: %w", name, bayeslab.ErrUnknownVariable)
	}
	if n.Kind == Utility {
		return nil, fmt.Errorf("node: %q is a utility node, use ToUtilityFactor: %w", name, bayeslab.ErrShapeMismatch)
	}
	if !n.Valid || n.Table == nil {
		return nil, fmt.Errorf("node: %q has no valid table assigned: %w", name, bayeslab.ErrShapeMismatch)
	}

	vars := append([]string{name}, n.Parents...)
	values := map[string][]string{name: n.Values}
	for _, p := range n.Parents {
		values[p] = net.nodes[p].Values
	}
	return factor.New(vars, values, append([]float64{}, n.Table...))
}

// ToUtilityFactor converts a Utility node's table into a factor over
// its parents only (no self axis).
func (net *Network) ToUtilityFactor(name string) (*factor.Factor, error) {
	n, ok := net.nodes[name]
	if !ok {
		return nil, fmt.Errorf("node: unknown variable %q: %w", name, bayeslab.ErrUnknownVariable)
	}
	if n.Kind != Utility {
		return nil, fmt.Errorf("node: %q is not a utility node: %w", name, bayeslab.ErrShapeMismatch)
	}
	if !n.Valid || n.Table == nil {
		return nil, fmt.Errorf("node: %q has no valid table assigned: %w", name, bayeslab.ErrShapeMismatch)
	}

	values := map[string][]string{}
	for _, p := range n.Parents {
		values[p] = net.nodes[p].Values
	}
	return factor.New(n.Parents, values, append([]float64{}, n.Table...))
}

// DiscreteNames returns the names of every Discrete node, in insertion
// order — the variables a probabilistic query ranges over.
func (net *Network) DiscreteNames() []string {
	var out []string
	for _, name := range net.order {
		if net.nodes[name].Kind == Discrete {
			out = append(out, name)
		}
	}
	return out
}

// UtilityNames returns the names of every Utility node, in insertion
// order.
func (net *Network) UtilityNames() []string {
	var out []string
	for _, name := range net.order {
		if net.nodes[name].Kind == Utility {
			out = append(out, name)
		}
	}
	return out
}

// DecisionNames returns the names of every Decision node, in insertion
// order.
func (net *Network) DecisionNames() []string {
	var out []string
	for _, name := range net.order {
		if net.nodes[name].Kind == Decision {
			out = append(out, name)
		}
	}
	return out
}
