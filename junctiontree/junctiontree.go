// Package junctiontree builds a clique (junction) tree from a
// node.Network and answers marginal queries by Hugin two-phase message
// passing: a single collect-to-root pass followed by a distribute-from-
// root pass calibrates every clique's belief, after which any variable's
// marginal is a local marginalization away.
package junctiontree

import (
	"sort"

	"github.com/google/uuid"

	"github.com/inferlab/bayeslab"
	"github.com/inferlab/bayeslab/elimorder"
	"github.com/inferlab/bayeslab/factor"
	"github.com/inferlab/bayeslab/graph"
	"github.com/inferlab/bayeslab/node"
)

// Clique is one node of the junction tree: a maximal clique of the
// triangulated moral graph, carrying the product of every network
// factor assigned to it.
type Clique struct {
	ID        string
	Vars      []string
	Belief    *factor.Factor
	base      *factor.Factor // Belief before any evidence/propagation
	neighbors map[string]*edge
}

type edge struct {
	sep       []string
	potential *factor.Factor
}

// Tree is a calibrated (or calibratable) junction tree over a Network.
type Tree struct {
	net        *node.Network
	netVersion int
	config     *bayeslab.Config

	cliques    map[string]*Clique
	bfsOrder   []string // deterministic build order, bfsOrder[0] is the propagation root
	varHome    map[string][]string // variable -> IDs of cliques containing it
	assignedTo map[string]string   // network node name -> clique ID its factor was multiplied into
}

// Build triangulates net's moral graph (via min-degree elimination,
// unless cfg selects InsertionOrder), forms the resulting maximal
// cliques into a tree, assigns every discrete node's factor to a
// containing clique, and calibrates by one collect/distribute pass. cfg
// is optional; a nil or omitted Config applies MinDegree triangulation
// and DefaultFactorSizeLimit.
func Build(net *node.Network, cfg ...*bayeslab.Config) (*Tree, error) {
	var config *bayeslab.Config
	if len(cfg) > 0 {
		config = cfg[0]
	}

	vars := net.DiscreteNames()
	moral := net.DAG().MoralGraph()
	var order []string
	if config.EliminationOrderOrDefault() == bayeslab.InsertionOrder {
		order = elimorder.InsertionOrder(moral, vars)
	} else {
		order = elimorder.MinDegree(moral, vars)
	}

	cliqueVars := triangulate(moral, order)
	cliqueVars = dropNonMaximal(cliqueVars)

	t := &Tree{
		net:        net,
		netVersion: net.Version,
		config:     config,
		cliques:    make(map[string]*Clique),
		varHome:    make(map[string][]string),
		assignedTo: make(map[string]string),
	}

	for _, cv := range cliqueVars {
		id := uuid.NewString()
		values := make(map[string][]string, len(cv))
		for _, v := range cv {
			values[v] = net.Node(v).Values
		}
		t.cliques[id] = &Clique{
			ID:        id,
			Vars:      cv,
			Belief:    factor.Unit(cv, values),
			neighbors: make(map[string]*edge),
		}
		t.bfsOrder = append(t.bfsOrder, id)
		for _, v := range cv {
			t.varHome[v] = append(t.varHome[v], id)
		}
	}

	connectTree(t)

	if err := t.assignFactors(); err != nil {
		return nil, err
	}
	for _, c := range t.cliques {
		c.base = c.Belief.Copy()
	}

	if err := t.propagate(); err != nil {
		return nil, err
	}
	return t, nil
}

// triangulate replays the elimination order against a working copy of
// moral, recording the clique {v} ∪ neighbors(v) formed when each
// variable is eliminated, with fill-in edges added beforehand. The
// graph package has no node-removal primitive, so eliminated variables
// are tracked via a "remaining" set instead of being physically
// deleted — mirroring elimorder.MinDegree's own approach.
func triangulate(moral *graph.UndirectedGraph, order []string) [][]string {
	work := moral.Copy()
	remaining := make(map[string]bool, len(order))
	for _, v := range order {
		remaining[v] = true
	}

	var cliques [][]string
	for _, v := range order {
		var neighbors []string
		for _, nb := range work.Neighbors(v) {
			if remaining[nb] {
				neighbors = append(neighbors, nb)
			}
		}
		clique := append([]string{v}, neighbors...)
		sort.Strings(clique)
		cliques = append(cliques, clique)

		for i := 0; i < len(neighbors); i++ {
			for j := i + 1; j < len(neighbors); j++ {
				work.AddEdge(neighbors[i], neighbors[j])
			}
		}
		delete(remaining, v)
	}
	return cliques
}
