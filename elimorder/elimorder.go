// Package elimorder computes variable elimination orderings over an
// undirected interaction graph, used both by variable elimination
// directly and by junction-tree triangulation.
package elimorder

import (
	"sort"

	"github.com/inferlab/bayeslab/graph"
)

// MinDegree repeatedly removes the node with the fewest remaining
// neighbors, connecting its neighbors to each other (fill-in) before
// removal. Ties are broken by name for determinism. targets, if
// non-empty, restricts and orders the result to eliminate only those
// variables — any other node in g (e.g. a query variable that must
// survive elimination) is never eliminated and is left out of both the
// degree counts and the fill-in edges.
func MinDegree(g *graph.UndirectedGraph, targets []string) []string {
	work := g.Copy()

	var pool []string
	if len(targets) == 0 {
		pool = work.Nodes()
	} else {
		pool = append([]string{}, targets...)
	}
	remaining := make(map[string]bool, len(pool))
	for _, n := range pool {
		remaining[n] = true
	}

	order := make([]string, 0, len(pool))
	for len(remaining) > 0 {
		best := ""
		bestDegree := -1
		candidates := make([]string, 0, len(remaining))
		for n := range remaining {
			candidates = append(candidates, n)
		}
		sort.Strings(candidates)
		for _, n := range candidates {
			degree := countNeighborsIn(work, n, remaining)
			if bestDegree == -1 || degree < bestDegree {
				best = n
				bestDegree = degree
			}
		}

		neighbors := neighborsIn(work, best, remaining)
		for i := 0; i < len(neighbors); i++ {
			for j := i + 1; j < len(neighbors); j++ {
				work.AddEdge(neighbors[i], neighbors[j])
			}
		}

		order = append(order, best)
		delete(remaining, best)
	}
	return order
}

// InsertionOrder returns targets verbatim (or, if empty, the graph's
// nodes in sorted order) — a trivial, deterministic ordering strategy
// that skips the fill-in cost computation entirely, useful when the
// caller already knows a good order or wants reproducible benchmarks.
func InsertionOrder(g *graph.UndirectedGraph, targets []string) []string {
	if len(targets) > 0 {
		return append([]string{}, targets...)
	}
	return g.Nodes()
}

func countNeighborsIn(g *graph.UndirectedGraph, node string, remaining map[string]bool) int {
	count := 0
	for _, nb := range g.Neighbors(node) {
		if remaining[nb] {
			count++
		}
	}
	return count
}

func neighborsIn(g *graph.UndirectedGraph, node string, remaining map[string]bool) []string {
	var out []string
	for _, nb := range g.Neighbors(node) {
		if remaining[nb] && nb != node {
			out = append(out, nb)
		}
	}
	return out
}
