package junctiontree

import "sort"

// dropNonMaximal removes any clique whose variable set is a subset of
// another clique's — triangulation emits one clique per eliminated
// variable, but many are dominated by a neighbor's.
func dropNonMaximal(cliques [][]string) [][]string {
	var out [][]string
	for i, c := range cliques {
		dominated := false
		for j, other := range cliques {
			if i == j || len(other) <= len(c) {
				continue
			}
			if isSubset(c, other) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, c)
		}
	}
	return dedupe(out)
}

func isSubset(a, b []string) bool {
	set := make(map[string]bool, len(b))
	for _, v := range b {
		set[v] = true
	}
	for _, v := range a {
		if !set[v] {
			return false
		}
	}
	return true
}

func dedupe(cliques [][]string) [][]string {
	seen := make(map[string]bool, len(cliques))
	var out [][]string
	for _, c := range cliques {
		key := ""
		for _, v := range c {
			key += v + "\x00"
		}
		if !seen[key] {
			seen[key] = true
			out = append(out, c)
		}
	}
	return out
}

// connectTree links cliques into a tree via a maximum-weight spanning
// tree over the clique graph, weighting a candidate edge by the size of
// the separator it would induce — this is the standard construction
// that guarantees the running intersection property.
func connectTree(t *Tree) {
	type candidate struct {
		a, b   string
		weight int
	}
	var candidates []candidate
	for i := 0; i < len(t.bfsOrder); i++ {
		for j := i + 1; j < len(t.bfsOrder); j++ {
			a, b := t.bfsOrder[i], t.bfsOrder[j]
			sep := intersect(t.cliques[a].Vars, t.cliques[b].Vars)
			if len(sep) > 0 {
				candidates = append(candidates, candidate{a, b, len(sep)})
			}
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].weight > candidates[j].weight
	})

	uf := newUnionFind(t.bfsOrder)
	edgesAdded := 0
	for _, c := range candidates {
		if edgesAdded == len(t.bfsOrder)-1 {
			break
		}
		if uf.find(c.a) == uf.find(c.b) {
			continue
		}
		uf.union(c.a, c.b)
		sep := intersect(t.cliques[c.a].Vars, t.cliques[c.b].Vars)
		values := make(map[string][]string, len(sep))
		for _, v := range sep {
			values[v] = t.net.Node(v).Values
		}
		pot := factorUnit(sep, values)
		e := &edge{sep: sep, potential: pot}
		t.cliques[c.a].neighbors[c.b] = e
		t.cliques[c.b].neighbors[c.a] = e
		edgesAdded++
	}
}

func intersect(a, b []string) []string {
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	var out []string
	for _, v := range b {
		if set[v] {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

type unionFind struct {
	parent map[string]string
}

func newUnionFind(ids []string) *unionFind {
	uf := &unionFind{parent: make(map[string]string, len(ids))}
	for _, id := range ids {
		uf.parent[id] = id
	}
	return uf
}

func (uf *unionFind) find(x string) string {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b string) {
	ra, rb := uf.find(a), uf.find(b)
	if ra != rb {
		uf.parent[ra] = rb
	}
}

// assignFactors multiplies each discrete node's CPT factor into the
// first (by bfsOrder) clique whose variable set is a superset of its
// scope — every CPT's scope {self}∪parents is, by construction, a
// clique of the moralized graph, so a containing maximal clique always
// exists.
func (t *Tree) assignFactors() error {
	for _, name := range t.net.DiscreteNames() {
		f, err := t.net.ToFactor(name)
		if err != nil {
			return err
		}
		home := t.findContaining(f.Vars)
		if home == "" {
			return errNoContainingClique(name)
		}
		c := t.cliques[home]
		product, err := c.Belief.ProductWithLimit(f, t.config.FactorSizeLimitOrDefault())
		if err != nil {
			return err
		}
		c.Belief = product
		t.assignedTo[name] = home
	}
	return nil
}

func (t *Tree) findContaining(vars []string) string {
	for _, id := range t.bfsOrder {
		if isSubset(vars, t.cliques[id].Vars) {
			return id
		}
	}
	return ""
}
