package elimorder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inferlab/bayeslab/graph"
)

func chain(names ...string) *graph.UndirectedGraph {
	g := graph.NewUndirectedGraph()
	for i := 0; i < len(names)-1; i++ {
		g.AddEdge(names[i], names[i+1])
	}
	return g
}

func TestMinDegreeEliminatesAllTargets(t *testing.T) {
	g := chain("A", "B", "C", "D")
	order := MinDegree(g, nil)
	assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, order)
}

func TestMinDegreePrefersLeavesFirst(t *testing.T) {
	// star graph: center has degree 3, leaves have degree 1
	g := graph.NewUndirectedGraph()
	g.AddEdge("center", "a")
	g.AddEdge("center", "b")
	g.AddEdge("center", "c")

	order := MinDegree(g, nil)
	assert.Equal(t, "center", order[len(order)-1])
}

func TestMinDegreeRestrictsToTargets(t *testing.T) {
	g := chain("A", "B", "C")
	order := MinDegree(g, []string{"A", "C"})
	assert.ElementsMatch(t, []string{"A", "C"}, order)
}

func TestInsertionOrderIsVerbatim(t *testing.T) {
	g := chain("A", "B", "C")
	order := InsertionOrder(g, []string{"C", "A"})
	assert.Equal(t, []string{"C", "A"}, order)
}
