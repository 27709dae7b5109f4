package influence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferlab/bayeslab/node"
)

func umbrellaDiagram(t *testing.T) *node.Network {
	net := node.NewNetwork()
	require.NoError(t, net.AddNode(node.NewDiscreteNode("Weather", []string{"Rain", "Sunny"})))
	require.NoError(t, net.SetCPT("Weather", []float64{0.3, 0.7}))

	require.NoError(t, net.AddNode(node.NewDecisionNode("Umbrella", []string{"Take", "Leave"})))

	utility := node.NewUtilityNode("Payoff")
	require.NoError(t, net.AddNode(utility))
	require.NoError(t, net.AddEdge("Weather", "Payoff"))
	require.NoError(t, net.AddEdge("Umbrella", "Payoff"))
	// Payoff parents order is [Weather, Umbrella] (edges added in that order).
	require.NoError(t, net.SetCPT("Payoff", []float64{
		20, 0, // Weather=Rain: Take, Leave
		15, 20, // Weather=Sunny: Take, Leave
	}))
	return net
}

func TestSolveComputesExpectedUtilityAndOptimalPolicy(t *testing.T) {
	net := umbrellaDiagram(t)
	eng := New(net)

	res, err := eng.Solve([]string{"Weather", "Umbrella"})
	require.NoError(t, err)
	assert.InDelta(t, 16.5, res.ExpectedUtility, 1e-9)

	decision, err := res.BestDecision("Umbrella", nil)
	require.NoError(t, err)
	assert.Equal(t, "Take", decision)
}

func TestSolveSkipsOrderEntriesNoLongerRelevant(t *testing.T) {
	net := umbrellaDiagram(t)
	eng := New(net)
	_, err := eng.Solve([]string{"Weather", "Umbrella", "Nope"})
	require.NoError(t, err) // "Nope" touches no remaining valuation, so it's a no-op rather than an error
}

func TestDefaultOrderExcludesUtilityNodes(t *testing.T) {
	net := umbrellaDiagram(t)
	order, err := DefaultOrder(net)
	require.NoError(t, err)
	assert.NotContains(t, order, "Payoff")
	assert.Contains(t, order, "Weather")
	assert.Contains(t, order, "Umbrella")
}
