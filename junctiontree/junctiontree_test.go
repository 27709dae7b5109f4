package junctiontree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferlab/bayeslab/node"
	"github.com/inferlab/bayeslab/ve"
)

func rainSprinkler(t *testing.T) *node.Network {
	net := node.NewNetwork()
	require.NoError(t, net.AddNode(node.NewDiscreteNode("Rain", []string{"T", "F"})))
	require.NoError(t, net.AddNode(node.NewDiscreteNode("Sprinkler", []string{"T", "F"})))
	require.NoError(t, net.AddNode(node.NewDiscreteNode("GrassWet", []string{"T", "F"})))
	require.NoError(t, net.AddEdge("Rain", "Sprinkler"))
	require.NoError(t, net.AddEdge("Rain", "GrassWet"))
	require.NoError(t, net.AddEdge("Sprinkler", "GrassWet"))

	require.NoError(t, net.SetCPT("Rain", []float64{0.2, 0.8}))
	require.NoError(t, net.SetCPT("Sprinkler", []float64{0.01, 0.99, 0.4, 0.6}))
	require.NoError(t, net.SetCPT("GrassWet", []float64{
		0.99, 0.01,
		0.8, 0.2,
		0.9, 0.1,
		0.0, 1.0,
	}))
	return net
}

func TestBuildCalibratesPriorMarginalsAgainstVE(t *testing.T) {
	net := rainSprinkler(t)
	tree, err := Build(net)
	require.NoError(t, err)

	eng := ve.New(net)
	for _, v := range []string{"Rain", "Sprinkler", "GrassWet"} {
		want, err := eng.Query([]string{v}, nil, ve.Bucket)
		require.NoError(t, err)
		got, err := tree.Marginals(v)
		require.NoError(t, err)
		require.Equal(t, want.Vars, got.Vars)
		for i := range want.Table {
			assert.InDelta(t, want.Table[i], got.Table[i], 1e-9)
		}
	}
}

func TestSetEvidenceMatchesVariableElimination(t *testing.T) {
	net := rainSprinkler(t)
	tree, err := Build(net)
	require.NoError(t, err)
	require.NoError(t, tree.SetHardEvidence(map[string]string{"GrassWet": "T"}))

	eng := ve.New(net)
	want, err := eng.Query([]string{"Rain"}, map[string]string{"GrassWet": "T"}, ve.Bucket)
	require.NoError(t, err)
	got, err := tree.Marginals("Rain")
	require.NoError(t, err)
	for i := range want.Table {
		assert.InDelta(t, want.Table[i], got.Table[i], 1e-9)
	}
}

func TestResetFactorsClearsEvidence(t *testing.T) {
	net := rainSprinkler(t)
	tree, err := Build(net)
	require.NoError(t, err)

	prior, err := tree.Marginals("Rain")
	require.NoError(t, err)

	require.NoError(t, tree.SetHardEvidence(map[string]string{"GrassWet": "T"}))
	require.NoError(t, tree.ResetFactors())

	after, err := tree.Marginals("Rain")
	require.NoError(t, err)
	for i := range prior.Table {
		assert.InDelta(t, prior.Table[i], after.Table[i], 1e-9)
	}
}

func TestStructuralChangeStalesTree(t *testing.T) {
	net := rainSprinkler(t)
	tree, err := Build(net)
	require.NoError(t, err)

	require.NoError(t, net.AddNode(node.NewDiscreteNode("Extra", []string{"0", "1"})))
	_, err = tree.Marginals("Rain")
	require.Error(t, err)
}

func TestAssignedCliqueContainsNodeScope(t *testing.T) {
	net := rainSprinkler(t)
	tree, err := Build(net)
	require.NoError(t, err)

	id := tree.AssignedClique("GrassWet")
	require.NotEmpty(t, id)
	vars := tree.CliqueVars()[id]
	assert.Contains(t, vars, "GrassWet")
	assert.Contains(t, vars, "Rain")
	assert.Contains(t, vars, "Sprinkler")
}
