package ve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferlab/bayeslab/node"
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
	require.NoError(t, net.SetCPT("Sprinkler", []float64{0.01, 0.4, 0.99, 0.6}))
	require.NoError(t, net.SetCPT("GrassWet", []float64{
		0.99, 0.8,
		0.9, 0.0,
		0.01, 0.2,
		0.1, 1.0,
	}))
	return net
}

func TestBucketAndNaiveAgreeOnPriorMarginal(t *testing.T) {
	net := rainSprinkler(t)
	eng := New(net)

	bucketResult, err := eng.Query([]string{"GrassWet"}, nil, Bucket)
	require.NoError(t, err)
	naiveResult, err := eng.Query([]string{"GrassWet"}, nil, Naive)
	require.NoError(t, err)

	for i := range bucketResult.Table {
		assert.InDelta(t, naiveResult.Table[i], bucketResult.Table[i], 1e-9)
	}
}

func TestQueryWithEvidenceNormalizes(t *testing.T) {
	net := rainSprinkler(t)
	eng := New(net)

	result, err := eng.Query([]string{"Rain"}, map[string]string{"GrassWet": "T"}, Bucket)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Sum(), 1e-9)
	// observing wet grass should raise P(Rain=T) above the 0.2 prior.
	assert.Greater(t, result.Table[0], 0.2)
}

func TestQueryUnknownEvidenceVariable(t *testing.T) {
	net := rainSprinkler(t)
	eng := New(net)
	_, err := eng.Query([]string{"Rain"}, map[string]string{"Nope": "T"}, Bucket)
	require.Error(t, err)
}

func TestQueryJointOverMultipleTargets(t *testing.T) {
	net := rainSprinkler(t)
	eng := New(net)
	result, err := eng.Query([]string{"Rain", "Sprinkler"}, nil, Bucket)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Rain", "Sprinkler"}, result.Vars)
	assert.InDelta(t, 1.0, result.Sum(), 1e-9)
}
