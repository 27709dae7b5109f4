package temporal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferlab/bayeslab"
	"github.com/inferlab/bayeslab/node"
)

// statusChain builds a one-variable DBN: Status in {Healthy, Sick},
// prior P(Status)=[0.9, 0.1], transition P(Status_t | Status_prev)
// given by a simple two-state Markov chain that favors staying put.
func statusChain(t *testing.T) (*node.Network, *node.Network) {
	prior := node.NewNetwork()
	require.NoError(t, prior.AddNode(node.NewDiscreteNode("Status", []string{"Healthy", "Sick"})))
	require.NoError(t, prior.SetCPT("Status", []float64{0.9, 0.1}))

	transition := node.NewNetwork()
	require.NoError(t, transition.AddNode(node.NewDiscreteNode("Status_prev", []string{"Healthy", "Sick"})))
	require.NoError(t, transition.AddNode(node.NewDiscreteNode("Status", []string{"Healthy", "Sick"})))
	require.NoError(t, transition.AddEdge("Status_prev", "Status"))
	// Status_prev=Healthy -> Healthy 0.8, Sick 0.2
	// Status_prev=Sick    -> Healthy 0.3, Sick 0.7
	require.NoError(t, transition.SetCPT("Status", []float64{
		0.8, 0.3, // Status=Healthy: Status_prev=Healthy, Sick
		0.2, 0.7, // Status=Sick:    Status_prev=Healthy, Sick
	}))
	return prior, transition
}

func TestStepPriorFeedbackMatchesHandComputedMarginal(t *testing.T) {
	prior, transition := statusChain(t)
	u, err := NewUnroller([]string{"Status"}, prior, transition, bayeslab.PriorFeedback)
	require.NoError(t, err)

	marginals, err := u.Step(nil)
	require.NoError(t, err)

	// P(Status_1=Healthy) = 0.9*0.8 + 0.1*0.3 = 0.75
	m := marginals["Status"]
	assert.Equal(t, []string{"Status"}, m.Vars)
	idxHealthy := indexOfLabel(m.Values["Status"], "Healthy")
	assert.InDelta(t, 0.75, m.Table[idxHealthy], 1e-9)

	belief, err := u.Belief("Status")
	require.NoError(t, err)
	assert.InDelta(t, 0.75, belief[idxHealthy], 1e-9)
}

func TestStepPriorFeedbackConvergesTowardStationaryDistribution(t *testing.T) {
	prior, transition := statusChain(t)
	u, err := NewUnroller([]string{"Status"}, prior, transition, bayeslab.PriorFeedback)
	require.NoError(t, err)

	var last []float64
	for i := 0; i < 50; i++ {
		_, err := u.Step(nil)
		require.NoError(t, err)
		last, err = u.Belief("Status")
		require.NoError(t, err)
	}
	// Stationary distribution of [[0.8,0.2],[0.3,0.7]] is [0.6, 0.4].
	idxHealthy := indexOfLabel(prior.Node("Status").Values, "Healthy")
	assert.InDelta(t, 0.6, last[idxHealthy], 1e-6)
}

func TestStepWithEvidenceShiftsBeliefTowardObservedState(t *testing.T) {
	prior, transition := statusChain(t)
	u, err := NewUnroller([]string{"Status"}, prior, transition, bayeslab.PriorFeedback)
	require.NoError(t, err)

	marginals, err := u.Step(map[string]string{"Status": "Sick"})
	require.NoError(t, err)
	idxSick := indexOfLabel(marginals["Status"].Values["Status"], "Sick")
	assert.InDelta(t, 1.0, marginals["Status"].Table[idxSick], 1e-9)

	belief, err := u.Belief("Status")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, belief[idxSick], 1e-9)
}

func TestSoftEvidenceFeedbackPullsTowardButNotFullyToObservedState(t *testing.T) {
	prior, transition := statusChain(t)
	u, err := NewUnroller([]string{"Status"}, prior, transition, bayeslab.SoftEvidenceFeedback)
	require.NoError(t, err)

	_, err = u.Step(map[string]string{"Status": "Sick"})
	require.NoError(t, err)

	marginals, err := u.Step(nil)
	require.NoError(t, err)
	idxSick := indexOfLabel(marginals["Status"].Values["Status"], "Sick")

	// The first step's marginal is carried into the second step as soft
	// evidence on Status_prev (the rolling belief itself stays at the
	// original prior), so the second slice's Status follows the
	// transition out of Sick: strictly between the original prior's
	// P(Sick)=0.1 and the hard-evidence 1.0.
	assert.Greater(t, marginals["Status"].Table[idxSick], 0.1)
	assert.Less(t, marginals["Status"].Table[idxSick], 1.0)
}

func TestRunStepsThroughMultipleEvidenceRounds(t *testing.T) {
	prior, transition := statusChain(t)
	u, err := NewUnroller([]string{"Status"}, prior, transition, bayeslab.PriorFeedback)
	require.NoError(t, err)

	results, err := u.Run([]map[string]string{nil, {"Status": "Healthy"}, nil})
	require.NoError(t, err)
	assert.Len(t, results, 3)
	for _, r := range results {
		assert.Contains(t, r, "Status")
	}
}

func TestNewUnrollerRejectsParentedPriorVariable(t *testing.T) {
	prior := node.NewNetwork()
	require.NoError(t, prior.AddNode(node.NewDiscreteNode("A", []string{"0", "1"})))
	require.NoError(t, prior.AddNode(node.NewDiscreteNode("B", []string{"0", "1"})))
	require.NoError(t, prior.AddEdge("A", "B"))
	require.NoError(t, prior.SetCPT("A", []float64{0.5, 0.5}))
	require.NoError(t, prior.SetCPT("B", []float64{0.5, 0.5, 0.5, 0.5}))

	_, transition := statusChain(t)
	_, err := NewUnroller([]string{"B"}, prior, transition, bayeslab.PriorFeedback)
	assert.Error(t, err)
}

func indexOfLabel(labels []string, label string) int {
	for i, l := range labels {
		if l == label {
			return i
		}
	}
	return -1
}
