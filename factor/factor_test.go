package factor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFactorShapeMismatch(t *testing.T) {
	_, err := New([]string{"A"}, map[string][]string{"A": {"0", "1"}}, []float64{0.3})
	require.Error(t, err)
}

func TestProductLeftBiasedOrder(t *testing.T) {
	// S2: f1 over A = (0.3, 0.7), f2 over (A,B) with B having 3 values.
	f1, err := New([]string{"A"}, map[string][]string{"A": {"0", "1"}}, []float64{0.3, 0.7})
	require.NoError(t, err)

	f2, err := New(
		[]string{"A", "B"},
		map[string][]string{"A": {"0", "1"}, "B": {"0", "1", "2"}},
		[]float64{0.2, 0.4, 0.4, 0.4, 0.1, 0.5},
	)
	require.NoError(t, err)

	product, err := f1.Product(f2)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, product.Vars)
	expected := []float64{0.06, 0.12, 0.12, 0.28, 0.07, 0.35}
	for i, v := range expected {
		assert.InDelta(t, v, product.Table[i], 1e-9)
	}

	marginal, err := product.Marginalize([]string{"A"})
	require.NoError(t, err)
	expectedMarginal := []float64{0.34, 0.19, 0.47}
	for i, v := range expectedMarginal {
		assert.InDelta(t, v, marginal.Table[i], 1e-9)
	}
}

func TestProductCommutativeUnderPermutation(t *testing.T) {
	f1, _ := New([]string{"A"}, map[string][]string{"A": {"0", "1"}}, []float64{0.3, 0.7})
	f2, _ := New([]string{"B"}, map[string][]string{"B": {"0", "1"}}, []float64{0.4, 0.6})

	ab, err := f1.Product(f2)
	require.NoError(t, err)
	ba, err := f2.Product(f1)
	require.NoError(t, err)

	// ab.Vars == [A,B], ba.Vars == [B,A]; same values under permutation.
	for _, a := range []string{"0", "1"} {
		for _, b := range []string{"0", "1"} {
			p1, err := ab.GetPotential(map[string][]string{"A": {a}, "B": {b}})
			require.NoError(t, err)
			p2, err := ba.GetPotential(map[string][]string{"A": {a}, "B": {b}})
			require.NoError(t, err)
			assert.InDelta(t, p1[0], p2[0], 1e-9)
		}
	}
}

func TestMarginalizeCommutesWithIndependentProduct(t *testing.T) {
	a, _ := New([]string{"A"}, map[string][]string{"A": {"0", "1"}}, []float64{0.3, 0.7})
	b, _ := New([]string{"B"}, map[string][]string{"B": {"0", "1"}}, []float64{0.4, 0.6})

	ab, err := a.Product(b)
	require.NoError(t, err)
	marginalized, err := ab.Marginalize([]string{"A"})
	require.NoError(t, err)

	for i, v := range b.Table {
		assert.InDelta(t, v, marginalized.Table[i], 1e-9)
	}
}

func TestInvertZeroRule(t *testing.T) {
	f, _ := New([]string{"A"}, map[string][]string{"A": {"0", "1"}}, []float64{0, 0.5})
	inv := f.Invert()
	assert.Equal(t, 0.0, inv.Table[0])
	assert.InDelta(t, 2.0, inv.Table[1], 1e-9)
}

func TestDivideRequiresSubsetVars(t *testing.T) {
	ab, _ := New([]string{"A", "B"}, map[string][]string{"A": {"0", "1"}, "B": {"0", "1"}}, []float64{1, 2, 3, 4})
	c, _ := New([]string{"C"}, map[string][]string{"C": {"0", "1"}}, []float64{1, 1})
	_, err := ab.Divide(c)
	require.Error(t, err)
}

func TestDivideZeroPropagates(t *testing.T) {
	ab, _ := New([]string{"A", "B"}, map[string][]string{"A": {"0", "1"}, "B": {"0", "1"}}, []float64{1, 2, 3, 4})
	b, _ := New([]string{"B"}, map[string][]string{"B": {"0", "1"}}, []float64{0, 2})
	q, err := ab.Divide(b)
	require.NoError(t, err)
	assert.Equal(t, 0.0, q.Table[0]) // A=0,B=0: 1/0 := 0
	assert.InDelta(t, 1.0, q.Table[1], 1e-9)
}

func TestNormalizeLeavesAllZeroUntouched(t *testing.T) {
	f, _ := New([]string{"A"}, map[string][]string{"A": {"0", "1"}}, []float64{0, 0})
	f.Normalize()
	assert.Equal(t, []float64{0, 0}, f.Table)
}

func TestHardEvidenceEqualsOneHotLikelihood(t *testing.T) {
	values := []string{"0", "1"}
	hard, err := HardEvidence("A", values, "1")
	require.NoError(t, err)
	soft, err := LikelihoodEvidence("A", values, []float64{0, 1})
	require.NoError(t, err)
	assert.Equal(t, hard.Table, soft.Table)
}

func TestPosteriorEvidenceUnchangedWhenDesiredEqualsPrior(t *testing.T) {
	values := []string{"0", "1", "2"}
	prior := []float64{0.7, 0.25, 0.05}
	ev, err := PosteriorEvidence("cloth", values, prior, prior)
	require.NoError(t, err)
	for i := range ev.Table {
		// the resulting likelihood ratio should leave prior untouched.
		assert.InDelta(t, 1.0, ev.Table[i], 1e-9)
	}
}

func TestAddBroadcastsOverUnionScope(t *testing.T) {
	a, _ := New([]string{"A"}, map[string][]string{"A": {"0", "1"}}, []float64{1, 2})
	b, _ := New([]string{"A", "B"}, map[string][]string{"A": {"0", "1"}, "B": {"0", "1"}}, []float64{10, 20, 30, 40})

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, sum.Vars)
	expected := []float64{11, 21, 32, 42}
	for i, v := range expected {
		assert.InDelta(t, v, sum.Table[i], 1e-9)
	}
}

func TestGetPotentialUnknownLabel(t *testing.T) {
	f, _ := New([]string{"A"}, map[string][]string{"A": {"0", "1"}}, []float64{0.3, 0.7})
	_, err := f.GetPotential(map[string][]string{"A": {"2"}})
	require.Error(t, err)
}
