package factor

import (
	"fmt"

	"github.com/inferlab/bayeslab"
)

// HardEvidence returns a one-hot factor over v asserting v=label.
func HardEvidence(v string, values []string, label string) (*Factor, error) {
	pos := indexOfLabel(values, label)
	if pos < 0 {
		return nil, fmt.Errorf("factor: %q is not a value of %q: %w", label, v, bayeslab.ErrInvalidEvidence)
	}
	table := make([]float64, len(values))
	table[pos] = 1.0
	return &Factor{Vars: []string{v}, Values: map[string][]string{v: values}, Table: table}, nil
}

// LikelihoodEvidence builds a "nothing-else-considered" soft evidence
// factor: the given vector becomes the factor's potential directly.
func LikelihoodEvidence(v string, values []string, likelihood []float64) (*Factor, error) {
	if len(likelihood) != len(values) {
		return nil, fmt.Errorf("factor: evidence vector has %d entries, variable %q has %d values: %w", len(likelihood), v, len(values), bayeslab.ErrInvalidEvidence)
	}
	table := make([]float64, len(likelihood))
	copy(table, likelihood)
	return &Factor{Vars: []string{v}, Values: map[string][]string{v: values}, Table: table}, nil
}

// PosteriorEvidence builds the "all-things-considered" soft evidence
// factor that realizes a desired posterior: given the current prior
// marginal and the desired posterior, pick a reference index r =
// argmax(desired); the factor value at i is 1 if i=r, 0 if prior[i]=0,
// else (desired[i]/prior[i])·(prior[r]/desired[r]).
func PosteriorEvidence(v string, values []string, prior, desired []float64) (*Factor, error) {
	if len(desired) != len(values) {
		return nil, fmt.Errorf("factor: evidence vector has %d entries, variable %q has %d values: %w", len(desired), v, len(values), bayeslab.ErrInvalidEvidence)
	}
	if len(prior) != len(values) {
		return nil, fmt.Errorf("factor: prior vector has %d entries, variable %q has %d values: %w", len(prior), v, len(values), bayeslab.ErrInvalidEvidence)
	}

	r := 0
	for i := 1; i < len(desired); i++ {
		if desired[i] > desired[r] {
			r = i
		}
	}

	table := make([]float64, len(values))
	for i := range table {
		switch {
		case i == r:
			table[i] = 1
		case prior[i] == 0:
			table[i] = 0
		default:
			table[i] = (desired[i] / prior[i]) * (prior[r] / desired[r])
		}
	}
	return &Factor{Vars: []string{v}, Values: map[string][]string{v: values}, Table: table}, nil
}

// Observation is the tagged evidence value for one variable: either a
// single hard label, or a soft vector interpreted either as a direct
// likelihood (nothing-else-considered) or, when the call site's
// soft_posteriors flag is set, a desired posterior (all-things-
// considered). A nil Soft means hard evidence via Label; this is the
// uniform replacement for duck-typed scalar-or-array evidence inputs.
type Observation struct {
	Label string
	Soft  []float64
}

// Hard builds a hard-evidence Observation asserting label.
func Hard(label string) Observation { return Observation{Label: label} }

// SoftEvidence builds a soft-evidence Observation over vec, interpreted
// per the soft_posteriors flag passed to whatever ToFactor call
// consumes it.
func SoftEvidence(vec []float64) Observation { return Observation{Soft: vec} }

// HardObservations converts a plain label map into an Observation map,
// for call sites that only ever need hard evidence.
func HardObservations(labels map[string]string) map[string]Observation {
	out := make(map[string]Observation, len(labels))
	for v, label := range labels {
		out[v] = Hard(label)
	}
	return out
}

// ToFactor converts obs into a concrete evidence factor over v, given
// v's value labels and, for the all-things-considered interpretation of
// soft evidence, v's current prior marginal (ignored otherwise).
func (obs Observation) ToFactor(v string, values []string, prior []float64, softPosteriors bool) (*Factor, error) {
	if obs.Soft == nil {
		return HardEvidence(v, values, obs.Label)
	}
	if softPosteriors {
		return PosteriorEvidence(v, values, prior, obs.Soft)
	}
	return LikelihoodEvidence(v, values, obs.Soft)
}

// FromSamples builds a probability factor over vars by histogramming
// samples (each a map from variable name to observed label) and
// normalizing the counts.
func FromSamples(samples []map[string]string, vars []string, values map[string][]string) (*Factor, error) {
	size := 1
	for _, v := range vars {
		size *= len(values[v])
	}
	table := make([]float64, size)
	str := strides(vars, values)

	for _, s := range samples {
		idx := 0
		ok := true
		for i, v := range vars {
			label, present := s[v]
			if !present {
				ok = false
				break
			}
			pos := indexOfLabel(values[v], label)
			if pos < 0 {
				return nil, fmt.Errorf("factor: sample value %q is not a value of %q: %w", label, v, bayeslab.ErrUnknownLabel)
			}
			idx += pos * str[i]
		}
		if ok {
			table[idx]++
		}
	}

	f := &Factor{Vars: append([]string{}, vars...), Values: copyValues(values, vars), Table: table}
	f.Normalize()
	return f, nil
}
