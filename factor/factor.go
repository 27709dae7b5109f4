// Package factor implements the factor algebra over discrete variables:
// product, division, marginalization, evidence injection, and the
// soft-evidence ratio computation. A Factor is a labeled dense tensor;
// operators always return a fresh Factor rather than mutating an
// operand.
package factor

import (
	"fmt"

	"github.com/inferlab/bayeslab"
)

// Factor is a labeled N-dimensional tensor representing a potential
// over a set of discrete variables.
type Factor struct {
	// Vars is the ordered list of variable names; axis k of Table
	// corresponds to Vars[k].
	Vars []string
	// Values maps each variable in Vars to its ordered value labels.
	// These slices are treated as immutable once assigned to a Factor.
	Values map[string][]string
	// Table is the dense tensor, laid out row-major over Vars (the
	// last variable in Vars varies fastest).
	Table []float64
}

// New creates a Factor, validating that len(table) matches the product
// of cardinalities implied by vars and values.
func New(vars []string, values map[string][]string, table []float64) (*Factor, error) {
	size := 1
	for _, v := range vars {
		size *= len(values[v])
	}
	if len(table) != size {
		return nil, fmt.Errorf("factor: table has %d cells, expected %d: %w", len(table), size, bayeslab.ErrShapeMismatch)
	}
	return &Factor{Vars: vars, Values: values, Table: table}, nil
}

// Copy returns a deep copy: operators never alias an operand's Table.
func (f *Factor) Copy() *Factor {
	vars := make([]string, len(f.Vars))
	copy(vars, f.Vars)

	values := make(map[string][]string, len(f.Values))
	for k, v := range f.Values {
		values[k] = v // label lists are immutable tuples, safe to share
	}

	table := make([]float64, len(f.Table))
	copy(table, f.Table)

	return &Factor{Vars: vars, Values: values, Table: table}
}

// Unit returns a factor over vars whose every entry is 1.
func Unit(vars []string, values map[string][]string) *Factor {
	size := 1
	for _, v := range vars {
		size *= len(values[v])
	}
	table := make([]float64, size)
	for i := range table {
		table[i] = 1
	}
	return &Factor{Vars: append([]string{}, vars...), Values: copyValues(values, vars), Table: table}
}

// Zero returns a factor over vars whose every entry is 0.
func Zero(vars []string, values map[string][]string) *Factor {
	size := 1
	for _, v := range vars {
		size *= len(values[v])
	}
	return &Factor{Vars: append([]string{}, vars...), Values: copyValues(values, vars), Table: make([]float64, size)}
}

// Trivial returns a rank-0 factor holding a single potential p.
func Trivial(p float64) *Factor {
	return &Factor{Vars: nil, Values: map[string][]string{}, Table: []float64{p}}
}

func copyValues(values map[string][]string, vars []string) map[string][]string {
	out := make(map[string][]string, len(vars))
	for _, v := range vars {
		out[v] = values[v]
	}
	return out
}

// strides returns, for each position in vars, the stride of that axis
// in a row-major tensor (last variable varies fastest).
func strides(vars []string, values map[string][]string) []int {
	s := make([]int, len(vars))
	stride := 1
	for i := len(vars) - 1; i >= 0; i-- {
		s[i] = stride
		stride *= len(values[vars[i]])
	}
	return s
}

// unionVars computes the left-biased union used by Product: a's
// variables first, then b's variables not already in a, in b's order.
func unionVars(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, v := range a {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func mergeValues(a, b map[string][]string) (map[string][]string, error) {
	out := make(map[string][]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if existing, ok := out[k]; ok && len(existing) != len(v) {
			return nil, fmt.Errorf("factor: variable %q has cardinality %d in one factor and %d in the other: %w", k, len(existing), len(v), bayeslab.ErrShapeMismatch)
		}
		out[k] = v
	}
	return out, nil
}

// Product computes f·other. Result variables are f.Vars followed by
// (other.Vars ∖ f.Vars) in other's order — multiplication is
// numerically commutative but this axis ordering is a contract, not an
// accident: downstream consumers either project through GetPotential
// (order independent) or rely on this left-biased order.
func (f *Factor) Product(other *Factor) (*Factor, error) {
	return f.ProductWithLimit(other, bayeslab.DefaultFactorSizeLimit)
}

// ProductWithLimit is Product with an explicit cell ceiling.
func (f *Factor) ProductWithLimit(other *Factor, maxCells int) (*Factor, error) {
	resultVars := unionVars(f.Vars, other.Vars)
	values, err := mergeValues(f.Values, other.Values)
	if err != nil {
		return nil, err
	}

	size := 1
	for _, v := range resultVars {
		size *= len(values[v])
	}
	if maxCells > 0 && size > maxCells {
		return nil, fmt.Errorf("factor: product of %v and %v would have %d cells: %w", f.Vars, other.Vars, size, bayeslab.ErrFactorTooLarge)
	}

	fStr := strides(f.Vars, f.Values)
	oStr := strides(other.Vars, other.Values)

	table := make([]float64, size)
	assignment := make([]int, len(resultVars))
	for idx := 0; idx < size; idx++ {
		decode(idx, resultVars, values, assignment)
		fi := project(assignment, resultVars, f.Vars, fStr)
		oi := project(assignment, resultVars, other.Vars, oStr)
		table[idx] = f.Table[fi] * other.Table[oi]
	}

	return &Factor{Vars: resultVars, Values: values, Table: table}, nil
}

// decode fills assignment with the per-axis value index of the flat
// index idx over vars/values (row-major, last axis fastest).
func decode(idx int, vars []string, values map[string][]string, assignment []int) {
	for i := len(vars) - 1; i >= 0; i-- {
		card := len(values[vars[i]])
		assignment[i] = idx % card
		idx /= card
	}
}

// project maps an assignment over fullVars onto a flat index over a
// (subset) vars list using its own strides.
func project(assignment []int, fullVars []string, vars []string, str []int) int {
	idx := 0
	for i, v := range vars {
		for j, fv := range fullVars {
			if fv == v {
				idx += assignment[j] * str[i]
				break
			}
		}
	}
	return idx
}

// Add computes the pointwise sum of f and other over their union of
// variables (broadcasting each operand across variables it doesn't
// range over), using the same left-biased axis order as Product. Unlike
// probability potentials, utility potentials combine by addition rather
// than multiplication, which is what Add exists for.
func (f *Factor) Add(other *Factor) (*Factor, error) {
	resultVars := unionVars(f.Vars, other.Vars)
	values, err := mergeValues(f.Values, other.Values)
	if err != nil {
		return nil, err
	}

	size := 1
	for _, v := range resultVars {
		size *= len(values[v])
	}

	fStr := strides(f.Vars, f.Values)
	oStr := strides(other.Vars, other.Values)

	table := make([]float64, size)
	assignment := make([]int, len(resultVars))
	for idx := 0; idx < size; idx++ {
		decode(idx, resultVars, values, assignment)
		fi := project(assignment, resultVars, f.Vars, fStr)
		oi := project(assignment, resultVars, other.Vars, oStr)
		table[idx] = f.Table[fi] + other.Table[oi]
	}

	return &Factor{Vars: resultVars, Values: values, Table: table}, nil
}

// Invert returns a new factor with every entry replaced by 1/p,
// defining 1/0 := 0.
func (f *Factor) Invert() *Factor {
	out := f.Copy()
	for i, p := range out.Table {
		if p == 0 {
			out.Table[i] = 0
		} else {
			out.Table[i] = 1 / p
		}
	}
	return out
}

// Divide computes f/other, defined only when vars(other) ⊆ vars(f). It
// equals f · invert(other); divisor entries that are zero propagate as
// zero in the quotient (via the 1/0 := 0 rule baked into Invert).
func (f *Factor) Divide(other *Factor) (*Factor, error) {
	for _, v := range other.Vars {
		if !contains(f.Vars, v) {
			return nil, fmt.Errorf("factor: divisor variable %q is not a subset of dividend variables %v: %w", v, f.Vars, bayeslab.ErrShapeMismatch)
		}
	}
	return f.Product(other.Invert())
}

func contains(vars []string, v string) bool {
	for _, x := range vars {
		if x == v {
			return true
		}
	}
	return false
}

// Marginalize sums out the given variables, dropping them from Vars
// and Values.
func (f *Factor) Marginalize(out []string) (*Factor, error) {
	drop := make(map[string]bool, len(out))
	for _, v := range out {
		drop[v] = true
	}

	newVars := make([]string, 0, len(f.Vars))
	for _, v := range f.Vars {
		if !drop[v] {
			newVars = append(newVars, v)
		}
	}

	newValues := copyValues(f.Values, newVars)

	if len(newVars) == 0 {
		sum := 0.0
		for _, v := range f.Table {
			sum += v
		}
		return &Factor{Vars: nil, Values: map[string][]string{}, Table: []float64{sum}}, nil
	}

	size := 1
	for _, v := range newVars {
		size *= len(newValues[v])
	}
	newStr := strides(newVars, newValues)
	newTable := make([]float64, size)

	assignment := make([]int, len(f.Vars))
	for idx := 0; idx < len(f.Table); idx++ {
		decode(idx, f.Vars, f.Values, assignment)
		newIdx := project(assignment, f.Vars, newVars, newStr)
		newTable[newIdx] += f.Table[idx]
	}

	return &Factor{Vars: newVars, Values: newValues, Table: newTable}, nil
}

// GetPotential returns a copy of the sub-tensor, selecting only the
// requested labels along each selected variable (row-major over Vars,
// restricted to the selection). A nil/empty selection returns a full
// copy of Table.
func (f *Factor) GetPotential(selection map[string][]string) ([]float64, error) {
	if len(selection) == 0 {
		out := make([]float64, len(f.Table))
		copy(out, f.Table)
		return out, nil
	}

	indices := make([][]int, len(f.Vars))
	size := 1
	for i, v := range f.Vars {
		if labels, ok := selection[v]; ok {
			idxs := make([]int, len(labels))
			for j, label := range labels {
				pos := indexOfLabel(f.Values[v], label)
				if pos < 0 {
					return nil, fmt.Errorf("factor: label %q is not a value of variable %q: %w", label, v, bayeslab.ErrUnknownLabel)
				}
				idxs[j] = pos
			}
			indices[i] = idxs
		} else {
			idxs := make([]int, len(f.Values[v]))
			for j := range idxs {
				idxs[j] = j
			}
			indices[i] = idxs
		}
		size *= len(indices[i])
	}

	str := strides(f.Vars, f.Values)
	out := make([]float64, size)
	counter := make([]int, len(f.Vars))
	for outIdx := 0; outIdx < size; outIdx++ {
		rem := outIdx
		for i := len(f.Vars) - 1; i >= 0; i-- {
			n := len(indices[i])
			counter[i] = rem % n
			rem /= n
		}
		srcIdx := 0
		for i := range f.Vars {
			srcIdx += indices[i][counter[i]] * str[i]
		}
		out[outIdx] = f.Table[srcIdx]
	}
	return out, nil
}

func indexOfLabel(labels []string, label string) int {
	for i, l := range labels {
		if l == label {
			return i
		}
	}
	return -1
}

// Normalize divides every entry by the tensor sum, in place. If the
// sum is zero the factor is left untouched, which distinguishes
// "structurally unreachable" evidence from a buggy tensor.
func (f *Factor) Normalize() {
	sum := 0.0
	for _, v := range f.Table {
		sum += v
	}
	if sum == 0 {
		return
	}
	for i := range f.Table {
		f.Table[i] /= sum
	}
}

// Sum returns the sum of every entry in the tensor.
func (f *Factor) Sum() float64 {
	sum := 0.0
	for _, v := range f.Table {
		sum += v
	}
	return sum
}

// String renders the factor as a human-readable assignment table,
// mostly useful in tests and debug output.
func (f *Factor) String() string {
	if len(f.Vars) == 0 {
		return fmt.Sprintf("Factor() -> %.6f", f.Table[0])
	}
	s := fmt.Sprintf("Factor(%v)\n", f.Vars)
	assignment := make([]int, len(f.Vars))
	for idx, p := range f.Table {
		decode(idx, f.Vars, f.Values, assignment)
		for i, v := range f.Vars {
			s += fmt.Sprintf("%s=%s ", v, f.Values[v][assignment[i]])
		}
		s += fmt.Sprintf("-> %.6f\n", p)
	}
	return s
}
