// Package variable defines the named discrete variable shared by every
// other package in bayeslab.
package variable

// Variable is a named discrete random variable with an ordered list of
// value labels. It holds a slice and so is not comparable and cannot be
// a map key; maps elsewhere in the module key on the Name string.
// Callers should treat the Values slice as an immutable tuple once a
// Variable is constructed (New stores its own copy of the labels).
type Variable struct {
	Name   string
	Values []string
}

// New creates a Variable with the given ordered value labels.
func New(name string, values []string) Variable {
	cp := make([]string, len(values))
	copy(cp, values)
	return Variable{Name: name, Values: cp}
}

// Cardinality returns the number of value labels.
func (v Variable) Cardinality() int {
	return len(v.Values)
}

// IndexOf returns the position of label in Values, or -1 if absent.
func (v Variable) IndexOf(label string) int {
	for i, l := range v.Values {
		if l == label {
			return i
		}
	}
	return -1
}

// HasLabel reports whether label is one of v's value labels.
func (v Variable) HasLabel(label string) bool {
	return v.IndexOf(label) >= 0
}
