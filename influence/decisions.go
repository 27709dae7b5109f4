package influence

import (
	"fmt"

	"github.com/inferlab/bayeslab"
)

// BestDecision reads the optimal label for decision variable name out
// of a solved Result, given a full assignment of whatever context
// variables remained in scope when name was eliminated (see
// Result.Policies[name].Vars for that scope).
func (r *Result) BestDecision(name string, context map[string]string) (string, error) {
	policy, ok := r.Policies[name]
	if !ok {
		return "", fmt.Errorf("influence: no policy was recorded for %q: %w", name, bayeslab.ErrUnknownVariable)
	}

	for _, label := range policy.Values[name] {
		selection := make(map[string][]string, len(context)+1)
		for v, l := range context {
			selection[v] = []string{l}
		}
		selection[name] = []string{label}

		p, err := policy.GetPotential(selection)
		if err != nil {
			return "", err
		}
		if len(p) == 1 && p[0] == 1 {
			return label, nil
		}
	}
	return "", fmt.Errorf("influence: no decision in the policy for %q matched context %v: %w", name, context, bayeslab.ErrInvalidEvidence)
}
