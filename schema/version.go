package schema

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CompileVersionPredicate parses a field's version predicate into a semver
// constraint. The pessimistic operator is translated by precision: `~> X.Y`
// floats the minor component and `~> X.Y.Z` floats the patch component.
func CompileVersionPredicate(predicate string) (*semver.Constraints, error) {
	normalized := normalizePessimistic(predicate)
	// The constraint parser spells equality "=".
	normalized = strings.ReplaceAll(normalized, "==", "=")
	c, err := semver.NewConstraint(normalized)
	if err != nil {
		return nil, fmt.Errorf("invalid version predicate %q: %v", predicate, err)
	}
	return c, nil
}

// normalizePessimistic rewrites `~>` constraints into the caret or tilde
// ranges with the same bounds.
func normalizePessimistic(predicate string) string {
	if !strings.Contains(predicate, "~>") {
		return predicate
	}
	rest := strings.TrimSpace(strings.Replace(predicate, "~>", "", 1))
	if strings.Count(rest, ".") >= 2 {
		return "~" + rest
	}
	return "^" + rest
}
