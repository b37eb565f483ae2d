package wire

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/pdulite/pdulite/schema"
)

// VersionMatches reports whether the runtime version satisfies the
// predicate. An empty runtime version means "current" and matches every
// predicate; an empty predicate matches every version.
func VersionMatches(version, predicate string) (bool, error) {
	if version == "" || predicate == "" {
		return true, nil
	}
	c, err := schema.CompileVersionPredicate(predicate)
	if err != nil {
		return false, err
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %v", version, err)
	}
	return c.Check(v), nil
}

// fieldActive reports whether a field participates on the wire at the given
// runtime version.
func fieldActive(f *schema.Field, version string) (bool, error) {
	ok, err := VersionMatches(version, f.Version)
	if err != nil {
		return false, wrapWithField(err, f.Name)
	}
	return ok, nil
}
