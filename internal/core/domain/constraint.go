package domain

import (
	"github.com/Masterminds/semver/v3"
	"go.trai.ch/zerr"
)

// Constraint is a parsed version range. Manifests use exact versions
// ("1.2.3"), caret ranges ("^1.2.3") and tilde ranges ("~1.2.3"); parsing and
// matching semantics are delegated to the semver library.
type Constraint struct {
	raw string
	c   *semver.Constraints
}

// NewConstraint parses a raw constraint string.
func NewConstraint(raw string) (Constraint, error) {
	c, err := semver.NewConstraint(raw)
	if err != nil {
		return Constraint{}, zerr.With(ErrInvalidConstraint, "constraint", raw)
	}
	return Constraint{raw: raw, c: c}, nil
}

// MustConstraint parses a raw constraint string and panics on failure.
// Intended for tests and fixtures only.
func MustConstraint(raw string) Constraint {
	c, err := NewConstraint(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// Check reports whether the given version satisfies the constraint.
// A nil version (e.g. the root project node) never satisfies anything.
func (c Constraint) Check(v *semver.Version) bool {
	if c.c == nil || v == nil {
		return false
	}
	return c.c.Check(v)
}

// String returns the constraint exactly as written in the manifest.
// Serialization relies on this being the original spelling so unchanged
// lockfile entries stay byte-identical.
func (c Constraint) String() string {
	return c.raw
}

// IsZero reports whether the constraint is the uninitialized zero value.
func (c Constraint) IsZero() bool {
	return c.c == nil
}
