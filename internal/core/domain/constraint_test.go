package domain_test

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/relock/internal/core/domain"
)

func TestConstraint_Check(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		version    string
		want       bool
	}{
		{name: "exact match", constraint: "1.2.3", version: "1.2.3", want: true},
		{name: "exact mismatch", constraint: "1.2.3", version: "1.2.4", want: false},
		{name: "caret within range", constraint: "^3.5.2", version: "3.6.0", want: true},
		{name: "caret below range", constraint: "^3.5.2", version: "3.5.1", want: false},
		{name: "caret next major", constraint: "^3.5.2", version: "4.0.3", want: false},
		{name: "tilde within range", constraint: "~1.2.3", version: "1.2.9", want: true},
		{name: "tilde next minor", constraint: "~1.2.3", version: "1.3.0", want: false},
		{name: "wildcard", constraint: "*", version: "0.0.1", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := domain.NewConstraint(tt.constraint)
			require.NoError(t, err)

			v, err := semver.NewVersion(tt.version)
			require.NoError(t, err)

			assert.Equal(t, tt.want, c.Check(v))
		})
	}
}

func TestConstraint_CheckNilVersion(t *testing.T) {
	c := domain.MustConstraint("^1.0.0")
	assert.False(t, c.Check(nil))
}

func TestConstraint_ZeroValue(t *testing.T) {
	var c domain.Constraint
	assert.True(t, c.IsZero())
	assert.False(t, c.Check(semver.MustParse("1.0.0")))
}

func TestNewConstraint_Invalid(t *testing.T) {
	_, err := domain.NewConstraint("not-a-range!!")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConstraint)
}

func TestConstraint_StringKeepsSpelling(t *testing.T) {
	// The serialized lockfile must reproduce the manifest's exact spelling.
	for _, raw := range []string{"^3.5.2", "~1.2.3", "1.x", ">=2.0.0 <3.0.0"} {
		c := domain.MustConstraint(raw)
		assert.Equal(t, raw, c.String())
	}
}
