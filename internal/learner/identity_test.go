package learner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM \n"))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ada Lovelace", "Ada Lovelace"},
		{"  Ada   Lovelace ", "Ada Lovelace"},
		{"Ada\tLovelace\n", "Ada Lovelace"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), "input %q", tt.in)
	}
}

func TestSameName(t *testing.T) {
	assert.True(t, SameName("ada  lovelace", " Ada Lovelace"))
	assert.False(t, SameName("Ada", "Grace"))
}

func TestNew(t *testing.T) {
	p := New(" Grace  Hopper ", "GRACE@navy.mil ")
	assert.Equal(t, Profile{Name: "Grace Hopper", Email: "grace@navy.mil"}, p)
}
