package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a := New(PrefixInstallment)
	b := New(PrefixInstallment)
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "emi_"))
	assert.True(t, Valid(a, PrefixInstallment))
	assert.False(t, Valid(a, PrefixIncome))
}

func TestSequence(t *testing.T) {
	gen := Sequence()
	assert.Equal(t, "emi_0001", gen(PrefixInstallment))
	assert.Equal(t, "emi_0002", gen(PrefixInstallment))
	assert.Equal(t, "inc_0001", gen(PrefixIncome))
}

func TestParse(t *testing.T) {
	prefix, suffix, err := Parse("lnd_1234")
	require.NoError(t, err)
	assert.Equal(t, "lnd", prefix)
	assert.Equal(t, "1234", suffix)
}

func TestParse_Errors(t *testing.T) {
	for _, input := range []string{"", "nounderscore", "_abc", "emi_"} {
		_, _, err := Parse(input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}

func TestValid(t *testing.T) {
	assert.False(t, Valid("emi_not-a-uuid", PrefixInstallment))
	assert.False(t, Valid("", PrefixInstallment))
}
