package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Record id prefixes, one per collection.
const (
	PrefixInstallment = "emi"
	PrefixIncome      = "inc"
	PrefixBorrower    = "lnd"
	PrefixSettlement  = "stl"
	PrefixInvestment  = "inv"
)

// New returns a fresh id like "emi_0f8c...". The suffix is a random UUID.
func New(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// Generator hands out ids. Tests swap in a deterministic one.
type Generator func(prefix string) string

// Sequence returns a Generator producing "emi_0001", "emi_0002", ... per prefix.
func Sequence() Generator {
	counts := map[string]int{}
	return func(prefix string) string {
		counts[prefix]++
		return fmt.Sprintf("%s_%04d", prefix, counts[prefix])
	}
}

// Parse splits an id into its prefix and suffix.
func Parse(s string) (prefix, suffix string, err error) {
	prefix, suffix, ok := strings.Cut(s, "_")
	if !ok || prefix == "" || suffix == "" {
		return "", "", fmt.Errorf("invalid record ID format: %q", s)
	}
	return prefix, suffix, nil
}

// Valid reports whether s is a well-formed id with the given prefix and a UUID
// suffix.
func Valid(s, prefix string) bool {
	p, suffix, err := Parse(s)
	if err != nil || p != prefix {
		return false
	}
	return uuid.Validate(suffix) == nil
}
