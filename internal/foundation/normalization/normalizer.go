// Package normalization maps user supplied strings onto string enums.
package normalization

import (
	"fmt"
	"slices"
	"strings"
)

// Normalizer resolves case and whitespace insensitive names, including
// aliases, to values of a string enum.
type Normalizer[T ~string] struct {
	values    map[string]T
	def       T
	canonical []string
}

// NewNormalizer accepts the canonical values of an enum; unknown input
// normalizes to def.
func NewNormalizer[T ~string](def T, values ...T) *Normalizer[T] {
	n := &Normalizer[T]{values: make(map[string]T, len(values)), def: def}
	for _, v := range values {
		key := fold(string(v))
		n.values[key] = v
		n.canonical = append(n.canonical, key)
	}
	slices.Sort(n.canonical)
	return n
}

// WithAlias accepts alias as another spelling of v. Aliases are not listed by
// ValidKeys.
func (n *Normalizer[T]) WithAlias(alias string, v T) *Normalizer[T] {
	n.values[fold(alias)] = v
	return n
}

// Lookup resolves raw without falling back to the default.
func (n *Normalizer[T]) Lookup(raw string) (T, bool) {
	v, ok := n.values[fold(raw)]
	return v, ok
}

// Normalize resolves raw, falling back to the default value.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.Lookup(raw); ok {
		return v
	}
	return n.def
}

// NormalizeWithError resolves raw. Empty input yields the default; an unknown
// value is an error listing the canonical names.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if fold(raw) == "" {
		return n.def, nil
	}
	if v, ok := n.Lookup(raw); ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %s", raw, strings.Join(n.canonical, ", "))
}

// ValidKeys returns the canonical names, sorted.
func (n *Normalizer[T]) ValidKeys() []string {
	return slices.Clone(n.canonical)
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
