package dialect

import "strings"

// Builder assembles a single SQL statement from space-separated tokens,
// skipping empty ones so optional keywords (UNIQUE, IF EXISTS) can be
// passed conditionally.
type Builder struct {
	parts []string
}

// Build starts a new statement, optionally seeded with a leading keyword
// (e.g. "CREATE TABLE").
func Build(lead string) *Builder {
	b := &Builder{}
	if lead != "" {
		b.parts = append(b.parts, lead)
	}
	return b
}

// P appends one or more non-empty tokens, space-separated from what came
// before.
func (b *Builder) P(tokens ...string) *Builder {
	for _, t := range tokens {
		if t != "" {
			b.parts = append(b.parts, t)
		}
	}
	return b
}

// Wrap appends "(" + inner + ")" as a single token.
func (b *Builder) Wrap(inner string) *Builder {
	b.parts = append(b.parts, "("+inner+")")
	return b
}

// String renders the accumulated tokens.
func (b *Builder) String() string {
	return strings.Join(b.parts, " ")
}

// joinComma joins already-rendered fragments with ", ".
func joinComma(fragments []string) string {
	return strings.Join(fragments, ", ")
}
