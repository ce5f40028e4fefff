// Package naming implements the identifier casing and quoting rules shared
// by every dialect compiler, plus two per-backend overlays: H2 v2's
// reserved-word backtick-quoting and SQL Server's bracket quoting.
package naming

import "strings"

// ToSQLName converts an identifier-like value by replacing "-" with "_",
// the one transformation every backend applies before emitting a name.
func ToSQLName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// ToSQLList joins identifiers with ", " after applying ToSQLName to each.
func ToSQLList(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = ToSQLName(n)
	}
	return strings.Join(out, ", ")
}

// ToSQLListRaw joins values with ", " without renaming them (used for
// already-quoted/rewritten fragments).
func ToSQLListRaw(names []string) string {
	return strings.Join(names, ", ")
}

// Quoter renders an identifier the way one backend would in DDL text.
// Suppress asks for the bare (unquoted) name even if it would otherwise be
// reserved-word-quoted — used in contexts like introspection queries where
// only the bare identifier is wanted.
type Quoter interface {
	Quote(name string, suppress bool) string
}

// H2v2Quoter upper-cases names and wraps reserved words in backticks.
type H2v2Quoter struct{ Reserved map[string]bool }

// NewH2v2Quoter returns a quoter for the reserved words H2 v2 requires
// backtick-quoting: VALUE, USER.
func NewH2v2Quoter() H2v2Quoter {
	return H2v2Quoter{Reserved: map[string]bool{"VALUE": true, "USER": true}}
}

func (q H2v2Quoter) Quote(name string, suppress bool) string {
	upper := strings.ToUpper(ToSQLName(name))
	if suppress || !q.Reserved[upper] {
		return upper
	}
	return "`" + upper + "`"
}

// SQLServerQuoter wraps reserved words in brackets.
type SQLServerQuoter struct{ Reserved map[string]bool }

// NewSQLServerQuoter returns a quoter for the reserved words SQL Server
// requires bracket-quoting: public, user.
func NewSQLServerQuoter() SQLServerQuoter {
	return SQLServerQuoter{Reserved: map[string]bool{"public": true, "user": true}}
}

func (q SQLServerQuoter) Quote(name string, suppress bool) string {
	n := ToSQLName(name)
	if suppress || !q.Reserved[strings.ToLower(n)] {
		return n
	}
	return "[" + n + "]"
}

// PlainQuoter performs only the "-"->"_" rename, the same one the MySQL,
// PostgreSQL and H2 v1 compilers apply by calling ToSQLName directly; none
// of them reserved-word-quote identifiers.
type PlainQuoter struct{}

func (PlainQuoter) Quote(name string, _ bool) string { return ToSQLName(name) }
