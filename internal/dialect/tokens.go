package dialect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ternmigrate/tern/internal/command"
)

var charsetTokenRE = regexp.MustCompile(`(?i)^(CHARACTER SET|COLLATE)\b`)

// stripCharsetTokens drops tokens matching CHARACTER SET … / COLLATE …
// (case-insensitive), unsupported on H2.
func stripCharsetTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if charsetTokenRE.MatchString(strings.TrimSpace(t)) {
			continue
		}
		out = append(out, t)
	}
	return out
}

var columnLengthSuffixRE = regexp.MustCompile(`\(\d+(,\d+)?\)$`)

// stripColumnNameLengthSuffix defensively removes a trailing length
// specifier erroneously attached to a column *name* rather than its type,
// e.g. "amount(10,2)" -> "amount".
func stripColumnNameLengthSuffix(name string) string {
	return columnLengthSuffixRE.ReplaceAllString(name, "")
}

// h2SanitizeColumn strips unsupported CHARACTER SET/COLLATE tokens and the
// defensive column-name length suffix common to both H2 versions. v1 also
// maps the "DEFAULT NULL" token to "NULL".
func h2SanitizeColumn(col command.Column, isV1 bool) command.Column {
	tokens := stripCharsetTokens(col.Tokens)
	for i, t := range tokens {
		if isV1 && strings.EqualFold(strings.TrimSpace(t), "DEFAULT NULL") {
			tokens[i] = "NULL"
		}
	}
	return command.Column{Name: stripColumnNameLengthSuffix(col.Name), Tokens: tokens}
}

// sqlServerTokenRewrites is the token-level remapping table used by SQL
// Server's create-table column-spec sanitizer.
var sqlServerTokenRewrites = []struct {
	match   *regexp.Regexp
	rewrite string
}{
	{regexp.MustCompile(`(?i)^auto_increment$`), "identity"},
	{regexp.MustCompile(`(?i)^(blob|longblob)$`), "varbinary(max)"},
	{regexp.MustCompile(`(?i)^(boolean|tinyint\(1\))$`), "bit"},
	{regexp.MustCompile(`(?i)^(text|longtext|mediumtext|shorttext)$`), "varchar(max)"},
	{regexp.MustCompile(`(?i)^timestamp$`), "datetime"},
	{regexp.MustCompile(`(?i)^double$`), "float"},
	{regexp.MustCompile(`(?i)^int\(\d+\)$`), "int"},
	{regexp.MustCompile(`(?i)^tinyint\(\d+\)$`), "tinyint"},
}

var enumRE = regexp.MustCompile(`(?i)^ENUM\((.*)\)$`)
var varbinaryRE = regexp.MustCompile(`(?i)^VARBINARY\((\d+)\)$`)

// sqlServerRewriteToken applies the remapping table plus the two
// pattern-based rewrites (ENUM(...), VARBINARY(n>8000)) to one token. col is
// the owning column name, needed to build the ENUM CHECK constraint.
func sqlServerRewriteToken(col, tok string) string {
	trimmed := strings.TrimSpace(tok)
	if charsetTokenRE.MatchString(trimmed) {
		return ""
	}
	if m := enumRE.FindStringSubmatch(trimmed); m != nil {
		values := splitEnumValues(m[1])
		max := 0
		for _, v := range values {
			if l := len(strings.Trim(v, "'\" ")); l > max {
				max = l
			}
		}
		return fmt.Sprintf("VARCHAR(%d) CHECK (%s IN(%s))", max, col, strings.Join(values, ","))
	}
	if m := varbinaryRE.FindStringSubmatch(trimmed); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 8000 {
			return "varbinary(max)"
		}
		return trimmed
	}
	for _, r := range sqlServerTokenRewrites {
		if r.match.MatchString(trimmed) {
			return r.rewrite
		}
	}
	return trimmed
}

// splitEnumValues splits "'a','b','c'" into ["'a'","'b'","'c'"], respecting
// quoted commas.
func splitEnumValues(s string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false
	for _, r := range s {
		switch {
		case r == '\'':
			inQuote = !inQuote
			cur.WriteRune(r)
		case r == ',' && !inQuote:
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		out = append(out, strings.TrimSpace(cur.String()))
	}
	return out
}

// sqlServerRewriteColumn rewrites every token of a column spec.
func sqlServerRewriteColumn(col command.Column) command.Column {
	tokens := make([]string, 0, len(col.Tokens))
	for _, t := range col.Tokens {
		rw := sqlServerRewriteToken(col.Name, t)
		if rw != "" {
			tokens = append(tokens, rw)
		}
	}
	return command.Column{Name: col.Name, Tokens: tokens}
}
