package mail

import "strings"

// ParseFilters splits a raw sender filter specification into an ordered list
// of trimmed, non-empty filter values. Commas, semicolons and newlines all act
// as separators; runs of separators collapse. Duplicates are preserved.
func ParseFilters(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r'
	})

	var filters []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			filters = append(filters, f)
		}
	}
	return filters
}

// ResolveFilters applies the precedence rule: a request-supplied override, if
// it parses to anything, fully replaces the account default. The second return
// reports whether the override was used.
func ResolveFilters(override, accountDefault string) ([]string, bool) {
	if filters := ParseFilters(override); len(filters) > 0 {
		return filters, true
	}
	return ParseFilters(accountDefault), false
}
