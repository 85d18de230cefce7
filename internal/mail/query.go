package mail

import (
	"strings"

	"github.com/emersion/go-imap"
)

// Query is a sender-match search predicate over one or more filter values,
// combined with left-associative OR nesting.
type Query struct {
	filters []string
}

// BuildQuery composes the parsed filters into a search predicate. The filter
// list must be non-empty.
func BuildQuery(filters []string) *Query {
	return &Query{filters: filters}
}

// String renders the predicate in IMAP search syntax, e.g.
// (OR (FROM "a@x.com") (FROM "b@x.com")) for two filters.
func (q *Query) String() string {
	expr := fromClause(q.filters[0])
	for _, f := range q.filters[1:] {
		expr = "(OR " + expr + " " + fromClause(f) + ")"
	}
	return expr
}

// Criteria builds the equivalent go-imap search criteria, nested the same way.
func (q *Query) Criteria() *imap.SearchCriteria {
	criteria := fromCriteria(q.filters[0])
	for _, f := range q.filters[1:] {
		or := imap.NewSearchCriteria()
		or.Or = [][2]*imap.SearchCriteria{{criteria, fromCriteria(f)}}
		criteria = or
	}
	return criteria
}

func fromClause(value string) string {
	return `(FROM "` + escapeLiteral(value) + `")`
}

func fromCriteria(value string) *imap.SearchCriteria {
	criteria := imap.NewSearchCriteria()
	criteria.Header.Add("From", value)
	return criteria
}

// escapeLiteral escapes a filter value for embedding in a quoted search
// literal. Unescaped quotes would corrupt the command syntax.
func escapeLiteral(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `"`, `\"`)
}
