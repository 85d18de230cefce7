package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryString(t *testing.T) {
	tests := []struct {
		name    string
		filters []string
		want    string
	}{
		{
			name:    "single filter has no OR wrapper",
			filters: []string{"a@x.com"},
			want:    `(FROM "a@x.com")`,
		},
		{
			name:    "two filters",
			filters: []string{"a@x.com", "b@x.com"},
			want:    `(OR (FROM "a@x.com") (FROM "b@x.com"))`,
		},
		{
			name:    "three filters nest left-associative",
			filters: []string{"a@x.com", "b@x.com", "c@x.com"},
			want:    `(OR (OR (FROM "a@x.com") (FROM "b@x.com")) (FROM "c@x.com"))`,
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BuildQuery(tc.filters).String())
		})
	}
}

func TestQueryStringORCount(t *testing.T) {
	// k filters produce exactly k-1 OR wrappers
	filters := []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com"}
	for k := 1; k <= len(filters); k++ {
		got := BuildQuery(filters[:k]).String()
		assert.Equal(t, k-1, strings.Count(got, "OR "), "k=%d: %s", k, got)
	}
}

func TestQueryStringEscapesQuotes(t *testing.T) {
	got := BuildQuery([]string{`evil"sender`}).String()
	assert.Equal(t, `(FROM "evil\"sender")`, got)

	// the rendered predicate must keep its literal quotes balanced
	unescaped := strings.Count(got, `"`) - strings.Count(got, `\"`)
	assert.Zero(t, unescaped%2, "unbalanced quotes in %s", got)
}

func TestQueryStringEscapesBackslash(t *testing.T) {
	got := BuildQuery([]string{`a\"b`}).String()
	assert.Equal(t, `(FROM "a\\\"b")`, got)
}

func TestQueryCriteria(t *testing.T) {
	t.Run("single filter is a plain header match", func(t *testing.T) {
		criteria := BuildQuery([]string{"a@x.com"}).Criteria()
		assert.Empty(t, criteria.Or)
		assert.Equal(t, []string{"a@x.com"}, criteria.Header.Values("From"))
	})

	t.Run("three filters nest two OR pairs", func(t *testing.T) {
		criteria := BuildQuery([]string{"a@x.com", "b@x.com", "c@x.com"}).Criteria()

		// outermost OR joins (a OR b) and c
		assert.Len(t, criteria.Or, 1)
		left, right := criteria.Or[0][0], criteria.Or[0][1]
		assert.Equal(t, []string{"c@x.com"}, right.Header.Values("From"))

		assert.Len(t, left.Or, 1)
		assert.Equal(t, []string{"a@x.com"}, left.Or[0][0].Header.Values("From"))
		assert.Equal(t, []string{"b@x.com"}, left.Or[0][1].Header.Values("From"))
	})
}
