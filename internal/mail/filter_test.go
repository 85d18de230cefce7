package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "single",
			raw:  "a@x.com",
			want: []string{"a@x.com"},
		},
		{
			name: "comma separated",
			raw:  "a@x.com, b@x.com",
			want: []string{"a@x.com", "b@x.com"},
		},
		{
			name: "mixed delimiters",
			raw:  "a@x.com; b@x.com\nc@x.com",
			want: []string{"a@x.com", "b@x.com", "c@x.com"},
		},
		{
			name: "delimiter runs collapse",
			raw:  "a@x.com,;\n,b@x.com",
			want: []string{"a@x.com", "b@x.com"},
		},
		{
			name: "tokens are trimmed",
			raw:  "  a@x.com ,\t b@x.com  ",
			want: []string{"a@x.com", "b@x.com"},
		},
		{
			name: "duplicates preserved",
			raw:  "a@x.com,a@x.com",
			want: []string{"a@x.com", "a@x.com"},
		},
		{
			name: "empty",
			raw:  "",
			want: nil,
		},
		{
			name: "whitespace and delimiters only",
			raw:  " ,; \n ",
			want: nil,
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseFilters(tc.raw))
		})
	}
}

func TestResolveFilters(t *testing.T) {
	t.Run("override replaces default", func(t *testing.T) {
		filters, usedOverride := ResolveFilters("c@x.com", "a@x.com, b@x.com")
		assert.Equal(t, []string{"c@x.com"}, filters)
		assert.True(t, usedOverride)
	})

	t.Run("empty override falls back to default", func(t *testing.T) {
		filters, usedOverride := ResolveFilters("", "a@x.com, b@x.com")
		assert.Equal(t, []string{"a@x.com", "b@x.com"}, filters)
		assert.False(t, usedOverride)
	})

	t.Run("whitespace override falls back to default", func(t *testing.T) {
		filters, usedOverride := ResolveFilters("  , ", "a@x.com")
		assert.Equal(t, []string{"a@x.com"}, filters)
		assert.False(t, usedOverride)
	})

	t.Run("nothing resolves to empty set", func(t *testing.T) {
		filters, usedOverride := ResolveFilters("", "")
		assert.Empty(t, filters)
		assert.False(t, usedOverride)
	})
}
