package htmlres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/htmlres/internal/config"
	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
)

func TestApplyReplaceRules(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		rules config.ReplaceRules
		want  string
	}{
		{
			name: "empty rule list",
			in:   "unchanged",
			want: "unchanged",
		},
		{
			name:  "literal replaces first occurrence",
			in:    "a-a-a",
			rules: config.ReplaceRules{{Search: "a", Replace: "b"}},
			want:  "b-a-a",
		},
		{
			name:  "literal all",
			in:    "a-a-a",
			rules: config.ReplaceRules{{Search: "a", Replace: "b", All: true}},
			want:  "b-b-b",
		},
		{
			name:  "literal is not a pattern",
			in:    "1+1 and 11",
			rules: config.ReplaceRules{{Search: "1+1", Replace: "2"}},
			want:  "2 and 11",
		},
		{
			name:  "literal dollar patterns",
			in:    "<p>cost</p>",
			rules: config.ReplaceRules{{Search: "cost", Replace: "$$5 ($&)"}},
			want:  "<p>$5 (cost)</p>",
		},
		{
			name:  "literal surrounding text patterns",
			in:    "a-b",
			rules: config.ReplaceRules{{Search: "-", Replace: "[$`|$']"}},
			want:  "a[a|b]b",
		},
		{
			name:  "literal unknown dollar kept",
			in:    "x",
			rules: config.ReplaceRules{{Search: "x", Replace: "$1$"}},
			want:  "$1$",
		},
		{
			name:  "literal all with dollar patterns",
			in:    "a a",
			rules: config.ReplaceRules{{Search: "a", Replace: "<$&>", All: true}},
			want:  "<a> <a>",
		},
		{
			name:  "empty search prepends",
			in:    "body",
			rules: config.ReplaceRules{{Search: "", Replace: "<!-- x -->"}},
			want:  "<!-- x -->body",
		},
		{
			name:  "empty search all",
			in:    "ab",
			rules: config.ReplaceRules{{Search: "", Replace: "-$&", All: true}},
			want:  "-a-b-",
		},
		{
			name: "rules compose in order",
			in:   "__ENV__",
			rules: config.ReplaceRules{
				{Search: "__ENV__", Replace: "__PROD__"},
				{Search: "__PROD__", Replace: "production"},
			},
			want: "production",
		},
		{
			name: "later rule does not run first",
			in:   "x",
			rules: config.ReplaceRules{
				{Search: "y", Replace: "z"},
				{Search: "x", Replace: "y"},
			},
			want: "y",
		},
		{
			name:  "regexp first match with expansion",
			in:    "v1 v2",
			rules: config.ReplaceRules{{Search: `v(\d)`, Replace: "version-$1", Regexp: true}},
			want:  "version-1 v2",
		},
		{
			name:  "regexp all",
			in:    "v1 v2",
			rules: config.ReplaceRules{{Search: `v(\d)`, Replace: "[$1]", Regexp: true, All: true}},
			want:  "[1] [2]",
		},
		{
			name:  "regexp no match",
			in:    "abc",
			rules: config.ReplaceRules{{Search: `\d+`, Replace: "n", Regexp: true}},
			want:  "abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyReplaceRules(tt.in, tt.rules)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyReplaceRulesInvalidRegexp(t *testing.T) {
	_, err := ApplyReplaceRules("x", config.ReplaceRules{{Search: "(", Regexp: true}})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}
