package htmlres

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"git.home.luguber.info/inful/htmlres/internal/config"
	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
)

type compiledRule struct {
	config.ReplaceRule
	re *regexp.Regexp
}

func compileReplaceRules(rules config.ReplaceRules) ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		cr := compiledRule{ReplaceRule: r}
		if r.Regexp {
			re, err := regexp.Compile(r.Search)
			if err != nil {
				return nil, errors.WrapError(err, errors.CategoryValidation, fmt.Sprintf("replace rule %d is not a valid regexp", i)).
					Fatal().
					WithContext("option", "replace").
					Build()
			}
			cr.re = re
		}
		out = append(out, cr)
	}
	return out, nil
}

// apply runs one rule over s. Without All only the first match is replaced.
func (r compiledRule) apply(s string) string {
	if r.re == nil {
		return replaceLiteral(s, r.Search, r.Replace, r.All)
	}
	if r.All {
		return r.re.ReplaceAllString(s, r.Replace)
	}
	loc := r.re.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}
	expanded := r.re.ExpandString(nil, r.Replace, s, loc)
	return s[:loc[0]] + string(expanded) + s[loc[1]:]
}

// replaceLiteral replaces the first occurrence of search, or every one when
// all is set. An empty search matches before every rune and at the end.
func replaceLiteral(s, search, repl string, all bool) string {
	if !strings.Contains(repl, "$") {
		n := 1
		if all {
			n = -1
		}
		return strings.Replace(s, search, repl, n)
	}

	var b strings.Builder
	start := 0
	for {
		i := strings.Index(s[start:], search)
		if i < 0 {
			break
		}
		i += start
		j := i + len(search)
		b.WriteString(s[start:i])
		b.WriteString(expandLiteral(repl, s, i, j))
		start = j
		if !all {
			break
		}
		if search == "" {
			if j >= len(s) {
				break
			}
			_, size := utf8.DecodeRuneInString(s[j:])
			b.WriteString(s[j : j+size])
			start = j + size
		}
	}
	b.WriteString(s[start:])
	return b.String()
}

// expandLiteral resolves $$, $&, $` and $' in repl for the match s[i:j].
func expandLiteral(repl, s string, i, j int) string {
	var b strings.Builder
	for k := 0; k < len(repl); k++ {
		c := repl[k]
		if c != '$' || k+1 == len(repl) {
			b.WriteByte(c)
			continue
		}
		switch repl[k+1] {
		case '$':
			b.WriteByte('$')
		case '&':
			b.WriteString(s[i:j])
		case '`':
			b.WriteString(s[:i])
		case '\'':
			b.WriteString(s[j:])
		default:
			b.WriteByte(c)
			continue
		}
		k++
	}
	return b.String()
}

// ApplyReplaceRules applies rules in order; each sees the previous output.
func ApplyReplaceRules(s string, rules config.ReplaceRules) (string, error) {
	compiled, err := compileReplaceRules(rules)
	if err != nil {
		return "", err
	}
	return applyCompiled(s, compiled), nil
}

func applyCompiled(s string, rules []compiledRule) string {
	for _, r := range rules {
		s = r.apply(s)
	}
	return s
}

func replaceStage(rules []compiledRule) Stage {
	return func(_ context.Context, html string) (string, error) {
		return applyCompiled(html, rules), nil
	}
}
