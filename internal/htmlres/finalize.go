package htmlres

import (
	"context"

	"git.home.luguber.info/inful/htmlres/internal/config"
	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
)

// Minifier compresses a finished HTML document. The configuration is passed
// through untouched.
type Minifier interface {
	Minify(html string, cfg config.MinifyConfig) (string, error)
}

// MinifierFunc adapts a function to Minifier.
type MinifierFunc func(html string, cfg config.MinifyConfig) (string, error)

// Minify calls f.
func (f MinifierFunc) Minify(html string, cfg config.MinifyConfig) (string, error) {
	return f(html, cfg)
}

func minifyStage(m Minifier, cfg config.MinifyConfig) Stage {
	return func(_ context.Context, html string) (string, error) {
		out, err := m.Minify(html, cfg)
		if err != nil {
			if errors.IsClassified(err) {
				return "", err
			}
			return "", errors.WrapError(err, errors.CategoryMinify, "failed to minify html").Build()
		}
		return out, nil
	}
}

func templateContentStage(fn func(string) string) Stage {
	return func(_ context.Context, html string) (string, error) {
		if fn == nil {
			return html, nil
		}
		return fn(html), nil
	}
}
