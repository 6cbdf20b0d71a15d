// Package minify adapts github.com/tdewolff/minify/v2 to the HTML finalizer.
package minify

import (
	"regexp"

	tdminify "github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"git.home.luguber.info/inful/htmlres/internal/config"
	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
)

const htmlMimetype = "text/html"

var jsMimetypes = regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`)

// HTMLMinifier minifies documents with tdewolff/minify. It is stateless; a
// fresh minifier is configured per call since the options travel with it.
type HTMLMinifier struct{}

// NewHTMLMinifier returns the default minifier.
func NewHTMLMinifier() *HTMLMinifier { return &HTMLMinifier{} }

// Minify compresses doc according to cfg.
func (HTMLMinifier) Minify(doc string, cfg config.MinifyConfig) (string, error) {
	out, err := newM(cfg).String(htmlMimetype, doc)
	if err != nil {
		return "", errors.MinifyError("failed to minify html").WithCause(err).Build()
	}
	return out, nil
}

func newM(cfg config.MinifyConfig) *tdminify.M {
	m := tdminify.New()
	m.Add(htmlMimetype, &html.Minifier{
		KeepComments:        cfg.KeepComments,
		KeepDefaultAttrVals: cfg.KeepDefaultAttrVals,
		KeepDocumentTags:    cfg.KeepDocumentTags,
		KeepEndTags:         cfg.KeepEndTags,
		KeepQuotes:          cfg.KeepQuotes,
		KeepWhitespace:      cfg.KeepWhitespace,
	})
	// Without these, inline <style> and <script> bodies pass through as-is.
	if cfg.MinifyCSS {
		m.AddFunc("text/css", css.Minify)
	}
	if cfg.MinifyJS {
		m.AddFuncRegexp(jsMimetypes, js.Minify)
	}
	return m
}
