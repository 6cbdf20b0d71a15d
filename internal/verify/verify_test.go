package verify

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestExtractRefs(t *testing.T) {
	refs, err := ExtractRefs(strings.NewReader(`<html><head>
<link rel="Stylesheet" href=" /static/app.css ">
<link rel="icon" href="/static/favicon.ico">
<script>inline()</script>
</head><body><script src="/static/app.js"></script><a href="x.html">x</a></body></html>`))
	require.NoError(t, err)

	require.Len(t, refs, 3)
	assert.Equal(t, Ref{URL: "/static/app.css", Tag: "link", Attribute: "href", Rel: "stylesheet"}, refs[0])
	assert.Equal(t, "icon", refs[1].Rel)
	assert.Equal(t, Ref{URL: "/static/app.js", Tag: "script", Attribute: "src"}, refs[2])
}

func TestVerifierFile(t *testing.T) {
	out := t.TempDir()
	write(t, out, "app.1.js", "")
	write(t, out, "css/app.1.css", "")
	doc := write(t, out, "index.html", `<html><head>
<link rel="stylesheet" href="/static/css/app.1.css?v=1">
<link rel="stylesheet" href="https://cdn.example.com/x.css">
<link rel="icon" href="/static/favicon.ico">
</head><body>
<script src="/static/app.1.js"></script>
<script src="/static/missing.js"></script>
<script src="app?__inline"></script>
<script src="/elsewhere/app.js"></script>
<script src="/static/../../etc/passwd"></script>
</body></html>`)

	v := &Verifier{OutputDir: out, PublicPath: "/static/"}
	res, err := v.File(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, 8, res.Refs)
	assert.Equal(t, 1, res.Skipped)
	assert.False(t, res.OK())

	reasons := map[string]Reason{}
	for _, p := range res.Problems {
		reasons[p.Ref.URL] = p.Reason
	}
	assert.Equal(t, map[string]Reason{
		"/static/favicon.ico":      ReasonMissingFile,
		"/static/missing.js":       ReasonMissingFile,
		"app?__inline":             ReasonInlineMarker,
		"/elsewhere/app.js":        ReasonUnprefixedPath,
		"/static/../../etc/passwd": ReasonOutsideOutput,
	}, reasons)
}

func TestVerifierFilesKeepsOrder(t *testing.T) {
	out := t.TempDir()
	write(t, out, "a.js", "")
	var paths []string
	for _, name := range []string{"one.html", "two.html", "three.html", "four.html", "five.html"} {
		body := `<script src="/a.js"></script>`
		if name == "three.html" {
			body = `<script src="/b.js"></script>`
		}
		paths = append(paths, write(t, out, name, body))
	}

	v := &Verifier{OutputDir: out, PublicPath: "/", Concurrency: 2}
	results, err := v.Files(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, len(paths))
	for i, res := range results {
		assert.Equal(t, paths[i], res.File)
		assert.Equal(t, i != 2, res.OK(), res.File)
	}
}

func TestVerifierFilesMissingDocument(t *testing.T) {
	v := &Verifier{OutputDir: t.TempDir()}
	_, err := v.Files(context.Background(), []string{filepath.Join(t.TempDir(), "nope.html")})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}
