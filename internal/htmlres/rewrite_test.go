package htmlres

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/htmlres/internal/compilation"
	"git.home.luguber.info/inful/htmlres/internal/config"
)

func htmlModeOptions(t *testing.T, template string) *config.Options {
	opts := testOptions(t, template, config.ChunkNames())
	opts.Mode = config.ModeHTML
	return opts
}

func TestRewriteInlineScript(t *testing.T) {
	opts := htmlModeOptions(t, `<body><script src="app?__inline"></script></body>`)
	comp := compilation.New("/static/")
	comp.AddChunk("app", "app.js")
	comp.SetAsset(compilation.StringAsset("app.js", "console.log(1)"))

	got, report := emitHTML(t, opts, comp)

	assert.Equal(t, `<body><script>console.log(1)</script></body>`, got)
	assert.Equal(t, 1, report.InlinedAssets)
	assert.Empty(t, report.Diagnostics)
}

func TestRewriteInlineStylesheetChildren(t *testing.T) {
	comp := compilation.New("/")
	comp.AddChunk("main", "main.abc.css", "main.abc.js")
	css := compilation.StringAsset("main.abc.css", "HASHED")
	css.Children = []compilation.Source{
		compilation.StaticSource([]byte("a{color:red}")),
		compilation.StaticSource([]byte("b{color:blue}")),
	}
	comp.SetAsset(css)

	pass := newTestPass(&config.Options{Mode: config.ModeHTML}, comp)
	out, err := pass.rewrite(context.Background(), `<link rel="stylesheet" href='main?__inline&v=2'>`)
	require.NoError(t, err)
	assert.Equal(t, `<style>a{color:red}b{color:blue}</style>`, out)
}

func TestRewriteInlineStylesheetWithoutChildren(t *testing.T) {
	comp := compilation.New("/")
	comp.AddChunk("main", "main.css")
	comp.SetAsset(compilation.StringAsset("main.css", "p{}"))

	pass := newTestPass(&config.Options{Mode: config.ModeHTML}, comp)
	out, err := pass.rewrite(context.Background(), `<LINK REL=stylesheet HREF=main?__inline>`)
	require.NoError(t, err)
	assert.Equal(t, `<style>p{}</style>`, out)
}

func TestRewriteReferencesPreserveAttributes(t *testing.T) {
	cssPath := "//cdn.example.com/css/"
	comp := compilation.New("/static/")
	comp.AddChunk("main", "main.abc.css")
	comp.AddChunk("app", "app.def.js", "app.def.css")

	opts := &config.Options{Mode: config.ModeHTML, CSSPublicPath: &cssPath}
	pass := newTestPass(opts, comp)

	in := `<link rel="stylesheet" href="main" media="all">
<link rel="icon" href="favicon.ico">
<script src="app" defer></script>
<script src="https://cdn.example.com/lib.js"></script>
<a href="main">main</a>
`
	want := `<link rel="stylesheet" href="//cdn.example.com/css/main.abc.css" media="all">
<link rel="icon" href="/static/favicon.ico">
<script src="/static/app.def.js" defer></script>
<script src="https://cdn.example.com/lib.js"></script>
<a href="main">main</a>
`
	out, err := pass.rewrite(context.Background(), in)
	require.NoError(t, err)
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, pass.report.RewrittenURLs)
	assert.Empty(t, pass.report.Diagnostics)
}

func TestRewriteIsIdempotent(t *testing.T) {
	comp := compilation.New("/static/")
	comp.AddChunk("main", "main.abc.css")
	comp.AddChunk("app", "app.def.js")
	pass := newTestPass(&config.Options{Mode: config.ModeHTML}, comp)

	in := `<head><link rel="stylesheet" href="main"><link rel="shortcut icon" href="favicon.ico"></head>` +
		`<body><script src="app"></script></body>`

	once, err := pass.rewrite(context.Background(), in)
	require.NoError(t, err)
	twice, err := pass.rewrite(context.Background(), once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Contains(t, twice, `href="/static/favicon.ico"`)
	assert.NotContains(t, twice, "/static//static/")
}

func TestRewriteTaggedAsset(t *testing.T) {
	comp := compilation.New("/static/")
	vendor := compilation.StringAsset("lib/vendor.123.js", "")
	vendor.Chunk = "vendor.js"
	comp.SetAsset(vendor)

	opts := htmlModeOptions(t, `<script src="vendor"></script>`)
	got, report := emitHTML(t, opts, comp)

	assert.Equal(t, `<script src="/static/lib/vendor.123.js"></script>`, got)
	assert.Contains(t, report.Chunks, "vendor")
}

func TestRewriteInlineMissLeavesTag(t *testing.T) {
	comp := compilation.New("/")
	comp.AddChunk("app", "app.css")
	pass := newTestPass(&config.Options{Mode: config.ModeHTML}, comp)

	in := `<script src="app?__inline"></script><script src="ghost?__inline"></script>`
	out, err := pass.rewrite(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, in, out)
	assert.Len(t, pass.report.DiagnosticsWithCode(DiagMissingFile), 1)
	assert.Len(t, pass.report.DiagnosticsWithCode(DiagMissingChunk), 1)
}

func TestRewriteReferenceMissingFileIsDiagnostic(t *testing.T) {
	comp := compilation.New("/")
	comp.AddChunk("styles", "styles.css")
	pass := newTestPass(&config.Options{Mode: config.ModeHTML}, comp)

	in := `<link rel="stylesheet" href="styles"><script src="styles"></script>`
	out, err := pass.rewrite(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, `<link rel="stylesheet" href="/styles.css"><script src="styles"></script>`, out)
	diags := pass.report.DiagnosticsWithCode(DiagMissingFile)
	require.Len(t, diags, 1)
	assert.Equal(t, "js", diags[0].Extension)
}

func TestRewriteIconChunk(t *testing.T) {
	comp := compilation.New("/static/")
	comp.AddChunk("icon", "icon.9f.ico")
	pass := newTestPass(&config.Options{Mode: config.ModeHTML}, comp)

	out, err := pass.rewrite(context.Background(), `<link rel="icon" href="icon">`)
	require.NoError(t, err)
	assert.Equal(t, `<link rel="icon" href="/static/icon.9f.ico">`, out)
	assert.Empty(t, pass.report.Diagnostics)
}

func TestRewriteMultilineScriptTag(t *testing.T) {
	comp := compilation.New("/")
	comp.AddChunk("app", "app.1.js")
	pass := newTestPass(&config.Options{Mode: config.ModeHTML}, comp)

	out, err := pass.rewrite(context.Background(), "<script src=\"app\">\n  </script>")
	require.NoError(t, err)
	assert.Equal(t, "<script src=\"/app.1.js\">\n  </script>", out)
}
