package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
)

const fixtureConfig = `filename: index.html
template: src/index.html
favicon: src/favicon.ico
chunks:
  vendor:
  app:
    inline: {css: true}
replace:
  - search: __ENV__
    replace: test
output:
  directory: dist
`

const fixtureManifest = `{
  "publicPath": "/static/",
  "chunks": [
    {"name": "vendor", "files": ["vendor.1.js"]},
    {"name": "app", "files": ["app.2.js", "app.2.css"]}
  ]
}`

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

// fixtureProject lays out a config, template, favicon and a built output
// directory. It returns the config path.
func fixtureProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFixture(t, dir, "htmlres.yaml", fixtureConfig)
	writeFixture(t, dir, "src/index.html", "<html><head><title>__ENV__</title></head><body></body></html>")
	writeFixture(t, dir, "src/favicon.ico", "ICO")
	writeFixture(t, dir, "dist/manifest.json", fixtureManifest)
	writeFixture(t, dir, "dist/vendor.1.js", "var v;")
	writeFixture(t, dir, "dist/app.2.js", "var a;")
	writeFixture(t, dir, "dist/app.2.css", "body{}")
	return filepath.Join(dir, "htmlres.yaml")
}

func TestBuildCommand(t *testing.T) {
	cfgPath := fixtureProject(t)
	dir := filepath.Dir(cfgPath)
	reportPath := filepath.Join(dir, "out", "report.json")
	metricsPath := filepath.Join(dir, "out", "htmlres.prom")
	require.NoError(t, os.MkdirAll(filepath.Dir(metricsPath), 0o755))

	var out bytes.Buffer
	cmd := &BuildCmd{Report: reportPath, MetricsFile: metricsPath}
	require.NoError(t, cmd.Run(&Global{Out: &out}, &CLI{Config: cfgPath}))

	got, err := os.ReadFile(filepath.Join(dir, "dist", "index.html"))
	require.NoError(t, err)
	want := "<html><head><title>test</title>" +
		`<link rel="shortcut icon" type="image/x-icon" href="/static/favicon.ico">` + "\n" +
		`<link rel="icon" type="image/x-icon" href="/static/favicon.ico">` + "\n" +
		"<style>body{}</style></head><body>" +
		`<script type="text/javascript" src="/static/vendor.1.js"></script>` + "\n" +
		`<script type="text/javascript" src="/static/app.2.js"></script>` + "\n" +
		"</body></html>"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("index.html mismatch (-want +got):\n%s", diff)
	}

	icon, err := os.ReadFile(filepath.Join(dir, "dist", "favicon.ico"))
	require.NoError(t, err)
	assert.Equal(t, "ICO", string(icon))

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "success", report["outcome"])

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `htmlres_tags_total{inline="true",kind="stylesheet"} 1`)
	assert.Contains(t, string(prom), `htmlres_emit_outcomes_total{outcome="success"} 1`)

	assert.Contains(t, out.String(), "outcome=success")
}

func TestBuildCommandStrict(t *testing.T) {
	cfgPath := fixtureProject(t)
	dir := filepath.Dir(cfgPath)
	writeFixture(t, dir, "dist/manifest.json", `{"publicPath": "/", "chunks": [{"name": "vendor", "files": ["vendor.1.js"]}]}`)

	var out bytes.Buffer
	require.NoError(t, (&BuildCmd{}).Run(&Global{Out: &out}, &CLI{Config: cfgPath}))
	assert.Contains(t, out.String(), "MISSING_CHUNK")

	err := (&BuildCmd{Strict: true}).Run(&Global{Out: &out}, &CLI{Config: cfgPath})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryBuild))
}

func TestBuildCommandMissingConfig(t *testing.T) {
	err := (&BuildCmd{}).Run(&Global{Out: &bytes.Buffer{}}, &CLI{Config: filepath.Join(t.TempDir(), "nope.yaml")})
	require.Error(t, err)
	assert.Equal(t, 4, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestVerifyCommand(t *testing.T) {
	cfgPath := fixtureProject(t)
	dir := filepath.Dir(cfgPath)
	g := &Global{Out: &bytes.Buffer{}}
	require.NoError(t, (&BuildCmd{}).Run(g, &CLI{Config: cfgPath}))

	var out bytes.Buffer
	require.NoError(t, (&VerifyCmd{}).Run(&Global{Out: &out}, &CLI{Config: cfgPath}))
	assert.Contains(t, out.String(), "0 problems")

	require.NoError(t, os.Remove(filepath.Join(dir, "dist", "vendor.1.js")))
	out.Reset()
	err := (&VerifyCmd{}).Run(&Global{Out: &out}, &CLI{Config: cfgPath})
	require.Error(t, err)
	assert.Contains(t, out.String(), `/static/vendor.1.js`)
	assert.Contains(t, out.String(), "missing_file")
}

func TestChunksCommand(t *testing.T) {
	cfgPath := fixtureProject(t)

	var out bytes.Buffer
	require.NoError(t, (&ChunksCmd{}).Run(&Global{Out: &out}, &CLI{Config: cfgPath}))
	assert.Equal(t, "chunk1: vendor\nchunk2: app\n", out.String())

	out.Reset()
	manifest := filepath.Join(filepath.Dir(cfgPath), "dist", "manifest.json")
	require.NoError(t, (&ChunksCmd{Manifest: manifest}).Run(&Global{Out: &out}, &CLI{Config: "unused.yaml"}))
	assert.Equal(t, "chunk1: vendor\nchunk2: app\n", out.String())
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, (&InitCmd{Output: dir}).Run(&Global{Out: &out}, &CLI{Config: "ignored.yaml"}))
	assert.FileExists(t, filepath.Join(dir, "htmlres.yaml"))
	assert.Contains(t, out.String(), "initialized successfully")

	err := (&InitCmd{Output: dir}).Run(&Global{Out: &out}, &CLI{})
	require.Error(t, err)
	require.NoError(t, (&InitCmd{Output: dir, Force: true}).Run(&Global{Out: &out}, &CLI{}))
}

func TestWatchCommandBuildsUntilCanceled(t *testing.T) {
	cfgPath := fixtureProject(t)
	dir := filepath.Dir(cfgPath)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var out bytes.Buffer
	go func() {
		done <- (&WatchCmd{Debounce: 10 * time.Millisecond}).run(ctx, &Global{Out: &syncWriter{w: &out}}, &CLI{Config: cfgPath})
	}()

	index := filepath.Join(dir, "dist", "index.html")
	require.Eventually(t, func() bool {
		_, err := os.Stat(index)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	writeFixture(t, dir, "src/index.html", "<html><head></head><body>edited</body></html>")
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(index)
		return err == nil && bytes.Contains(data, []byte("edited"))
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestKongParsing(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)

	kctx, err := parser.Parse([]string{"-c", "custom.yaml", "build", "--report", "r.json", "--metrics-file", "m.prom", "--strict"})
	require.NoError(t, err)
	assert.Equal(t, "build", kctx.Command())
	assert.Equal(t, "custom.yaml", cli.Config)
	assert.Equal(t, "r.json", cli.Build.Report)
	assert.Equal(t, "m.prom", cli.Build.MetricsFile)
	assert.True(t, cli.Build.Strict)

	kctx, err = parser.Parse([]string{"verify", "a.html", "b.html", "--public-path", "/x/"})
	require.NoError(t, err)
	assert.Equal(t, "verify <files>", kctx.Command())
	assert.Equal(t, []string{"a.html", "b.html"}, cli.Verify.Files)

	kctx, err = parser.Parse([]string{"watch", "--debounce", "1s", "--metrics-addr", ":9464"})
	require.NoError(t, err)
	assert.Equal(t, "watch", kctx.Command())
	assert.Equal(t, time.Second, cli.Watch.Debounce)
}
