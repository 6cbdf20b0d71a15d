package htmlres

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/htmlres/internal/compilation"
	"git.home.luguber.info/inful/htmlres/internal/config"
	"git.home.luguber.info/inful/htmlres/internal/metrics"
)

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// testOptions returns options for a template written to a temp dir.
func testOptions(t *testing.T, template string, chunks config.ChunkSpec) *config.Options {
	t.Helper()
	return &config.Options{
		Filename: "index.html",
		Template: writeFile(t, t.TempDir(), "index.html", template),
		Chunks:   chunks,
	}
}

// emitHTML runs one emit pass and returns the stored document.
func emitHTML(t *testing.T, opts *config.Options, comp *compilation.Compilation, options ...Option) (string, *Report) {
	t.Helper()
	p, err := New(opts, append([]Option{WithLogger(discardLogger())}, options...)...)
	require.NoError(t, err)
	report, err := p.Emit(context.Background(), comp)
	require.NoError(t, err)
	data, err := comp.Content(report.HTMLAsset)
	require.NoError(t, err)
	return string(data), report
}

// newTestPass builds the per-pass state directly for stage-level tests.
func newTestPass(opts *config.Options, comp *compilation.Compilation) *emitPass {
	o := *opts
	o.ApplyDefaults()
	requested := AllChunks
	if o.Mode == config.ModeDefault {
		requested = RequestedSet(o.Chunks.Names())
	}
	return &emitPass{
		opts:       &o,
		comp:       comp,
		assets:     BuildAssetMap(comp, requested),
		publicPath: comp.PublicPath,
		report:     newReport("test", o.Mode),
		recorder:   metrics.NoopRecorder{},
		logger:     discardLogger(),
	}
}

func records(entries ...config.ChunkEntry) config.ChunkSpec {
	return config.ChunkRecordSpec(entries...)
}

func chunk(name string, o config.ChunkOptions) config.ChunkEntry {
	return config.ChunkEntry{Name: name, Options: &o}
}

type fakeRecorder struct {
	mu       sync.Mutex
	stages   []string
	tags     map[string]int
	misses   map[metrics.MissKind]int
	outcomes map[metrics.BuildOutcome]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{
		tags:     map[string]int{},
		misses:   map[metrics.MissKind]int{},
		outcomes: map[metrics.BuildOutcome]int{},
	}
}

func (f *fakeRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stages = append(f.stages, stage)
}

func (f *fakeRecorder) ObserveBuildDuration(time.Duration) {}

func (f *fakeRecorder) IncTagsInjected(kind metrics.TagKind, inline bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := string(kind)
	if inline {
		key += "/inline"
	}
	f.tags[key]++
}

func (f *fakeRecorder) IncResolutionMiss(kind metrics.MissKind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.misses[kind]++
}

func (f *fakeRecorder) IncBuildOutcome(o metrics.BuildOutcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes[o]++
}
