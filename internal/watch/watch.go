// Package watch reruns a build when any of its input files change.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
	"git.home.luguber.info/inful/htmlres/internal/logfields"
)

// DefaultDebounce coalesces editor save bursts into one rebuild.
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc performs one build and returns the files it depended on.
type BuildFunc func(ctx context.Context) ([]string, error)

// Watcher owns an fsnotify watcher and the rebuild loop. Builds never overlap:
// they run on the loop goroutine, and events arriving meanwhile queue one more.
type Watcher struct {
	build    BuildFunc
	debounce time.Duration
	extra    []string
	logger   *slog.Logger

	fsw   *fsnotify.Watcher
	files map[string]struct{}
	dirs  map[string]struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a rebuild.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithPaths adds files watched regardless of what the build reports, such as
// the config file or the build manifest.
func WithPaths(paths ...string) Option {
	return func(w *Watcher) { w.extra = append(w.extra, paths...) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a watcher around build.
func New(build BuildFunc, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Build()
	}
	w := &Watcher{
		build:    build,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		fsw:      fsw,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
	}
	for _, apply := range opts {
		apply(w)
	}
	return w, nil
}

// Run builds once, then rebuilds on change until ctx is done. The extra paths
// are watched before the first build, so a build that fails from the start
// still recovers once they appear. A failing build is logged and the previous
// watch set is kept. Run closes the underlying watcher before returning.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	w.setFiles(w.extra)
	w.rebuild(ctx)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Input changed", logfields.File(event.Name), slog.String("op", event.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", logfields.Error(err))
		case <-timer.C:
			w.rebuild(ctx)
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context) {
	t0 := time.Now()
	deps, err := w.build(ctx)
	if err != nil {
		w.logger.Error("Rebuild failed", logfields.Error(err))
		return
	}
	w.logger.Info("Rebuild complete",
		logfields.Count(len(deps)),
		logfields.DurationMS(float64(time.Since(t0).Microseconds())/1000))
	w.setFiles(append(deps, w.extra...))
}

// setFiles watches the parent directory of every file; editors that replace
// files on save would otherwise drop a direct file watch.
func (w *Watcher) setFiles(paths []string) {
	files := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		files[abs] = struct{}{}
		dir := filepath.Dir(abs)
		if _, ok := w.dirs[dir]; ok {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			w.logger.Warn("Cannot watch directory", logfields.Path(dir), logfields.Error(err))
			continue
		}
		w.dirs[dir] = struct{}{}
	}
	w.files = files
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := w.files[abs]
	return ok
}

// Watched returns the files currently watched. It is only safe to call when
// Run is not running.
func (w *Watcher) Watched() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	return out
}
