package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/htmlres/internal/htmlres"
	"git.home.luguber.info/inful/htmlres/internal/logfields"
	"git.home.luguber.info/inful/htmlres/internal/metrics"
	"git.home.luguber.info/inful/htmlres/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Debounce    time.Duration `help:"Quiet period before a rebuild" default:"300ms"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address (e.g. :9464)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return w.run(ctx, g, root)
}

func (w *WatchCmd) run(ctx context.Context, g *Global, root *CLI) error {
	// Validate once up front so a broken config fails the command instead of
	// the first rebuild.
	opts, err := loadOptions(root)
	if err != nil {
		return err
	}

	rec, reg := newRecorder()
	latch := &htmlres.ChunkLogLatch{}

	build := func(ctx context.Context) ([]string, error) {
		// Options are reloaded every time so config edits apply on the next rebuild.
		current, err := loadOptions(root)
		if err != nil {
			return nil, err
		}
		bld, err := newBuilder(current,
			htmlres.WithRecorder(rec),
			htmlres.WithChunkLogLatch(latch),
			htmlres.WithLogger(slog.Default()))
		if err != nil {
			return nil, err
		}
		report, deps, err := bld.Build(ctx)
		if err != nil {
			return nil, err
		}
		_, _ = fmt.Fprintln(g.out(), report.Summary())
		return append(deps, current.Output.Manifest), nil
	}

	watcher, err := watch.New(build,
		watch.WithDebounce(w.Debounce),
		watch.WithPaths(root.Config, opts.Output.Manifest),
		watch.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	if w.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              w.MetricsAddr,
			Handler:           metricsMux(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server failed", logfields.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		slog.Info("Serving metrics", "addr", w.MetricsAddr)
	}

	slog.Info("Watching for changes", logfields.Path(root.Config))
	return watcher.Run(ctx)
}

func metricsMux(reg *prom.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	return mux
}
