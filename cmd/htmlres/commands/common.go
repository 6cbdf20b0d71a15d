package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/htmlres/internal/compilation"
	"git.home.luguber.info/inful/htmlres/internal/config"
	"git.home.luguber.info/inful/htmlres/internal/htmlres"
	"git.home.luguber.info/inful/htmlres/internal/metrics"
)

// Global is passed to every command's Run.
type Global struct {
	// Out receives user-facing output; nil means stdout.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"htmlres.yaml" env:"HTMLRES_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build  BuildCmd  `cmd:"" help:"Generate the HTML entry document from the build manifest"`
	Watch  WatchCmd  `cmd:"" help:"Rebuild the HTML entry document whenever its inputs change"`
	Verify VerifyCmd `cmd:"" help:"Check that every script and stylesheet reference resolves to an output file"`
	Chunks ChunksCmd `cmd:"" help:"List the chunk names the build manifest offers"`
	Init   InitCmd   `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(newLogger(os.Stderr, c.Verbose, config.LoggingConfig{}))
	return nil
}

// newLogger picks level and format. Precedence: -v, then HTMLRES_LOG_LEVEL /
// HTMLRES_LOG_FORMAT, then the config file's logging section.
func newLogger(w io.Writer, verbose bool, cfg config.LoggingConfig) *slog.Logger {
	level := config.NormalizeLogLevel(cfg.Level)
	if env := os.Getenv("HTMLRES_LOG_LEVEL"); env != "" {
		level = config.NormalizeLogLevel(env)
	}
	if verbose {
		level = config.LogLevelDebug
	}

	format := config.NormalizeLogFormat(cfg.Format)
	if env := os.Getenv("HTMLRES_LOG_FORMAT"); env != "" {
		format = config.NormalizeLogFormat(env)
	}

	opts := &slog.HandlerOptions{Level: slogLevel(level)}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func slogLevel(l config.LogLevel) slog.Level {
	switch l {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadOptions reads the config file and re-applies logging with its settings.
func loadOptions(root *CLI) (*config.Options, error) {
	opts, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(newLogger(os.Stderr, root.Verbose, opts.Logging))
	return opts, nil
}

// builder runs one make/emit cycle against the manifest and writes the
// generated assets.
type builder struct {
	opts   *config.Options
	plugin *htmlres.Plugin
}

func newBuilder(opts *config.Options, options ...htmlres.Option) (*builder, error) {
	p, err := htmlres.New(opts, options...)
	if err != nil {
		return nil, err
	}
	return &builder{opts: opts, plugin: p}, nil
}

// Build returns the emit report and the compilation's file dependencies.
func (b *builder) Build(ctx context.Context) (*htmlres.Report, []string, error) {
	comp, err := compilation.LoadManifest(b.opts.Output.Manifest, b.opts.Output.Directory)
	if err != nil {
		return nil, nil, err
	}
	if err := b.plugin.Make(ctx, comp); err != nil {
		return nil, nil, err
	}
	report, err := b.plugin.Emit(ctx, comp)
	if err != nil {
		return report, nil, err
	}

	names := []string{report.HTMLAsset}
	if report.FaviconAsset != "" {
		names = append(names, report.FaviconAsset)
	}
	if err := comp.WriteAssets(b.opts.Output.Directory, names...); err != nil {
		return report, nil, err
	}
	return report, comp.FileDependencies(), nil
}

// outputDocument is the path of the generated document on disk.
func outputDocument(opts *config.Options) string {
	return filepath.Join(opts.Output.Directory, filepath.FromSlash(opts.HTMLAssetName()))
}

// newRecorder returns a Prometheus recorder on a private registry.
func newRecorder() (*metrics.PrometheusRecorder, *prom.Registry) {
	reg := prom.NewRegistry()
	return metrics.NewPrometheusRecorder(reg), reg
}
