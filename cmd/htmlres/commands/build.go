package commands

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
	"git.home.luguber.info/inful/htmlres/internal/htmlres"
	"git.home.luguber.info/inful/htmlres/internal/logfields"
	"git.home.luguber.info/inful/htmlres/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Manifest    string `short:"m" help:"Build manifest (YAML or JSON); overrides output.manifest"`
	Output      string `short:"o" help:"Output directory; overrides output.directory"`
	Report      string `help:"Write the emit report as JSON to this path"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in text format to this path"`
	Strict      bool   `help:"Fail when the emit pass records diagnostics"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	opts, err := loadOptions(root)
	if err != nil {
		return err
	}
	if b.Output != "" {
		opts.Output.Directory = b.Output
	}
	if b.Manifest != "" {
		opts.Output.Manifest = b.Manifest
	}

	rec, reg := newRecorder()
	bld, err := newBuilder(opts, htmlres.WithRecorder(rec), htmlres.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	report, _, buildErr := bld.Build(context.Background())

	if report != nil && b.Report != "" {
		if err := report.Persist(b.Report); err != nil {
			slog.Warn("Failed to persist emit report", logfields.Error(err))
		}
	}
	if b.MetricsFile != "" {
		if err := metrics.WriteTextfile(reg, b.MetricsFile); err != nil {
			slog.Warn("Failed to write metrics file", logfields.Error(err))
		}
	}
	if buildErr != nil {
		return buildErr
	}

	out := g.out()
	_, _ = fmt.Fprintf(out, "Wrote %s\n", outputDocument(opts))
	for _, d := range report.Diagnostics {
		_, _ = fmt.Fprintf(out, "warning: [%s] %s\n", d.Code, d.Message)
	}
	_, _ = fmt.Fprintln(out, report.Summary())

	if b.Strict && len(report.Diagnostics) > 0 {
		return errors.BuildError(fmt.Sprintf("emit finished with %d diagnostics", len(report.Diagnostics))).
			WithContext("html_asset", report.HTMLAsset).
			Build()
	}
	return nil
}
