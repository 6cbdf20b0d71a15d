package htmlres

import (
	"context"
	"log/slog"
	"path/filepath"
	"strconv"

	"git.home.luguber.info/inful/htmlres/internal/compilation"
	"git.home.luguber.info/inful/htmlres/internal/config"
	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
	"git.home.luguber.info/inful/htmlres/internal/logfields"
	"git.home.luguber.info/inful/htmlres/internal/metrics"
	"git.home.luguber.info/inful/htmlres/internal/minify"
	"git.home.luguber.info/inful/htmlres/internal/observability"
)

// Plugin produces one HTML entry document per emit pass. It is safe to call
// Emit from successive rebuilds; passes on one Plugin must not overlap.
type Plugin struct {
	opts     config.Options
	rules    []compiledRule
	latch    *ChunkLogLatch
	recorder metrics.Recorder
	minifier Minifier
	logger   *slog.Logger
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Plugin) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithMinifier replaces the HTML minifier.
func WithMinifier(m Minifier) Option {
	return func(p *Plugin) {
		if m != nil {
			p.minifier = m
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Plugin) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithChunkLogLatch shares a latch between plugins.
func WithChunkLogLatch(l *ChunkLogLatch) Option {
	return func(p *Plugin) {
		if l != nil {
			p.latch = l
		}
	}
}

// New validates opts and returns a Plugin. Missing required options and
// malformed rules fail here, before any build phase.
func New(opts *config.Options, options ...Option) (*Plugin, error) {
	if opts == nil {
		return nil, config.MissingOptionError("filename")
	}
	o := *opts
	o.ApplyDefaults()
	if err := config.Validate(&o); err != nil {
		return nil, err
	}
	rules, err := compileReplaceRules(o.Replace)
	if err != nil {
		return nil, err
	}

	p := &Plugin{
		opts:     o,
		rules:    rules,
		latch:    &ChunkLogLatch{},
		recorder: metrics.NoopRecorder{},
		minifier: minify.NewHTMLMinifier(),
		logger:   slog.Default(),
	}
	for _, apply := range options {
		apply(p)
	}
	return p, nil
}

// Options returns the validated options.
func (p *Plugin) Options() config.Options { return p.opts }

// ChunkLatch exposes the chunk summary latch.
func (p *Plugin) ChunkLatch() *ChunkLogLatch { return p.latch }

// Make runs at the start of a compilation. It does nothing.
func (p *Plugin) Make(context.Context, *compilation.Compilation) error {
	return nil
}

// emitPass carries the per-pass state shared by the stages.
type emitPass struct {
	opts       *config.Options
	comp       *compilation.Compilation
	assets     *AssetMap
	publicPath string
	report     *Report
	recorder   metrics.Recorder
	logger     *slog.Logger
}

// Emit registers the template (and favicon) with comp, rewrites the document
// and stores the final text under the HTML asset name. The returned report is
// non-nil even when err is not.
func (p *Plugin) Emit(ctx context.Context, comp *compilation.Compilation) (*Report, error) {
	buildID := observability.GetContext(ctx).BuildID
	if buildID == "" {
		buildID = observability.NewBuildID()
		ctx = observability.WithBuildID(ctx, buildID)
	}
	log := observability.Logger(ctx, p.logger)

	report := newReport(buildID, p.opts.Mode)
	err := p.emit(ctx, comp, report)
	report.finish(err)

	p.recorder.ObserveBuildDuration(report.Duration())
	p.recorder.IncBuildOutcome(report.Outcome)

	if err != nil {
		log.Error("Emit failed", logfields.Error(err))
		return report, err
	}
	log.Info("Emit complete",
		logfields.Mode(string(report.Mode)),
		logfields.Asset(report.HTMLAsset),
		slog.String("outcome", string(report.Outcome)),
		slog.Int("diagnostics", len(report.Diagnostics)),
		logfields.DurationMS(float64(report.Duration().Microseconds())/1000))
	return report, nil
}

func (p *Plugin) emit(ctx context.Context, comp *compilation.Compilation, report *Report) error {
	if comp == nil {
		return errors.InternalError("emit called without a compilation").Build()
	}

	htmlName := p.opts.HTMLAssetName()
	if htmlName == "" || htmlName == "." {
		htmlName = filepath.Base(p.opts.Template)
	}
	comp.AddFileDependency(p.opts.Template)
	comp.SetAsset(compilation.FileAsset(htmlName, p.opts.Template))
	report.HTMLAsset = htmlName

	if p.opts.Favicon.IsSet() {
		faviconPath := string(p.opts.Favicon)
		report.FaviconAsset = filepath.Base(faviconPath)
		comp.AddFileDependency(faviconPath)
		comp.SetAsset(compilation.FileAsset(report.FaviconAsset, faviconPath))
	}

	template, err := comp.Content(htmlName)
	if err != nil {
		return err
	}

	pass := &emitPass{
		opts:       &p.opts,
		comp:       comp,
		publicPath: comp.PublicPath,
		report:     report,
		recorder:   p.recorder,
		logger:     p.logger,
	}
	if p.opts.PublicPath != nil {
		pass.publicPath = *p.opts.PublicPath
	}

	requested := AllChunks
	if p.opts.Mode == config.ModeDefault {
		requested = RequestedSet(p.opts.Chunks.Names())
	}
	pass.assets = BuildAssetMap(comp, requested)
	report.Chunks = pass.assets.Names()
	p.latch.Do(func() { p.logChunks(ctx, report.Chunks) })

	final, err := pass.runStages(ctx, string(template), p.stages(pass))
	if err != nil {
		return err
	}

	comp.SetAsset(compilation.StringAsset(htmlName, final))
	return nil
}

func (p *Plugin) stages(pass *emitPass) []StageDef {
	var stages []StageDef
	switch p.opts.Mode {
	case config.ModeHTML:
		stages = append(stages, StageDef{Name: StageRewrite, Fn: pass.rewrite})
	default:
		stages = append(stages, StageDef{Name: StageInject, Fn: pass.inject})
	}
	if len(p.rules) > 0 {
		stages = append(stages, StageDef{Name: StageReplace, Fn: replaceStage(p.rules)})
	}
	if p.opts.HTMLMinify.Enabled {
		stages = append(stages, StageDef{Name: StageMinify, Fn: minifyStage(p.minifier, p.opts.HTMLMinify.Config)})
	}
	stages = append(stages, StageDef{Name: StageTemplateContent, Fn: templateContentStage(p.opts.TemplateContent)})
	return stages
}

func (p *Plugin) logChunks(ctx context.Context, names []string) {
	log := observability.Logger(ctx, p.logger)
	log.Info("Discovered chunks", logfields.Count(len(names)))
	for _, line := range FormatChunkNames(names) {
		log.Info(line)
	}
}

// DiscoverChunks lists every chunk name the compilation offers, as html mode
// sees them.
func DiscoverChunks(comp *compilation.Compilation) []string {
	return BuildAssetMap(comp, AllChunks).Names()
}

// FormatChunkNames numbers chunk names from 1: "chunk1: vendor".
func FormatChunkNames(names []string) []string {
	lines := make([]string, 0, len(names))
	for i, n := range names {
		lines = append(lines, "chunk"+strconv.Itoa(i+1)+": "+n)
	}
	return lines
}
