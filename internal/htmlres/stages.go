package htmlres

import (
	"context"
	"time"

	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
	"git.home.luguber.info/inful/htmlres/internal/logfields"
	"git.home.luguber.info/inful/htmlres/internal/observability"
)

// StageName identifies one text stage of an emit pass.
type StageName string

const (
	StageInject          StageName = "inject"
	StageRewrite         StageName = "rewrite"
	StageReplace         StageName = "replace"
	StageMinify          StageName = "minify"
	StageTemplateContent StageName = "template_content"
)

// Stage is a pure transform over the document text.
type Stage func(ctx context.Context, html string) (string, error)

// StageDef pairs a stage name with its function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// runStages threads html through stages in order, recording durations on the
// report and the recorder. It stops at the first error or on cancellation.
func (e *emitPass) runStages(ctx context.Context, html string, stages []StageDef) (string, error) {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return "", errors.WrapError(err, errors.CategoryRuntime, "emit canceled").
				WithContext("stage", string(st.Name)).
				Build()
		}

		stageCtx := observability.WithStage(ctx, string(st.Name))
		t0 := time.Now()
		out, err := st.Fn(stageCtx, html)
		dur := time.Since(t0)

		e.report.StageDurations[string(st.Name)] = dur
		e.recorder.ObserveStageDuration(string(st.Name), dur)
		observability.Logger(stageCtx, e.logger).Debug("Stage complete",
			logfields.DurationMS(float64(dur.Microseconds())/1000))

		if err != nil {
			if errors.IsClassified(err) {
				return "", err
			}
			return "", errors.WrapError(err, errors.CategoryBuild, "stage failed").
				WithContext("stage", string(st.Name)).
				Build()
		}
		html = out
	}
	return html, nil
}
