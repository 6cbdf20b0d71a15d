package htmlres

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/htmlres/internal/config"
	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
	"git.home.luguber.info/inful/htmlres/internal/metrics"
)

// DiagnosticCode enumerates machine-parseable degraded-path identifiers.
// Codes are a stable contract; only append.
type DiagnosticCode string

const (
	// DiagMissingChunk: requested chunk absent from the build and no res given.
	DiagMissingChunk DiagnosticCode = "MISSING_CHUNK"
	// DiagMissingFile: chunk known but none of its files has the extension.
	DiagMissingFile DiagnosticCode = "MISSING_FILE"
	// DiagMissingAnchor: </head> or </body> not found for a non-empty block.
	DiagMissingAnchor DiagnosticCode = "MISSING_ANCHOR"
	// DiagMissingAsset: inline content requested for a file the compilation
	// cannot produce.
	DiagMissingAsset DiagnosticCode = "MISSING_ASSET"
)

// Diagnostic is one non-fatal problem found during an emit pass.
type Diagnostic struct {
	Code      DiagnosticCode `json:"code"`
	Stage     StageName      `json:"stage"`
	Chunk     string         `json:"chunk,omitempty"`
	Extension string         `json:"extension,omitempty"`
	Message   string         `json:"message"`
}

// Report summarizes one emit pass.
type Report struct {
	BuildID      string      `json:"build_id"`
	Mode         config.Mode `json:"mode"`
	HTMLAsset    string      `json:"html_asset"`
	FaviconAsset string      `json:"favicon_asset,omitempty"`

	// Chunks are the chunk names the AssetMap ended up with, in map order.
	Chunks []string `json:"chunks"`

	ScriptTags    int `json:"script_tags"`
	StyleTags     int `json:"style_tags"`
	FaviconTags   int `json:"favicon_tags"`
	InlinedAssets int `json:"inlined_assets"`
	RewrittenURLs int `json:"rewritten_urls"`

	Diagnostics    []Diagnostic             `json:"diagnostics"`
	StageDurations map[string]time.Duration `json:"stage_durations"`

	Start   time.Time            `json:"start"`
	End     time.Time            `json:"end"`
	Outcome metrics.BuildOutcome `json:"outcome"`
}

func newReport(buildID string, mode config.Mode) *Report {
	return &Report{
		BuildID:        buildID,
		Mode:           mode,
		Diagnostics:    []Diagnostic{},
		StageDurations: make(map[string]time.Duration),
		Start:          time.Now(),
	}
}

// AddDiagnostic appends d.
func (r *Report) AddDiagnostic(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
}

// DiagnosticsWithCode filters diagnostics by code.
func (r *Report) DiagnosticsWithCode(code DiagnosticCode) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

func (r *Report) finish(err error) {
	r.End = time.Now()
	switch {
	case err != nil:
		r.Outcome = metrics.OutcomeFailed
	case len(r.Diagnostics) > 0:
		r.Outcome = metrics.OutcomeDegraded
	default:
		r.Outcome = metrics.OutcomeSuccess
	}
}

// Duration is the wall time of the pass.
func (r *Report) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Summary returns a one-line human summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("outcome=%s mode=%s html=%s scripts=%d styles=%d favicon=%d inlined=%d rewritten=%d diagnostics=%d duration=%s",
		r.Outcome, r.Mode, r.HTMLAsset, r.ScriptTags, r.StyleTags, r.FaviconTags, r.InlinedAssets, r.RewrittenURLs,
		len(r.Diagnostics), r.Duration().Round(time.Millisecond))
}

// Persist writes the report as JSON to path, atomically.
func (r *Report) Persist(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal emit report").Build()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create report directory").
			WithContext("path", path).
			Build()
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write emit report").
			WithContext("path", tmp).
			Build()
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to move emit report into place").
			WithContext("path", path).
			Build()
	}
	return nil
}
