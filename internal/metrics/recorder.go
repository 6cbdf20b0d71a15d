package metrics

import "time"

// TagKind labels the tag counters.
type TagKind string

const (
	TagScript     TagKind = "script"
	TagStylesheet TagKind = "stylesheet"
	TagFavicon    TagKind = "favicon"
)

// MissKind labels the degraded-path counters.
type MissKind string

const (
	MissChunk  MissKind = "chunk"  // requested chunk absent and no res override
	MissFile   MissKind = "file"   // chunk known, no file with the extension
	MissAnchor MissKind = "anchor" // </head> or </body> not found
	MissAsset  MissKind = "asset"  // inline content requested for an unknown asset
)

// BuildOutcome labels the result of one emit pass.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeDegraded BuildOutcome = "degraded" // finished with diagnostics
	OutcomeFailed   BuildOutcome = "failed"
)

// Recorder defines observability hooks for emit passes. Implementations may
// forward to Prometheus or a test double; NoopRecorder is the default.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncTagsInjected(kind TagKind, inline bool)
	IncResolutionMiss(kind MissKind)
	IncBuildOutcome(outcome BuildOutcome)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncTagsInjected(TagKind, bool)              {}
func (NoopRecorder) IncResolutionMiss(MissKind)                 {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)               {}
