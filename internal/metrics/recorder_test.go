package metrics

import (
	"time"
)

// countingRecorder is a Recorder double used to check that the interface stays
// implementable outside Prometheus.
type countingRecorder struct {
	stages   map[string]int
	tags     map[TagKind]int
	misses   map[MissKind]int
	outcomes map[BuildOutcome]int
	builds   int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		stages:   map[string]int{},
		tags:     map[TagKind]int{},
		misses:   map[MissKind]int{},
		outcomes: map[BuildOutcome]int{},
	}
}

func (c *countingRecorder) ObserveStageDuration(stage string, _ time.Duration) { c.stages[stage]++ }
func (c *countingRecorder) ObserveBuildDuration(time.Duration)                 { c.builds++ }
func (c *countingRecorder) IncTagsInjected(kind TagKind, _ bool)               { c.tags[kind]++ }
func (c *countingRecorder) IncResolutionMiss(kind MissKind)                    { c.misses[kind]++ }
func (c *countingRecorder) IncBuildOutcome(o BuildOutcome)                     { c.outcomes[o]++ }

var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
	_ Recorder = (*countingRecorder)(nil)
)
