// Package metrics records what each emit pass did: stage timings, how many
// tags were written, and how many references could not be resolved.
//
// Components receive a Recorder and default to NoopRecorder, so nothing needs
// a nil check:
//
//	plugin, _ := htmlres.New(opts, htmlres.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The one-shot build command writes the registry to a textfile; the watch
// command serves it over HTTP.
package metrics
