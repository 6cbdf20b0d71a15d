package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// WriteTextfile dumps the registry in the node_exporter textfile format, for
// one-shot CLI builds that have no scrape endpoint.
func WriteTextfile(reg *prom.Registry, path string) error {
	return prom.WriteToTextfile(path, reg)
}
