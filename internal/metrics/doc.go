// Package metrics provides the observability hooks of docsite.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites. Serve mode swaps
// in a PrometheusRecorder and exposes it through HTTPHandler:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	router.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
