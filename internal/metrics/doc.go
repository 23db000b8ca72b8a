// Package metrics provides observability hooks for site loads.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	agg := diag.NewAggregator(logger).WithRecorder(metrics.NoopRecorder{})
//
// To collect metrics, swap in a PrometheusRecorder and export the registry,
// for example to a node_exporter textfile after the build:
//
//	reg := prom.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	... run the build ...
//	_ = metrics.WriteTextfile(path, reg)
package metrics
