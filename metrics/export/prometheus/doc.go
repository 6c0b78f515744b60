// Package prometheus provides Prometheus collectors for authcore metrics.
//
// [NewPrometheusExporter] accepts an [authcore.Controller] and exposes an [http.Handler]
// that renders all authcore counters and histograms in Prometheus text exposition format.
// Counter names are prefixed authcore_*_total; the single histogram is
// authcore_login_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate controller state.
package prometheus
