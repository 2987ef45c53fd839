// Package server exposes the harness metrics over HTTP while a run is in
// progress.
//
// Two read-only endpoints are served:
//
//   - /metrics: the Prometheus exposition of the run's private registry.
//   - /healthz: "ok" while the process is alive.
//
// Every response carries the security headers of [SecurityMiddleware].
package server
