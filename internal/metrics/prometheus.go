package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cpustress"

// Metrics holds the Prometheus collectors of the stress harness. Each
// instance owns its registry, so several harnesses (and tests) never collide
// on the global default registerer.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	taskOps       *prometheus.CounterVec
	taskFailures  *prometheus.CounterVec
	taskDuration  *prometheus.HistogramVec
	activeWorkers prometheus.Gauge
	runs          prometheus.Counter
	opsPerSecond  prometheus.Gauge
	cpuScore      prometheus.Gauge

	httpRequests   *prometheus.CounterVec
	activeRequests prometheus.Gauge
}

// NewMetrics creates the collectors and registers them, together with the
// Go runtime and process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		taskOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_operations_total",
			Help:      "Completed task invocations by task kind.",
		}, []string{"task"}),
		taskFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_failures_total",
			Help:      "Aborted task invocations by task kind.",
		}, []string{"task"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Wall-clock duration of a single task invocation.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"task"}),
		activeWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_workers",
			Help:      "Workers currently executing the task loop.",
		}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Stress runs started.",
		}),
		opsPerSecond: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_ops_per_second",
			Help:      "Aggregate operations per second of the last completed run.",
		}),
		cpuScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_cpu_score",
			Help:      "Operations per second per thread of the last completed run.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served by the metrics endpoint, by path.",
		}, []string{"path"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_active_requests",
			Help:      "HTTP requests currently being served.",
		}),
	}

	m.registry.MustRegister(
		m.taskOps, m.taskFailures, m.taskDuration,
		m.activeWorkers, m.runs, m.opsPerSecond, m.cpuScore,
		m.httpRequests, m.activeRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler returns the HTTP handler serving the exposition format.
func (m *Metrics) Handler() http.Handler { return m.handler }

// WritePrometheus serves the metrics on an HTTP request.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

// ObserveTask records one task invocation.
func (m *Metrics) ObserveTask(task string, d time.Duration, err error) {
	m.taskDuration.WithLabelValues(task).Observe(d.Seconds())
	if err != nil {
		m.taskFailures.WithLabelValues(task).Inc()
		return
	}
	m.taskOps.WithLabelValues(task).Inc()
}

// WorkerStarted increments the active workers gauge.
func (m *Metrics) WorkerStarted() { m.activeWorkers.Inc() }

// WorkerStopped decrements the active workers gauge.
func (m *Metrics) WorkerStopped() { m.activeWorkers.Dec() }

// RunStarted counts a new run.
func (m *Metrics) RunStarted() { m.runs.Inc() }

// RecordSummary publishes the throughput of a completed run.
func (m *Metrics) RecordSummary(opsPerSecond, cpuScore int64) {
	m.opsPerSecond.Set(float64(opsPerSecond))
	m.cpuScore.Set(float64(cpuScore))
}

// IncrementActiveRequests marks an HTTP request on path as in flight.
func (m *Metrics) IncrementActiveRequests(path string) {
	m.httpRequests.WithLabelValues(path).Inc()
	m.activeRequests.Inc()
}

// DecrementActiveRequests marks an HTTP request as finished.
func (m *Metrics) DecrementActiveRequests() { m.activeRequests.Dec() }
