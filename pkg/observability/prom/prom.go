// Package prom implements the observability hooks on top of Prometheus.
//
// Metrics are registered on a private registry so that repeated runs in the
// same process (tests, mostly) never collide on the default registerer. A CLI
// run has no scrape endpoint; the collected metrics are written once at the
// end in the node_exporter textfile format via [Hooks.WriteTextfile].
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/stackaudit/pkg/observability"
)

const namespace = "stackaudit"

// Hooks records pipeline, cache, and HTTP events as Prometheus metrics.
type Hooks struct {
	registry *prometheus.Registry

	scansTotal        *prometheus.CounterVec
	scanDuration      prometheus.Histogram
	manifestsTotal    *prometheus.CounterVec
	declarationsTotal prometheus.Counter
	lookupsTotal      *prometheus.CounterVec
	lookupDuration    prometheus.Histogram
	cacheTotal        *prometheus.CounterVec
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	httpErrorsTotal   *prometheus.CounterVec
}

var (
	_ observability.PipelineHooks = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
	_ observability.HTTPHooks     = (*Hooks)(nil)
)

// New creates Hooks backed by a fresh registry.
func New() *Hooks {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Hooks{
		registry: reg,

		scansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Total number of scans by outcome",
		}, []string{"status"}),

		scanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Wall-clock duration of a scan in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}),

		manifestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifests_total",
			Help:      "Manifests processed by outcome",
		}, []string{"status"}),

		declarationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "declarations_total",
			Help:      "Package declarations read from manifests",
		}),

		lookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Registry lookups by outcome",
		}, []string{"status"}),

		lookupDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Duration of a two-request registry lookup in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		cacheTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache operations by key type and result",
		}, []string{"key_type", "result"}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Outgoing HTTP requests by host and status code",
		}, []string{"host", "code"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Outgoing HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host"}),

		httpErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Outgoing HTTP requests that failed before a response",
		}, []string{"host"}),
	}
}

// Registry exposes the underlying registry, e.g. for tests or a custom exporter.
func (h *Hooks) Registry() *prometheus.Registry { return h.registry }

// Register installs h as the global pipeline, cache, and HTTP hooks.
func (h *Hooks) Register() {
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

// WriteTextfile writes all collected metrics to path in the text exposition
// format. The file is written atomically.
func (h *Hooks) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, h.registry)
}

// =============================================================================
// Pipeline
// =============================================================================

func (h *Hooks) OnScanStart(context.Context, string) {}

func (h *Hooks) OnScanComplete(_ context.Context, _ string, _, _ int, d time.Duration, err error) {
	h.scansTotal.WithLabelValues(status(err)).Inc()
	h.scanDuration.Observe(d.Seconds())
}

func (h *Hooks) OnManifestParsed(_ context.Context, _ string, declarations int, err error) {
	if err != nil {
		h.manifestsTotal.WithLabelValues("skipped").Inc()
		return
	}
	h.manifestsTotal.WithLabelValues("ok").Inc()
	h.declarationsTotal.Add(float64(declarations))
}

func (h *Hooks) OnLookupComplete(_ context.Context, _, _ string, d time.Duration, err error) {
	h.lookupsTotal.WithLabelValues(status(err)).Inc()
	h.lookupDuration.Observe(d.Seconds())
}

// =============================================================================
// Cache
// =============================================================================

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheTotal.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheTotal.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.cacheTotal.WithLabelValues(keyType, "set").Inc()
}

// =============================================================================
// HTTP
// =============================================================================

func (h *Hooks) OnRequest(context.Context, string, string, string) {}

func (h *Hooks) OnResponse(_ context.Context, _, host, _ string, code int, d time.Duration) {
	h.httpRequestsTotal.WithLabelValues(host, statusCode(code)).Inc()
	h.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (h *Hooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.httpErrorsTotal.WithLabelValues(host).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func statusCode(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
