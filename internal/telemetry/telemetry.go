// Package telemetry wires the resolver's internal Metrics interfaces
// (internal/cache.Metrics, internal/resolver.Metrics) to Prometheus,
// the metrics library used throughout the pack's node/coordinator
// services rather than anything hand-rolled.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry bundles every resolver-facing Prometheus collector and
// implements both internal/cache.Metrics and internal/resolver.Metrics
// so a single value can be threaded through both constructors.
type Registry struct {
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	cacheWrites       prometheus.Counter
	cacheWriteErrors  prometheus.Counter
	resolveDuration   prometheus.Histogram
	resolveErrors     *prometheus.CounterVec
	deviceLoadErrors  *prometheus.CounterVec
	groupJoinerWaitMS prometheus.Histogram
}

// New registers a fresh set of collectors against reg and returns the
// Registry wrapper. Callers typically pass prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Registry {
	r := &Registry{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "converge_cache_hits_total",
			Help: "Cache plane reads served from a stored result.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "converge_cache_misses_total",
			Help: "Cache plane reads that fell through to dispatch.",
		}),
		cacheWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "converge_cache_writes_total",
			Help: "Cache plane writes that completed successfully.",
		}),
		cacheWriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "converge_cache_write_errors_total",
			Help: "Cache plane writes that failed, sync or async.",
		}),
		resolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "converge_resolve_duration_seconds",
			Help:    "End-to-end duration of a top-level Resolve call.",
			Buckets: prometheus.DefBuckets,
		}),
		resolveErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "converge_resolve_errors_total",
			Help: "Resolve calls that returned an error, labeled by kind.",
		}, []string{"kind"}),
		deviceLoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "converge_device_load_errors_total",
			Help: "Device load failures, labeled by error kind.",
		}, []string{"kind"}),
		groupJoinerWaitMS: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "converge_group_joiner_wait_milliseconds",
			Help:    "Time a joiner spent blocked on a leader's reply.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	reg.MustRegister(
		r.cacheHits, r.cacheMisses, r.cacheWrites, r.cacheWriteErrors,
		r.resolveDuration, r.resolveErrors, r.deviceLoadErrors, r.groupJoinerWaitMS,
	)
	return r
}

// CacheHit implements internal/cache.Metrics.
func (r *Registry) CacheHit() { r.cacheHits.Inc() }

// CacheMiss implements internal/cache.Metrics.
func (r *Registry) CacheMiss() { r.cacheMisses.Inc() }

// CacheWrite implements internal/cache.Metrics.
func (r *Registry) CacheWrite() { r.cacheWrites.Inc() }

// CacheWriteError implements internal/cache.Metrics.
func (r *Registry) CacheWriteError() { r.cacheWriteErrors.Inc() }

// ResolveDuration implements internal/resolver.Metrics.
func (r *Registry) ResolveDuration(seconds float64) { r.resolveDuration.Observe(seconds) }

// ResolveError implements internal/resolver.Metrics.
func (r *Registry) ResolveError(kind string) { r.resolveErrors.WithLabelValues(kind).Inc() }

// DeviceLoadError records a device-loading failure, labeled by its
// convergeerr.Kind.
func (r *Registry) DeviceLoadError(kind string) { r.deviceLoadErrors.WithLabelValues(kind).Inc() }

// ObserveJoinerWait records how long a joiner blocked on a leader's
// reply, in milliseconds.
func (r *Registry) ObserveJoinerWait(ms float64) { r.groupJoinerWaitMS.Observe(ms) }
