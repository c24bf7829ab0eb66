// Package metrics exposes prometheus instrumentation for bundle delivery.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Metrics struct {
	Registry *prometheus.Registry

	bundleRequests *prometheus.CounterVec
	bundleDuration prometheus.Histogram
	cacheResults   *prometheus.CounterVec
}

// Request outcome labels.
const (
	StatusOK          = "ok"
	StatusBadInput    = "bad_input"
	StatusNotFound    = "not_found"
	StatusServerError = "server_error"
)

const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		Registry: registry,
		bundleRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bundle_requests_total",
			Help: "Count of bundle requests by bundle kind, asset type and outcome.",
		}, []string{"kind", "type", "status"}),
		bundleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bundle_assembly_seconds",
			Help:    "Seconds to assemble one bundle end to end.",
			Buckets: []float64{0.001, 0.005, 0.025, 0.1, 0.5, 2},
		}),
		cacheResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "creative_cache_results_total",
			Help: "Creative cache lookups by result.",
		}, []string{"result"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		m.bundleRequests,
		m.bundleDuration,
		m.cacheResults,
	)
	return m
}

func (m *Metrics) RecordBundleRequest(kind, assetType, status string) {
	m.bundleRequests.WithLabelValues(kind, assetType, status).Inc()
}

func (m *Metrics) ObserveBundleAssembly(d time.Duration) {
	m.bundleDuration.Observe(d.Seconds())
}

func (m *Metrics) RecordCacheResult(result string) {
	m.cacheResults.WithLabelValues(result).Inc()
}

// RegisterCacheSizeGauge exposes the live creative cache entry count.
func (m *Metrics) RegisterCacheSizeGauge(size func() int) {
	m.Registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "creative_cache_entries",
		Help: "Number of live creative cache entries.",
	}, func() float64 {
		return float64(size())
	}))
}
