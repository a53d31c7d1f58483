package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the feed service.
type Metrics struct {
	// Upstream fetch metrics.
	FetchRequests *prometheus.CounterVec // labels: outcome={success,error,empty}
	FetchDuration prometheus.Histogram

	// Extraction metrics.
	RecordsExtracted prometheus.Histogram
	RowsSkipped      *prometheus.CounterVec // labels: reason={too_few_cells,invalid_coordinates}

	// Cache metrics.
	CacheLookups  *prometheus.CounterVec // labels: result={hit,miss,stale}
	CachedRecords prometheus.Gauge

	// Snapshot publishing metrics.
	SnapshotsPublished prometheus.Counter
	PublishErrors      prometheus.Counter

	RefreshRunning prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.RecordsExtracted,
		m.RowsSkipped,
		m.CacheLookups,
		m.CachedRecords,
		m.SnapshotsPublished,
		m.PublishErrors,
		m.RefreshRunning,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_api",
			Name:      "fetch_requests_total",
			Help:      "Upstream bulletin fetches by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_api",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of an upstream fetch including extraction.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RecordsExtracted: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_api",
			Name:      "records_extracted",
			Help:      "Number of valid records extracted per fetch.",
			Buckets:   []float64{0, 10, 25, 50, 100, 200, 500},
		}),
		RowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_api",
			Name:      "rows_skipped_total",
			Help:      "Bulletin rows dropped during extraction by reason.",
		}, []string{"reason"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_api",
			Name:      "cache_lookups_total",
			Help:      "Record set lookups by result.",
		}, []string{"result"}),
		CachedRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_api",
			Name:      "cached_records",
			Help:      "Number of records in the current cache entry.",
		}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_api",
			Name:      "snapshots_published_total",
			Help:      "Fresh record sets published to the snapshot topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_api",
			Name:      "publish_errors_total",
			Help:      "Failed snapshot publish attempts.",
		}),
		RefreshRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_api",
			Name:      "refresh_running",
			Help:      "1 when the background refresher is active, 0 otherwise.",
		}),
	}
}
