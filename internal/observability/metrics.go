package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the map service.
type Metrics struct {
	// Feed metrics.
	FeedRequests     *prometheus.CounterVec   // labels: feed={earthquakes,plates}, outcome={success,error}
	FeedDuration     *prometheus.HistogramVec // labels: feed
	FeaturesRendered *prometheus.CounterVec   // labels: feed
	FeaturesSkipped  *prometheus.CounterVec   // labels: feed
	OverlaysVisible  prometheus.Gauge

	// Tile proxy metrics.
	TileRequests    *prometheus.CounterVec // labels: layer, result={hit,miss,error}
	TileAPIDuration *prometheus.HistogramVec

	// Marker publication.
	MarkersPublished prometheus.Counter
	PublishErrors    prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FeedRequests,
		m.FeedDuration,
		m.FeaturesRendered,
		m.FeaturesSkipped,
		m.OverlaysVisible,
		m.TileRequests,
		m.TileAPIDuration,
		m.MarkersPublished,
		m.PublishErrors,
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
		FeedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakemap",
			Name:      "feed_requests_total",
			Help:      "GeoJSON feed fetches by feed and outcome.",
		}, []string{"feed", "outcome"}),
		FeedDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quakemap",
			Name:      "feed_fetch_duration_seconds",
			Help:      "Duration of a GeoJSON feed fetch and decode.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"feed"}),
		FeaturesRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakemap",
			Name:      "features_rendered_total",
			Help:      "Features rendered into an overlay.",
		}, []string{"feed"}),
		FeaturesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakemap",
			Name:      "features_skipped_total",
			Help:      "Malformed features dropped while decoding.",
		}, []string{"feed"}),
		OverlaysVisible: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quakemap",
			Name:      "overlays_visible",
			Help:      "Number of overlays currently shown on the map.",
		}),
		TileRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakemap",
			Name:      "tile_requests_total",
			Help:      "Proxied tile requests by base layer and cache result.",
		}, []string{"layer", "result"}),
		TileAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quakemap",
			Name:      "tile_api_duration_seconds",
			Help:      "Upstream tile request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"layer"}),
		MarkersPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakemap",
			Name:      "markers_published_total",
			Help:      "Earthquake markers written to the marker topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakemap",
			Name:      "publish_errors_total",
			Help:      "Failed marker publications.",
		}),
	}
}
