package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the Prometheus instrument set for the reporting pipeline.
type Metrics struct {
	RefreshTotal     *prometheus.CounterVec
	PipelineDuration prometheus.Histogram
	RateGaps         prometheus.Gauge
	FeedRows         *prometheus.GaugeVec
}

// NewMetrics registers the pipeline instruments on the given registerer.
// Pass prometheus.DefaultRegisterer in production; tests use a private
// registry so parallel tests never collide.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RefreshTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "enroll",
			Name:      "pipeline_refresh_total",
			Help:      "Pipeline refreshes by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		PipelineDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "enroll",
			Name:      "pipeline_duration_seconds",
			Help:      "Wall time of a full feed-to-dashboard pipeline run.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		RateGaps: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "enroll",
			Name:      "rate_table_gaps",
			Help:      "Observed census groups missing from the rate table in the latest run.",
		}),
		FeedRows: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "enroll",
			Name:      "feed_rows",
			Help:      "Row counts of the most recently loaded feeds.",
		}, []string{"feed"}),
	}
}
