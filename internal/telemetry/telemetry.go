package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics, exported on the API server's /metrics endpoint.
var (
	JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scout",
		Name:      "jobs_processed_total",
		Help:      "Research jobs brought to a terminal state, by outcome.",
	}, []string{"outcome"})

	ArticlesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scout",
		Name:      "articles_fetched_total",
		Help:      "Raw articles returned by source adapters.",
	}, []string{"source"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "scout",
		Name:      "pipeline_stage_duration_seconds",
		Help:      "Wall time spent per pipeline stage.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"stage"})
)

// ObserveStage records the duration of one pipeline stage.
func ObserveStage(stage string, d time.Duration) {
	stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
