package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendRequests counts recommendation queries by outcome:
	// "found", "not_found", "unavailable" or "bad_request".
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_requests_total",
			Help: "Total number of recommendation queries by outcome",
		},
		[]string{"source", "outcome"},
	)

	IndexBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommender_index_build_duration_seconds",
			Help:    "Time to load, clean, join, score and index both datasets",
			Buckets: prometheus.DefBuckets,
		},
	)

	IndexBuildFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommender_index_build_failures_total",
			Help: "Total number of failed index builds",
		},
	)

	CorpusSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommender_corpus_videos",
			Help: "Number of unique videos in the current index",
		},
	)

	JoinedRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommender_joined_rows",
			Help: "Number of video/comment rows in the current snapshot",
		},
	)

	CleanRepairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_clean_repairs_total",
			Help: "Values repaired by the cleaner, by kind",
		},
		[]string{"kind"}, // "defaulted", "bad_number", "bad_timestamp"
	)

	SentimentScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_sentiment_scored_total",
			Help: "Comments assigned a sentiment score, by source",
		},
		[]string{"source"}, // "cache", "model"
	)
)

// RecordBuild updates the gauges and counters for a completed build.
func RecordBuild(seconds float64, videos, rows, defaulted, badNumbers, badTimestamps int) {
	IndexBuildDuration.Observe(seconds)
	CorpusSize.Set(float64(videos))
	JoinedRows.Set(float64(rows))
	CleanRepairs.WithLabelValues("defaulted").Add(float64(defaulted))
	CleanRepairs.WithLabelValues("bad_number").Add(float64(badNumbers))
	CleanRepairs.WithLabelValues("bad_timestamp").Add(float64(badTimestamps))
}
