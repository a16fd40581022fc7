// Package metrics exposes Prometheus collectors for screening and the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonathan/candidate-screener/internal/pipeline"
)

const (
	namespace = "screener"

	documentsTotal    = "documents_total"
	batchDuration     = "batch_duration_seconds"
	matchScore        = "match_score"
	statusTransitions = "status_transitions_total"

	// Labels
	outcomeLabel = "outcome"
	statusLabel  = "status"
)

/**
* Metrics definition
**/
var documentsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      documentsTotal,
		Help:      "number of screened documents by outcome",
	},
	[]string{outcomeLabel},
)

var batchDurationMetric = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      batchDuration,
		Help:      "time spent screening one batch of documents",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
	},
)

var matchScoreMetric = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      matchScore,
		Help:      "distribution of candidate match scores",
		Buckets:   prometheus.LinearBuckets(10, 10, 10),
	},
)

var statusTransitionsMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      statusTransitions,
		Help:      "number of candidate status changes by target status",
	},
	[]string{statusLabel},
)

func IncreaseDocumentsTotalMetric(outcome string) {
	documentsTotalMetric.With(prometheus.Labels{outcomeLabel: outcome}).Inc()
}

func ObserveMatchScoreMetric(score int) {
	matchScoreMetric.Observe(float64(score))
}

func ObserveBatchDurationMetric(elapsed time.Duration) {
	batchDurationMetric.Observe(elapsed.Seconds())
}

func IncreaseStatusTransitionsMetric(status string) {
	statusTransitionsMetric.With(prometheus.Labels{statusLabel: status}).Inc()
}

// Recorder forwards pipeline measurements to the package collectors.
type Recorder struct{}

var _ pipeline.Recorder = Recorder{}

// ObserveDocument counts a document and, when it was scored, records its score.
func (Recorder) ObserveDocument(outcome string, score int) {
	IncreaseDocumentsTotalMetric(outcome)
	if outcome == pipeline.OutcomeScored {
		ObserveMatchScoreMetric(score)
	}
}

// ObserveBatch records how long a batch took.
func (Recorder) ObserveBatch(_ int, elapsed time.Duration) {
	ObserveBatchDurationMetric(elapsed)
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(documentsTotalMetric)
	prometheus.MustRegister(batchDurationMetric)
	prometheus.MustRegister(matchScoreMetric)
	prometheus.MustRegister(statusTransitionsMetric)
}
