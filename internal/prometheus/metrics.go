package prometheus

import "github.com/prometheus/client_golang/prometheus"

const (
	summaryDurationBucketStart  = 0.05
	summaryDurationBucketFactor = 2.0
	summaryDurationBucketCount  = 12
)

const (
	completionLatencyBucketStart  = 0.1
	completionLatencyBucketFactor = 2.0
	completionLatencyBucketCount  = 10
)

const (
	SourceAI        = "ai"
	SourceHeuristic = "heuristic"
)

const (
	TargetSession       = "session"
	TargetTranscription = "transcription"
	TargetNone          = "none"
)

const (
	ModeTest    = "test"
	ModeBackend = "backend"
)

var SummaryDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "summary_generation_duration_seconds",
		Help: "Time taken to generate a call summary",
		Buckets: prometheus.ExponentialBuckets(
			summaryDurationBucketStart,
			summaryDurationBucketFactor,
			summaryDurationBucketCount,
		),
	},
	[]string{"source"},
)

var CompletionLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "completion_request_duration_seconds",
		Help: "Latency of requests to the completion service",
		Buckets: prometheus.ExponentialBuckets(
			completionLatencyBucketStart,
			completionLatencyBucketFactor,
			completionLatencyBucketCount,
		),
	},
	[]string{"model"},
)

var SummaryPersistTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "summary_persist_total",
		Help: "Persisted summaries by the record that accepted the write",
	},
	[]string{"target"},
)

var ReprocessTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "call_reprocess_total",
		Help: "Reprocess requests by mode",
	},
	[]string{"mode"},
)

var NotificationTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "processing_backend_notification_total",
		Help: "Processing backend notifications by transport and outcome",
	},
	[]string{"transport", "outcome"},
)

func init() {
	prometheus.MustRegister(SummaryDuration)
	prometheus.MustRegister(CompletionLatency)
	prometheus.MustRegister(SummaryPersistTotal)
	prometheus.MustRegister(ReprocessTotal)
	prometheus.MustRegister(NotificationTotal)
}
