// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	ScoringResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_results_total",
			Help: "Scores produced, by engine and tier",
		},
		[]string{"engine", "tier"},
	)

	ScoringTotalScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scoring_total_score",
			Help:    "Distribution of total scores by engine",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"engine"},
	)

	FMVRecalculationsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fmv_recalculations_rejected_total",
			Help: "FMV recalculations refused by the daily limit",
		},
	)

	MatchPollTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_poll_ticks_total",
			Help: "Match notification poll ticks by outcome",
		},
		[]string{"outcome"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Notifications delivered, by type and channel",
		},
		[]string{"type", "channel"},
	)
)

// ObserveScore records one scoring result.
func ObserveScore(engine, tier string, total int) {
	ScoringResults.WithLabelValues(engine, tier).Inc()
	ScoringTotalScore.WithLabelValues(engine).Observe(float64(total))
}
