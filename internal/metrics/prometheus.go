// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the classroom gamification service.
var (
	// Counters.
	AwardsAppliedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awards_applied_total",
			Help: "Total number of quest awards applied",
		},
		[]string{"quest_type", "target"},
	)

	AwardsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awards_rejected_total",
			Help: "Total number of award attempts that were no-ops",
		},
		[]string{"quest_type"},
	)

	AwardsUndoneTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "awards_undone_total",
			Help: "Total number of undo-last-award operations",
		},
	)

	BadgesAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badges_awarded_total",
			Help: "Total number of badges awarded",
		},
		[]string{"badge", "kind"}, // kind: streak or rule
	)

	// Gauges.
	ClassTotalXP = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "class_total_xp",
			Help: "Current class-wide XP total",
		},
	)

	ClassStars = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "class_stars",
			Help: "Current class milestone star count",
		},
	)

	RosterStudents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roster_students",
			Help: "Current number of students on the roster",
		},
	)

	// Histograms.
	AwardXPAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "award_xp_amount",
			Help:    "Signed XP amount applied per award",
			Buckets: prometheus.LinearBuckets(-100, 50, 12), // -100 to 450
		},
	)

	// Scheduler metrics.
	SchedulerJobsRunTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_jobs_run_total",
			Help: "Total scheduler job executions",
		},
		[]string{"job", "status"},
	)

	BadgeSweepDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "badge_sweep_duration_seconds",
			Help:    "Time taken to execute the auto-badge sweep",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
		},
	)
)

// RecordAwardApplied records a successfully applied quest award.
func RecordAwardApplied(questType, target string, xp int) {
	AwardsAppliedTotal.WithLabelValues(questType, target).Inc()
	AwardXPAmount.Observe(float64(xp))
}

// RecordAwardRejected records an award attempt that changed nothing.
func RecordAwardRejected(questType string) {
	AwardsRejectedTotal.WithLabelValues(questType).Inc()
}

// RecordUndo records an undo-last-award operation.
func RecordUndo() {
	AwardsUndoneTotal.Inc()
}

// RecordBadgeAwarded records an awarded badge. kind is "streak" or "rule".
func RecordBadgeAwarded(badge, kind string) {
	BadgesAwardedTotal.WithLabelValues(badge, kind).Inc()
}

// SetClassProgress updates the class-wide XP gauges.
func SetClassProgress(totalXP, stars int) {
	ClassTotalXP.Set(float64(totalXP))
	ClassStars.Set(float64(stars))
}

// SetRosterSize updates the roster size gauge.
func SetRosterSize(students int) {
	RosterStudents.Set(float64(students))
}

// RecordSchedulerJob records one scheduler job execution.
func RecordSchedulerJob(job, status string) {
	SchedulerJobsRunTotal.WithLabelValues(job, status).Inc()
}

// ObserveBadgeSweepDuration observes an auto-badge sweep duration.
func ObserveBadgeSweepDuration(seconds float64) {
	BadgeSweepDurationSeconds.Observe(seconds)
}
