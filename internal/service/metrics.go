package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ratingsRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "consistency_ratings_recorded_total",
			Help: "Total number of ratings folded into driver aggregates",
		},
	)

	aggregateRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "consistency_aggregate_update_retries_total",
			Help: "Total number of optimistic aggregate updates that lost the race and retried",
		},
	)

	photoRepairsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "consistency_photo_repairs_total",
			Help: "Total number of null photo references repaired from the upload area",
		},
	)

	photoConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "consistency_photo_conflicts_total",
			Help: "Total number of photo references left unrepaired because sources disagree",
		},
	)

	reconcileChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consistency_reconcile_checks_total",
			Help: "Reconciliation field checks by derived field and outcome",
		},
		[]string{"field", "state"},
	)

	reconcilePassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "consistency_reconcile_pass_duration_seconds",
			Help:    "Duration of reconciliation passes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
