// Package metrics exposes Prometheus collectors for the evaluation service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "compliance",
		Subsystem: "assessment",
		Name:      "evaluations_total",
		Help:      "Total number of evaluations broken down by assessment type and outcome.",
	}, []string{"type", "outcome"})

	grades = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "compliance",
		Subsystem: "assessment",
		Name:      "grades_total",
		Help:      "Total number of finalized assessments broken down by type and grade key.",
	}, []string{"type", "grade"})

	evaluationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "compliance",
		Subsystem: "assessment",
		Name:      "evaluation_duration_seconds",
		Help:      "Time spent evaluating and persisting one submission.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"type"})

	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "compliance",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Total number of assessment cache lookups broken down by hit/miss.",
	}, []string{"result"})

	catalogsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "compliance",
		Subsystem: "catalog",
		Name:      "versions_loaded",
		Help:      "Number of catalog versions currently served.",
	})
)

// Evaluation outcomes
const (
	OutcomeFinalized    = "finalized"
	OutcomeInvalid      = "invalid"
	OutcomeForbidden    = "forbidden"
	OutcomeNotFound     = "catalog_not_found"
	OutcomePersistError = "persistence_error"
)

// RecordEvaluation counts one evaluation attempt and its duration
func RecordEvaluation(assessmentType, outcome string, elapsed time.Duration) {
	if assessmentType == "" {
		assessmentType = "unknown"
	}
	evaluations.WithLabelValues(assessmentType, outcome).Inc()
	evaluationDuration.WithLabelValues(assessmentType).Observe(elapsed.Seconds())
}

// RecordGrade counts a finalized assessment by grade
func RecordGrade(assessmentType, gradeKey string) {
	grades.WithLabelValues(assessmentType, gradeKey).Inc()
}

// RecordCacheRequest counts an assessment cache lookup
func RecordCacheRequest(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheRequests.WithLabelValues(result).Inc()
}

// SetCatalogsLoaded reports the number of served catalog versions
func SetCatalogsLoaded(n int) {
	catalogsLoaded.Set(float64(n))
}
