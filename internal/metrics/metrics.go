// Package metrics holds the process-wide Prometheus collectors. They count
// from process start whether or not a registry is attached; `pathwise serve`
// registers them for /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pathwise"

var (
	// RemoteCalls counts remote service calls by call name and outcome
	// ("ok", "error", "rejected").
	RemoteCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_calls_total",
		Help:      "Remote service calls by call and outcome.",
	}, []string{"call", "outcome"})

	// PersonalityScored counts personality results by source ("remote", "local").
	PersonalityScored = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "personality_scored_total",
		Help:      "Personality results by scoring source.",
	}, []string{"source"})

	// PersonalityMismatches counts remote results that disagree with the local scorer.
	PersonalityMismatches = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "personality_mismatches_total",
		Help:      "Remote personality results that differ from local scoring.",
	})

	// AssessmentSubmissions counts assessment submissions by outcome ("committed", "failed", "dropped").
	AssessmentSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assessment_submissions_total",
		Help:      "Assessment submissions by outcome.",
	}, []string{"outcome"})
)

// Register attaches every collector to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{RemoteCalls, PersonalityScored, PersonalityMismatches, AssessmentSubmissions} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
