package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the claim module.
type Metrics struct {
	// Submission outcomes by category and result (accepted or the
	// rejection code)
	Submissions *prometheus.CounterVec

	// Verification outcomes by result
	Verifications *prometheus.CounterVec

	// Confidence scores assigned by validators
	ConfidenceScore prometheus.Histogram

	// End-to-end submission latency including policy lookup and persistence
	SubmitLatency prometheus.Histogram
}

// New creates a new Metrics instance with all claim module metrics registered.
func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "canopy_claim_submissions_total",
			Help: "Total claim submissions by category and result",
		}, []string{"category", "result"}),

		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "canopy_claim_verifications_total",
			Help: "Total claim verification attempts by result",
		}, []string{"result"}),

		ConfidenceScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "canopy_claim_confidence_score",
			Help:    "Confidence scores assigned on successful verification",
			Buckets: []float64{10, 25, 50, 70, 80, 90, 95, 100},
		}),

		SubmitLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "canopy_claim_submit_duration_seconds",
			Help:    "Duration of claim submission including policy lookup and persistence",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementSubmission records a submission outcome.
func (m *Metrics) IncrementSubmission(category, result string) {
	if m != nil {
		m.Submissions.WithLabelValues(category, result).Inc()
	}
}

// IncrementVerification records a verification outcome.
func (m *Metrics) IncrementVerification(result string) {
	if m != nil {
		m.Verifications.WithLabelValues(result).Inc()
	}
}

// ObserveConfidenceScore records the score set by a winning verification.
func (m *Metrics) ObserveConfidenceScore(score int) {
	if m != nil {
		m.ConfidenceScore.Observe(float64(score))
	}
}

// ObserveSubmitLatency records the total submission duration.
func (m *Metrics) ObserveSubmitLatency(d time.Duration) {
	if m != nil {
		m.SubmitLatency.Observe(d.Seconds())
	}
}
