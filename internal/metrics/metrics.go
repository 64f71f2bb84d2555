// Package metrics exposes Prometheus counters for the scouting pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder counts pipeline events.
type Recorder struct {
	candidates  prometheus.Counter
	rejections  *prometheus.CounterVec
	validations *prometheus.CounterVec
	signals     *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
}

// New registers and returns the pipeline metrics.
func New() *Recorder {
	return &Recorder{
		candidates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokenscout_discovery_candidates_total",
			Help: "Candidates that survived the discovery filter",
		}),
		rejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tokenscout_discovery_rejections_total",
			Help: "Pairs rejected by the discovery filter, by predicate",
		}, []string{"predicate"}),
		validations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tokenscout_validations_total",
			Help: "Validation verdicts, by result",
		}, []string{"result"}),
		signals: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tokenscout_signals_total",
			Help: "Strategy signals, by strategy and action",
		}, []string{"strategy", "action"}),
		errorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tokenscout_errors_total",
			Help: "Degraded-path errors, by source",
		}, []string{"source"}),
	}
}

// RecordCandidate counts a discovery survivor.
func (r *Recorder) RecordCandidate() {
	if r == nil {
		return
	}
	r.candidates.Inc()
}

// RecordRejection counts a discovery rejection for one predicate.
func (r *Recorder) RecordRejection(predicate string) {
	if r == nil {
		return
	}
	r.rejections.WithLabelValues(predicate).Inc()
}

// RecordValidation counts a validation verdict.
func (r *Recorder) RecordValidation(result string) {
	if r == nil {
		return
	}
	r.validations.WithLabelValues(result).Inc()
}

// RecordSignal counts one strategy signal.
func (r *Recorder) RecordSignal(strategy, action string) {
	if r == nil {
		return
	}
	r.signals.WithLabelValues(strategy, action).Inc()
}

// RecordError counts a degraded-path error.
func (r *Recorder) RecordError(source string) {
	if r == nil {
		return
	}
	r.errorsTotal.WithLabelValues(source).Inc()
}
