package metricsvc

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/masomo-calendar/core/session"
)

// Prometheus records session cascades as prometheus metrics.
type Prometheus struct {
	bulkCalls   *prometheus.CounterVec
	bulkIDs     *prometheus.HistogramVec
	cascades    *prometheus.CounterVec
	bulkFailure *prometheus.CounterVec
}

var _ session.Metrics = (*Prometheus)(nil) // interface compliance check

// NewPrometheus creates the metrics and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	m := &Prometheus{
		bulkCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "masomo",
			Subsystem: "sessions",
			Name:      "bulk_calls_total",
			Help:      "Bulk calls sent to the session store, by operation.",
		}, []string{"op"}),
		bulkIDs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "masomo",
			Subsystem: "sessions",
			Name:      "bulk_call_ids",
			Help:      "Number of ids per bulk call.",
			Buckets:   []float64{1, 5, 10, 15, 20},
		}, []string{"op"}),
		bulkFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "masomo",
			Subsystem: "sessions",
			Name:      "bulk_call_failures_total",
			Help:      "Bulk calls that failed, by operation.",
		}, []string{"op"}),
		cascades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "masomo",
			Subsystem: "sessions",
			Name:      "cascades_total",
			Help:      "Cascaded session updates & deletes, by operation, scope and result.",
		}, []string{"op", "scope", "result"}),
	}

	for _, c := range []prometheus.Collector{m.bulkCalls, m.bulkIDs, m.bulkFailure, m.cascades} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Prometheus) ObserveBulkCall(op string, ids int, err error) {
	m.bulkCalls.WithLabelValues(op).Inc()
	m.bulkIDs.WithLabelValues(op).Observe(float64(ids))
	if err != nil {
		m.bulkFailure.WithLabelValues(op).Inc()
	}
}

func (m *Prometheus) ObserveCascade(op string, scope session.Scope, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	name := scope.String()
	if name == "" {
		name = "none"
	}
	m.cascades.WithLabelValues(op, name, result).Inc()
}
