package ledger

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records ledger activity. A nil *Metrics records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	entries    prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "points",
				Subsystem: "ledger",
				Name:      "operations_total",
				Help:      "Ledger calls by operation and result.",
			},
			[]string{"operation", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "points",
				Subsystem: "ledger",
				Name:      "operation_duration_seconds",
				Help:      "Ledger call duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		entries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "points",
				Subsystem: "ledger",
				Name:      "history_entries_written_total",
				Help:      "History entries written by apply.",
			},
		),
	}
	reg.MustRegister(m.operations, m.duration, m.entries)
	return m
}

func (m *Metrics) record(operation string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, resultLabel(err)).Inc()
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) addEntries(n int) {
	if m == nil {
		return
	}
	m.entries.Add(float64(n))
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNoOperationToUndo), errors.Is(err, ErrNoOperationToRedo):
		return "nothing"
	case errors.Is(err, ErrDuplicateOperation):
		return "duplicate"
	default:
		return "error"
	}
}
