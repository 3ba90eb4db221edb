package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	pruned     prometheus.Counter
	copies     prometheus.Counter
}

// NewMetrics registers the engine collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "workout_engine_operations_total",
			Help: "Engine operations by outcome kind.",
		}, []string{"operation", "kind"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "workout_engine_operation_duration_seconds",
			Help:    "Engine operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		pruned: factory.NewCounter(prometheus.CounterOpts{
			Name: "workout_engine_exercises_pruned_total",
			Help: "Exercises removed by reconciliation because they had no sets.",
		}),
		copies: factory.NewCounter(prometheus.CounterOpts{
			Name: "workout_engine_copies_total",
			Help: "Workouts successfully copied.",
		}),
	}
}

func (m *Metrics) observe(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, string(ErrorKind(err))).Inc()
	m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) addPruned(n int) {
	if m == nil || n == 0 {
		return
	}
	m.pruned.Add(float64(n))
}

func (m *Metrics) incCopies() {
	if m == nil {
		return
	}
	m.copies.Inc()
}
