// Package metrics holds the Prometheus collectors of the war board.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wardaddy"

// Result labels
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics groups the application collectors. All methods are safe on a nil
// receiver so components can run without metrics in tests.
type Metrics struct {
	AlertsFired       *prometheus.CounterVec
	StatusTransitions *prometheus.CounterVec
	Deliveries        *prometheus.CounterVec
	Commands          *prometheus.CounterVec
	TickDuration      prometheus.Histogram
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AlertsFired: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_fired_total",
				Help:      "Total number of alerts claimed and dispatched",
			},
			[]string{"alert"},
		),
		StatusTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_transitions_total",
				Help:      "Total number of stored status changes written back by recompute",
			},
			[]string{"kind", "status"},
		),
		Deliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deliveries_total",
				Help:      "Total number of outbound deliveries by channel",
			},
			[]string{"channel", "result"},
		),
		Commands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Total number of commands handled",
			},
			[]string{"command", "result"},
		),
		TickDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tick_duration_seconds",
				Help:      "Duration of a notification pass in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
	}
}

// Result maps an error to a result label
func Result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}

func (m *Metrics) AlertFired(alert string) {
	if m == nil {
		return
	}
	m.AlertsFired.WithLabelValues(alert).Inc()
}

func (m *Metrics) StatusChanged(kind, status string) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) Delivery(channel string, err error) {
	if m == nil {
		return
	}
	m.Deliveries.WithLabelValues(channel, Result(err)).Inc()
}

func (m *Metrics) Command(command string, err error) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(command, Result(err)).Inc()
}

// ObserveTick records how long a notification pass took.
func (m *Metrics) ObserveTick(d time.Duration) {
	if m == nil {
		return
	}
	m.TickDuration.Observe(d.Seconds())
}
