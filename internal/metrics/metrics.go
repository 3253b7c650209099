package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rental"

// Metrics holds the booking engine's Prometheus collectors.
type Metrics struct {
	bookingsCreated prometheus.Counter
	transitions     *prometheus.CounterVec
	feedback        *prometheus.HistogramVec
	failures        *prometheus.CounterVec
	tripEvents      *prometheus.CounterVec
}

// New registers the collectors with reg. Passing a fresh registry keeps tests
// isolated from the process-wide default.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		bookingsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_created_total",
			Help:      "Count of booking requests accepted into the pending state.",
		}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transition_total",
			Help:      "Count of committed status transitions by target status.",
		}, []string{"status"}),
		feedback: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "booking_feedback_rating",
			Help:      "Distribution of customer ratings.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}, []string{"category"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_operation_failures_total",
			Help:      "Count of rejected booking operations by operation and error kind.",
		}, []string{"operation", "kind"}),
		tripEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trip_events_total",
			Help:      "Count of consumed trip events by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncBookingCreated() {
	m.bookingsCreated.Inc()
}

func (m *Metrics) IncTransition(status string) {
	m.transitions.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveFeedback(category string, rating int) {
	m.feedback.WithLabelValues(category).Observe(float64(rating))
}

func (m *Metrics) IncFailure(operation, kind string) {
	m.failures.WithLabelValues(operation, kind).Inc()
}

func (m *Metrics) IncTripEvent(outcome string) {
	m.tripEvents.WithLabelValues(outcome).Inc()
}
