package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/avstrong/spotscape/internal/booking"
	"github.com/avstrong/spotscape/internal/events"
)

const namespace = "spotscape"

type Metrics struct {
	once sync.Once

	bookingsCreated    *prometheus.CounterVec
	bookingTransitions *prometheus.CounterVec
	payments           *prometheus.CounterVec
	bookings           *prometheus.GaugeVec
}

func New() *Metrics {
	return &Metrics{
		bookingsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bookings_created_total",
				Help:      "Count of bookings created by payment method.",
			},
			[]string{"payment_method"},
		),
		bookingTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "booking_transitions_total",
				Help:      "Count of booking status changes by target status.",
			},
			[]string{"status"},
		),
		payments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_total",
				Help:      "Count of simulated payments by outcome.",
			},
			[]string{"outcome"},
		),
		bookings: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "bookings",
				Help:      "Number of stored bookings by status.",
			},
			[]string{"status"},
		),
	}
}

// Register registers metrics on reg (idempotent).
func (m *Metrics) Register(reg prometheus.Registerer) {
	m.once.Do(func() {
		reg.MustRegister(m.bookingsCreated, m.bookingTransitions, m.payments, m.bookings)
	})
}

func (m *Metrics) BookingCreated(method string) {
	m.bookingsCreated.WithLabelValues(method).Inc()
}

func (m *Metrics) BookingTransitioned(status string) {
	m.bookingTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) PaymentProcessed(outcome string) {
	m.payments.WithLabelValues(outcome).Inc()
}

type counter interface {
	CountByStatus() map[booking.Status]int
}

// Track keeps the bookings gauge in line with the store on every change.
func (m *Metrics) Track(store counter) events.Handler {
	refresh := func() {
		for status, n := range store.CountByStatus() {
			m.bookings.WithLabelValues(string(status)).Set(float64(n))
		}
	}

	refresh()

	return func(events.Event) { refresh() }
}
