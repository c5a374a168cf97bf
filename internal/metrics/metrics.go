package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storecrew",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "status"},
	)

	estimatesComputed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storecrew",
			Name:      "estimates_computed_total",
			Help:      "Price estimates computed for the public form.",
		},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storecrew",
			Name:      "bookings_created_total",
			Help:      "Booking records created through the intake flow.",
		},
	)

	statusUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storecrew",
			Name:      "status_updates_total",
			Help:      "Admin status updates by target status.",
		},
		[]string{"status"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, estimatesComputed, bookingsCreated, statusUpdates)
	})
}

// IncHTTP increments the request counter for an endpoint/status pair.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

func IncEstimates() {
	estimatesComputed.Inc()
}

func IncBookings() {
	bookingsCreated.Inc()
}

func IncStatusUpdate(status string) {
	statusUpdates.WithLabelValues(status).Inc()
}
