package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records login attempts per realm (user|admin) and result
	// (success|failure|unverified).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecms_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"realm", "result"},
	)

	// OTPEvents counts one-time code lifecycle events (issued|verified|rejected|expired).
	OTPEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecms_otp_events_total",
			Help: "One-time code lifecycle events",
		},
		[]string{"event"},
	)

	// StorageOperations counts object storage calls by operation and result.
	StorageOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecms_storage_operations_total",
			Help: "Object storage operations",
		},
		[]string{"operation", "result"},
	)

	// MailDeliveries counts outbound email attempts by provider and result.
	MailDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecms_mail_deliveries_total",
			Help: "Outbound email attempts",
		},
		[]string{"provider", "result"},
	)

	// APIInFlight tracks requests currently being served.
	APIInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sitecms_api_in_flight_requests",
			Help: "Requests currently being served",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitecms_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Result maps an error to the label used by the counters above.
func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
