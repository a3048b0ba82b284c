// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AttemptsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_delivery_attempts_total",
			Help: "Total number of delivery attempts created, by channel and provider",
		},
		[]string{"channel", "provider"},
	)

	AttemptsSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_delivery_attempts_settled_total",
			Help: "Total number of delivery attempts that reached a terminal state",
		},
		[]string{"channel", "state", "reason"},
	)

	AttemptsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_delivery_attempts_skipped_total",
			Help: "Total number of duplicate attempts skipped for idempotency",
		},
		[]string{"channel"},
	)

	ProviderFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_provider_fallbacks_total",
			Help: "Total number of sends retried on the fallback provider",
		},
		[]string{"channel", "from_provider", "to_provider"},
	)

	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "alert_dispatch_duration_seconds",
			Help: "Duration of alert dispatch calls in seconds",
		},
		[]string{"outcome"},
	)

	DispatchesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alert_dispatches_active",
			Help: "Number of dispatch calls currently in flight",
		},
	)
)
