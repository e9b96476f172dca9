package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal counts scan gateway resolutions by outcome
	// (recorded, not_found, invalid, error).
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "powerqr",
		Name:      "scans_total",
		Help:      "Scan gateway resolutions by outcome.",
	}, []string{"outcome"})

	// ScanDuration observes end-to-end gateway latency.
	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "powerqr",
		Name:      "scan_duration_seconds",
		Help:      "Time spent resolving and recording a scan.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
	})

	// GeoLookupsTotal counts geolocation attempts by outcome (resolved, unknown).
	GeoLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "powerqr",
		Name:      "geo_lookups_total",
		Help:      "Geolocation lookups by outcome.",
	}, []string{"outcome"})

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "powerqr",
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open).",
	}, []string{"name"})

	// ScanNotificationsTotal counts scan notifications by result
	// (published, publish_failed, consumed, consume_failed).
	ScanNotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "powerqr",
		Name:      "scan_notifications_total",
		Help:      "Scan notifications published and consumed.",
	}, []string{"result"})
)
