package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Fallback related metrics
	FallbackResolutions *prometheus.CounterVec
	FallbackDegradation *prometheus.CounterVec

	// Slot engine metrics
	SlotGenerationLatency prometheus.Histogram
	SlotsGenerated        prometheus.Histogram

	// Booking workflow metrics
	BookingSubmissions *prometheus.CounterVec
	SlotConflicts      prometheus.Counter
	ActiveDrafts       prometheus.Gauge
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		FallbackResolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "fallback_resolutions_total",
			Help:      "Data fetches by chain and the tier that served them",
		}, []string{"chain", "tier"}),
		FallbackDegradation: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "fallback_degradations_total",
			Help:      "Tier transitions caused by upstream failures",
		}, []string{"chain", "tier"}),
		SlotGenerationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "slot_generation_duration_seconds",
			Help:      "Time spent generating candidate slots",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
		SlotsGenerated: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "slots_generated",
			Help:      "Number of bookable slots returned per query",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}),
		BookingSubmissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "booking_submissions_total",
			Help:      "Booking submissions by outcome",
		}, []string{"outcome"}),
		SlotConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "slot_conflicts_total",
			Help:      "Submissions rejected because the slot was taken",
		}),
		ActiveDrafts: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_drafts",
			Help:      "Booking drafts currently open",
		}),
	}
}
