package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MaskRequestsTotal counts masking passes over caller text
	MaskRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safedialog_mask_requests_total",
		Help: "Total number of masking passes processed",
	})

	// EntitiesMaskedTotal counts masked entities by category
	EntitiesMaskedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safedialog_entities_masked_total",
		Help: "Total number of sensitive entities substituted with blocks",
	}, []string{"category"})

	// ModelCallsTotal counts model consultations by call kind and outcome
	ModelCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safedialog_model_calls_total",
		Help: "Total number of model calls issued by the masking pipeline",
	}, []string{"kind", "outcome"}) // kind: "decision" or "extraction"; outcome: "parsed" or "fallback"

	// BlocksRestoredTotal counts blocks resolved back to original values
	BlocksRestoredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safedialog_blocks_restored_total",
		Help: "Total number of masked blocks restored during demasking",
	})

	// BlocksUnresolvedTotal counts blocks left verbatim during demasking
	BlocksUnresolvedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safedialog_blocks_unresolved_total",
		Help: "Total number of masked blocks that could not be resolved",
	})

	// CatalogSize tracks the number of catalog entries
	CatalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "safedialog_catalog_size",
		Help: "Current number of entries in the sensitive entity catalog",
	})

	// OperationDuration tracks mask/demask processing latency
	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "safedialog_operation_duration_seconds",
		Help:    "Masking pipeline operation duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"}) // "mask" or "demask"
)

// RecordModelCall records a model call with its parse outcome
func RecordModelCall(kind string, parsed bool) {
	outcome := "fallback"
	if parsed {
		outcome = "parsed"
	}
	ModelCallsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordEntityMasked records a masked entity by category
func RecordEntityMasked(category string) {
	EntitiesMaskedTotal.WithLabelValues(category).Inc()
}

// RecordOperationDuration records pipeline operation duration
func RecordOperationDuration(operation string, seconds float64) {
	OperationDuration.WithLabelValues(operation).Observe(seconds)
}
