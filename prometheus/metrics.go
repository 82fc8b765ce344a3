package prometheus

import (
	"time"

	"railtrace/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthErrorsCounter   prometheus.CounterVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Component lifecycle metrics
	ComponentsGeneratedCounter prometheus.CounterVec
	QCResultCounter            prometheus.CounterVec
	InstallationsCounter       prometheus.Counter
	FieldInspectionsCounter    prometheus.CounterVec
	ReplacementsCounter        prometheus.Counter

	// Inventory metrics
	InventoryLevelGauge prometheus.GaugeVec

	// Replenishment metrics
	RequestOutcomeCounter prometheus.CounterVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	prefix := config.Metrics.Prefix

	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthErrorsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"reason"},
	)

	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	ComponentsGeneratedCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_components_generated_total",
			Help: "Total number of components generated",
		},
		[]string{"item_code"},
	)

	QCResultCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_qc_results_total",
			Help: "Total number of QC inspections by outcome",
		},
		[]string{"result"},
	)

	InstallationsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_installations_total",
			Help: "Total number of field installations",
		},
	)

	FieldInspectionsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_field_inspections_total",
			Help: "Total number of field inspections by result",
		},
		[]string{"result"},
	)

	ReplacementsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_replacements_total",
			Help: "Total number of component replacements",
		},
	)

	InventoryLevelGauge = *promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_inventory_level",
			Help: "Current stock count per component type and warehouse",
		},
		[]string{"item_code", "warehouse_id"},
	)

	RequestOutcomeCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_replenishment_requests_total",
			Help: "Total number of replenishment request resolutions",
		},
		[]string{"outcome"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordAuthError increments the counter for a failed authentication
func RecordAuthError(reason string) {
	AuthErrorsCounter.WithLabelValues(reason).Inc()
}

// RecordComponentsGenerated increments the generation counter for an item code
func RecordComponentsGenerated(itemCode string, count int) {
	ComponentsGeneratedCounter.WithLabelValues(itemCode).Add(float64(count))
}

// RecordQCResult increments the QC outcome counter
func RecordQCResult(result string) {
	QCResultCounter.WithLabelValues(result).Inc()
}

// RecordFieldInspection increments the field inspection counter
func RecordFieldInspection(result string) {
	FieldInspectionsCounter.WithLabelValues(result).Inc()
}

// UpdateInventoryLevel sets the stock gauge for one item at one warehouse
func UpdateInventoryLevel(itemCode, warehouseID string, count float64) {
	InventoryLevelGauge.WithLabelValues(itemCode, warehouseID).Set(count)
}

// RecordRequestOutcome increments the replenishment resolution counter
func RecordRequestOutcome(outcome string) {
	RequestOutcomeCounter.WithLabelValues(outcome).Inc()
}
