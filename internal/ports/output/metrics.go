package output

import "time"

// MetricsCollector defines the secondary port for metrics collection.
type MetricsCollector interface {
	// IncOperation counts a geometry operation.
	IncOperation(op string, success bool)

	// ObserveOperationDuration records how long an operation took.
	ObserveOperationDuration(op string, duration time.Duration)

	// IncValidation counts a validity verdict per geometry type.
	IncValidation(geometryType string, valid bool)

	// SetCollectionsLoaded sets the number of loaded collections.
	SetCollectionsLoaded(count int)

	// SetCollectionsReady sets the number of validated collections.
	SetCollectionsReady(count int)

	// IncStorageOperations increments storage operation counter.
	IncStorageOperations(operation string, success bool)

	// ObserveStorageDuration records storage operation duration.
	ObserveStorageDuration(operation string, duration time.Duration)
}

// NoOpMetrics is a no-op implementation of MetricsCollector.
type NoOpMetrics struct{}

// IncOperation implements MetricsCollector.
func (n *NoOpMetrics) IncOperation(_ string, _ bool) {}

// ObserveOperationDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveOperationDuration(_ string, _ time.Duration) {}

// IncValidation implements MetricsCollector.
func (n *NoOpMetrics) IncValidation(_ string, _ bool) {}

// SetCollectionsLoaded implements MetricsCollector.
func (n *NoOpMetrics) SetCollectionsLoaded(_ int) {}

// SetCollectionsReady implements MetricsCollector.
func (n *NoOpMetrics) SetCollectionsReady(_ int) {}

// IncStorageOperations implements MetricsCollector.
func (n *NoOpMetrics) IncStorageOperations(_ string, _ bool) {}

// ObserveStorageDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveStorageDuration(_ string, _ time.Duration) {}
