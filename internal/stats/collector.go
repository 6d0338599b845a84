// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Open path metrics.
	MetricOpens            = "xopen_opens_total"
	MetricPipedSelected    = "xopen_piped_selected_total"
	MetricFallbackSelected = "xopen_fallback_selected_total"
	MetricProbeRejects     = "xopen_probe_rejects_total"
	MetricSpawnFailures    = "xopen_spawn_failures_total"
	MetricOpenDuration     = "xopen_open_duration_seconds"

	// Handle metrics.
	MetricOpenHandles  = "xopen_open_handles"
	MetricBytesRead    = "xopen_bytes_read_total"
	MetricBytesWritten = "xopen_bytes_written_total"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
