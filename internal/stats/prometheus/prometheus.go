// Package prometheus provides a Prometheus-based stats collector.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/DriesSchaumont/xopen/internal/stats"
)

// Collector implements stats.Collector with metrics pre-registered for
// the library's fixed metric set. Names outside that set are dropped,
// so a typo cannot grow the registry at runtime.
type Collector struct {
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New creates a new Prometheus collector with every library metric
// registered on registry. If registry is nil,
// prometheus.DefaultRegisterer is used.
func New(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	c := &Collector{
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}

	counterHelp := map[string]string{
		stats.MetricOpens:            "Streams opened, successfully or not.",
		stats.MetricPipedSelected:    "Streams served by an external compression program.",
		stats.MetricFallbackSelected: "Streams served by the in-process fallback codec.",
		stats.MetricProbeRejects:     "Candidate programs rejected by capability probing.",
		stats.MetricSpawnFailures:    "Candidate programs that failed to start.",
		stats.MetricBytesRead:        "Decompressed bytes handed to callers.",
		stats.MetricBytesWritten:     "Uncompressed bytes accepted from callers.",
	}
	for name, help := range counterHelp {
		c.counters[name] = registerCounter(registry, name, help)
	}

	c.gauges[stats.MetricOpenHandles] = registerGauge(registry,
		stats.MetricOpenHandles, "Handles currently open.")

	c.histograms[stats.MetricOpenDuration] = registerHistogram(registry,
		stats.MetricOpenDuration, "Time from Open to a usable handle.",
		// Opens range from a cheap in-process wrap to probe plus spawn.
		prometheus.ExponentialBuckets(0.0005, 2, 12))

	return c
}

// IncCounter increments a counter metric.
func (c *Collector) IncCounter(name string, delta int64) {
	if counter, ok := c.counters[name]; ok {
		counter.Add(float64(delta))
	}
}

// SetGauge sets a gauge metric.
func (c *Collector) SetGauge(name string, value int64) {
	if gauge, ok := c.gauges[name]; ok {
		gauge.Set(float64(value))
	}
}

// ObserveHistogram records a value in a histogram.
func (c *Collector) ObserveHistogram(name string, value float64) {
	if histogram, ok := c.histograms[name]; ok {
		histogram.Observe(value)
	}
}

func registerCounter(registry prometheus.Registerer, name, help string) prometheus.Counter {
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	if err := registry.Register(counter); err != nil {
		// If already registered, reuse the existing metric.
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing
			}
		}
	}
	return counter
}

func registerGauge(registry prometheus.Registerer, name, help string) prometheus.Gauge {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	if err := registry.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing
			}
		}
	}
	return gauge
}

func registerHistogram(registry prometheus.Registerer, name, help string, buckets []float64) prometheus.Histogram {
	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    name,
		Help:    help,
		Buckets: buckets,
	})
	if err := registry.Register(histogram); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing
			}
		}
	}
	return histogram
}
