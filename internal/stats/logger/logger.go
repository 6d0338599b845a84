// Package logger provides a stats collector that writes every metric
// update to a zap logger at debug level.
package logger

import (
	"go.uber.org/zap"

	"github.com/DriesSchaumont/xopen/internal/stats"
)

// Collector forwards metric updates to a zap logger. It is meant for
// tracing backend selection during development, not for production
// metric collection.
type Collector struct {
	log *zap.Logger
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New creates a collector logging through log.
// If log is nil, a no-op logger is used.
func New(log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{log: log}
}

// IncCounter logs a counter increment.
func (c *Collector) IncCounter(name string, delta int64) {
	c.log.Debug("counter incremented",
		zap.String("metric", name),
		zap.Int64("delta", delta),
	)
}

// SetGauge logs a gauge update.
func (c *Collector) SetGauge(name string, value int64) {
	c.log.Debug("gauge set",
		zap.String("metric", name),
		zap.Int64("value", value),
	)
}

// ObserveHistogram logs a histogram observation.
func (c *Collector) ObserveHistogram(name string, value float64) {
	c.log.Debug("histogram observed",
		zap.String("metric", name),
		zap.Float64("value", value),
	)
}
