package stats

// Noop discards every metric. It is the collector in effect when the
// caller does not install one.
type Noop struct{}

// Compile-time check that Noop implements Collector.
var _ Collector = (*Noop)(nil)

// NewNoop returns a collector that does nothing.
func NewNoop() *Noop {
	return &Noop{}
}

func (*Noop) IncCounter(string, int64)         {}
func (*Noop) SetGauge(string, int64)           {}
func (*Noop) ObserveHistogram(string, float64) {}
