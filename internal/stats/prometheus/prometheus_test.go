package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/DriesSchaumont/xopen/internal/stats"
)

func gatherValue(t *testing.T, reg *prometheus.Registry, name string) (float64, bool) {
	t.Helper()
	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, m := range metrics {
		if m.GetName() != name {
			continue
		}
		if len(m.GetMetric()) == 0 {
			t.Fatalf("metric %s has no samples", name)
		}
		sample := m.GetMetric()[0]
		switch {
		case sample.GetCounter() != nil:
			return sample.GetCounter().GetValue(), true
		case sample.GetGauge() != nil:
			return sample.GetGauge().GetValue(), true
		case sample.GetHistogram() != nil:
			return float64(sample.GetHistogram().GetSampleCount()), true
		}
	}
	return 0, false
}

func TestNew_RegistersFixedMetricSet(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	// Counters without samples do appear in Gather output once created.
	names := make(map[string]bool, len(metrics))
	for _, m := range metrics {
		names[m.GetName()] = true
	}
	for _, want := range []string{
		stats.MetricOpens,
		stats.MetricPipedSelected,
		stats.MetricFallbackSelected,
		stats.MetricProbeRejects,
		stats.MetricSpawnFailures,
		stats.MetricBytesRead,
		stats.MetricBytesWritten,
		stats.MetricOpenHandles,
		stats.MetricOpenDuration,
	} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

func TestCollector_IncCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.IncCounter(stats.MetricOpens, 5)
	c.IncCounter(stats.MetricOpens, 3)

	val, found := gatherValue(t, reg, stats.MetricOpens)
	if !found {
		t.Fatalf("counter %s not found in registry", stats.MetricOpens)
	}
	if val != 8 {
		t.Errorf("counter value = %v, want 8", val)
	}
}

func TestCollector_SetGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.SetGauge(stats.MetricOpenHandles, 42)

	val, found := gatherValue(t, reg, stats.MetricOpenHandles)
	if !found {
		t.Fatalf("gauge %s not found in registry", stats.MetricOpenHandles)
	}
	if val != 42 {
		t.Errorf("gauge value = %v, want 42", val)
	}
}

func TestCollector_ObserveHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveHistogram(stats.MetricOpenDuration, 0.002)
	c.ObserveHistogram(stats.MetricOpenDuration, 0.4)
	c.ObserveHistogram(stats.MetricOpenDuration, 1.5)

	count, found := gatherValue(t, reg, stats.MetricOpenDuration)
	if !found {
		t.Fatalf("histogram %s not found in registry", stats.MetricOpenDuration)
	}
	if count != 3 {
		t.Errorf("histogram count = %v, want 3", count)
	}
}

func TestCollector_UnknownNameDropped(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	// Must not panic and must not register anything new.
	c.IncCounter("xopen_unknown_total", 1)
	c.SetGauge("xopen_unknown", 1)
	c.ObserveHistogram("xopen_unknown_seconds", 1)

	if _, found := gatherValue(t, reg, "xopen_unknown_total"); found {
		t.Error("unknown counter was registered, want dropped")
	}
}

func TestCollector_AlreadyRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()

	// Pre-register a counter with a library name.
	existing := prometheus.NewCounter(prometheus.CounterOpts{
		Name: stats.MetricOpens,
		Help: "Streams opened, successfully or not.",
	})
	reg.MustRegister(existing)
	existing.Add(100)

	c := New(reg)
	c.IncCounter(stats.MetricOpens, 5)

	val, found := gatherValue(t, reg, stats.MetricOpens)
	if !found {
		t.Fatalf("counter %s not found in registry", stats.MetricOpens)
	}
	// 100 from the pre-registered counter plus 5 from the collector.
	if val != 105 {
		t.Errorf("counter value = %v, want 105", val)
	}
}

func TestCollector_ConcurrentAccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				c.IncCounter(stats.MetricBytesRead, 1)
				c.SetGauge(stats.MetricOpenHandles, int64(j))
				c.ObserveHistogram(stats.MetricOpenDuration, float64(j))
			}
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	val, found := gatherValue(t, reg, stats.MetricBytesRead)
	if !found {
		t.Fatalf("counter %s not found", stats.MetricBytesRead)
	}
	if val != 1000 { // 10 goroutines * 100 increments
		t.Errorf("counter value = %v, want 1000", val)
	}
}
