package analysis

import (
	"fmt"

	"github.com/DriesSchaumont/xopen/benchmark/measure"
)

// BackendComparison is a full statistical comparison of two backends'
// throughput on the same operation.
type BackendComparison struct {
	Backend1        string
	Backend2        string
	Op              string
	Stats1          *DescriptiveStats
	Stats2          *DescriptiveStats
	MannWhitney     *MannWhitneyResult
	EffectSize      *EffectSize
	BootstrapCI     *BootstrapResult
	Winner          string // backend with the higher mean throughput, or "tie"
	WinnerConfident bool   // true when the difference is statistically significant
}

// CompareBackends compares the throughput samples of two results.
func CompareBackends(result1, result2 *measure.Result, bootstrapIterations int, confidence float64) *BackendComparison {
	sample1 := result1.Throughputs()
	sample2 := result2.Throughputs()

	stats1 := Describe(sample1)
	stats2 := Describe(sample2)
	mw := MannWhitneyU(sample1, sample2)

	var winner string
	var confident bool
	switch {
	case stats1.Mean > stats2.Mean:
		winner = result1.Label
		confident = mw.Significant
	case stats2.Mean > stats1.Mean:
		winner = result2.Label
		confident = mw.Significant
	default:
		winner = "tie"
	}

	return &BackendComparison{
		Backend1:        result1.Label,
		Backend2:        result2.Label,
		Op:              result1.Op,
		Stats1:          stats1,
		Stats2:          stats2,
		MannWhitney:     mw,
		EffectSize:      ComputeEffectSize(sample1, sample2),
		BootstrapCI:     BootstrapConfidenceInterval(sample1, sample2, bootstrapIterations, confidence),
		Winner:          winner,
		WinnerConfident: confident,
	}
}

// Summary returns a human-readable account of the comparison.
func (c *BackendComparison) Summary() string {
	sig := "not statistically significant"
	if c.MannWhitney.Significant {
		sig = fmt.Sprintf("statistically significant (p=%.4f)", c.MannWhitney.PValue)
	}

	return fmt.Sprintf(
		"%s vs %s (%s):\n"+
			"  %s: mean=%.1f MB/s, median=%.1f, std=%.1f\n"+
			"  %s: mean=%.1f MB/s, median=%.1f, std=%.1f\n"+
			"  Difference: %.1f MB/s (%.1f%%)\n"+
			"  Effect size: %.2f (%s)\n"+
			"  Result: %s, %s",
		c.Backend1, c.Backend2, c.Op,
		c.Backend1, c.Stats1.Mean, c.Stats1.Median, c.Stats1.StdDev,
		c.Backend2, c.Stats2.Mean, c.Stats2.Median, c.Stats2.StdDev,
		c.Stats1.Mean-c.Stats2.Mean,
		safePctDiff(c.Stats1.Mean, c.Stats2.Mean),
		c.EffectSize.CohensD, c.EffectSize.Interpretation,
		c.Winner, sig,
	)
}

func safePctDiff(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return (a - b) / b * 100
}

// MultiBackendComparison compares several backends against a baseline.
type MultiBackendComparison struct {
	Baseline    string
	Comparisons []*BackendComparison
}

// CompareAll compares every result against the named baseline,
// preserving the input order.
func CompareAll(results []*measure.Result, baseline string, bootstrapIterations int, confidence float64) *MultiBackendComparison {
	var base *measure.Result
	for _, r := range results {
		if r.Label == baseline {
			base = r
			break
		}
	}
	if base == nil {
		return nil
	}

	multi := &MultiBackendComparison{Baseline: baseline}
	for _, r := range results {
		if r.Label == baseline {
			continue
		}
		multi.Comparisons = append(multi.Comparisons, CompareBackends(r, base, bootstrapIterations, confidence))
	}
	return multi
}
