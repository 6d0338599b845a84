// Package analysis provides statistical comparison of benchmark
// samples.
package analysis

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DescriptiveStats summarizes one sample of measurements.
type DescriptiveStats struct {
	N      int
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
	P25    float64
	P75    float64
}

// Describe computes descriptive statistics for a sample.
func Describe(sample []float64) *DescriptiveStats {
	if len(sample) == 0 {
		return &DescriptiveStats{}
	}
	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	return &DescriptiveStats{
		N:      len(sample),
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		StdDev: stat.StdDev(sorted, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		P25:    stat.Quantile(0.25, stat.Empirical, sorted, nil),
		P75:    stat.Quantile(0.75, stat.Empirical, sorted, nil),
	}
}

// MannWhitneyResult is the outcome of a Mann-Whitney U test.
type MannWhitneyResult struct {
	U           float64
	Z           float64 // normal approximation
	PValue      float64 // two-tailed
	Significant bool    // p < 0.05
}

// MannWhitneyU tests whether two samples come from different
// distributions. It is non-parametric, which suits throughput
// measurements: they are skewed and occasionally contain stragglers.
func MannWhitneyU(sample1, sample2 []float64) *MannWhitneyResult {
	n1, n2 := float64(len(sample1)), float64(len(sample2))
	if n1 == 0 || n2 == 0 {
		return &MannWhitneyResult{PValue: 1}
	}

	ranks := rankAll(sample1, sample2)
	var r1 float64
	for i := range sample1 {
		r1 += ranks[i]
	}

	u1 := r1 - n1*(n1+1)/2
	u := math.Min(u1, n1*n2-u1)

	mu := n1 * n2 / 2
	sigma := math.Sqrt(n1 * n2 * (n1 + n2 + 1) / 12)
	var z float64
	if sigma > 0 {
		z = (u - mu) / sigma
	}
	p := 2 * normalCDF(-math.Abs(z))

	return &MannWhitneyResult{U: u, Z: z, PValue: p, Significant: p < 0.05}
}

// rankAll ranks the concatenation of both samples, averaging ties, and
// returns the ranks in input order with sample1 first.
func rankAll(sample1, sample2 []float64) []float64 {
	n := len(sample1) + len(sample2)
	values := make([]float64, 0, n)
	values = append(values, sample1...)
	values = append(values, sample2...)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && values[order[j]] == values[order[i]] {
			j++
		}
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}
	return ranks
}

func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// EffectSize quantifies how far apart two samples sit in units of
// their pooled spread.
type EffectSize struct {
	CohensD        float64
	Interpretation string // negligible, small, medium, large
}

// ComputeEffectSize computes Cohen's d for two samples.
func ComputeEffectSize(sample1, sample2 []float64) *EffectSize {
	if len(sample1) < 2 || len(sample2) < 2 {
		return &EffectSize{Interpretation: "undefined"}
	}

	n1, n2 := float64(len(sample1)), float64(len(sample2))
	pooled := math.Sqrt(((n1-1)*stat.Variance(sample1, nil) + (n2-1)*stat.Variance(sample2, nil)) / (n1 + n2 - 2))

	var d float64
	if pooled > 0 {
		d = (stat.Mean(sample1, nil) - stat.Mean(sample2, nil)) / pooled
	}
	return &EffectSize{CohensD: d, Interpretation: interpretCohensD(math.Abs(d))}
}

func interpretCohensD(d float64) string {
	switch {
	case d < 0.2:
		return "negligible"
	case d < 0.5:
		return "small"
	case d < 0.8:
		return "medium"
	default:
		return "large"
	}
}

// BootstrapResult is a confidence interval for the difference of means.
type BootstrapResult struct {
	MeanDiff   float64
	LowerBound float64
	UpperBound float64
	Confidence float64 // e.g. 0.95
}

// bootstrapSeed fixes the resampling sequence so repeated runs over the
// same measurements report the same interval.
const bootstrapSeed = 42

// BootstrapConfidenceInterval estimates a confidence interval for
// mean(sample1) - mean(sample2) by percentile bootstrap.
func BootstrapConfidenceInterval(sample1, sample2 []float64, iterations int, confidence float64) *BootstrapResult {
	if len(sample1) == 0 || len(sample2) == 0 || iterations <= 0 {
		return &BootstrapResult{Confidence: confidence}
	}

	rng := rand.New(rand.NewSource(bootstrapSeed))
	diffs := make([]float64, iterations)
	buf1 := make([]float64, len(sample1))
	buf2 := make([]float64, len(sample2))
	for i := range diffs {
		resampleInto(rng, sample1, buf1)
		resampleInto(rng, sample2, buf2)
		diffs[i] = stat.Mean(buf1, nil) - stat.Mean(buf2, nil)
	}
	sort.Float64s(diffs)

	alpha := 1 - confidence
	lo := int(alpha / 2 * float64(iterations))
	hi := int((1 - alpha/2) * float64(iterations))
	if hi >= iterations {
		hi = iterations - 1
	}

	return &BootstrapResult{
		MeanDiff:   stat.Mean(sample1, nil) - stat.Mean(sample2, nil),
		LowerBound: diffs[lo],
		UpperBound: diffs[hi],
		Confidence: confidence,
	}
}

// resampleInto fills dst with a bootstrap resample of src.
func resampleInto(rng *rand.Rand, src, dst []float64) {
	for i := range dst {
		dst[i] = src[rng.Intn(len(src))]
	}
}
