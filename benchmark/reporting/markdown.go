// Package reporting provides report generation for benchmark results.
package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/DriesSchaumont/xopen/benchmark/analysis"
	"github.com/DriesSchaumont/xopen/benchmark/measure"
)

// MarkdownReport generates benchmark reports in Markdown format.
type MarkdownReport struct {
	w io.Writer
}

// NewMarkdownReport creates a new Markdown report writer.
func NewMarkdownReport(w io.Writer) *MarkdownReport {
	return &MarkdownReport{w: w}
}

// WriteHeader writes the report header.
func (r *MarkdownReport) WriteHeader(title string) {
	fmt.Fprintf(r.w, "# %s\n\n", title)
	fmt.Fprintf(r.w, "Generated: %s\n\n", time.Now().Format(time.RFC3339))
}

// WriteMethodology writes the methodology section.
func (r *MarkdownReport) WriteMethodology(inputBytes int64, trials int) {
	fmt.Fprintln(r.w, "## Methodology")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Input size:** %.2f MB\n", float64(inputBytes)/(1<<20))
	fmt.Fprintf(r.w, "- **Trials per backend:** %d\n", trials)
	fmt.Fprintln(r.w, "- **Metric:** Uncompressed throughput in MB/s (higher is better)")
	fmt.Fprintln(r.w, "- **Statistical tests:** Mann-Whitney U (non-parametric), Cohen's d effect size")
	fmt.Fprintln(r.w)
}

// WriteSummaryTable writes the summary comparison table.
func (r *MarkdownReport) WriteSummaryTable(results []*measure.Result) {
	fmt.Fprintln(r.w, "## Summary")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Backend | Operation | Mean MB/s | Median MB/s | Ratio |")
	fmt.Fprintln(r.w, "|---------|-----------|-----------|-------------|-------|")

	for _, res := range results {
		stats := analysis.Describe(res.Throughputs())
		fmt.Fprintf(r.w, "| %s | %s | %.2f | %.2f | %.3f |\n",
			res.Label, res.Op, stats.Mean, stats.Median, res.Ratio())
	}
	fmt.Fprintln(r.w)
}

// WriteComparison writes a detailed comparison section.
func (r *MarkdownReport) WriteComparison(comp *analysis.BackendComparison) {
	fmt.Fprintf(r.w, "## %s vs %s (%s)\n\n", comp.Backend1, comp.Backend2, comp.Op)

	// Statistics table.
	fmt.Fprintln(r.w, "### Descriptive Statistics")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Metric | "+comp.Backend1+" | "+comp.Backend2+" |")
	fmt.Fprintln(r.w, "|--------|"+strings.Repeat("-", len(comp.Backend1)+2)+"|"+strings.Repeat("-", len(comp.Backend2)+2)+"|")
	fmt.Fprintf(r.w, "| Mean MB/s | %.2f | %.2f |\n", comp.Stats1.Mean, comp.Stats2.Mean)
	fmt.Fprintf(r.w, "| Median MB/s | %.2f | %.2f |\n", comp.Stats1.Median, comp.Stats2.Median)
	fmt.Fprintf(r.w, "| Std Dev | %.2f | %.2f |\n", comp.Stats1.StdDev, comp.Stats2.StdDev)
	fmt.Fprintf(r.w, "| Min | %.2f | %.2f |\n", comp.Stats1.Min, comp.Stats2.Min)
	fmt.Fprintf(r.w, "| Max | %.2f | %.2f |\n", comp.Stats1.Max, comp.Stats2.Max)
	fmt.Fprintln(r.w)

	// Statistical tests.
	fmt.Fprintln(r.w, "### Statistical Analysis")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Mann-Whitney U:** %.2f (z=%.2f, p=%.4f)\n",
		comp.MannWhitney.U, comp.MannWhitney.Z, comp.MannWhitney.PValue)
	fmt.Fprintf(r.w, "- **Effect size (Cohen's d):** %.2f (%s)\n",
		comp.EffectSize.CohensD, comp.EffectSize.Interpretation)
	fmt.Fprintf(r.w, "- **95%% CI for mean difference:** [%.2f, %.2f]\n",
		comp.BootstrapCI.LowerBound, comp.BootstrapCI.UpperBound)
	fmt.Fprintln(r.w)

	// Conclusion.
	fmt.Fprintln(r.w, "### Conclusion")
	fmt.Fprintln(r.w)
	if comp.WinnerConfident {
		fmt.Fprintf(r.w, "**%s** is significantly faster than %s ",
			comp.Winner, otherBackend(comp.Winner, comp.Backend1, comp.Backend2))
		fmt.Fprintf(r.w, "(p < 0.05, effect size: %s).\n", comp.EffectSize.Interpretation)
	} else {
		fmt.Fprintln(r.w, "No statistically significant difference detected between backends (p >= 0.05).")
	}
	fmt.Fprintln(r.w)
}

func otherBackend(winner, b1, b2 string) string {
	if winner == b1 {
		return b2
	}
	return b1
}

// WriteDistributionChart writes an ASCII distribution chart of
// per-trial throughputs.
func (r *MarkdownReport) WriteDistributionChart(name string, data []float64) {
	fmt.Fprintf(r.w, "### %s Distribution\n\n", name)
	fmt.Fprintln(r.w, "```")

	// Create histogram.
	edges, hist := makeHistogram(data, 10)
	maxCount := 0
	for _, count := range hist {
		if count > maxCount {
			maxCount = count
		}
	}

	// Print histogram.
	width := 40
	for i, count := range hist {
		barLen := 0
		if maxCount > 0 {
			barLen = count * width / maxCount
		}
		bar := strings.Repeat("█", barLen)
		fmt.Fprintf(r.w, "%8.1f-%8.1f │ %s %d\n", edges[i], edges[i+1], bar, count)
	}

	fmt.Fprintln(r.w, "```")
	fmt.Fprintln(r.w)
}

func makeHistogram(data []float64, buckets int) ([]float64, []int) {
	edges := make([]float64, buckets+1)
	if len(data) == 0 {
		return edges, make([]int, buckets)
	}

	min, max := data[0], data[0]
	for _, v := range data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if max == min {
		max = min + 1
	}

	hist := make([]int, buckets)
	bucketSize := (max - min) / float64(buckets)
	for i := range edges {
		edges[i] = min + float64(i)*bucketSize
	}

	for _, v := range data {
		bucket := int((v - min) / bucketSize)
		if bucket >= buckets {
			bucket = buckets - 1
		}
		hist[bucket]++
	}

	return edges, hist
}

// WriteFooter writes the report footer.
func (r *MarkdownReport) WriteFooter() {
	fmt.Fprintln(r.w, "---")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "*Report generated by xopen-bench*")
}
