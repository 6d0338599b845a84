// Package main provides the xopen-bench CLI tool for benchmarking
// compression backends with real input data.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DriesSchaumont/xopen"
	"github.com/DriesSchaumont/xopen/benchmark/analysis"
	"github.com/DriesSchaumont/xopen/benchmark/measure"
	"github.com/DriesSchaumont/xopen/benchmark/reporting"
)

var (
	inputFile    string
	formatName   string
	backendNames []string
	trials       int
	level        int
	outputFormat string
	outputFile   string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "xopen-bench",
	Short: "Benchmark compression backends for xopen",
	Long: `xopen-bench compares external compression programs against the
in-process codecs using real input data.

It times repeated compression and decompression of the input through each
backend and reports per-backend throughput with statistical comparisons
against a baseline.

Examples:
  # Compare every installed gzip backend
  xopen-bench run --input corpus.txt

  # Compare specific backends at level 9
  xopen-bench run --input corpus.txt --backends in-process,pigz --level 9

  # Output as markdown report
  xopen-bench run --input corpus.txt --report markdown --output report.md`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark trials",
	RunE:  runBenchmark,
}

func init() {
	runCmd.Flags().StringVarP(&inputFile, "input", "i", "", "input file used as the benchmark corpus (compressed input is decompressed first)")
	runCmd.Flags().StringVarP(&formatName, "format", "f", "gzip", "compression format: gzip, bzip2, xz")
	runCmd.Flags().StringSliceVarP(&backendNames, "backends", "b", []string{"auto"}, "backends to compare: auto, in-process, or a program name")
	runCmd.Flags().IntVarP(&trials, "trials", "n", 10, "trials per backend")
	runCmd.Flags().IntVarP(&level, "level", "l", xopen.DefaultLevel, "compression level")
	runCmd.Flags().StringVar(&outputFormat, "report", "text", "report format: text, markdown")
	runCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	runCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(formatName)
	if err != nil {
		return err
	}

	// Read the corpus through xopen itself so compressed inputs work.
	if verbose {
		fmt.Fprintln(os.Stderr, "Reading input...")
	}

	in, err := xopen.Open(inputFile, "rb")
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	data, err := io.ReadAll(in)
	if cerr := in.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("no data in %s", inputFile)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Read %d bytes from %s\n", len(data), inputFile)
	}

	backends, err := collectBackends(format, backendNames)
	if err != nil {
		return err
	}

	workDir, err := os.MkdirTemp("", "xopen-bench-*")
	if err != nil {
		return fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Run trials.
	runner := measure.NewRunner(workDir, trials)
	var compressResults, decompressResults []*measure.Result

	for _, backend := range backends {
		if verbose {
			fmt.Fprintf(os.Stderr, "Measuring %s...\n", backend.name)
		}

		compressOpts := backend.opts
		if level != xopen.DefaultLevel {
			compressOpts = append(append([]xopen.Option{}, backend.opts...), xopen.WithLevel(level))
		}

		cres, err := runner.Compress(backend.name, data, format, compressOpts...)
		if err != nil {
			return fmt.Errorf("compressing with %s: %w", backend.name, err)
		}
		compressResults = append(compressResults, cres)

		dres, err := runner.Decompress(backend.name, runner.CompressedPath(format), backend.opts...)
		if err != nil {
			return fmt.Errorf("decompressing with %s: %w", backend.name, err)
		}
		decompressResults = append(decompressResults, dres)
	}

	// Perform statistical comparison against the baseline backend.
	baseline := compressResults[0].Label
	for _, res := range compressResults {
		if res.Label == "in-process" {
			baseline = res.Label
			break
		}
	}

	compressComp := analysis.CompareAll(compressResults, baseline, 10000, 0.95)
	decompressComp := analysis.CompareAll(decompressResults, baseline, 10000, 0.95)

	// Output results.
	var output io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	results := append(append([]*measure.Result{}, compressResults...), decompressResults...)

	switch outputFormat {
	case "markdown":
		return writeMarkdownReport(output, int64(len(data)), results, compressComp, decompressComp)
	default:
		return writeTextReport(output, int64(len(data)), results, compressComp, decompressComp)
	}
}

// backendConfig names one way of running a format: the in-process codec
// or a pinned external program.
type backendConfig struct {
	name string
	opts []xopen.Option
}

func collectBackends(format xopen.Format, names []string) ([]backendConfig, error) {
	var configs []backendConfig
	seen := make(map[string]bool)

	add := func(c backendConfig) {
		if !seen[c.name] {
			seen[c.name] = true
			configs = append(configs, c)
		}
	}
	inProcess := backendConfig{name: "in-process", opts: []xopen.Option{xopen.WithThreads(0)}}

	for _, name := range names {
		switch strings.ToLower(name) {
		case "auto":
			add(inProcess)
			for _, desc := range xopen.DefaultRegistry().Candidates(format, 1) {
				if _, err := exec.LookPath(desc.Program); err != nil {
					continue
				}
				add(backendConfig{name: desc.Program, opts: []xopen.Option{xopen.WithProgram(desc.Program)}})
			}
		case "in-process":
			add(inProcess)
		default:
			if _, err := exec.LookPath(name); err != nil {
				return nil, fmt.Errorf("backend %s: %w", name, err)
			}
			add(backendConfig{name: name, opts: []xopen.Option{xopen.WithProgram(name)}})
		}
	}

	if len(configs) == 0 {
		return nil, errors.New("no backends available")
	}
	return configs, nil
}

func parseFormat(name string) (xopen.Format, error) {
	switch strings.ToLower(name) {
	case "gzip", "gz":
		return xopen.FormatGzip, nil
	case "bzip2", "bz2":
		return xopen.FormatBzip2, nil
	case "xz":
		return xopen.FormatXZ, nil
	default:
		return xopen.FormatNone, fmt.Errorf("unknown format: %s", name)
	}
}

func writeTextReport(w io.Writer, inputBytes int64, results []*measure.Result, comps ...*analysis.MultiBackendComparison) error {
	fmt.Fprintf(w, "xopen Backend Benchmark\n")
	fmt.Fprintf(w, "=======================\n\n")
	fmt.Fprintf(w, "Input: %.2f MB\n", float64(inputBytes)/(1<<20))
	fmt.Fprintf(w, "Trials: %d\n\n", trials)

	fmt.Fprintf(w, "Results:\n")
	fmt.Fprintf(w, "--------\n\n")

	for _, res := range results {
		stats := analysis.Describe(res.Throughputs())
		fmt.Fprintf(w, "%s (%s):\n", res.Label, res.Op)
		fmt.Fprintf(w, "  Mean throughput:   %.2f MB/s\n", stats.Mean)
		fmt.Fprintf(w, "  Median throughput: %.2f MB/s\n", stats.Median)
		fmt.Fprintf(w, "  Std dev:           %.2f MB/s\n", stats.StdDev)
		if res.Op == measure.OpCompress {
			fmt.Fprintf(w, "  Compression ratio: %.3f\n", res.Ratio())
		}
		fmt.Fprintln(w)
	}

	wroteHeading := false
	for _, multi := range comps {
		if multi == nil || len(multi.Comparisons) == 0 {
			continue
		}
		if !wroteHeading {
			fmt.Fprintf(w, "Statistical Analysis:\n")
			fmt.Fprintf(w, "---------------------\n\n")
			wroteHeading = true
		}
		for _, comp := range multi.Comparisons {
			fmt.Fprintln(w, comp.Summary())
		}
	}

	return nil
}

func writeMarkdownReport(w io.Writer, inputBytes int64, results []*measure.Result, comps ...*analysis.MultiBackendComparison) error {
	report := reporting.NewMarkdownReport(w)
	report.WriteHeader("xopen Backend Benchmark")
	report.WriteMethodology(inputBytes, trials)
	report.WriteSummaryTable(results)

	for _, multi := range comps {
		if multi == nil {
			continue
		}
		for _, comp := range multi.Comparisons {
			report.WriteComparison(comp)
		}
	}

	for _, res := range results {
		report.WriteDistributionChart(fmt.Sprintf("%s %s", res.Label, res.Op), res.Throughputs())
	}

	report.WriteFooter()
	return nil
}
