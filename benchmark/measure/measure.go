// Package measure runs timed compression trials against xopen backends.
package measure

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/DriesSchaumont/xopen"
)

// Operations a trial can measure.
const (
	OpCompress   = "compress"
	OpDecompress = "decompress"
)

// Sample is one timed trial.
type Sample struct {
	Elapsed      time.Duration
	Uncompressed int64
	Compressed   int64
}

// Throughput returns the uncompressed-side throughput in MB/s, which
// makes compress and decompress trials comparable.
func (s Sample) Throughput() float64 {
	secs := s.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.Uncompressed) / (1 << 20) / secs
}

// Result aggregates the trials of one backend and operation.
type Result struct {
	Label   string
	Op      string
	Samples []Sample
}

// Throughputs returns the per-trial throughputs for statistical
// analysis.
func (r *Result) Throughputs() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Throughput()
	}
	return out
}

// Ratio returns the overall compressed/uncompressed size ratio.
func (r *Result) Ratio() float64 {
	var in, out int64
	for _, s := range r.Samples {
		in += s.Uncompressed
		out += s.Compressed
	}
	if in == 0 {
		return 0
	}
	return float64(out) / float64(in)
}

// Runner times compression work in a scratch directory.
type Runner struct {
	dir    string
	trials int
}

// NewRunner creates a Runner writing its artifacts under dir.
func NewRunner(dir string, trials int) *Runner {
	if trials < 1 {
		trials = 1
	}
	return &Runner{dir: dir, trials: trials}
}

// Compress writes data through a compressing handle once per trial.
// The last trial's output stays on disk at CompressedPath.
func (r *Runner) Compress(label string, data []byte, format xopen.Format, opts ...xopen.Option) (*Result, error) {
	path := r.CompressedPath(format)
	full := append([]xopen.Option{xopen.WithFormat(format)}, opts...)
	res := &Result{Label: label, Op: OpCompress}

	for i := 0; i < r.trials; i++ {
		start := time.Now()
		f, err := xopen.Open(path, "wb", full...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		elapsed := time.Since(start)

		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		res.Samples = append(res.Samples, Sample{
			Elapsed:      elapsed,
			Uncompressed: int64(len(data)),
			Compressed:   info.Size(),
		})
	}
	return res, nil
}

// CompressedPath returns where Compress leaves its output, so the same
// artifact can feed Decompress.
func (r *Runner) CompressedPath(format xopen.Format) string {
	return filepath.Join(r.dir, "trial"+format.Extension())
}

// Decompress reads path through a decompressing handle once per trial,
// discarding the output.
func (r *Runner) Decompress(label, path string, opts ...xopen.Option) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	res := &Result{Label: label, Op: OpDecompress}

	for i := 0; i < r.trials; i++ {
		start := time.Now()
		f, err := xopen.Open(path, "rb", opts...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		n, err := io.Copy(io.Discard, f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		res.Samples = append(res.Samples, Sample{
			Elapsed:      time.Since(start),
			Uncompressed: n,
			Compressed:   info.Size(),
		})
	}
	return res, nil
}
