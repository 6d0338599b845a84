package xopen

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"go.uber.org/zap"

	"github.com/DriesSchaumont/xopen/internal/codec"
	"github.com/DriesSchaumont/xopen/internal/codec/bzip2codec"
	"github.com/DriesSchaumont/xopen/internal/codec/gzipcodec"
	"github.com/DriesSchaumont/xopen/internal/codec/noopcodec"
	"github.com/DriesSchaumont/xopen/internal/codec/xzcodec"
	"github.com/DriesSchaumont/xopen/internal/piped"
	"github.com/DriesSchaumont/xopen/internal/registry"
	"github.com/DriesSchaumont/xopen/internal/sniff"
	"github.com/DriesSchaumont/xopen/internal/stats"
)

// maxAutoThreads caps the thread count resolved from ThreadsAuto.
// External compressors stop scaling well before the core count on big
// machines, and every thread costs memory in the child.
const maxAutoThreads = 4

// fallbackFor returns the in-process codec for a format.
func fallbackFor(format Format) codec.Codec {
	switch format {
	case sniff.Gzip:
		return gzipcodec.New()
	case sniff.Bzip2:
		return bzip2codec.New()
	case sniff.XZ:
		return xzcodec.New()
	default:
		return noopcodec.New()
	}
}

// readerOnly hides any Closer the source may carry so that a
// passthrough codec cannot hand the caller a second closer for it.
type readerOnly struct {
	io.Reader
}

// writerOnly is the write-side counterpart of readerOnly.
type writerOnly struct {
	io.Writer
}

// resolveThreads maps the ThreadsAuto sentinel to a concrete count.
func resolveThreads(threads int) int {
	if threads == ThreadsAuto {
		n := runtime.NumCPU()
		if n > maxAutoThreads {
			n = maxAutoThreads
		}
		return n
	}
	return threads
}

// newReadStream builds a decompressing reader over src. External
// programs are tried in registry order; any that is missing, fails the
// concatenation probe or fails to spawn is skipped, and the in-process
// codec serves the stream when none sticks. A pinned program is used
// as given with no probing and no fallback.
func (o *Opener) newReadStream(src io.Reader, format Format, cfg *options) (io.ReadCloser, error) {
	if format == sniff.None {
		return noopcodec.New().Reader(readerOnly{src})
	}

	threads := resolveThreads(cfg.threads)

	if cfg.program != "" {
		desc, ok := cfg.registry.Lookup(cfg.program)
		if !ok {
			desc = registry.Synthetic(cfg.program, format)
		}
		argv := append([]string{desc.Program}, desc.ReadArgs(threads)...)
		r, err := piped.NewReader(src, argv, cfg.logger)
		if err != nil {
			return nil, err
		}
		cfg.stats.IncCounter(stats.MetricPipedSelected, 1)
		return r, nil
	}

	if threads != 0 {
		for _, desc := range cfg.registry.Candidates(format, threads) {
			if !o.prober.CanExecute(desc.Program) {
				cfg.stats.IncCounter(stats.MetricProbeRejects, 1)
				continue
			}
			// Multi-member files are the norm after appends, so a gzip
			// program that stops at the first member is unusable.
			if format == sniff.Gzip && !o.prober.CanConcatenate(context.Background(), desc.Program) {
				cfg.stats.IncCounter(stats.MetricProbeRejects, 1)
				cfg.logger.Debug("program rejected by concatenation probe",
					zap.String("program", desc.Program))
				continue
			}
			argv := append([]string{desc.Program}, desc.ReadArgs(threads)...)
			r, err := piped.NewReader(src, argv, cfg.logger)
			if err != nil {
				cfg.stats.IncCounter(stats.MetricSpawnFailures, 1)
				cfg.logger.Debug("program failed to start",
					zap.String("program", desc.Program),
					zap.Error(err))
				continue
			}
			cfg.stats.IncCounter(stats.MetricPipedSelected, 1)
			return r, nil
		}
	}

	cfg.stats.IncCounter(stats.MetricFallbackSelected, 1)
	cfg.logger.Debug("using in-process codec",
		zap.Stringer("format", format))
	return fallbackFor(format).Reader(readerOnly{src})
}

// writePlan is the outcome of write-side selection, computed before the
// destination exists.
type writePlan struct {
	// descs are the external candidates to try, in order.
	descs []registry.Descriptor
	// fallback serves the stream when no candidate spawns. It is nil
	// when a pinned program rules fallback out.
	fallback codec.Codec
	level    int
	threads  int
}

// planWrite selects write candidates for a format and validates the
// compression level against them. It touches no file, so configuration
// errors surface before the destination is created or truncated.
func (o *Opener) planWrite(format Format, cfg *options) (writePlan, error) {
	plan := writePlan{level: cfg.level, threads: resolveThreads(cfg.threads)}

	if format == sniff.None {
		plan.fallback = noopcodec.New()
		return plan, nil
	}

	if cfg.program != "" {
		desc, ok := cfg.registry.Lookup(cfg.program)
		if !ok {
			desc = registry.Synthetic(cfg.program, format)
		}
		if err := desc.ValidateLevel(cfg.level); err != nil {
			return writePlan{}, fmt.Errorf("xopen: %w", err)
		}
		plan.descs = []registry.Descriptor{desc}
		return plan, nil
	}

	fallback := fallbackFor(format)
	if plan.threads != 0 {
		for _, desc := range cfg.registry.Candidates(format, plan.threads) {
			if desc.ValidateLevel(cfg.level) != nil {
				continue
			}
			if !o.prober.CanExecute(desc.Program) {
				cfg.stats.IncCounter(stats.MetricProbeRejects, 1)
				continue
			}
			plan.descs = append(plan.descs, desc)
		}
	}
	if len(plan.descs) == 0 {
		// The codec is the only remaining road, so its level domain
		// decides now.
		if err := fallback.ValidateLevel(cfg.level); err != nil {
			return writePlan{}, fmt.Errorf("xopen: %w", err)
		}
	}
	plan.fallback = fallback
	return plan, nil
}

// materializeWrite builds the compressing writer over dst from a plan.
func (o *Opener) materializeWrite(dst io.Writer, plan writePlan, cfg *options) (io.WriteCloser, error) {
	var lastErr error
	for _, desc := range plan.descs {
		argv := append([]string{desc.Program}, desc.WriteArgs(plan.level, plan.threads)...)
		w, err := piped.NewWriter(dst, argv, cfg.logger)
		if err != nil {
			lastErr = err
			cfg.stats.IncCounter(stats.MetricSpawnFailures, 1)
			cfg.logger.Debug("program failed to start",
				zap.String("program", desc.Program),
				zap.Error(err))
			continue
		}
		cfg.stats.IncCounter(stats.MetricPipedSelected, 1)
		return w, nil
	}

	if plan.fallback == nil {
		return nil, lastErr
	}
	if err := plan.fallback.ValidateLevel(plan.level); err != nil {
		return nil, fmt.Errorf("xopen: %w", err)
	}
	cfg.stats.IncCounter(stats.MetricFallbackSelected, 1)
	w, err := plan.fallback.Writer(writerOnly{dst}, plan.level)
	if err != nil {
		return nil, err
	}
	return w, nil
}
