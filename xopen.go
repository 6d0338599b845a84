// Package xopen opens files that may be gzip, bzip2 or xz compressed
// and reads or writes them transparently.
//
// Compression work is delegated to external programs (igzip, pigz,
// gzip, pbzip2, bzip2, xz) when they are installed, which moves the
// heavy lifting onto other cores and costs this process little more
// than shuffling pipe buffers. When no usable program exists, an
// in-process codec serves the stream instead. Callers see the same
// File either way.
//
// Example usage:
//
//	f, err := xopen.Open("data.txt.gz", "r")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
//	for {
//	    line, err := f.ReadLine()
//	    if err != nil {
//	        break
//	    }
//	    fmt.Print(string(line))
//	}
//
// When reading, the format is detected from the stream content, so a
// misleading file name does not matter. When writing, it follows the
// file name extension. The name "-" stands for standard input or
// output, which are never closed by Close.
package xopen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/DriesSchaumont/xopen/internal/probe"
	"github.com/DriesSchaumont/xopen/internal/registry"
	"github.com/DriesSchaumont/xopen/internal/sniff"
	"github.com/DriesSchaumont/xopen/internal/stats"
)

// Format identifies a compression format.
type Format = sniff.Format

// Formats understood by Open.
const (
	FormatNone  = sniff.None
	FormatGzip  = sniff.Gzip
	FormatBzip2 = sniff.Bzip2
	FormatXZ    = sniff.XZ
)

// DetectFormat classifies head, the first bytes of a stream, by its
// magic prefix. Streams shorter than sniff distance classify as
// FormatNone.
func DetectFormat(head []byte) Format {
	return sniff.DetectBytes(head)
}

// Descriptor describes one external compression program.
type Descriptor = registry.Descriptor

// Registry is an ordered table of external programs per format.
type Registry = registry.Registry

// NewRegistry builds a Registry from descriptors, preserving their
// order within each format.
func NewRegistry(descs ...Descriptor) *Registry {
	return registry.New(descs...)
}

// DefaultRegistry returns the built-in program table: igzip, pigz, gzip
// for gzip; pbzip2, bzip2 for bzip2; xz for xz.
func DefaultRegistry() *Registry {
	return registry.Default()
}

// Sentinel errors for well-defined error conditions.
var (
	// ErrClosed indicates the file has been closed.
	ErrClosed = errors.New("xopen: file already closed")

	// ErrNotReadable indicates a read on a file opened for writing.
	ErrNotReadable = errors.New("xopen: file not open for reading")

	// ErrNotWritable indicates a write on a file opened for reading.
	ErrNotWritable = errors.New("xopen: file not open for writing")
)

// Opener opens streams with a fixed base configuration. Construct one
// to share a logger, stats collector, program registry and probe cache
// across opens; per-call options still apply on top. An Opener is safe
// for concurrent use.
type Opener struct {
	base    options
	prober  *probe.Prober
	handles atomic.Int64
}

// NewOpener creates an Opener whose every Open starts from opts.
func NewOpener(opts ...Option) *Opener {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	return &Opener{base: cfg, prober: probe.New()}
}

// defaultOpener serves the package-level Open.
var defaultOpener = NewOpener()

// Open opens the named file with the default Opener. See Opener.Open.
func Open(name, mode string, opts ...Option) (*File, error) {
	return defaultOpener.Open(name, mode, opts...)
}

// Open opens the named file in the given mode ("r", "w" or "a",
// optionally suffixed with "t" for text or "b" for binary; text is the
// default).
//
// Reading detects the compression format from the stream content.
// Writing derives it from the file name extension (.gz, .bz2, .xz);
// other names receive plain bytes. Appending always emits a
// self-contained member, so the resulting multi-member file decodes as
// the concatenation of all sessions. The name "-" stands for the
// standard streams.
func (o *Opener) Open(name, mode string, opts ...Option) (*File, error) {
	start := time.Now()
	cfg := o.base
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	m, err := parseMode(mode)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.New("xopen: filename must not be empty")
	}

	cfg.stats.IncCounter(stats.MetricOpens, 1)

	var f *File
	if m.op == opRead {
		f, err = o.openRead(name, m, &cfg)
	} else {
		f, err = o.openWrite(name, m, &cfg)
	}
	if err != nil {
		return nil, err
	}

	cfg.stats.ObserveHistogram(stats.MetricOpenDuration, time.Since(start).Seconds())
	cfg.stats.SetGauge(stats.MetricOpenHandles, o.handles.Add(1))
	f.onClose = func() {
		cfg.stats.SetGauge(stats.MetricOpenHandles, o.handles.Add(-1))
	}
	return f, nil
}

// openRead resolves the source, sniffs the format and builds the
// decompressing read stack.
func (o *Opener) openRead(name string, m fileMode, cfg *options) (*File, error) {
	var (
		src      *os.File
		keepOpen bool
	)
	if name == "-" {
		src = os.Stdin
		keepOpen = true
	} else {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		src = f
	}

	head, rewound, err := sniffHead(src)
	if err != nil {
		if !keepOpen {
			src.Close()
		}
		return nil, fmt.Errorf("xopen: reading %s: %w", name, err)
	}

	format := cfg.format
	if !cfg.formatSet {
		format = sniff.DetectBytes(head)
	}

	// A non-seekable source replays the sniffed bytes in front of the
	// remaining stream.
	var input io.Reader = src
	if !rewound {
		input = io.MultiReader(bytes.NewReader(head), src)
	}

	backend, err := o.newReadStream(input, format, cfg)
	if err != nil {
		if !keepOpen {
			src.Close()
		}
		return nil, err
	}

	return newReadFile(name, format, m, backend, src, keepOpen, cfg), nil
}

// sniffHead reads up to sniff.MagicLen leading bytes from f and tries
// to seek back. A false rewound return means the bytes were consumed.
func sniffHead(f *os.File) (head []byte, rewound bool, err error) {
	buf := make([]byte, sniff.MagicLen)
	n, err := io.ReadFull(f, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	if err != nil {
		return nil, false, err
	}
	head = buf[:n]
	if _, serr := f.Seek(0, io.SeekStart); serr == nil {
		return head, true, nil
	}
	return head, false, nil
}

// openWrite resolves the format and destination and builds the
// compressing write stack. The compression level is checked before the
// destination is created, so a bad level never leaves an empty file
// behind.
func (o *Opener) openWrite(name string, m fileMode, cfg *options) (*File, error) {
	format := cfg.format
	if !cfg.formatSet {
		format = sniff.FromExtension(name)
	}

	plan, err := o.planWrite(format, cfg)
	if err != nil {
		return nil, err
	}

	var (
		dst      *os.File
		keepOpen bool
	)
	if name == "-" {
		dst = os.Stdout
		keepOpen = true
	} else {
		flags := os.O_WRONLY | os.O_CREATE
		if m.op == opAppend {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		f, err := os.OpenFile(name, flags, 0o666)
		if err != nil {
			return nil, err
		}
		dst = f
	}

	backend, err := o.materializeWrite(dst, plan, cfg)
	if err != nil {
		if !keepOpen {
			dst.Close()
		}
		return nil, err
	}

	return newWriteFile(name, format, m, backend, dst, keepOpen, cfg), nil
}
