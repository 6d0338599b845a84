package xopen

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/DriesSchaumont/xopen/internal/stats"
)

// bufferSize is the size of the buffer between the caller and the
// compression backend.
const bufferSize = 32 * 1024

// File is an open stream returned by Open. Reads hand out decompressed
// bytes and writes accept uncompressed ones; the compression happens in
// an external process or an in-process codec underneath.
//
// A File is either readable or writable, never both, and is not safe
// for concurrent use.
type File struct {
	name   string
	format Format
	mode   fileMode
	logger *zap.Logger
	stats  stats.Collector

	br *bufio.Reader // read handles only
	wr io.Writer     // write handles only

	// closers tears the stack down outside-in: flushers first, then
	// the backend, then the underlying file.
	closers []io.Closer
	closed  bool
	onClose func()
}

// Compile-time check of the io surface.
var _ io.ReadWriteCloser = (*File)(nil)

// Read reads decompressed bytes into p.
func (f *File) Read(p []byte) (int, error) {
	if f.closed {
		return 0, ErrClosed
	}
	if f.br == nil {
		return 0, ErrNotReadable
	}
	n, err := f.br.Read(p)
	if n > 0 {
		f.stats.IncCounter(stats.MetricBytesRead, int64(n))
	}
	return n, err
}

// ReadLine reads up to and including the next '\n'. A final line
// without a newline is returned as-is; the call after it reports
// io.EOF.
func (f *File) ReadLine() ([]byte, error) {
	if f.closed {
		return nil, ErrClosed
	}
	if f.br == nil {
		return nil, ErrNotReadable
	}
	line, err := f.br.ReadBytes('\n')
	if n := len(line); n > 0 {
		f.stats.IncCounter(stats.MetricBytesRead, int64(n))
		if err == io.EOF {
			return line, nil
		}
	}
	if len(line) == 0 {
		line = nil
	}
	return line, err
}

// Peek returns the next n decompressed bytes without consuming them.
// Fewer bytes come back without error when the stream or the buffer
// ends first; an empty stream reports io.EOF. Peek is a binary-mode
// affair and fails on text handles.
func (f *File) Peek(n int) ([]byte, error) {
	if f.closed {
		return nil, ErrClosed
	}
	if f.br == nil {
		return nil, ErrNotReadable
	}
	if f.mode.text {
		return nil, fmt.Errorf("xopen: peek on a text-mode file: %w", errors.ErrUnsupported)
	}
	head, err := f.br.Peek(n)
	if len(head) > 0 && (err == io.EOF || err == bufio.ErrBufferFull) {
		return head, nil
	}
	if len(head) == 0 {
		head = nil
	}
	return head, err
}

// Write compresses and writes p.
func (f *File) Write(p []byte) (int, error) {
	if f.closed {
		return 0, ErrClosed
	}
	if f.wr == nil {
		return 0, ErrNotWritable
	}
	n, err := f.wr.Write(p)
	if n > 0 {
		f.stats.IncCounter(stats.MetricBytesWritten, int64(n))
	}
	return n, err
}

// WriteString compresses and writes s.
func (f *File) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

// Close flushes buffered data, finalizes the compressed stream and
// releases the underlying file. It reports the first failure but keeps
// tearing the stack down past it. Closing twice is harmless.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if f.onClose != nil {
		defer f.onClose()
	}
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Closed reports whether Close has been called.
func (f *File) Closed() bool {
	return f.closed
}

// Name returns the name the file was opened with.
func (f *File) Name() string {
	return f.name
}

// Format returns the compression format in effect.
func (f *File) Format() Format {
	return f.format
}

// flusher turns a bufio.Writer into a Closer for the closer stack.
// Close only flushes; the layers below close themselves.
type flusher struct {
	*bufio.Writer
}

func (f flusher) Close() error {
	return f.Flush()
}

// newReadFile assembles the read-side stack: file, decompressing
// backend, optional UTF-8 validation, caller-facing buffer.
func newReadFile(name string, format Format, m fileMode, backend io.ReadCloser, src *os.File, keepOpen bool, cfg *options) *File {
	var top io.Reader = backend
	if m.text {
		top = transform.NewReader(top, encoding.UTF8Validator)
	}
	f := &File{
		name:   name,
		format: format,
		mode:   m,
		logger: cfg.logger,
		stats:  cfg.stats,
		br:     bufio.NewReaderSize(top, bufferSize),
	}
	f.closers = append(f.closers, backend)
	if !keepOpen {
		f.closers = append(f.closers, src)
	}
	f.logger.Debug("opened for reading",
		zap.String("name", name),
		zap.Stringer("format", format))
	return f
}

// newWriteFile assembles the write-side stack: caller-facing buffer,
// optional UTF-8 validation, compressing backend, file.
func newWriteFile(name string, format Format, m fileMode, backend io.WriteCloser, dst *os.File, keepOpen bool, cfg *options) *File {
	var top io.Writer = backend
	var tw *transform.Writer
	if m.text {
		tw = transform.NewWriter(backend, encoding.UTF8Validator)
		top = tw
	}
	bw := bufio.NewWriterSize(top, bufferSize)
	f := &File{
		name:   name,
		format: format,
		mode:   m,
		logger: cfg.logger,
		stats:  cfg.stats,
		wr:     bw,
	}
	f.closers = append(f.closers, flusher{bw})
	if tw != nil {
		f.closers = append(f.closers, tw)
	}
	f.closers = append(f.closers, backend)
	if !keepOpen {
		f.closers = append(f.closers, dst)
	}
	f.logger.Debug("opened for writing",
		zap.String("name", name),
		zap.Stringer("format", format))
	return f
}
