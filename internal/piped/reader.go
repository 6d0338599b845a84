package piped

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// Reader decompresses a stream by piping it through an external
// program. The source is handed to the child as stdin; decompressed
// bytes arrive through a kernel pipe.
//
// Reader does not close the source; the caller keeps ownership.
type Reader struct {
	program string
	cmd     *exec.Cmd
	out     *os.File // our end of the child's stdout pipe
	stderr  *bytes.Buffer
	logger  *zap.Logger

	mu        sync.Mutex
	closed    bool
	killed    bool
	waited    bool
	waitErr   error
	streamErr error // sticky; reported once through Read
}

// NewReader starts argv with src as stdin. When src is an *os.File the
// descriptor is passed straight to the child. A start failure leaves
// src untouched, so the caller may try another program.
func NewReader(src io.Reader, argv []string, logger *zap.Logger) (*Reader, error) {
	if len(argv) == 0 {
		return nil, errors.New("piped: empty argv")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	maximizePipe(outR)

	stderr := &bytes.Buffer{}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = src
	cmd.Stdout = outW
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		outR.Close()
		outW.Close()
		return nil, err
	}
	// The child holds its own copy of the write end.
	outW.Close()

	r := &Reader{
		program: argv[0],
		cmd:     cmd,
		out:     outR,
		stderr:  stderr,
		logger:  logger,
	}
	runtime.SetFinalizer(r, (*Reader).finalize)
	logger.Debug("started decompression process",
		zap.Strings("argv", argv),
		zap.Int("pid", cmd.Process.Pid))
	return r, nil
}

// Read returns decompressed bytes. At end of stream the child is
// reaped; an abnormal exit surfaces as an error wrapping
// io.ErrUnexpectedEOF, with the child's stderr attached. Truncated or
// corrupt input therefore always fails rather than ending early.
func (r *Reader) Read(p []byte) (int, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return 0, fs.ErrClosed
	}
	if r.streamErr != nil {
		err := r.streamErr
		r.mu.Unlock()
		return 0, err
	}
	r.mu.Unlock()

	n, err := r.out.Read(p)
	if err != io.EOF {
		return n, err
	}

	// End of pipe: reap the child and check how it went.
	r.mu.Lock()
	defer r.mu.Unlock()
	if waitErr := r.reap(); waitErr != nil {
		r.streamErr = fmt.Errorf("%s: decompression failed: %w: %w%s",
			r.program, waitErr, io.ErrUnexpectedEOF, stderrSuffix(r.stderr))
		return n, r.streamErr
	}
	return n, io.EOF
}

// Close terminates the stream. A child still running is killed and
// reaped; one that already failed is not re-reported if Read delivered
// the failure. Close is idempotent.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	runtime.SetFinalizer(r, nil)

	if !r.waited {
		if err := r.cmd.Process.Kill(); err == nil {
			r.killed = true
			r.logger.Debug("killed decompression process on close",
				zap.String("program", r.program))
		} else if !errors.Is(err, os.ErrProcessDone) {
			r.logger.Debug("kill failed", zap.String("program", r.program), zap.Error(err))
		}
	}
	waitErr := r.reap()
	closeErr := r.out.Close()

	if waitErr != nil && !r.killed && r.streamErr == nil {
		return fmt.Errorf("%s: decompression failed: %w%s",
			r.program, waitErr, stderrSuffix(r.stderr))
	}
	return closeErr
}

// reap waits for the child exactly once. Callers hold mu.
func (r *Reader) reap() error {
	if r.waited {
		return r.waitErr
	}
	r.waited = true
	err := r.cmd.Wait()
	if errors.Is(err, exec.ErrWaitDelay) {
		// The child exited fine; only a stuck stdin copier lingered.
		err = nil
	}
	r.waitErr = err
	return err
}

// finalize reaps abandoned readers. Correctness never depends on it;
// it only keeps a leaked handle from pinning a zombie child.
func (r *Reader) finalize() {
	_ = r.Close()
}
