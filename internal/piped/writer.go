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
	"syscall"

	"go.uber.org/zap"
)

// Writer compresses a stream by piping it through an external program.
// Written bytes feed the child's stdin through a kernel pipe; the child
// writes compressed output to the destination itself.
//
// Writer does not close the destination; the caller keeps ownership.
type Writer struct {
	program string
	cmd     *exec.Cmd
	in      *os.File // our end of the child's stdin pipe
	stderr  *bytes.Buffer
	logger  *zap.Logger

	mu       sync.Mutex
	closed   bool
	waited   bool
	waitErr  error
	writeErr error // sticky; reported through Write, not again by Close
}

// NewWriter starts argv with dst as stdout. When dst is an *os.File the
// descriptor is passed straight to the child, including its append
// flag, so each writing session emits a self-contained member.
func NewWriter(dst io.Writer, argv []string, logger *zap.Logger) (*Writer, error) {
	if len(argv) == 0 {
		return nil, errors.New("piped: empty argv")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	inR, inW, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	maximizePipe(inW)

	stderr := &bytes.Buffer{}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = inR
	cmd.Stdout = dst
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		inR.Close()
		inW.Close()
		return nil, err
	}
	// The child holds its own copy of the read end.
	inR.Close()

	w := &Writer{
		program: argv[0],
		cmd:     cmd,
		in:      inW,
		stderr:  stderr,
		logger:  logger,
	}
	runtime.SetFinalizer(w, (*Writer).finalize)
	logger.Debug("started compression process",
		zap.Strings("argv", argv),
		zap.Int("pid", cmd.Process.Pid))
	return w, nil
}

// Write feeds p to the compression program. A child that has died is
// reaped and its exit status and stderr surface in the returned error.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return 0, fs.ErrClosed
	}
	if w.writeErr != nil {
		err := w.writeErr
		w.mu.Unlock()
		return 0, err
	}
	w.mu.Unlock()

	n, err := w.in.Write(p)
	if err == nil || !errors.Is(err, syscall.EPIPE) {
		return n, err
	}

	// Broken pipe: the child is gone. Explain why.
	w.mu.Lock()
	defer w.mu.Unlock()
	if waitErr := w.reap(); waitErr != nil {
		w.writeErr = fmt.Errorf("%s: compression failed: %w%s",
			w.program, waitErr, stderrSuffix(w.stderr))
		return n, w.writeErr
	}
	return n, err
}

// Close signals end of input, waits for the child to flush its final
// block to the destination, and reports an abnormal exit. Close is
// idempotent.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	runtime.SetFinalizer(w, nil)

	// Closing the feed pipe is the child's EOF.
	pipeErr := w.in.Close()
	waitErr := w.reap()

	if waitErr != nil && w.writeErr == nil {
		return fmt.Errorf("%s: compression failed: %w%s",
			w.program, waitErr, stderrSuffix(w.stderr))
	}
	return pipeErr
}

// reap waits for the child exactly once. Callers hold mu.
func (w *Writer) reap() error {
	if w.waited {
		return w.waitErr
	}
	w.waited = true
	err := w.cmd.Wait()
	if errors.Is(err, exec.ErrWaitDelay) {
		err = nil
	}
	w.waitErr = err
	return err
}

// finalize flushes and reaps abandoned writers so a leaked handle does
// not pin a child waiting on stdin forever.
func (w *Writer) finalize() {
	_ = w.Close()
}

var _ io.WriteCloser = (*Writer)(nil)
