//go:build linux

package piped

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// pipeSizeCap keeps the kernel buffer request modest even on hosts
// configured with a very large fs.pipe-max-size.
const pipeSizeCap = 1 << 20

// maximizePipe grows the kernel buffer of the pipe behind f toward
// /proc/sys/fs/pipe-max-size. Larger buffers mean fewer wakeups between
// the child and us. Best effort; failures are ignored.
func maximizePipe(f *os.File) {
	raw, err := os.ReadFile("/proc/sys/fs/pipe-max-size")
	if err != nil {
		return
	}
	size, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || size <= 0 {
		return
	}
	if size > pipeSizeCap {
		size = pipeSizeCap
	}
	_, _ = unix.FcntlInt(f.Fd(), unix.F_SETPIPE_SZ, size)
}
