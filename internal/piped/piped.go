// Package piped runs external compression programs as child processes
// wired directly to the files they read or write, so stream data
// crosses the calling process at most once.
//
// A Reader hands the source file to the child as stdin and reads
// decompressed output from a pipe. A Writer feeds a pipe that the child
// compresses onto the destination file. The kernel pipe plus the
// child's own scheduling form the feed/drain loop; no byte cycles
// through the calling process, so the classic subprocess pipe deadlock
// cannot occur.
package piped

import (
	"bytes"
	"strings"
	"time"
)

// waitDelay bounds how long Wait may linger on stuck I/O copiers after
// the child has exited.
const waitDelay = 10 * time.Second

// stderrSuffix formats captured stderr for inclusion in an error
// message. Empty when the child wrote nothing.
func stderrSuffix(buf *bytes.Buffer) string {
	msg := strings.TrimSpace(buf.String())
	if msg == "" {
		return ""
	}
	return " (stderr: " + msg + ")"
}
