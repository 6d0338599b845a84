//go:build !linux

package piped

import "os"

// maximizePipe is a no-op where F_SETPIPE_SZ does not exist.
func maximizePipe(*os.File) {}
