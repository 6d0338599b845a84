package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DriesSchaumont/xopen"
)

var (
	// Global flags.
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "xopen",
	Short: "Read and write compressed files through external compressors",
	Long: `Xopen reads and writes gzip, bzip2 and xz files transparently.

Compression runs in external programs (igzip, pigz, gzip, pbzip2,
bzip2, xz) when they are installed, so large files stream through
other cores. In-process codecs take over when no program is found.

Examples:
  # Decompress a file to stdout, whatever its format
  xopen cat data.txt.gz

  # Compress a file with 4 threads
  xopen compress --threads 4 big.log

  # Show which external programs are usable
  xopen backends`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// buildLogger returns a debug logger when --verbose is set, so the
// program selection decisions become visible.
func buildLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// parseFormat maps a --format flag value to a Format. The bool reports
// whether a concrete format was forced.
func parseFormat(s string) (xopen.Format, bool, error) {
	switch s {
	case "auto":
		return xopen.FormatNone, false, nil
	case "gzip", "gz":
		return xopen.FormatGzip, true, nil
	case "bzip2", "bz2":
		return xopen.FormatBzip2, true, nil
	case "xz":
		return xopen.FormatXZ, true, nil
	case "none", "raw":
		return xopen.FormatNone, true, nil
	default:
		return xopen.FormatNone, false, fmt.Errorf("unknown format %q (use auto, gzip, bzip2, xz or none)", s)
	}
}
