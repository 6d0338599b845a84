package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/DriesSchaumont/xopen"
)

var compressCmd = &cobra.Command{
	Use:   "compress [FILE...]",
	Short: "Compress files",
	Long: `Compress each FILE into FILE plus the format's extension. The
originals stay in place unless --rm is given. With no FILE, or when
FILE is -, standard input is compressed to standard output.

Examples:
  # big.log -> big.log.gz
  xopen compress big.log

  # xz at the best level, four files at a time
  xopen compress --format xz --level 9 --jobs 4 *.log

  # Stream stdin to stdout
  tar c ./dir | xopen compress > dir.tar.gz`,
	RunE: runCompress,
}

var (
	compressLevel   int
	compressThreads int
	compressFormat  string
	compressJobs    int
	compressRemove  bool
)

func init() {
	compressCmd.Flags().IntVarP(&compressLevel, "level", "l", xopen.DefaultLevel, "compression level (-1 = program default)")
	compressCmd.Flags().IntVarP(&compressThreads, "threads", "p", xopen.ThreadsAuto, "compression threads, 0 disables external programs (-1 = auto)")
	compressCmd.Flags().StringVarP(&compressFormat, "format", "f", "gzip", "output format: gzip, bzip2, xz")
	compressCmd.Flags().IntVarP(&compressJobs, "jobs", "j", 1, "number of files to compress in parallel")
	compressCmd.Flags().BoolVar(&compressRemove, "rm", false, "remove source files after compressing")
	rootCmd.AddCommand(compressCmd)
}

func runCompress(cmd *cobra.Command, args []string) error {
	format, forced, err := parseFormat(compressFormat)
	if err != nil {
		return err
	}
	if !forced || format == xopen.FormatNone {
		return fmt.Errorf("compress needs a concrete output format: gzip, bzip2 or xz")
	}

	logger := buildLogger()
	opts := []xopen.Option{
		xopen.WithFormat(format),
		xopen.WithLevel(compressLevel),
		xopen.WithThreads(compressThreads),
		xopen.WithLogger(logger),
	}

	if len(args) == 0 {
		args = []string{"-"}
	}
	if len(args) == 1 && args[0] == "-" {
		return compressOne("-", "-", opts)
	}

	g := new(errgroup.Group)
	g.SetLimit(compressJobs)
	for _, name := range args {
		g.Go(func() error {
			if name == "-" {
				return fmt.Errorf("- cannot be mixed with named files")
			}
			out := name + format.Extension()
			if err := compressOne(name, out, opts); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if compressRemove {
				return os.Remove(name)
			}
			return nil
		})
	}
	return g.Wait()
}

// compressOne streams src into dst through a compressing writer. The
// source is opened with FormatNone so already-compressed inputs pass
// through byte for byte rather than being decoded first.
func compressOne(src, dst string, opts []xopen.Option) error {
	in, err := xopen.Open(src, "rb", xopen.WithFormat(xopen.FormatNone))
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := xopen.Open(dst, "wb", opts...)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
