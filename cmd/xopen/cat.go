package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/DriesSchaumont/xopen"
)

var catCmd = &cobra.Command{
	Use:   "cat [FILE...]",
	Short: "Decompress files to standard output",
	Long: `Concatenate files to standard output, decompressing gzip, bzip2 and
xz content on the way. The format is detected from each file's
content, so misnamed files decode correctly. With no FILE, or when
FILE is -, standard input is read.

Examples:
  # One compressed file
  xopen cat results.tsv.gz

  # Mixed formats concatenate fine
  xopen cat part1.gz part2.xz part3.txt

  # Decompress a stream
  curl -s https://example.com/data.gz | xopen cat`,
	RunE: runCat,
}

var (
	catThreads int
	catFormat  string
	catProgram string
)

func init() {
	catCmd.Flags().IntVarP(&catThreads, "threads", "p", xopen.ThreadsAuto, "decompression threads, 0 disables external programs (-1 = auto)")
	catCmd.Flags().StringVarP(&catFormat, "format", "f", "auto", "force the input format: auto, gzip, bzip2, xz, none")
	catCmd.Flags().StringVar(&catProgram, "program", "", "pin a specific external program")
	rootCmd.AddCommand(catCmd)
}

func runCat(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"-"}
	}

	format, forced, err := parseFormat(catFormat)
	if err != nil {
		return err
	}

	logger := buildLogger()
	opts := []xopen.Option{
		xopen.WithThreads(catThreads),
		xopen.WithLogger(logger),
	}
	if forced {
		opts = append(opts, xopen.WithFormat(format))
	}
	if catProgram != "" {
		opts = append(opts, xopen.WithProgram(catProgram))
	}

	for _, name := range args {
		f, err := xopen.Open(name, "rb", opts...)
		if err != nil {
			return err
		}
		if _, err := io.Copy(os.Stdout, f); err != nil {
			f.Close()
			return fmt.Errorf("reading %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
