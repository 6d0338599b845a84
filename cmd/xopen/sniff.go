package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/DriesSchaumont/xopen"
)

var sniffCmd = &cobra.Command{
	Use:   "sniff FILE...",
	Short: "Report the compression format of files",
	Long: `Report the compression format of each FILE, judged by its leading
magic bytes rather than its name.

Examples:
  xopen sniff *.gz *.xz
  xopen sniff mystery-download`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSniff,
}

func init() {
	rootCmd.AddCommand(sniffCmd)
}

func runSniff(cmd *cobra.Command, args []string) error {
	for _, name := range args {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		head := make([]byte, 16)
		n, err := io.ReadFull(f, head)
		f.Close()
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		fmt.Printf("%s: %s\n", name, xopen.DetectFormat(head[:n]))
	}
	return nil
}
