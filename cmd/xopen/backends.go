package main

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/DriesSchaumont/xopen"
	"github.com/DriesSchaumont/xopen/internal/probe"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "Show which external compression programs are usable",
	Long: `List the external programs xopen knows about, whether they are
installed, and whether the gzip ones decode concatenated members.
Programs failing that check are never selected for reading.`,
	RunE: runBackends,
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}

func runBackends(cmd *cobra.Command, args []string) error {
	prober := probe.New()
	reg := xopen.DefaultRegistry()

	fmt.Printf("%-8s %-8s %-10s %s\n", "FORMAT", "PROGRAM", "STATUS", "PATH")
	for _, format := range []xopen.Format{xopen.FormatGzip, xopen.FormatBzip2, xopen.FormatXZ} {
		for _, desc := range reg.Candidates(format, 1) {
			path, err := exec.LookPath(desc.Program)
			switch {
			case err != nil:
				fmt.Printf("%-8s %-8s %-10s\n", format, desc.Program, "missing")
			case format == xopen.FormatGzip && !prober.CanConcatenate(context.Background(), desc.Program):
				fmt.Printf("%-8s %-8s %-10s %s\n", format, desc.Program, "rejected", path)
			default:
				fmt.Printf("%-8s %-8s %-10s %s\n", format, desc.Program, "ok", path)
			}
		}
	}
	return nil
}
