// Package main provides the xopen CLI for reading, writing and
// inspecting compressed files.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
