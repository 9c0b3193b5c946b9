package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "phenosim",
	Short: "phenosim simulates cell populations driven by phenotype models",
	Long: `phenosim steps a population of cells through a phenotype model from the
built-in catalog, recording per-step series to SQLite or Postgres and the
final report to stdout, a file, or a blob store.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
