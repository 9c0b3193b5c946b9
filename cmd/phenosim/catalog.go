package main

import (
	"github.com/spf13/cobra"

	"phenocore/pkg/phenotype"
)

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the built-in phenotype models",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range phenotype.Names() {
				cmd.Println(name)
			}
		},
	}
}

func init() {
	rootCmd.AddCommand(newCatalogCmd())
}
