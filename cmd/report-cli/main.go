package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "report-cli",
		Short: "Report API CLI - operator tooling for the report service",
		Long: `report-cli manages the report service outside of the HTTP API.

Examples:
  # Inspect the resolved configuration
  report-cli config show --format yaml

  # Prepare a PostgreSQL database
  report-cli db migrate
  report-cli db seed

  # Work with intent rules
  report-cli rules validate ./rules.yaml
  report-cli classify "Necesito comprar ordenadores"`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDBCmd())
	rootCmd.AddCommand(newRulesCmd())
	rootCmd.AddCommand(newClassifyCmd())

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	return rootCmd
}
