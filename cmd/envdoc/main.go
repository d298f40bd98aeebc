// Command envdoc generates documentation for the server's environment
// variables.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/replaydeck/replaydeck/pkg/env"
)

func main() {
	var (
		format    string
		component string
	)

	cmd := &cobra.Command{
		Use:   "envdoc",
		Short: "List all environment variables the server reads",
		Long:  "Generate documentation for all environment variables in markdown or JSON format.",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "markdown", "md":
				fmt.Fprint(cmd.OutOrStdout(), env.ExportMarkdown(component))
			case "json":
				fmt.Fprint(cmd.OutOrStdout(), env.ExportJSON(component))
			default:
				return fmt.Errorf("unknown format %q: use markdown or json", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown, json")
	cmd.Flags().StringVar(&component, "component", "all", "Filter by component: server, storage, intelligence, testing, all")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
