package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/haystacklabs/haystack/internal/pipeline"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run every scoring stage in order",
		Long: `Run the full scoring pipeline for the configured geography:
educations, roles, persons, sweetspot, traffic, then companies.
Each stage atomically replaces its output partition, so reruns are safe.`,
		Example: `  # Score the default geography
  haystack run

  # Score a specific geography
  haystack run --geo ANZ`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			err := withPipeline(cmd, func(p *pipeline.Pipeline, geo string) error {
				return p.Run(cmd.Context(), geo)
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Completed in %s\n", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}
