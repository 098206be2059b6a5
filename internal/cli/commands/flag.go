package commands

import (
	"github.com/spf13/cobra"

	"github.com/haystacklabs/haystack/internal/pipeline"
)

// NewFlagCommand creates the flag command and its classifier subcommands.
func NewFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flag",
		Short: "Run company classifiers",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "sweetspot",
			Short: "Flag companies with AI sweetspot signals",
			Long: `Classify every company by AI signals: an .ai or .io domain, "AI" in
the name, or AI/ML keywords in executive role text.`,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withPipeline(cmd, func(p *pipeline.Pipeline, _ string) error {
					return p.RunSweetspot(cmd.Context())
				})
			},
		},
		&cobra.Command{
			Use:   "traffic",
			Short: "Flag companies with top website traffic growth",
			Long: `Rank companies by traffic trend fit within each traffic bucket and
flag the top of each bucket as traffic priority.`,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withPipeline(cmd, func(p *pipeline.Pipeline, geo string) error {
					return p.RunTraffic(cmd.Context(), geo)
				})
			},
		},
	)
	return cmd
}
