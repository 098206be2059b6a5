package commands

import (
	"github.com/spf13/cobra"

	"github.com/haystacklabs/haystack/internal/pipeline"
)

// NewScoreCommand creates the score command and its stage subcommands.
func NewScoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Run individual scoring stages",
		Long: `Run one scoring stage. Stages build on each other: educations and
roles feed persons, and persons feed companies. Use "haystack run" to
execute all stages in order.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "educations",
			Short: "Score every education record",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withPipeline(cmd, func(p *pipeline.Pipeline, _ string) error {
					return p.RunEducations(cmd.Context())
				})
			},
		},
		&cobra.Command{
			Use:   "roles",
			Short: "Score every role in the geography",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withPipeline(cmd, func(p *pipeline.Pipeline, geo string) error {
					return p.RunRoles(cmd.Context(), geo)
				})
			},
		},
		&cobra.Command{
			Use:   "persons",
			Short: "Aggregate role and education scores per person",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withPipeline(cmd, func(p *pipeline.Pipeline, geo string) error {
					return p.RunPersons(cmd.Context(), geo)
				})
			},
		},
		&cobra.Command{
			Use:   "companies",
			Short: "Compute the composite company score",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withPipeline(cmd, func(p *pipeline.Pipeline, geo string) error {
					return p.RunCompanies(cmd.Context(), geo)
				})
			},
		},
	)
	return cmd
}

// withPipeline opens the store, builds a pipeline and runs fn with the
// configured geography.
func withPipeline(cmd *cobra.Command, fn func(p *pipeline.Pipeline, geo string) error) error {
	cfg := getConfig()
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	return fn(pipeline.New(s, cfg, getLogger(cmd)), cfg.Geo)
}
