package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/haystacklabs/haystack/internal/report"
)

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	var out string
	var topN int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate an HTML snapshot of the geography's scores",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig()
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			ctx := cmd.Context()
			summary, err := s.ScoreSummary(ctx, cfg.Geo)
			if err != nil {
				return err
			}
			top, err := s.TopCompanies(ctx, cfg.Geo, topN)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create report file: %w", err)
			}
			defer func() { _ = f.Close() }()

			data := report.Data{
				Geo:         cfg.Geo,
				GeneratedAt: time.Now().UTC(),
				Summary:     summary,
				Top:         top,
			}
			if err := report.Render(f, data); err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "haystack-report.html", "Output file")
	cmd.Flags().IntVarP(&topN, "limit", "n", 40, "How many companies to include")
	return cmd
}
