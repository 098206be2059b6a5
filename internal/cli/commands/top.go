package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewTopCommand creates the top command.
func NewTopCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Preview the geography's top-scored companies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig()
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			companies, err := s.TopCompanies(cmd.Context(), cfg.Geo, limit)
			if err != nil {
				return err
			}
			if len(companies) == 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No scored companies for %s\n", cfg.Geo)
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"#", "Company", "Website", "Score", "Founder Mean", "Sweetspot", "Traffic"})
			for i, c := range companies {
				t.AppendRow(table.Row{
					i + 1,
					c.CompanyName,
					c.PrimaryURL,
					fmt.Sprintf("%.2f", c.Score),
					fmt.Sprintf("%.2f", c.FounderScoreMean),
					c.IsSweetspot,
					c.IsTrafficPriority,
				})
			}
			t.SetStyle(table.StyleLight)
			t.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "How many companies to show")
	return cmd
}
