package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haystacklabs/haystack/internal/export"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <prod|test|experiment>",
		Short: "Export top companies as an Affinity upload CSV",
		Long: `Export the geography's top-scored companies as an Affinity upload CSV
plus a smaller review CSV. The run mode is required:

  prod        write upload files and record companies in the upload
              tracker so they are never re-sent
  test        write mode-prefixed files, leave the tracker alone
  experiment  like test, for scoring experiments

Companies on the junk list or already in the upload tracker are always
excluded.`,
		Example: `  # Dry run
  haystack export test

  # Real upload for ANZ
  haystack export prod --geo ANZ`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("run mode argument is required (prod, test or experiment)")
			}
			_, err := export.ParseRunMode(args[0])
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := export.ParseRunMode(args[0])
			if err != nil {
				return err
			}

			cfg := getConfig()
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			res, err := export.New(s, getLogger(cmd)).Run(cmd.Context(), export.Options{
				Geo:          cfg.Geo,
				Mode:         mode,
				TopN:         cfg.TopN(),
				Owners:       cfg.Owners(cfg.Geo),
				JunkListPath: cfg.JunkList,
				OutDir:       cfg.ExportDir,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Companies == 0 {
				_, _ = fmt.Fprintln(out, "No companies to export")
				return nil
			}
			_, _ = fmt.Fprintf(out, "Exported %d companies (%d excluded)\n", res.Companies, res.Excluded)
			_, _ = fmt.Fprintf(out, "  upload: %s\n", res.AffinityPath)
			_, _ = fmt.Fprintf(out, "  review: %s\n", res.ReviewPath)
			if res.TrackerRows > 0 {
				_, _ = fmt.Fprintf(out, "  tracker: %d rows appended\n", res.TrackerRows)
			}
			return nil
		},
	}
	return cmd
}
