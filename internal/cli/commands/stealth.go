package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haystacklabs/haystack/internal/export"
)

// NewStealthCommand creates the stealth command.
func NewStealthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stealth <prod|test|experiment>",
		Short: "Export this week's stealth-role founders as an Affinity upload CSV",
		Long: `Export founders who started a stealth role, scored positively, and were
scraped since the start of the week. Stealth founders have no company row
yet, so each upload row is a placeholder StealthCo_ organization carrying
the founder's notes. Founders whose name already matches a stealth entry
in the CRM are written to a separate exclusions file.

The run mode is required; non-prod modes write mode-prefixed files.`,
		Example: `  # Weekly stealth upload
  haystack stealth prod

  # Dry run for ANZ
  haystack stealth test --geo ANZ`,
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

			res, err := export.New(s, getLogger(cmd)).RunStealth(cmd.Context(), export.StealthOptions{
				Geo:    cfg.Geo,
				Mode:   mode,
				Owners: cfg.Owners(cfg.Geo),
				OutDir: cfg.ExportDir,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Founders == 0 && res.Excluded == 0 {
				_, _ = fmt.Fprintln(out, "No stealth founders to export")
				return nil
			}
			_, _ = fmt.Fprintf(out, "Exported %d stealth founders (%d already in CRM)\n", res.Founders, res.Excluded)
			if res.UploadPath != "" {
				_, _ = fmt.Fprintf(out, "  upload: %s\n", res.UploadPath)
			}
			if res.ExcludedPath != "" {
				_, _ = fmt.Fprintf(out, "  excluded: %s\n", res.ExcludedPath)
			}
			return nil
		},
	}
	return cmd
}
