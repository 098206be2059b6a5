package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/haystacklabs/haystack/internal/config"
	"github.com/haystacklabs/haystack/internal/store"
)

// getConfig returns the configuration loaded by the root command.
func getConfig() *config.Config {
	return config.Current()
}

// getLogger returns the logger attached by the root command.
func getLogger(cmd *cobra.Command) *slog.Logger {
	return config.GetLogger(cmd.Context())
}

// openStore connects to the configured database.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg := getConfig()
	return store.Open(cmd.Context(), cfg.Target.StoreConfig(), getLogger(cmd))
}
