package config

import (
	"fmt"

	"github.com/haystacklabs/haystack/internal/store"
)

// Validate checks if the configuration is valid. File existence is not
// checked here so help output works without a populated workspace.
func (c *Config) Validate() error {
	if c.Geo == "" {
		return fmt.Errorf("geo is required")
	}
	if c.Target != nil {
		switch c.Target.Driver {
		case "", store.DriverPostgres, store.DriverSQLite:
		default:
			return fmt.Errorf("unknown target driver: %s", c.Target.Driver)
		}
		if c.Target.Driver == store.DriverPostgres && c.Target.Database == "" {
			return fmt.Errorf("target.database is required for postgres")
		}
	}
	if _, err := c.CutoffTime(); err != nil {
		return fmt.Errorf("invalid founder_cutoff: %w", err)
	}
	return nil
}
