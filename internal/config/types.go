// Package config provides configuration management for the haystack CLI.
//
// Configuration is layered: defaults, then a haystack.yaml file, then
// HAYSTACK_-prefixed environment variables, then CLI flags.
package config

import (
	"time"

	"github.com/haystacklabs/haystack/internal/export"
	"github.com/haystacklabs/haystack/internal/scoring"
	"github.com/haystacklabs/haystack/internal/store"
)

// TargetConfig describes the shared relational database the pipeline
// reads from and writes score tables to.
type TargetConfig struct {
	Driver   string            `koanf:"driver"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	Database string            `koanf:"database"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Path     string            `koanf:"path"`
	Options  map[string]string `koanf:"options"`
}

// StoreConfig converts the target into store connection settings.
func (t *TargetConfig) StoreConfig() store.Config {
	if t == nil {
		return store.Config{Driver: store.DriverSQLite}
	}
	return store.Config{
		Driver:   t.Driver,
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		User:     t.User,
		Password: t.Password,
		Path:     t.Path,
		Options:  t.Options,
	}
}

// GeoConfig holds per-geography settings.
type GeoConfig struct {
	// Owners is written verbatim into the upload CSV's Owners column.
	Owners string `koanf:"owners"`
	// TierCompanies overrides the global tier-company list for this
	// geography. Tier-company curation is regional; schools are not.
	TierCompanies string `koanf:"tier_companies"`
}

// WeightsConfig holds the score bonus weights.
type WeightsConfig struct {
	SweetspotBonus float64 `koanf:"sweetspot_bonus"`
	TrafficBonus   float64 `koanf:"traffic_bonus"`
}

// Weights converts configured bonuses into scoring weights, falling back
// to the defaults for unset values.
func (w *WeightsConfig) Weights() scoring.Weights {
	out := scoring.DefaultWeights()
	if w == nil {
		return out
	}
	if w.SweetspotBonus != 0 {
		out.SweetspotBonus = w.SweetspotBonus
	}
	if w.TrafficBonus != 0 {
		out.TrafficBonus = w.TrafficBonus
	}
	return out
}

// Config holds all CLI configuration options.
type Config struct {
	Geo            string               `koanf:"geo"`
	Verbose        bool                 `koanf:"verbose"`
	Target         *TargetConfig        `koanf:"target"`
	TierCompanies  string               `koanf:"tier_companies"`
	TierSchools    string               `koanf:"tier_schools"`
	JunkList       string               `koanf:"junk_list"`
	ExportDir      string               `koanf:"export_dir"`
	ExportTopN     int                  `koanf:"export_top_n"`
	FounderCutoff  string               `koanf:"founder_cutoff"`
	MinTrafficMean float64              `koanf:"min_traffic_mean"`
	Weights        *WeightsConfig       `koanf:"weights"`
	Geographies    map[string]GeoConfig `koanf:"geographies"`
}

// Default configuration values.
const (
	DefaultGeo           = "SEA"
	DefaultExportDir     = "exports"
	DefaultFounderCutoff = "2019-01-01"

	// Traffic rows below this three-month mean are noise and skipped.
	DefaultMinTrafficMean = 2500
)

// CutoffTime parses the founder cutoff date.
func (c *Config) CutoffTime() (time.Time, error) {
	cutoff := c.FounderCutoff
	if cutoff == "" {
		cutoff = DefaultFounderCutoff
	}
	return time.Parse("2006-01-02", cutoff)
}

// TopN returns the configured export size, defaulting when unset.
func (c *Config) TopN() int {
	if c.ExportTopN <= 0 {
		return export.DefaultTopN
	}
	return c.ExportTopN
}

// Owners returns the Owners column value for a geography, empty when the
// geography has no entry.
func (c *Config) Owners(geo string) string {
	if g, ok := c.Geographies[geo]; ok {
		return g.Owners
	}
	return ""
}

// TierCompaniesPath returns the tier-company list for a geography,
// falling back to the global list.
func (c *Config) TierCompaniesPath(geo string) string {
	if g, ok := c.Geographies[geo]; ok && g.TierCompanies != "" {
		return g.TierCompanies
	}
	return c.TierCompanies
}
