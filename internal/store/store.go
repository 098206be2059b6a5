// Package store provides access to the shared relational store: read-only
// queries over the upstream CRM/LinkedIn tables and flag tables, and
// partitioned writes to the score tables. All score writes for a geography
// happen inside a single transaction (delete then insert) so a failed run
// never leaves a partition half-replaced.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Driver names accepted in Config.Driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds database connection settings.
type Config struct {
	Driver   string
	Host     string
	Port     int
	Database string
	User     string
	Password string
	// Path is the database file for SQLite targets (":memory:" allowed).
	Path string
	// Options holds driver-specific settings (e.g. sslmode).
	Options map[string]string
}

// Store wraps the shared relational database.
type Store struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

// Open connects to the configured database and verifies the connection.
// If logger is nil, a discard logger is used.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var db *sql.DB
	var err error
	switch cfg.Driver {
	case DriverPostgres:
		logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))
		db, err = sql.Open("pgx", buildPostgresDSN(cfg))
	case DriverSQLite, "":
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		}
		logger.Debug("opening sqlite database", slog.String("path", path))
		db, err = sql.Open("sqlite", path)
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	if driver == DriverSQLite {
		// A :memory: database exists per connection, so the pool must
		// stay at one connection or queries see different databases.
		db.SetMaxOpenConns(1)
	}
	return &Store{db: db, driver: driver, logger: logger}, nil
}

// OpenDB wraps an existing connection. Used by tests.
func OpenDB(db *sql.DB, driver string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{db: db, driver: driver, logger: logger}
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the underlying handle for migrations and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// buildPostgresDSN constructs a key=value PostgreSQL connection string.
func buildPostgresDSN(cfg Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s", host, port, cfg.Database, sslmode)
	if cfg.User != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.User)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}
	if cfg.Options != nil {
		if searchPath, ok := cfg.Options["search_path"]; ok {
			dsn += fmt.Sprintf(" search_path=%s", searchPath)
		}
	}
	return dsn
}

// rebind converts ?-style placeholders to the $n style Postgres expects.
// Queries are written with ? so the same SQL runs on SQLite.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
