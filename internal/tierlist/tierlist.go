// Package tierlist loads curated reference lists (tier schools, tier
// companies, junk company IDs) from single-column CSV files and exposes
// case-insensitive membership tests.
package tierlist

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// List is a case-insensitive set of names loaded from a curated CSV.
type List struct {
	names map[string]struct{}
}

// Load reads a single-column CSV (first row is a header) and builds a List.
// Entries are lowercased; blank rows are skipped. A missing or malformed
// file is a fatal configuration error for the caller.
func Load(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open list file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse list file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("list file %s is empty", path)
	}

	names := make(map[string]struct{}, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(rec[0]))
		if name == "" {
			continue
		}
		names[name] = struct{}{}
	}

	return &List{names: names}, nil
}

// Contains reports whether name is in the list, ignoring case and
// surrounding whitespace.
func (l *List) Contains(name string) bool {
	if l == nil {
		return false
	}
	_, ok := l.names[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Len returns the number of entries in the list.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.names)
}

// LoadIDs reads a single-column CSV of integer IDs (first row is a header)
// and returns them as a set. Used for the junk-company exclusion list.
func LoadIDs(path string) (map[int64]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ID list file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse ID list file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("ID list file %s is empty", path)
	}

	ids := make(map[int64]struct{}, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ID %q in %s: %w", rec[0], path, err)
		}
		ids[id] = struct{}{}
	}

	return ids, nil
}
