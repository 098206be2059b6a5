package export

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haystacklabs/haystack/internal/store"
)

func TestWeekStart(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		// Monday maps to itself.
		{time.Date(2024, 5, 27, 15, 0, 0, 0, time.UTC), time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC)},
		// Saturday maps back to the preceding Monday.
		{time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC)},
		// Sunday is the last day of the week, not the first.
		{time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, weekStart(tt.in))
	}
}

func TestStealthNotes(t *testing.T) {
	started := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	generated := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	notes := stealthNotes(store.StealthRow{
		PersonID:        1,
		FullName:        "Jane Tan",
		LinkedInURL:     "https://linkedin.com/in/jane",
		LinkedInSummary: "Building something new",
		RoleStart:       &started,
		RoleDescription: strings.Repeat("x", 250),
		Description:     "VP Eng @ TierCo",
		Score:           2.5,
	}, generated)

	assert.Contains(t, notes, "Haystack Summary: VP Eng @ TierCo")
	assert.Contains(t, notes, "Stealth Start Date: Feb 2024")
	assert.Contains(t, notes, "LinkedIn Description: Building something new")
	assert.Contains(t, notes, "Founder Score: 2.50")
	assert.Contains(t, notes, "Haystack Person ID: 1")
	assert.Contains(t, notes, "Date Generated: 2024-06-01")
	// Long role description is truncated with an ellipsis.
	assert.Contains(t, notes, strings.Repeat("x", stealthDescriptionLimit)+"...")
	assert.NotContains(t, notes, strings.Repeat("x", stealthDescriptionLimit+1))
}

func TestStealthNotesFillsMissingFields(t *testing.T) {
	generated := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	notes := stealthNotes(store.StealthRow{PersonID: 7, Score: 1}, generated)

	assert.Contains(t, notes, "Haystack Summary: None")
	assert.Contains(t, notes, "Stealth Start Date: None")
	assert.Contains(t, notes, "Stealth Role Description: None")
	assert.Contains(t, notes, "LinkedIn Description: None")
	assert.Contains(t, notes, "LinkedIn URL: None")
}

func TestSelectStealthFounders(t *testing.T) {
	generated := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := []store.StealthRow{
		{PersonID: 1, FullName: "Jane Tan", Score: 2.5},
		{PersonID: 2, FullName: "Bob Lee", Score: 3},
		{PersonID: 3, FullName: "", Score: 1},
	}
	// Punctuation and case in the CRM name must not defeat the match.
	crmNames := []string{"Stealth Startup (Jane Tan)", "Acme AI"}

	founders, excluded := SelectStealthFounders(rows, crmNames, generated)

	require.Len(t, excluded, 1)
	assert.Equal(t, "StealthCo_JaneTan", excluded[0].Name)

	require.Len(t, founders, 2)
	assert.Equal(t, "StealthCo_BobLee", founders[0].Name)
	// Nameless founders fall back to their person ID.
	assert.Equal(t, "StealthCo_3", founders[1].Name)
}

func TestRunStealth(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	fresh := time.Date(2024, 5, 29, 0, 0, 0, 0, time.UTC)
	stale := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	started := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	s, err := store.Open(ctx, store.Config{Driver: store.DriverSQLite, Path: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate())

	_, err = s.DB().ExecContext(ctx, `
		CREATE TABLE persons (person_id BIGINT PRIMARY KEY, full_name TEXT, linkedin_url TEXT, linkedin_summary TEXT, last_scraped_at TIMESTAMP);
		CREATE TABLE roles (role_id BIGINT PRIMARY KEY, person_id BIGINT, company_id BIGINT, role_title TEXT, linkedin_role_description TEXT, role_start TIMESTAMP, role_end TIMESTAMP);
		CREATE TABLE role_flags (role_id BIGINT, is_founder BOOLEAN, is_stealth BOOLEAN, seniority TEXT);
		CREATE TABLE crm_exports (name TEXT);
	`)
	require.NoError(t, err)

	exec := func(query string, args ...any) {
		_, err := s.DB().ExecContext(ctx, query, args...)
		require.NoError(t, err)
	}
	exec(`insert into persons values
		(1, 'Jane Tan', 'https://linkedin.com/in/jane', 'Something new', ?),
		(2, 'Bob Lee', 'https://linkedin.com/in/bob', '', ?),
		(3, 'Stale Sam', 'https://linkedin.com/in/sam', '', ?)`, fresh, fresh, stale)
	exec(`insert into roles (role_id, person_id, role_title, linkedin_role_description, role_start, role_end) values
		(100, 1, 'Founder', 'Stealth mode', ?, null),
		(101, 2, 'Founder', '', ?, null),
		(102, 3, 'Founder', '', ?, null)`, started, started, started)
	exec(`insert into role_flags (role_id, is_founder, is_stealth) values (100, true, true), (101, true, true), (102, true, true)`)
	exec(`insert into person_scores values (1, 2.5, 'VP Eng @ TierCo', 'SEA', ?), (2, 3, '', 'SEA', ?), (3, 2, '', 'SEA', ?)`, now, now, now)
	exec(`insert into crm_exports values ('Stealth Startup (Bob Lee)')`)

	e := New(s, nil)
	outDir := t.TempDir()

	res, err := e.RunStealth(ctx, StealthOptions{Geo: "SEA", Mode: ModeTest, Owners: "alice@example.com", OutDir: outDir, Now: now})
	require.NoError(t, err)

	// Jane survives, Bob matches the CRM entry, Sam's scrape is stale.
	assert.Equal(t, 1, res.Founders)
	assert.Equal(t, 1, res.Excluded)
	assert.Equal(t, "test_affinity_upload_stealth_SEA_2024-06-01.csv", filepath.Base(res.UploadPath))

	records := readCSV(t, res.UploadPath)
	require.Len(t, records, 2)
	assert.Equal(t, stealthHeader, records[0])
	assert.Equal(t, "StealthCo_JaneTan", records[1][0])
	assert.Contains(t, records[1][1], "Haystack Person ID: 1")
	assert.Equal(t, "alice@example.com", records[1][2])
	assert.Empty(t, records[1][3])
	assert.Equal(t, "Haystack Review", records[1][4])

	excluded := readCSV(t, res.ExcludedPath)
	require.Len(t, excluded, 2)
	assert.Equal(t, "StealthCo_BobLee", excluded[1][0])
}
