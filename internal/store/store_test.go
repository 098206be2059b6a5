package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inputTablesDDL mirrors the upstream tables the pipeline reads but does
// not own. Only tests create these; production runs expect them present.
const inputTablesDDL = `
	CREATE TABLE persons (
		person_id BIGINT PRIMARY KEY,
		full_name TEXT,
		linkedin_url TEXT,
		linkedin_summary TEXT,
		last_scraped_at TIMESTAMP
	);
	CREATE TABLE companies (
		company_id BIGINT PRIMARY KEY,
		name TEXT,
		primary_url TEXT
	);
	CREATE TABLE roles (
		role_id BIGINT PRIMARY KEY,
		person_id BIGINT,
		company_id BIGINT,
		role_title TEXT,
		linkedin_role_description TEXT,
		role_start TIMESTAMP,
		role_end TIMESTAMP
	);
	CREATE TABLE educations (
		education_id BIGINT PRIMARY KEY,
		person_id BIGINT,
		school_id BIGINT,
		degree_name TEXT
	);
	CREATE TABLE schools (
		school_id BIGINT PRIMARY KEY,
		name TEXT
	);
	CREATE TABLE person_locations (person_id BIGINT, spc_geo TEXT);
	CREATE TABLE company_locations (company_id BIGINT, spc_geo TEXT);
	CREATE TABLE role_flags (
		role_id BIGINT,
		is_founder BOOLEAN,
		is_csuite BOOLEAN,
		is_stealth BOOLEAN,
		is_irrelevant_role BOOLEAN,
		seniority TEXT
	);
	CREATE TABLE education_flags (
		education_id BIGINT,
		is_phd BOOLEAN,
		is_masters BOOLEAN,
		is_irrelevant BOOLEAN
	);
	CREATE TABLE person_flags (person_id BIGINT, currently_undergrad BOOLEAN);
	CREATE TABLE company_flags (company_id BIGINT, is_irrelevant BOOLEAN);
	CREATE TABLE similarweb_traffic_metrics (
		domain TEXT,
		last_3_months_mean DOUBLE PRECISION,
		last_3_months_mean_bucket TEXT,
		r_squared DOUBLE PRECISION
	);
	CREATE TABLE crm_exports (name TEXT);
`

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	s, err := Open(ctx, Config{Driver: DriverSQLite, Path: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate())
	_, err = s.db.ExecContext(ctx, inputTablesDDL)
	require.NoError(t, err)
	return s
}

func mustExec(t *testing.T, s *Store, query string, args ...any) {
	t.Helper()
	_, err := s.db.Exec(query, args...)
	require.NoError(t, err)
}

var testGeneratedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestMigrateCreatesScoreTables(t *testing.T) {
	s := setupTestStore(t)

	for _, table := range []string{
		"education_scores", "role_scores", "person_scores",
		"company_sweetspot_flags", "traffic_flags", "haystack_scores",
		"company_upload_tracker",
	} {
		rows, err := s.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		require.NoError(t, err, "table %s should exist", table)
		_ = rows.Close()
	}
}

func TestReplaceRoleScoresPartitionIsolation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceRoleScores(ctx, "SEA", []RoleScore{{RoleID: 1, Score: 2}}, testGeneratedAt))
	require.NoError(t, s.ReplaceRoleScores(ctx, "ANZ", []RoleScore{{RoleID: 2, Score: 1}}, testGeneratedAt))

	// Replacing SEA again must not touch the ANZ partition.
	require.NoError(t, s.ReplaceRoleScores(ctx, "SEA", []RoleScore{{RoleID: 3, Score: 0}}, testGeneratedAt))

	var seaRole, anzRole int64
	require.NoError(t, s.db.QueryRow(`select role_id from role_scores where spc_geo = 'SEA'`).Scan(&seaRole))
	require.NoError(t, s.db.QueryRow(`select role_id from role_scores where spc_geo = 'ANZ'`).Scan(&anzRole))
	assert.Equal(t, int64(3), seaRole)
	assert.Equal(t, int64(2), anzRole)
}

func TestReplacePersonScoresIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	rows := []PersonScore{
		{PersonID: 1, Score: 3, Description: "CTO @ Acme"},
		{PersonID: 2, Score: 0, Description: ""},
	}

	require.NoError(t, s.ReplacePersonScores(ctx, "SEA", rows, testGeneratedAt))
	require.NoError(t, s.ReplacePersonScores(ctx, "SEA", rows, testGeneratedAt))

	var count int
	require.NoError(t, s.db.QueryRow(`select count(*) from person_scores where spc_geo = 'SEA'`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestPersonIDs(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	mustExec(t, s, `insert into person_locations values (1, 'SEA'), (1, 'SEA'), (2, 'SEA'), (3, 'ANZ')`)

	ids, err := s.PersonIDs(ctx, "SEA")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2}, ids)
}

func TestRolesForScoring(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	mustExec(t, s, `insert into persons (person_id, full_name) values (1, 'Jane Tan')`)
	mustExec(t, s, `insert into person_locations values (1, 'SEA')`)
	mustExec(t, s, `insert into companies (company_id, name) values (10, 'Acme')`)
	mustExec(t, s, `insert into roles (role_id, person_id, company_id, role_title, role_start, role_end) values (100, 1, 10, 'CTO', ?, null)`, start)
	mustExec(t, s, `insert into role_flags (role_id, is_founder, seniority) values (100, false, 'exec')`)

	rows, err := s.RolesForScoring(ctx, "SEA")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, int64(100), rows[0].RoleID)
	assert.Equal(t, "exec", rows[0].Seniority)
	assert.Equal(t, "Acme", rows[0].CompanyName)
	require.NotNil(t, rows[0].Start)
	assert.True(t, rows[0].Start.Equal(start))
	assert.Nil(t, rows[0].End)
}

func TestFounderRosterFilters(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	cutoff := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	afterCutoff := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	beforeCutoff := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	scraped := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mustExec(t, s, `insert into companies (company_id, name) values (10, 'Acme')`)
	mustExec(t, s, `insert into company_locations values (10, 'SEA')`)
	mustExec(t, s, `insert into persons (person_id, full_name, linkedin_url, last_scraped_at) values (1, 'Jane Tan', 'https://linkedin.com/in/jane', ?), (2, 'Undergrad U', 'https://linkedin.com/in/u', ?), (3, 'Old Timer', 'https://linkedin.com/in/old', ?), (4, 'Ex Founder', 'https://linkedin.com/in/ex', ?)`, scraped, scraped, scraped, scraped)

	// Qualifying founder.
	mustExec(t, s, `insert into roles (role_id, person_id, company_id, role_title, role_start, role_end) values (100, 1, 10, 'Founder', ?, null)`, afterCutoff)
	mustExec(t, s, `insert into role_flags (role_id, is_founder, is_irrelevant_role, seniority) values (100, true, false, 'exec')`)

	// Currently an undergrad: excluded.
	mustExec(t, s, `insert into roles (role_id, person_id, company_id, role_title, role_start, role_end) values (101, 2, 10, 'Founder', ?, null)`, afterCutoff)
	mustExec(t, s, `insert into role_flags (role_id, is_founder, seniority) values (101, true, 'exec')`)
	mustExec(t, s, `insert into person_flags values (2, true)`)

	// Started before the cutoff: excluded.
	mustExec(t, s, `insert into roles (role_id, person_id, company_id, role_title, role_start, role_end) values (102, 3, 10, 'Founder', ?, null)`, beforeCutoff)
	mustExec(t, s, `insert into role_flags (role_id, is_founder, seniority) values (102, true, 'exec')`)

	// Role already ended: excluded.
	mustExec(t, s, `insert into roles (role_id, person_id, company_id, role_title, role_start, role_end) values (103, 4, 10, 'Founder', ?, ?)`, afterCutoff, scraped)
	mustExec(t, s, `insert into role_flags (role_id, is_founder, seniority) values (103, true, 'exec')`)

	require.NoError(t, s.ReplacePersonScores(ctx, "SEA", []PersonScore{{PersonID: 1, Score: 3.5, Description: "Founder @ Acme"}}, testGeneratedAt))

	roster, err := s.FounderRoster(ctx, "SEA", cutoff)
	require.NoError(t, err)
	require.Len(t, roster, 1)

	f := roster[0]
	assert.Equal(t, int64(1), f.PersonID)
	assert.Equal(t, int64(10), f.CompanyID)
	assert.Equal(t, "Jane Tan", f.FullName)
	require.NotNil(t, f.Score)
	assert.Equal(t, 3.5, *f.Score)
	assert.Equal(t, "Founder @ Acme", f.Description)
}

func TestUploadTracker(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	ids, err := s.UploadedCompanyIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	uploads := []Upload{
		{CompanyID: 10, Domain: "acme.ai", Notes: "note", UploadedOn: testGeneratedAt},
		{CompanyID: 11, Domain: "globex.io", Notes: "note", UploadedOn: testGeneratedAt},
	}
	require.NoError(t, s.AppendUploads(ctx, uploads))

	ids, err = s.UploadedCompanyIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	_, ok := ids[10]
	assert.True(t, ok)

	// Append-only: a second batch adds, never clears.
	require.NoError(t, s.AppendUploads(ctx, []Upload{{CompanyID: 12, Domain: "x.com", UploadedOn: testGeneratedAt}}))
	ids, err = s.UploadedCompanyIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}

func TestTrafficMetricsFilter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	mustExec(t, s, `insert into companies (company_id, name, primary_url) values (10, 'Acme', 'acme.ai'), (11, 'Globex', 'globex.io')`)
	mustExec(t, s, `insert into company_locations values (10, 'SEA'), (11, 'ANZ')`)
	mustExec(t, s, `insert into similarweb_traffic_metrics values ('acme.ai', 5000, 'med', 0.9), ('globex.io', 5000, 'med', 0.8), ('acme.ai', 100, 'low', 0.7)`)

	metrics, err := s.TrafficMetrics(ctx, "SEA", 2500)
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, "acme.ai", metrics[0].Domain)
	assert.Equal(t, 0.9, metrics[0].RSquared)
}

func TestStealthFounders(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	since := time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC)
	fresh := time.Date(2024, 5, 29, 0, 0, 0, 0, time.UTC)
	stale := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	started := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	mustExec(t, s, `insert into persons (person_id, full_name, linkedin_url, linkedin_summary, last_scraped_at) values
		(1, 'Jane Tan', 'https://linkedin.com/in/jane', 'Building something new', ?),
		(2, 'Stale Sam', 'https://linkedin.com/in/sam', '', ?),
		(3, 'Zero Zoe', 'https://linkedin.com/in/zoe', '', ?),
		(4, 'Ended Ed', 'https://linkedin.com/in/ed', '', ?)`, fresh, stale, fresh, fresh)
	mustExec(t, s, `insert into roles (role_id, person_id, role_title, linkedin_role_description, role_start, role_end) values
		(100, 1, 'Founder', 'Stealth mode', ?, null),
		(101, 2, 'Founder', '', ?, null),
		(102, 3, 'Founder', '', ?, null),
		(103, 4, 'Founder', '', ?, ?)`, started, started, started, started, fresh)
	mustExec(t, s, `insert into role_flags (role_id, is_founder, is_stealth) values
		(100, true, true), (101, true, true), (102, true, true), (103, true, true)`)

	require.NoError(t, s.ReplacePersonScores(ctx, "SEA", []PersonScore{
		{PersonID: 1, Score: 2.5, Description: "VP Eng @ TierCo"},
		{PersonID: 2, Score: 3},
		{PersonID: 3, Score: 0},
		{PersonID: 4, Score: 2},
	}, testGeneratedAt))

	// Only the fresh, scored, still-running stealth role qualifies.
	rows, err := s.StealthFounders(ctx, "SEA", since)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Equal(t, int64(1), r.PersonID)
	assert.Equal(t, "Jane Tan", r.FullName)
	assert.Equal(t, "Building something new", r.LinkedInSummary)
	assert.Equal(t, "Stealth mode", r.RoleDescription)
	assert.Equal(t, "VP Eng @ TierCo", r.Description)
	assert.Equal(t, 2.5, r.Score)
	require.NotNil(t, r.RoleStart)
	assert.True(t, r.RoleStart.Equal(started))
}

func TestCRMStealthNames(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	mustExec(t, s, `insert into crm_exports values ('Stealth Startup (Jane)'), ('Acme AI'), ('STEALTH co')`)

	names, err := s.CRMStealthNames(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Stealth Startup (Jane)", "STEALTH co"}, names)
}

func TestTopCompanies(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	mustExec(t, s, `insert into companies (company_id, name, primary_url) values (10, 'Acme', 'acme.ai'), (11, 'Globex', 'globex.io'), (12, 'Junk', 'junk.com')`)
	mustExec(t, s, `insert into haystack_scores values
		(10, 5.5, true, false, false, 3.5, '', 'SEA', ?),
		(11, 7.0, true, true, false, 0.0, '', 'SEA', ?),
		(12, -2.0, false, false, true, 2.0, '', 'SEA', ?)`,
		testGeneratedAt, testGeneratedAt, testGeneratedAt)

	top, err := s.TopCompanies(ctx, "SEA", 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Globex", top[0].CompanyName)
	assert.Equal(t, "Acme", top[1].CompanyName)
}
