package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haystacklabs/haystack/internal/config"
	"github.com/haystacklabs/haystack/internal/store"
)

const inputTablesDDL = `
	CREATE TABLE persons (person_id BIGINT PRIMARY KEY, full_name TEXT, linkedin_url TEXT, last_scraped_at TIMESTAMP);
	CREATE TABLE companies (company_id BIGINT PRIMARY KEY, name TEXT, primary_url TEXT);
	CREATE TABLE roles (role_id BIGINT PRIMARY KEY, person_id BIGINT, company_id BIGINT, role_title TEXT, linkedin_role_description TEXT, role_start TIMESTAMP, role_end TIMESTAMP);
	CREATE TABLE educations (education_id BIGINT PRIMARY KEY, person_id BIGINT, school_id BIGINT, degree_name TEXT);
	CREATE TABLE schools (school_id BIGINT PRIMARY KEY, name TEXT);
	CREATE TABLE person_locations (person_id BIGINT, spc_geo TEXT);
	CREATE TABLE company_locations (company_id BIGINT, spc_geo TEXT);
	CREATE TABLE role_flags (role_id BIGINT, is_founder BOOLEAN, is_csuite BOOLEAN, is_stealth BOOLEAN, is_irrelevant_role BOOLEAN, seniority TEXT);
	CREATE TABLE education_flags (education_id BIGINT, is_phd BOOLEAN, is_masters BOOLEAN, is_irrelevant BOOLEAN);
	CREATE TABLE person_flags (person_id BIGINT, currently_undergrad BOOLEAN);
	CREATE TABLE company_flags (company_id BIGINT, is_irrelevant BOOLEAN);
	CREATE TABLE similarweb_traffic_metrics (domain TEXT, last_3_months_mean DOUBLE PRECISION, last_3_months_mean_bucket TEXT, r_squared DOUBLE PRECISION);
`

func writeList(t *testing.T, dir, name string, rows ...string) string {
	t.Helper()
	content := "name\n"
	for _, r := range rows {
		content += r + "\n"
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// setupScenario seeds one founder with a strong background at an AI
// company with real traffic, plus a second person with nothing scoreable.
func setupScenario(t *testing.T) (*Pipeline, *store.Store) {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(ctx, store.Config{Driver: store.DriverSQLite, Path: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate())

	_, err = s.DB().ExecContext(ctx, inputTablesDDL)
	require.NoError(t, err)

	exec := func(query string, args ...any) {
		_, err := s.DB().ExecContext(ctx, query, args...)
		require.NoError(t, err)
	}

	scraped := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	founderStart := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	pastStart := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	pastEnd := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)

	exec(`insert into persons values (1, 'Jane Tan', 'https://linkedin.com/in/jane', ?), (2, 'No Signal', 'https://linkedin.com/in/none', ?)`, scraped, scraped)
	exec(`insert into person_locations values (1, 'SEA'), (2, 'SEA')`)
	exec(`insert into companies values (10, 'Acme AI', 'acme.ai'), (20, 'TierCo', 'tierco.com')`)
	exec(`insert into company_locations values (10, 'SEA'), (20, 'SEA')`)

	// Past senior role at a tier company and the current founder role.
	exec(`insert into roles (role_id, person_id, company_id, role_title, role_start, role_end) values
		(100, 1, 20, 'VP Eng', ?, ?),
		(101, 1, 10, 'Founder', ?, null)`, pastStart, pastEnd, founderStart)
	exec(`insert into role_flags (role_id, is_founder, seniority) values (100, false, 'senior'), (101, true, 'exec')`)

	exec(`insert into schools values (1, 'Stanford University')`)
	exec(`insert into educations values (1000, 1, 1, 'MSc')`)
	exec(`insert into education_flags (education_id, is_phd, is_masters, is_irrelevant) values (1000, false, true, false)`)

	exec(`insert into similarweb_traffic_metrics values ('acme.ai', 5000, 'med', 0.9)`)

	dir := t.TempDir()
	cfg := &config.Config{
		Geo:           "SEA",
		TierCompanies: writeList(t, dir, "tier_companies.csv", "TierCo"),
		TierSchools:   writeList(t, dir, "tier_schools.csv", "Stanford University"),
		FounderCutoff: "2019-01-01",
	}
	return New(s, cfg, nil), s
}

func TestRunFullPipeline(t *testing.T) {
	ctx := context.Background()
	p, s := setupScenario(t)

	require.NoError(t, p.Run(ctx, "SEA"))

	// Tier senior role (2) + tier masters (2).
	var personScore float64
	var description string
	require.NoError(t, s.DB().QueryRow(
		`select score, description from person_scores where person_id = 1`).
		Scan(&personScore, &description))
	assert.Equal(t, 4.0, personScore)
	assert.Equal(t, "VP Eng @ TierCo, MSc @ Stanford University", description)

	// The no-signal person still gets a zero row.
	var zeroScore float64
	require.NoError(t, s.DB().QueryRow(
		`select score from person_scores where person_id = 2`).Scan(&zeroScore))
	assert.Zero(t, zeroScore)

	// Founder mean 4 + sweetspot 2 + traffic 5.
	var hsScore, mean float64
	var isSweetspot, isTraffic bool
	var notes string
	require.NoError(t, s.DB().QueryRow(
		`select hs_score, founder_score_mean, is_sweetspot_company, is_traffic_priority, notes
		 from haystack_scores where company_id = 10`).
		Scan(&hsScore, &mean, &isSweetspot, &isTraffic, &notes))
	assert.Equal(t, 11.0, hsScore)
	assert.Equal(t, 4.0, mean)
	assert.True(t, isSweetspot)
	assert.True(t, isTraffic)
	assert.Contains(t, notes, "Jane Tan")
	assert.Contains(t, notes, "Haystack Company ID: 10")

	// TierCo has founders? No founder roles there, so no score row.
	var count int
	require.NoError(t, s.DB().QueryRow(
		`select count(*) from haystack_scores where company_id = 20`).Scan(&count))
	assert.Zero(t, count)
}

func TestRunIdempotent(t *testing.T) {
	ctx := context.Background()
	p, s := setupScenario(t)

	require.NoError(t, p.Run(ctx, "SEA"))
	require.NoError(t, p.Run(ctx, "SEA"))

	var count int
	require.NoError(t, s.DB().QueryRow(`select count(*) from haystack_scores`).Scan(&count))
	assert.Equal(t, 1, count)
	require.NoError(t, s.DB().QueryRow(`select count(*) from person_scores`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestRunCompaniesSkipsNoSignal(t *testing.T) {
	ctx := context.Background()
	p, s := setupScenario(t)

	// A founder with no person score at a company with no classifier rows.
	exec := func(query string, args ...any) {
		_, err := s.DB().ExecContext(ctx, query, args...)
		require.NoError(t, err)
	}
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	exec(`insert into persons (person_id, full_name, linkedin_url, last_scraped_at) values (3, 'Quiet Founder', 'https://linkedin.com/in/quiet', ?)`, start)
	exec(`insert into companies values (30, 'Stealthco', null)`)
	exec(`insert into company_locations values (30, 'SEA')`)
	exec(`insert into roles (role_id, person_id, company_id, role_title, role_start, role_end) values (102, 3, 30, 'Founder', ?, null)`, start)
	exec(`insert into role_flags (role_id, is_founder, seniority) values (102, true, 'exec')`)

	// Score stages only: with no classifier output, a company whose
	// founders never scored carries no information and is skipped.
	require.NoError(t, p.RunEducations(ctx))
	require.NoError(t, p.RunRoles(ctx, "SEA"))
	require.NoError(t, p.RunPersons(ctx, "SEA"))
	require.NoError(t, p.RunCompanies(ctx, "SEA"))

	var count int
	require.NoError(t, s.DB().QueryRow(
		`select count(*) from haystack_scores where company_id = 30`).Scan(&count))
	assert.Zero(t, count)

	// The scored founder's company still gets its row.
	require.NoError(t, s.DB().QueryRow(
		`select count(*) from haystack_scores where company_id = 10`).Scan(&count))
	assert.Equal(t, 1, count)
}
