package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/haystacklabs/haystack/internal/classify"
)

const personIDsQuery = `
	select distinct person_id
	from person_locations
	where spc_geo = ?`

// PersonIDs returns the fixed set of persons in a geography. Every person
// in this set gets a person_scores row, scored or not.
func (s *Store) PersonIDs(ctx context.Context, geo string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(personIDsQuery), geo)
	if err != nil {
		return nil, fmt.Errorf("failed to query person IDs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan person ID: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const rolesForScoringQuery = `
	select r.role_id, r.role_start, r.role_end,
	       coalesce(rf.seniority, 'other'), coalesce(c.name, '')
	from roles r
	left join role_flags rf on rf.role_id = r.role_id
	left join companies c on c.company_id = r.company_id
	join person_locations l on l.person_id = r.person_id
	where l.spc_geo = ?`

// RolesForScoring returns every role held by a person in the geography,
// with flags and company name joined in.
func (s *Store) RolesForScoring(ctx context.Context, geo string) ([]RoleRow, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(rolesForScoringQuery), geo)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RoleRow
	for rows.Next() {
		var r RoleRow
		var start, end sql.NullTime
		if err := rows.Scan(&r.RoleID, &start, &end, &r.Seniority, &r.CompanyName); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		if start.Valid {
			t := start.Time
			r.Start = &t
		}
		if end.Valid {
			t := end.Time
			r.End = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const educationsForScoringQuery = `
	select e.education_id, coalesce(e.degree_name, ''), coalesce(sc.name, ''),
	       coalesce(ef.is_phd, false), coalesce(ef.is_masters, false),
	       coalesce(ef.is_irrelevant, false)
	from educations e
	left join education_flags ef on ef.education_id = e.education_id
	left join schools sc on sc.school_id = e.school_id`

// EducationsForScoring returns every education with flags and school name
// joined in. Education scoring is geography-agnostic so the table is read
// whole.
func (s *Store) EducationsForScoring(ctx context.Context) ([]EducationRow, error) {
	rows, err := s.db.QueryContext(ctx, educationsForScoringQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query educations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []EducationRow
	for rows.Next() {
		var e EducationRow
		if err := rows.Scan(&e.EducationID, &e.DegreeName, &e.SchoolName, &e.IsPhD, &e.IsMasters, &e.IsIrrelevant); err != nil {
			return nil, fmt.Errorf("failed to scan education: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const roleComponentsQuery = `
	select r.person_id, r.company_id, rs.role_score,
	       coalesce(r.role_title, ''), coalesce(c.name, '')
	from roles r
	left join companies c on c.company_id = r.company_id
	left join role_scores rs on rs.role_id = r.role_id
	where r.person_id in (
		select distinct person_id from person_locations where spc_geo = ?
	)`

// RoleComponents returns each geography person's roles with role scores
// attached. Roles never scored carry a nil score.
func (s *Store) RoleComponents(ctx context.Context, geo string) ([]PersonRoleRow, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(roleComponentsQuery), geo)
	if err != nil {
		return nil, fmt.Errorf("failed to query role components: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []PersonRoleRow
	for rows.Next() {
		var r PersonRoleRow
		var companyID sql.NullInt64
		var score sql.NullFloat64
		if err := rows.Scan(&r.PersonID, &companyID, &score, &r.Title, &r.CompanyName); err != nil {
			return nil, fmt.Errorf("failed to scan role component: %w", err)
		}
		if companyID.Valid {
			v := companyID.Int64
			r.CompanyID = &v
		}
		if score.Valid {
			v := score.Float64
			r.Score = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const educationComponentsQuery = `
	select e.person_id, es.education_score,
	       coalesce(e.degree_name, ''), coalesce(sc.name, '')
	from educations e
	left join schools sc on sc.school_id = e.school_id
	left join education_scores es on es.education_id = e.education_id
	where e.person_id in (
		select distinct person_id from person_locations where spc_geo = ?
	)`

// EducationComponents returns each geography person's educations with
// education scores attached. Educations never scored carry a nil score.
func (s *Store) EducationComponents(ctx context.Context, geo string) ([]PersonEducationRow, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(educationComponentsQuery), geo)
	if err != nil {
		return nil, fmt.Errorf("failed to query education components: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []PersonEducationRow
	for rows.Next() {
		var e PersonEducationRow
		var score sql.NullFloat64
		if err := rows.Scan(&e.PersonID, &score, &e.DegreeName, &e.SchoolName); err != nil {
			return nil, fmt.Errorf("failed to scan education component: %w", err)
		}
		if score.Valid {
			v := score.Float64
			e.Score = &v
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const founderRosterQuery = `
	select r.company_id, p.person_id,
	       coalesce(p.full_name, ''), coalesce(p.linkedin_url, ''),
	       p.last_scraped_at, ps.score, coalesce(ps.description, ''),
	       coalesce(rf.is_irrelevant_role, false),
	       coalesce(cf.is_irrelevant, false)
	from roles r
	join company_locations cl on cl.company_id = r.company_id
	join role_flags rf on rf.role_id = r.role_id
	join persons p on p.person_id = r.person_id
	left join person_flags pf on pf.person_id = r.person_id
	left join company_flags cf on cf.company_id = r.company_id
	left join person_scores ps on ps.person_id = p.person_id and ps.spc_geo = ?
	where rf.is_founder = true
	  and coalesce(pf.currently_undergrad, false) = false
	  and r.role_start > ?
	  and r.role_end is null
	  and cl.spc_geo = ?`

// FounderRoster returns the current founder-role persons per company in
// the geography: founder flag set, role still held, role started after the
// cutoff, person not currently an undergrad.
func (s *Store) FounderRoster(ctx context.Context, geo string, cutoff time.Time) ([]FounderRow, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(founderRosterQuery), geo, cutoff, geo)
	if err != nil {
		return nil, fmt.Errorf("failed to query founder roster: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []FounderRow
	for rows.Next() {
		var f FounderRow
		var scraped sql.NullTime
		var score sql.NullFloat64
		if err := rows.Scan(&f.CompanyID, &f.PersonID, &f.FullName, &f.LinkedInURL,
			&scraped, &score, &f.Description, &f.IsIrrelevantRole, &f.IsIrrelevantCompany); err != nil {
			return nil, fmt.Errorf("failed to scan founder: %w", err)
		}
		if scraped.Valid {
			f.LastScrapedAt = scraped.Time
		}
		if score.Valid {
			v := score.Float64
			f.Score = &v
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

const companiesQuery = `
	select distinct c.company_id, coalesce(c.name, ''), coalesce(c.primary_url, '')
	from companies c`

// Companies returns every company's identity fields for classification.
func (s *Store) Companies(ctx context.Context) ([]classify.CompanyInfo, error) {
	rows, err := s.db.QueryContext(ctx, companiesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []classify.CompanyInfo
	for rows.Next() {
		var c classify.CompanyInfo
		if err := rows.Scan(&c.CompanyID, &c.Name, &c.PrimaryURL); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const execRolesQuery = `
	select r.company_id, coalesce(r.role_title, ''),
	       coalesce(r.linkedin_role_description, '')
	from roles r
	join role_flags rf on rf.role_id = r.role_id
	where rf.seniority = 'exec'
	  and r.company_id is not null`

// ExecRoles returns all executive-level role text, one row per role.
func (s *Store) ExecRoles(ctx context.Context) ([]classify.ExecRole, error) {
	rows, err := s.db.QueryContext(ctx, execRolesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query exec roles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []classify.ExecRole
	for rows.Next() {
		var r classify.ExecRole
		if err := rows.Scan(&r.CompanyID, &r.Title, &r.Description); err != nil {
			return nil, fmt.Errorf("failed to scan exec role: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const trafficMetricsQuery = `
	select c.company_id, t.domain, t.last_3_months_mean_bucket,
	       t.r_squared, t.last_3_months_mean
	from similarweb_traffic_metrics t
	join companies c on t.domain = c.primary_url
	join company_locations cl on cl.company_id = c.company_id
	where t.last_3_months_mean > ?
	  and t.last_3_months_mean_bucket in ('low', 'med', 'high')
	  and cl.spc_geo = ?`

// TrafficMetrics returns fitted traffic rows for the geography's
// companies, pre-filtered to meaningful traffic in the buckets of interest.
func (s *Store) TrafficMetrics(ctx context.Context, geo string, minMean float64) ([]classify.TrafficMetric, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(trafficMetricsQuery), minMean, geo)
	if err != nil {
		return nil, fmt.Errorf("failed to query traffic metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []classify.TrafficMetric
	for rows.Next() {
		var m classify.TrafficMetric
		if err := rows.Scan(&m.CompanyID, &m.Domain, &m.Bucket, &m.RSquared, &m.Last3MonthsMean); err != nil {
			return nil, fmt.Errorf("failed to scan traffic metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

const sweetspotFlagsQuery = `
	select f.company_id, f.is_sweetspot_company
	from company_sweetspot_flags f
	join company_locations cl on cl.company_id = f.company_id
	where cl.spc_geo = ?`

// SweetspotFlags returns the sweetspot flag per company in the geography.
func (s *Store) SweetspotFlags(ctx context.Context, geo string) (map[int64]bool, error) {
	return s.flagMap(ctx, sweetspotFlagsQuery, geo, "sweetspot flags")
}

const trafficFlagsQuery = `
	select f.company_id, f.is_traffic_priority
	from traffic_flags f
	where f.spc_geo = ?`

// TrafficFlags returns the traffic-priority flag per company in the
// geography.
func (s *Store) TrafficFlags(ctx context.Context, geo string) (map[int64]bool, error) {
	return s.flagMap(ctx, trafficFlagsQuery, geo, "traffic flags")
}

func (s *Store) flagMap(ctx context.Context, query, geo, what string) (map[int64]bool, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), geo)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", what, err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[int64]bool)
	for rows.Next() {
		var id int64
		var flag bool
		if err := rows.Scan(&id, &flag); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", what, err)
		}
		out[id] = flag
	}
	return out, rows.Err()
}

const stealthFoundersQuery = `
	select ps.person_id, coalesce(p.full_name, ''), coalesce(p.linkedin_url, ''),
	       coalesce(p.linkedin_summary, ''), r.role_start,
	       coalesce(r.linkedin_role_description, ''),
	       coalesce(ps.description, ''), ps.score
	from person_scores ps
	join roles r on r.person_id = ps.person_id
	join role_flags rf on rf.role_id = r.role_id
	join persons p on p.person_id = ps.person_id
	where rf.is_stealth = true
	  and r.role_end is null
	  and p.last_scraped_at > ?
	  and ps.score > 0
	  and ps.spc_geo = ?`

// StealthFounders returns the geography's positively-scored persons
// holding a current stealth role whose profile was scraped after the
// given time.
func (s *Store) StealthFounders(ctx context.Context, geo string, since time.Time) ([]StealthRow, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(stealthFoundersQuery), since, geo)
	if err != nil {
		return nil, fmt.Errorf("failed to query stealth founders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []StealthRow
	for rows.Next() {
		var r StealthRow
		var start sql.NullTime
		if err := rows.Scan(&r.PersonID, &r.FullName, &r.LinkedInURL, &r.LinkedInSummary,
			&start, &r.RoleDescription, &r.Description, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan stealth founder: %w", err)
		}
		if start.Valid {
			t := start.Time
			r.RoleStart = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const crmStealthNamesQuery = `
	select name
	from crm_exports
	where lower(name) like '%stealth%'`

// CRMStealthNames returns CRM organisation names that mention stealth,
// used to skip founders already tracked as a stealth entry.
func (s *Store) CRMStealthNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, crmStealthNamesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query CRM stealth names: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan CRM stealth name: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

const exportCandidatesQuery = `
	select hs.company_id, hs.hs_score, hs.is_sweetspot_company,
	       hs.is_traffic_priority, hs.founder_score_mean,
	       coalesce(hs.notes, ''), coalesce(c.name, ''),
	       coalesce(c.primary_url, ''),
	       p.person_id, coalesce(p.full_name, ''),
	       coalesce(p.linkedin_url, ''), p.last_scraped_at,
	       coalesce(ps.description, '')
	from haystack_scores hs
	join companies c on c.company_id = hs.company_id
	join roles r on r.company_id = hs.company_id
	join role_flags rf on rf.role_id = r.role_id
	join persons p on p.person_id = r.person_id
	left join person_scores ps on ps.person_id = p.person_id and ps.spc_geo = hs.spc_geo
	where hs.is_irrelevant_hs = false
	  and hs.hs_score > 0
	  and rf.is_founder = true
	  and r.role_end is null
	  and p.linkedin_url is not null
	  and hs.spc_geo = ?
	order by hs.hs_score desc, hs.company_id`

// ExportCandidates returns one row per (relevant positively-scored
// company, current founder) pair for the geography, ordered by score.
func (s *Store) ExportCandidates(ctx context.Context, geo string) ([]ExportRow, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(exportCandidatesQuery), geo)
	if err != nil {
		return nil, fmt.Errorf("failed to query export candidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ExportRow
	for rows.Next() {
		var r ExportRow
		var traffic sql.NullBool
		var scraped sql.NullTime
		if err := rows.Scan(&r.CompanyID, &r.Score, &r.IsSweetspot, &traffic,
			&r.FounderScoreMean, &r.Notes, &r.CompanyName, &r.PrimaryURL,
			&r.PersonID, &r.FullName, &r.LinkedInURL, &scraped, &r.Description); err != nil {
			return nil, fmt.Errorf("failed to scan export candidate: %w", err)
		}
		if traffic.Valid {
			v := traffic.Bool
			r.IsTrafficPriority = &v
		}
		if scraped.Valid {
			r.LastScrapedAt = scraped.Time
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const scoreSummaryQuery = `
	select count(*),
	       sum(case when is_sweetspot_company then 1 else 0 end),
	       sum(case when is_traffic_priority then 1 else 0 end),
	       sum(case when is_irrelevant_hs then 1 else 0 end),
	       coalesce(avg(hs_score), 0)
	from haystack_scores
	where spc_geo = ?`

// ScoreSummary aggregates one geography's haystack score partition.
func (s *Store) ScoreSummary(ctx context.Context, geo string) (Summary, error) {
	var sum Summary
	var sweetspot, traffic, irrelevant sql.NullInt64
	err := s.db.QueryRowContext(ctx, s.rebind(scoreSummaryQuery), geo).
		Scan(&sum.Companies, &sweetspot, &traffic, &irrelevant, &sum.MeanScore)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to query score summary: %w", err)
	}
	sum.Sweetspot = int(sweetspot.Int64)
	sum.TrafficPriority = int(traffic.Int64)
	sum.Irrelevant = int(irrelevant.Int64)
	return sum, nil
}

const topCompaniesQuery = `
	select hs.company_id, coalesce(c.name, ''), coalesce(c.primary_url, ''),
	       hs.hs_score, hs.is_sweetspot_company,
	       coalesce(hs.is_traffic_priority, false), hs.founder_score_mean
	from haystack_scores hs
	join companies c on c.company_id = hs.company_id
	where hs.spc_geo = ?
	  and hs.is_irrelevant_hs = false
	  and hs.hs_score > 0
	order by hs.hs_score desc, hs.company_id
	limit ?`

// TopCompanies returns the current top-n ranked companies for a geography.
func (s *Store) TopCompanies(ctx context.Context, geo string, n int) ([]RankedCompany, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(topCompaniesQuery), geo, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query top companies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RankedCompany
	for rows.Next() {
		var c RankedCompany
		if err := rows.Scan(&c.CompanyID, &c.CompanyName, &c.PrimaryURL, &c.Score,
			&c.IsSweetspot, &c.IsTrafficPriority, &c.FounderScoreMean); err != nil {
			return nil, fmt.Errorf("failed to scan ranked company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
