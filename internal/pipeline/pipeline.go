// Package pipeline orchestrates the scoring stages against the store:
// education and role scores feed person scores, classifier flags feed the
// composite company score, and the export stage consumes the result. Each
// stage replaces its whole output partition, so stages are safe to rerun.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haystacklabs/haystack/internal/classify"
	"github.com/haystacklabs/haystack/internal/config"
	"github.com/haystacklabs/haystack/internal/scoring"
	"github.com/haystacklabs/haystack/internal/store"
	"github.com/haystacklabs/haystack/internal/tierlist"
)

// Pipeline runs scoring stages for one geography at a time.
type Pipeline struct {
	store  *store.Store
	cfg    *config.Config
	logger *slog.Logger

	// now is swappable so tests control generated_at stamps.
	now func() time.Time
}

// New builds a Pipeline. A nil logger discards output.
func New(s *store.Store, cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{store: s, cfg: cfg, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// stageLogger stamps every stage run with a fresh run ID so interleaved
// runs in shared logs stay distinguishable.
func (p *Pipeline) stageLogger(stage, geo string) *slog.Logger {
	return p.logger.With(
		slog.String("stage", stage),
		slog.String("geo", geo),
		slog.String("run_id", uuid.NewString()))
}

func (p *Pipeline) loadList(path, what string) (*tierlist.List, error) {
	if path == "" {
		p.logger.Warn("no list configured, membership checks will all miss", slog.String("list", what))
		return nil, nil
	}
	list, err := tierlist.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s list: %w", what, err)
	}
	return list, nil
}

// RunEducations scores every education and replaces the global
// education_scores table.
func (p *Pipeline) RunEducations(ctx context.Context) error {
	log := p.stageLogger("educations", "all")
	start := p.now()

	schools, err := p.loadList(p.cfg.TierSchools, "tier school")
	if err != nil {
		return err
	}

	rows, err := p.store.EducationsForScoring(ctx)
	if err != nil {
		return err
	}

	scores := make([]store.EducationScore, 0, len(rows))
	for _, r := range rows {
		score := scoring.ScoreEducation(scoring.EducationInput{
			EducationID:  r.EducationID,
			IsIrrelevant: r.IsIrrelevant,
			IsTierSchool: schools.Contains(r.SchoolName),
			IsPhD:        r.IsPhD,
			IsMasters:    r.IsMasters,
		})
		scores = append(scores, store.EducationScore{EducationID: r.EducationID, Score: score})
	}

	if err := p.store.ReplaceEducationScores(ctx, scores, start); err != nil {
		return err
	}
	log.Info("education scores replaced", slog.Int("rows", len(scores)), slog.Duration("took", time.Since(start)))
	return nil
}

// RunRoles scores every role held by a person in the geography and
// replaces that geography's role_scores partition.
func (p *Pipeline) RunRoles(ctx context.Context, geo string) error {
	log := p.stageLogger("roles", geo)
	start := p.now()

	companies, err := p.loadList(p.cfg.TierCompaniesPath(geo), "tier company")
	if err != nil {
		return err
	}

	rows, err := p.store.RolesForScoring(ctx, geo)
	if err != nil {
		return err
	}

	scores := make([]store.RoleScore, 0, len(rows))
	for _, r := range rows {
		score := scoring.ScoreRole(scoring.RoleInput{
			RoleID:        r.RoleID,
			TenureDays:    scoring.Tenure(r.Start, r.End, start),
			IsTierCompany: companies.Contains(r.CompanyName),
			Seniority:     r.Seniority,
		})
		scores = append(scores, store.RoleScore{RoleID: r.RoleID, Score: score})
	}

	if err := p.store.ReplaceRoleScores(ctx, geo, scores, start); err != nil {
		return err
	}
	log.Info("role scores replaced", slog.Int("rows", len(scores)), slog.Duration("took", time.Since(start)))
	return nil
}

// RunPersons aggregates role and education scores per person and replaces
// the geography's person_scores partition. Every person in the geography
// gets a row, zero-scored when nothing contributed.
func (p *Pipeline) RunPersons(ctx context.Context, geo string) error {
	log := p.stageLogger("persons", geo)
	start := p.now()

	personIDs, err := p.store.PersonIDs(ctx, geo)
	if err != nil {
		return err
	}
	roleRows, err := p.store.RoleComponents(ctx, geo)
	if err != nil {
		return err
	}
	eduRows, err := p.store.EducationComponents(ctx, geo)
	if err != nil {
		return err
	}

	roles := make(map[int64][]scoring.RoleComponent)
	for _, r := range roleRows {
		var score float64
		if r.Score != nil {
			score = *r.Score
		}
		roles[r.PersonID] = append(roles[r.PersonID], scoring.RoleComponent{
			CompanyID:   r.CompanyID,
			Score:       score,
			Title:       r.Title,
			CompanyName: r.CompanyName,
		})
	}
	educations := make(map[int64][]scoring.EducationComponent)
	for _, e := range eduRows {
		var score float64
		if e.Score != nil {
			score = *e.Score
		}
		educations[e.PersonID] = append(educations[e.PersonID], scoring.EducationComponent{
			Score:      score,
			DegreeName: e.DegreeName,
			SchoolName: e.SchoolName,
		})
	}

	scores := make([]store.PersonScore, 0, len(personIDs))
	for _, id := range personIDs {
		total, description := scoring.AggregatePerson(roles[id], educations[id])
		scores = append(scores, store.PersonScore{PersonID: id, Score: total, Description: description})
	}

	if err := p.store.ReplacePersonScores(ctx, geo, scores, start); err != nil {
		return err
	}
	log.Info("person scores replaced", slog.Int("rows", len(scores)), slog.Duration("took", time.Since(start)))
	return nil
}

// RunSweetspot classifies every company for AI sweetspot signals and
// replaces the global company_sweetspot_flags table.
func (p *Pipeline) RunSweetspot(ctx context.Context) error {
	log := p.stageLogger("sweetspot", "all")
	start := p.now()

	companies, err := p.store.Companies(ctx)
	if err != nil {
		return err
	}
	execRoles, err := p.store.ExecRoles(ctx)
	if err != nil {
		return err
	}

	flags := classify.ClassifySweetspot(companies, execRoles)
	if err := p.store.ReplaceSweetspotFlags(ctx, flags, start); err != nil {
		return err
	}

	hits := 0
	for _, f := range flags {
		if f.IsSweetspot {
			hits++
		}
	}
	log.Info("sweetspot flags replaced",
		slog.Int("companies", len(flags)),
		slog.Int("sweetspot", hits),
		slog.Duration("took", time.Since(start)))
	return nil
}

// RunTraffic ranks website traffic per bucket and replaces the
// geography's traffic_flags partition.
func (p *Pipeline) RunTraffic(ctx context.Context, geo string) error {
	log := p.stageLogger("traffic", geo)
	start := p.now()

	minMean := p.cfg.MinTrafficMean
	if minMean <= 0 {
		minMean = config.DefaultMinTrafficMean
	}
	metrics, err := p.store.TrafficMetrics(ctx, geo, minMean)
	if err != nil {
		return err
	}

	flags := classify.RankTraffic(metrics)
	if err := p.store.ReplaceTrafficFlags(ctx, geo, flags, start); err != nil {
		return err
	}

	priority := 0
	for _, f := range flags {
		if f.IsPriority {
			priority++
		}
	}
	log.Info("traffic flags replaced",
		slog.Int("rows", len(flags)),
		slog.Int("priority", priority),
		slog.Duration("took", time.Since(start)))
	return nil
}

// RunCompanies computes the composite company score from founder scores
// and classifier flags, then replaces the geography's haystack_scores
// partition. Companies with no scored founders and no classifier rows are
// skipped entirely rather than written as empty zero rows.
func (p *Pipeline) RunCompanies(ctx context.Context, geo string) error {
	log := p.stageLogger("companies", geo)
	start := p.now()

	cutoff, err := p.cfg.CutoffTime()
	if err != nil {
		return err
	}
	founderRows, err := p.store.FounderRoster(ctx, geo, cutoff)
	if err != nil {
		return err
	}
	sweetspot, err := p.store.SweetspotFlags(ctx, geo)
	if err != nil {
		return err
	}
	traffic, err := p.store.TrafficFlags(ctx, geo)
	if err != nil {
		return err
	}

	type companyInput struct {
		founders []scoring.Founder
		flags    scoring.CompanyFlags
	}
	byCompany := make(map[int64]*companyInput)
	var order []int64
	for _, r := range founderRows {
		in, ok := byCompany[r.CompanyID]
		if !ok {
			in = &companyInput{}
			byCompany[r.CompanyID] = in
			order = append(order, r.CompanyID)
		}
		in.founders = append(in.founders, scoring.Founder{
			PersonID:      r.PersonID,
			CompanyID:     r.CompanyID,
			FullName:      r.FullName,
			LinkedInURL:   r.LinkedInURL,
			LastScrapedAt: r.LastScrapedAt,
			Score:         r.Score,
			Description:   r.Description,
		})
		in.flags.IsIrrelevantCompany = in.flags.IsIrrelevantCompany || r.IsIrrelevantCompany
		in.flags.AnyIrrelevantRole = in.flags.AnyIrrelevantRole || r.IsIrrelevantRole
	}
	for id, in := range byCompany {
		if v, ok := sweetspot[id]; ok {
			in.flags.IsSweetspot = v
			in.flags.HasSweetspotRow = true
		}
		if v, ok := traffic[id]; ok {
			in.flags.IsTrafficPriority = v
			in.flags.HasTrafficRow = true
		}
	}

	weights := p.cfg.Weights.Weights()
	records := make([]scoring.HaystackRecord, 0, len(byCompany))
	skipped := 0
	for _, id := range order {
		in := byCompany[id]
		if !scoring.HasSignal(in.founders, in.flags) {
			log.Debug("skipping company with no signal", slog.Int64("company_id", id))
			skipped++
			continue
		}
		records = append(records, scoring.ScoreCompany(id, in.founders, in.flags, weights, start))
	}

	if err := p.store.ReplaceHaystackScores(ctx, geo, records, start); err != nil {
		return err
	}
	log.Info("haystack scores replaced",
		slog.Int("companies", len(records)),
		slog.Int("skipped", skipped),
		slog.Duration("took", time.Since(start)))
	return nil
}

// Run executes every scoring stage in dependency order for one geography.
func (p *Pipeline) Run(ctx context.Context, geo string) error {
	if err := p.RunEducations(ctx); err != nil {
		return fmt.Errorf("educations stage: %w", err)
	}
	if err := p.RunRoles(ctx, geo); err != nil {
		return fmt.Errorf("roles stage: %w", err)
	}
	if err := p.RunPersons(ctx, geo); err != nil {
		return fmt.Errorf("persons stage: %w", err)
	}
	if err := p.RunSweetspot(ctx); err != nil {
		return fmt.Errorf("sweetspot stage: %w", err)
	}
	if err := p.RunTraffic(ctx, geo); err != nil {
		return fmt.Errorf("traffic stage: %w", err)
	}
	if err := p.RunCompanies(ctx, geo); err != nil {
		return fmt.Errorf("companies stage: %w", err)
	}
	return nil
}
