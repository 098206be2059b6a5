// Package export turns ranked haystack scores into CSV files for the
// Affinity CRM. Companies already uploaded or on the junk list are
// excluded, founders are deduplicated, and in prod mode every exported
// company is recorded in the upload tracker so it is never re-sent.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/haystacklabs/haystack/internal/scoring"
	"github.com/haystacklabs/haystack/internal/store"
	"github.com/haystacklabs/haystack/internal/tierlist"
)

// RunMode selects where export output goes and whether the upload
// tracker is updated.
type RunMode string

const (
	// ModeProd writes the upload CSV and appends to the tracker.
	ModeProd RunMode = "prod"
	// ModeTest writes mode-prefixed CSVs and leaves the tracker alone.
	ModeTest RunMode = "test"
	// ModeExperiment behaves like test; kept separate so experimental
	// output is never mistaken for a dry run of prod.
	ModeExperiment RunMode = "experiment"
)

// ParseRunMode validates a run mode argument.
func ParseRunMode(s string) (RunMode, error) {
	switch RunMode(s) {
	case ModeProd, ModeTest, ModeExperiment:
		return RunMode(s), nil
	}
	return "", fmt.Errorf("invalid run mode %q (want prod, test or experiment)", s)
}

// Affinity upload constants. Every exported row carries the same status
// and referral category so reviewers can filter on them in the CRM.
const (
	affinityStatus   = "Haystack Review"
	affinityReferral = "Haystack"

	// DefaultTopN is how many companies go in the upload CSV.
	DefaultTopN = 40
	// reviewTopN is how many companies go in the human review CSV.
	reviewTopN = 20
)

// Options configures a single export run.
type Options struct {
	Geo          string
	Mode         RunMode
	TopN         int
	Owners       string
	JunkListPath string
	OutDir       string
	Now          time.Time
}

// Result reports what an export run produced.
type Result struct {
	AffinityPath string
	ReviewPath   string
	Companies    int
	Excluded     int
	TrackerRows  int
}

// Company is one exportable company with its deduplicated founders,
// ordered by haystack score.
type Company struct {
	CompanyID int64
	Name      string
	URL       string
	Score     float64
	Notes     string
	Founders  []store.ExportRow
}

// Exporter builds and writes export CSVs from the score tables.
type Exporter struct {
	store  *store.Store
	logger *slog.Logger
}

// New returns an Exporter. A nil logger discards output.
func New(s *store.Store, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exporter{store: s, logger: logger}
}

// Run performs a full export for one geography.
func (e *Exporter) Run(ctx context.Context, opts Options) (Result, error) {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	candidates, err := e.store.ExportCandidates(ctx, opts.Geo)
	if err != nil {
		return Result{}, err
	}

	var junk map[int64]struct{}
	if opts.JunkListPath != "" {
		junk, err = tierlist.LoadIDs(opts.JunkListPath)
		if err != nil {
			return Result{}, fmt.Errorf("failed to load junk list: %w", err)
		}
	}

	uploaded, err := e.store.UploadedCompanyIDs(ctx)
	if err != nil {
		return Result{}, err
	}

	companies, excluded := SelectCompanies(candidates, junk, uploaded, opts.TopN)
	e.logger.Info("selected export companies",
		slog.String("geo", opts.Geo),
		slog.Int("companies", len(companies)),
		slog.Int("excluded", excluded))

	res := Result{Companies: len(companies), Excluded: excluded}
	if len(companies) == 0 {
		e.logger.Warn("no companies to export", slog.String("geo", opts.Geo))
		return res, nil
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create export directory: %w", err)
	}

	res.AffinityPath = filepath.Join(opts.OutDir, fileName("affinity_upload", opts))
	if err := writeAffinityCSV(res.AffinityPath, companies, opts.Owners); err != nil {
		return Result{}, err
	}

	review := companies
	if len(review) > reviewTopN {
		review = review[:reviewTopN]
	}
	res.ReviewPath = filepath.Join(opts.OutDir, fileName("review_top20", opts))
	if err := writeReviewCSV(res.ReviewPath, review); err != nil {
		return Result{}, err
	}

	if opts.Mode == ModeProd {
		uploads := make([]store.Upload, 0, len(companies))
		for _, c := range companies {
			uploads = append(uploads, store.Upload{
				CompanyID:  c.CompanyID,
				Domain:     c.URL,
				Notes:      c.Notes,
				UploadedOn: opts.Now,
			})
		}
		if err := e.store.AppendUploads(ctx, uploads); err != nil {
			return Result{}, err
		}
		res.TrackerRows = len(uploads)
	}

	e.logger.Info("export complete",
		slog.String("geo", opts.Geo),
		slog.String("mode", string(opts.Mode)),
		slog.String("affinity", res.AffinityPath),
		slog.String("review", res.ReviewPath),
		slog.Int("tracker_rows", res.TrackerRows))
	return res, nil
}

// SelectCompanies deduplicates founders across candidate rows, groups
// them by company in score order, drops junk-listed, already-uploaded and
// website-less companies, and returns the top n. The second return value
// counts companies dropped by the exclusion rules.
func SelectCompanies(candidates []store.ExportRow, junk, uploaded map[int64]struct{}, n int) ([]Company, int) {
	kept := dedupeRows(candidates)

	var companies []Company
	index := make(map[int64]int)
	for _, row := range kept {
		i, ok := index[row.CompanyID]
		if !ok {
			index[row.CompanyID] = len(companies)
			companies = append(companies, Company{
				CompanyID: row.CompanyID,
				Name:      row.CompanyName,
				URL:       row.PrimaryURL,
				Score:     row.Score,
				Notes:     row.Notes,
			})
			i = len(companies) - 1
		}
		companies[i].Founders = append(companies[i].Founders, row)
	}

	excluded := 0
	out := companies[:0]
	for _, c := range companies {
		if _, ok := junk[c.CompanyID]; ok {
			excluded++
			continue
		}
		if _, ok := uploaded[c.CompanyID]; ok {
			excluded++
			continue
		}
		if c.URL == "" {
			excluded++
			continue
		}
		out = append(out, c)
	}

	if len(out) > n {
		out = out[:n]
	}
	return out, excluded
}

// dedupeRows removes duplicate founder rows the same way person scoring
// does: by normalized LinkedIn URL keeping the most recently scraped, then
// by (full name, company). Survivors are tracked by row index rather than
// by (person, company): a founder with two current roles at one company
// yields two candidate rows, and only one of them may survive.
func dedupeRows(rows []store.ExportRow) []store.ExportRow {
	founders := make([]scoring.Founder, len(rows))
	for i, r := range rows {
		founders[i] = scoring.Founder{
			PersonID:      r.PersonID,
			CompanyID:     r.CompanyID,
			FullName:      r.FullName,
			LinkedInURL:   r.LinkedInURL,
			LastScrapedAt: r.LastScrapedAt,
		}
	}
	kept := scoring.DedupeFounderIndices(founders)
	sort.Ints(kept)

	out := make([]store.ExportRow, 0, len(kept))
	for _, i := range kept {
		out = append(out, rows[i])
	}
	return out
}

func fileName(base string, opts Options) string {
	name := fmt.Sprintf("%s_%s_%s.csv", base, opts.Geo, opts.Now.Format("2006-01-02"))
	if opts.Mode != ModeProd {
		name = string(opts.Mode) + "_" + name
	}
	return name
}
