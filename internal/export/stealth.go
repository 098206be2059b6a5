package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/haystacklabs/haystack/internal/store"
)

// Stealth founders have no company row yet, so each upload row is a
// placeholder organization named after the founder.
const stealthNamePrefix = "StealthCo_"

// Long LinkedIn text is cut to this many bytes in the notes.
const stealthDescriptionLimit = 200

// StealthOptions configures a stealth founder export run.
type StealthOptions struct {
	Geo    string
	Mode   RunMode
	Owners string
	OutDir string
	Now    time.Time
}

// StealthResult reports what a stealth export produced.
type StealthResult struct {
	UploadPath   string
	ExcludedPath string
	Founders     int
	Excluded     int
}

// StealthFounder is one upload row for a stealth founder.
type StealthFounder struct {
	Name  string
	Notes string
}

// RunStealth exports the week's stealth-role founders for one geography.
// Founders whose name already appears in a stealth CRM entry go to a
// separate exclusions file instead of the upload.
func (e *Exporter) RunStealth(ctx context.Context, opts StealthOptions) (StealthResult, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	since := weekStart(opts.Now)

	rows, err := e.store.StealthFounders(ctx, opts.Geo, since)
	if err != nil {
		return StealthResult{}, err
	}
	crmNames, err := e.store.CRMStealthNames(ctx)
	if err != nil {
		return StealthResult{}, err
	}

	founders, excluded := SelectStealthFounders(rows, crmNames, opts.Now)
	e.logger.Info("selected stealth founders",
		slog.String("geo", opts.Geo),
		slog.Time("week_start", since),
		slog.Int("founders", len(founders)),
		slog.Int("excluded", len(excluded)))

	res := StealthResult{Founders: len(founders), Excluded: len(excluded)}
	if len(founders) == 0 && len(excluded) == 0 {
		e.logger.Warn("no stealth founders to export", slog.String("geo", opts.Geo))
		return res, nil
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return StealthResult{}, fmt.Errorf("failed to create export directory: %w", err)
	}

	naming := Options{Geo: opts.Geo, Mode: opts.Mode, Now: opts.Now}
	if len(founders) > 0 {
		res.UploadPath = filepath.Join(opts.OutDir, fileName("affinity_upload_stealth", naming))
		if err := writeStealthCSV(res.UploadPath, founders, opts.Owners); err != nil {
			return StealthResult{}, err
		}
	}
	if len(excluded) > 0 {
		res.ExcludedPath = filepath.Join(opts.OutDir, fileName("affinity_upload_stealth_excluded", naming))
		if err := writeStealthCSV(res.ExcludedPath, excluded, opts.Owners); err != nil {
			return StealthResult{}, err
		}
	}

	e.logger.Info("stealth export complete",
		slog.String("geo", opts.Geo),
		slog.String("mode", string(opts.Mode)),
		slog.String("upload", res.UploadPath),
		slog.Int("founders", res.Founders),
		slog.Int("excluded", res.Excluded))
	return res, nil
}

// SelectStealthFounders builds upload rows from the week's stealth
// founders and splits out those already tracked in the CRM. A founder is
// excluded when their normalized name appears inside any stealth-tagged
// CRM organisation name.
func SelectStealthFounders(rows []store.StealthRow, crmNames []string, generatedOn time.Time) (founders, excluded []StealthFounder) {
	normalized := make([]string, 0, len(crmNames))
	for _, n := range crmNames {
		if n := strings.ToLower(alnum(n)); n != "" {
			normalized = append(normalized, n)
		}
	}

	for _, r := range rows {
		match := strings.ToLower(alnum(r.FullName))
		if match == "" {
			match = fmt.Sprintf("%d", r.PersonID)
		}
		f := StealthFounder{Name: stealthName(r), Notes: stealthNotes(r, generatedOn)}

		tracked := false
		for _, name := range normalized {
			if strings.Contains(name, match) {
				tracked = true
				break
			}
		}
		if tracked {
			excluded = append(excluded, f)
			continue
		}
		founders = append(founders, f)
	}
	return founders, excluded
}

func stealthName(r store.StealthRow) string {
	if name := alnum(r.FullName); name != "" {
		return stealthNamePrefix + name
	}
	return fmt.Sprintf("%s%d", stealthNamePrefix, r.PersonID)
}

func stealthNotes(r store.StealthRow, generatedOn time.Time) string {
	summary := r.Description
	if summary == "" {
		summary = "None"
	}
	roleStart := "None"
	if r.RoleStart != nil {
		roleStart = r.RoleStart.Format("Jan 2006")
	}
	url := r.LinkedInURL
	if url == "" {
		url = "None"
	}

	return fmt.Sprintf(`Haystack Summary: %s
Stealth Start Date: %s
Stealth Role Description: %s
LinkedIn Description: %s
LinkedIn URL: %s

------

Founder Score: %.2f
Haystack Person ID: %d
Date Generated: %s
`,
		summary, roleStart,
		truncateDescription(r.RoleDescription),
		truncateDescription(r.LinkedInSummary),
		url, r.Score, r.PersonID, generatedOn.Format("2006-01-02"))
}

func truncateDescription(s string) string {
	if s == "" {
		return "None"
	}
	if len(s) > stealthDescriptionLimit {
		return s[:stealthDescriptionLimit] + "..."
	}
	return s
}

// alnum strips everything but letters and digits, for fuzzy name matching
// against CRM organisation names.
func alnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// weekStart returns midnight UTC of the Monday on or before t. Stealth
// exports run weekly and only pick up profiles scraped since then.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	days := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -days)
}
