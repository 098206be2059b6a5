package scoring

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ScoreCompany computes the composite Haystack record for one company from
// its current founder roster and company-level flags.
//
// The founder roster must already satisfy the eligibility filter (founder
// role, currently held, started after the cutoff, person not an
// undergrad). Founders are deduplicated here before the mean so the same
// human scraped twice only counts once. Companies with no scored founders
// get a mean of 0, not a missing value.
//
// The sign of the returned score encodes relevance: if the company or any
// of its roles is flagged irrelevant the score is negated, preserving the
// magnitude for ranking within the excluded set.
func ScoreCompany(companyID int64, founders []Founder, flags CompanyFlags, weights Weights, now time.Time) HaystackRecord {
	deduped := DedupeFounders(founders)

	var sum float64
	var scored int
	for _, f := range deduped {
		if f.Score == nil {
			continue
		}
		sum += *f.Score
		scored++
	}
	mean := 0.0
	if scored > 0 {
		mean = sum / float64(scored)
	}

	score := mean
	sweetspot := flags.HasSweetspotRow && flags.IsSweetspot
	traffic := flags.HasTrafficRow && flags.IsTrafficPriority
	if sweetspot {
		score += weights.SweetspotBonus
	}
	if traffic {
		score += weights.TrafficBonus
	}

	irrelevant := flags.IsIrrelevantCompany || flags.AnyIrrelevantRole
	if irrelevant {
		score = -score
	}

	rec := HaystackRecord{
		CompanyID:         companyID,
		Score:             score,
		IsSweetspot:       sweetspot,
		IsTrafficPriority: traffic,
		IsIrrelevant:      irrelevant,
		FounderScoreMean:  mean,
	}
	rec.Notes = buildNote(rec, deduped, flags, now)
	return rec
}

// buildNote assembles the free-text summary attached to each company and
// sent verbatim to the CRM.
func buildNote(rec HaystackRecord, founders []Founder, flags CompanyFlags, now time.Time) string {
	var summaries strings.Builder
	var urls strings.Builder
	for _, f := range founders {
		if f.FullName != "" {
			summaries.WriteString("\n  " + f.FullName)
		}
		if f.Description != "" {
			summaries.WriteString(": " + f.Description + " ")
		}
		if f.LinkedInURL != "" {
			urls.WriteString("\n  " + f.LinkedInURL)
		}
	}

	trafficStr := "No data"
	if flags.HasTrafficRow {
		trafficStr = strconv.FormatBool(rec.IsTrafficPriority)
	}

	return fmt.Sprintf(`
Founder Summaries: %s

Founder LinkedIn URLs: %s

------

Haystack Score: %.2f
Haystack Breakdown:
    Mean Founder Score: %.2f
    Is Sweetspot Company: %t
    Is Traffic Priority: %s

Haystack Company ID: %d
Date Generated: %s
`,
		summaries.String(),
		urls.String(),
		rec.Score,
		rec.FounderScoreMean,
		rec.IsSweetspot,
		trafficStr,
		rec.CompanyID,
		now.Format("2006-01-02"),
	)
}

// HasSignal reports whether a company record carries any information worth
// persisting. Companies where no founder ever scored and no classifier has
// produced a flag row are skipped instead of written as all-zero rows.
func HasSignal(founders []Founder, flags CompanyFlags) bool {
	if flags.HasSweetspotRow || flags.HasTrafficRow {
		return true
	}
	for _, f := range founders {
		if f.Score != nil {
			return true
		}
	}
	return false
}
