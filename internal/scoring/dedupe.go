package scoring

import (
	"sort"
	"strings"
)

// NormalizeLinkedInURL strips trailing slashes so the same profile scraped
// with and without a trailing slash compares equal.
func NormalizeLinkedInURL(url string) string {
	return strings.TrimRight(strings.TrimSpace(url), "/")
}

// DedupeFounders collapses duplicate scraped-person records for the same
// human. Two passes, in this order:
//
//  1. by normalized LinkedIn URL, keeping the most recently scraped record;
//  2. by (full name, company), again keeping the most recently scraped.
//
// Founders without a LinkedIn URL skip the first pass so distinct unlinked
// records are not merged by accident. The result preserves recency order
// within the survivors.
func DedupeFounders(founders []Founder) []Founder {
	kept := DedupeFounderIndices(founders)
	deduped := make([]Founder, 0, len(kept))
	for _, i := range kept {
		deduped = append(deduped, founders[i])
	}
	return deduped
}

// DedupeFounderIndices runs the DedupeFounders passes but returns the
// indices of the surviving records instead of copies. Callers carrying
// founder records inside wider rows use this to keep exactly one row per
// survivor, not every row that shares a survivor's keys.
func DedupeFounderIndices(founders []Founder) []int {
	order := make([]int, len(founders))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return founders[order[a]].LastScrapedAt.After(founders[order[b]].LastScrapedAt)
	})

	type nameKey struct {
		fullName  string
		companyID int64
	}

	seenURL := make(map[string]bool)
	seenName := make(map[nameKey]bool)
	var kept []int
	for _, i := range order {
		f := founders[i]
		if url := NormalizeLinkedInURL(f.LinkedInURL); url != "" {
			if seenURL[url] {
				continue
			}
			seenURL[url] = true
		}

		if f.FullName != "" {
			key := nameKey{fullName: f.FullName, companyID: f.CompanyID}
			if seenName[key] {
				continue
			}
			seenName[key] = true
		}

		kept = append(kept, i)
	}
	return kept
}
