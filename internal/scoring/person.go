package scoring

import (
	"fmt"
	"sort"
	"strings"
)

// fillNA substitutes the placeholder used in descriptions for missing
// upstream text fields.
func fillNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// dedupeRolesByCompany keeps only the highest-scoring role per company for
// a person. The sort is stable so ties keep their input order; roles with
// no company collapse into a single nil-company slot.
func dedupeRolesByCompany(roles []RoleComponent) []RoleComponent {
	sorted := make([]RoleComponent, len(roles))
	copy(sorted, roles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	seen := make(map[int64]bool)
	seenNil := false
	var deduped []RoleComponent
	for _, r := range sorted {
		if r.CompanyID == nil {
			if seenNil {
				continue
			}
			seenNil = true
		} else {
			if seen[*r.CompanyID] {
				continue
			}
			seen[*r.CompanyID] = true
		}
		deduped = append(deduped, r)
	}
	return deduped
}

// AggregatePerson combines a person's scored roles and educations into one
// score and a readable description.
//
// Roles are deduplicated per company first (highest score wins), then only
// components with a positive score contribute. The score is the sum of the
// qualifying component scores; the description joins each component's
// label with ", ". A person with no qualifying components gets score 0 and
// an empty description.
func AggregatePerson(roles []RoleComponent, educations []EducationComponent) (float64, string) {
	var total float64
	var labels []string

	for _, r := range dedupeRolesByCompany(roles) {
		if r.Score <= 0 {
			continue
		}
		total += r.Score
		labels = append(labels, fmt.Sprintf("%s @ %s", fillNA(r.Title), fillNA(r.CompanyName)))
	}

	for _, e := range educations {
		if e.Score <= 0 {
			continue
		}
		total += e.Score
		labels = append(labels, fmt.Sprintf("%s @ %s", fillNA(e.DegreeName), fillNA(e.SchoolName)))
	}

	return total, strings.Join(labels, ", ")
}
