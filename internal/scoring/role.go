package scoring

import "time"

// MinTenureDays is the minimum role tenure before a role can score at all.
const MinTenureDays = 365

// Tenure returns the length of a role in days. A nil start or end is
// treated as now: ongoing roles count up to the present, and roles with an
// unknown start collapse to zero-length rather than erroring. The latter
// undercounts tenure for roles missing a start date; it is a deliberate
// carry-over from the upstream data pipeline.
func Tenure(start, end *time.Time, now time.Time) int {
	s := now
	if start != nil {
		s = *start
	}
	e := now
	if end != nil {
		e = *end
	}
	return int(e.Sub(s).Hours() / 24)
}

// ScoreRole computes the score for one role record.
//
// Tenures under a year never score, regardless of seniority or company
// tier. Otherwise a tier company is worth 1 unless the role is junior, and
// exec or senior seniority doubles the total.
func ScoreRole(r RoleInput) int {
	if r.TenureDays < MinTenureDays {
		return 0
	}

	score := 0
	if r.IsTierCompany && r.Seniority != SeniorityJunior {
		score++
	}
	if r.Seniority == SeniorityExec || r.Seniority == SenioritySenior {
		score *= 2
	}

	return score
}
