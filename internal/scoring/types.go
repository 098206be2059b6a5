// Package scoring implements the Haystack scoring model: per-education and
// per-role scores, person-level aggregation, and the composite per-company
// Haystack score. All scorers are pure functions over already-joined input
// records; reading and persisting rows is the store's job.
package scoring

import "time"

// Seniority buckets inferred upstream from role titles.
const (
	SeniorityJunior = "junior"
	SenioritySenior = "senior"
	SeniorityExec   = "exec"
	SeniorityOther  = "other"
)

// EducationInput is one education record with its upstream flags and the
// tier-school membership already resolved.
type EducationInput struct {
	EducationID  int64
	IsIrrelevant bool
	IsTierSchool bool
	IsPhD        bool
	IsMasters    bool
}

// RoleInput is one role record with flags and tier-company membership
// resolved. TenureDays is derived via Tenure.
type RoleInput struct {
	RoleID        int64
	TenureDays    int
	IsTierCompany bool
	Seniority     string
}

// RoleComponent is a scored role feeding person aggregation.
type RoleComponent struct {
	CompanyID   *int64
	Score       float64
	Title       string
	CompanyName string
}

// EducationComponent is a scored education feeding person aggregation.
type EducationComponent struct {
	Score      float64
	DegreeName string
	SchoolName string
}

// Founder is one current founder-role person at a company, with the
// person-level score attached when one exists.
type Founder struct {
	PersonID      int64
	CompanyID     int64
	FullName      string
	LinkedInURL   string
	LastScrapedAt time.Time
	Score         *float64
	Description   string
}

// CompanyFlags carries the company-level signals consumed by the Haystack
// scorer. HasSweetspotRow/HasTrafficRow distinguish "flag is false" from
// "no classifier output exists for this company".
type CompanyFlags struct {
	IsIrrelevantCompany bool
	AnyIrrelevantRole   bool
	IsSweetspot         bool
	HasSweetspotRow     bool
	IsTrafficPriority   bool
	HasTrafficRow       bool
}

// HaystackRecord is the composite per-company result persisted to
// haystack_scores and consumed by the export pipeline.
type HaystackRecord struct {
	CompanyID         int64
	Score             float64
	IsSweetspot       bool
	IsTrafficPriority bool
	IsIrrelevant      bool
	FounderScoreMean  float64
	Notes             string
}

// Weights are the fixed score bonuses. They are configurable in the config
// file but default to the published values.
type Weights struct {
	SweetspotBonus float64
	TrafficBonus   float64
}

// Default bonus weights for the composite score.
const (
	DefaultSweetspotBonus = 2
	DefaultTrafficBonus   = 5
)

// DefaultWeights returns the standard bonus weights.
func DefaultWeights() Weights {
	return Weights{
		SweetspotBonus: DefaultSweetspotBonus,
		TrafficBonus:   DefaultTrafficBonus,
	}
}
