package store

import "time"

// RoleRow is one role with its flags and company name, as read for role
// scoring.
type RoleRow struct {
	RoleID      int64
	Start       *time.Time
	End         *time.Time
	Seniority   string
	CompanyName string
}

// EducationRow is one education with its flags and school name, as read
// for education scoring.
type EducationRow struct {
	EducationID  int64
	DegreeName   string
	SchoolName   string
	IsPhD        bool
	IsMasters    bool
	IsIrrelevant bool
}

// PersonRoleRow is a person's role with its role score attached (nil when
// the role was never scored).
type PersonRoleRow struct {
	PersonID    int64
	CompanyID   *int64
	Score       *float64
	Title       string
	CompanyName string
}

// PersonEducationRow is a person's education with its education score
// attached (nil when unscored).
type PersonEducationRow struct {
	PersonID   int64
	Score      *float64
	DegreeName string
	SchoolName string
}

// FounderRow is one current founder-role person at a company in the
// geography, with person score and irrelevance flags joined in.
type FounderRow struct {
	CompanyID           int64
	PersonID            int64
	FullName            string
	LinkedInURL         string
	LastScrapedAt       time.Time
	Score               *float64
	Description         string
	IsIrrelevantRole    bool
	IsIrrelevantCompany bool
}

// EducationScore is one row of the global education_scores table.
type EducationScore struct {
	EducationID int64
	Score       int
}

// RoleScore is one row of the geography-partitioned role_scores table.
type RoleScore struct {
	RoleID int64
	Score  int
}

// PersonScore is one row of the geography-partitioned person_scores table.
type PersonScore struct {
	PersonID    int64
	Score       float64
	Description string
}

// ExportRow is one (company, founder) pair from the export candidate
// query. The export pipeline groups rows by company after founder dedupe.
type ExportRow struct {
	CompanyID         int64
	Score             float64
	IsSweetspot       bool
	IsTrafficPriority *bool
	FounderScoreMean  float64
	Notes             string
	CompanyName       string
	PrimaryURL        string
	PersonID          int64
	FullName          string
	LinkedInURL       string
	LastScrapedAt     time.Time
	Description       string
}

// RankedCompany is a row of haystack_scores joined with the company name,
// used by the preview command.
type RankedCompany struct {
	CompanyID         int64
	CompanyName       string
	PrimaryURL        string
	Score             float64
	IsSweetspot       bool
	IsTrafficPriority bool
	FounderScoreMean  float64
}

// Summary aggregates one geography's haystack score partition for the
// trend report.
type Summary struct {
	Companies       int
	Sweetspot       int
	TrafficPriority int
	Irrelevant      int
	MeanScore       float64
}

// StealthRow is one current stealth-role founder with their person score
// joined in, as read for the stealth upload.
type StealthRow struct {
	PersonID        int64
	FullName        string
	LinkedInURL     string
	LinkedInSummary string
	RoleStart       *time.Time
	RoleDescription string
	Description     string
	Score           float64
}

// Upload is one appended row of the company_upload_tracker table.
type Upload struct {
	CompanyID  int64
	Domain     string
	Notes      string
	UploadedOn time.Time
}
