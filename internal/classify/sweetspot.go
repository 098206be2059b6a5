// Package classify computes the company-level signal flags consumed by the
// Haystack scorer: the AI-sector "sweetspot" flag and the web-traffic
// priority flag. Classifiers are pure functions over already-fetched rows.
package classify

import (
	"regexp"
	"strings"
)

// Pattern sources for the sweetspot signals. Case variants are spelled out
// where the upstream pipeline did so; these are matched verbatim, not
// case-folded.
var (
	aiIODomainPattern = regexp.MustCompile(`\.ai|\.io`)
	aiNamePattern     = regexp.MustCompile(`.*AI\b|\bai\b`)
	aiExecPattern     = regexp.MustCompile(`\bai\b|\bAI\b|artificial intelligence|\bml\b|\bML\b|machine learning|deep learning|neural network|computer vision|natural language processing|\bnlp\b|\bNLP\b`)
)

// CompanyInfo is the company identity input to the sweetspot classifier.
type CompanyInfo struct {
	CompanyID  int64
	Name       string
	PrimaryURL string
}

// ExecRole is one executive-level role's text at a company.
type ExecRole struct {
	CompanyID   int64
	Title       string
	Description string
}

// SweetspotFlag is the classifier output for one company, including the
// intermediate signals for debugging.
type SweetspotFlag struct {
	CompanyID      int64
	HasAIIODomain  bool
	HasAIName      bool
	HasSweetspotAI bool // any exec mentions AI in title or description
	IsSweetspot    bool
}

// ClassifySweetspot flags companies that look like they operate in the
// AI/ML sector. A company is sweetspot if any of three signals fires:
// a .ai/.io domain, an AI-token company name, or any executive whose role
// title or description mentions an AI keyword. Exec text is pooled per
// company before matching so multi-exec coverage is preserved.
func ClassifySweetspot(companies []CompanyInfo, execRoles []ExecRole) []SweetspotFlag {
	execText := make(map[int64][]string)
	for _, r := range execRoles {
		execText[r.CompanyID] = append(execText[r.CompanyID], r.Title, r.Description)
	}

	flags := make([]SweetspotFlag, 0, len(companies))
	for _, c := range companies {
		flag := SweetspotFlag{CompanyID: c.CompanyID}

		if c.PrimaryURL != "" {
			flag.HasAIIODomain = aiIODomainPattern.MatchString(c.PrimaryURL)
		}
		if c.Name != "" {
			flag.HasAIName = aiNamePattern.MatchString(c.Name)
		}
		if texts, ok := execText[c.CompanyID]; ok {
			flag.HasSweetspotAI = aiExecPattern.MatchString(strings.Join(texts, " "))
		}

		flag.IsSweetspot = flag.HasAIIODomain || flag.HasAIName || flag.HasSweetspotAI
		flags = append(flags, flag)
	}
	return flags
}
