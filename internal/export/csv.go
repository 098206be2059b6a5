package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

var affinityHeader = []string{
	"Organization Name",
	"Organization Website",
	"Notes",
	"Owners",
	"Status",
	"Referral Category",
}

// writeAffinityCSV writes the upload file in the column layout the
// Affinity importer expects, one row per company.
func writeAffinityCSV(path string, companies []Company, owners string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(affinityHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, c := range companies {
		record := []string{
			c.Name,
			c.URL,
			c.Notes,
			owners,
			affinityStatus,
			affinityReferral,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row for company %d: %w", c.CompanyID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return f.Close()
}

var stealthHeader = []string{
	"Organization Name",
	"Notes",
	"Owners",
	"Organization Website",
	"Status",
	"Referral Category",
}

// writeStealthCSV writes stealth founders as placeholder organizations.
// Stealth companies have no website yet, so that column stays empty.
func writeStealthCSV(path string, founders []StealthFounder, owners string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(stealthHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, founder := range founders {
		record := []string{
			founder.Name,
			founder.Notes,
			owners,
			"",
			affinityStatus,
			affinityReferral,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", founder.Name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return f.Close()
}

var reviewHeader = []string{
	"Organization Name",
	"Organization Website",
	"Haystack Score",
	"Founder Name",
	"Founder LinkedIn",
	"Founder Summary",
}

// writeReviewCSV writes the human review file, one row per founder so a
// reviewer can scan founder backgrounds without opening the CRM.
func writeReviewCSV(path string, companies []Company) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(reviewHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, c := range companies {
		score := strconv.FormatFloat(c.Score, 'f', 2, 64)
		for _, founder := range c.Founders {
			record := []string{
				c.Name,
				c.URL,
				score,
				founder.FullName,
				founder.LinkedInURL,
				founder.Description,
			}
			if err := w.Write(record); err != nil {
				return fmt.Errorf("failed to write row for company %d: %w", c.CompanyID, err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return f.Close()
}
