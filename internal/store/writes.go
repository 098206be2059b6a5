package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/haystacklabs/haystack/internal/classify"
	"github.com/haystacklabs/haystack/internal/scoring"
)

// inTx runs fn inside a transaction, rolling back on error. Partition
// replacement relies on this: the delete and the inserts either both land
// or neither does.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ReplaceEducationScores atomically replaces the global education_scores
// table. Education scores are geography-agnostic, so this is a full
// replace rather than a partition replace.
func (s *Store) ReplaceEducationScores(ctx context.Context, rows []EducationScore, generatedAt time.Time) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `delete from education_scores`); err != nil {
			return fmt.Errorf("failed to clear education scores: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, s.rebind(
			`insert into education_scores (education_id, education_score, generated_at) values (?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("failed to prepare education score insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, r.EducationID, r.Score, generatedAt); err != nil {
				return fmt.Errorf("failed to insert education score %d: %w", r.EducationID, err)
			}
		}
		s.logger.Debug("replaced education scores", slog.Int("rows", len(rows)))
		return nil
	})
}

// ReplaceRoleScores atomically replaces one geography's partition of the
// role_scores table, leaving other geographies untouched.
func (s *Store) ReplaceRoleScores(ctx context.Context, geo string, rows []RoleScore, generatedAt time.Time) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`delete from role_scores where spc_geo = ?`), geo); err != nil {
			return fmt.Errorf("failed to clear role scores for %s: %w", geo, err)
		}

		stmt, err := tx.PrepareContext(ctx, s.rebind(
			`insert into role_scores (role_id, role_score, spc_geo, generated_at) values (?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("failed to prepare role score insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, r.RoleID, r.Score, geo, generatedAt); err != nil {
				return fmt.Errorf("failed to insert role score %d: %w", r.RoleID, err)
			}
		}
		s.logger.Debug("replaced role scores", slog.String("geo", geo), slog.Int("rows", len(rows)))
		return nil
	})
}

// ReplacePersonScores atomically replaces one geography's partition of the
// person_scores table.
func (s *Store) ReplacePersonScores(ctx context.Context, geo string, rows []PersonScore, generatedAt time.Time) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`delete from person_scores where spc_geo = ?`), geo); err != nil {
			return fmt.Errorf("failed to clear person scores for %s: %w", geo, err)
		}

		stmt, err := tx.PrepareContext(ctx, s.rebind(
			`insert into person_scores (person_id, score, description, spc_geo, generated_at) values (?, ?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("failed to prepare person score insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, r.PersonID, r.Score, r.Description, geo, generatedAt); err != nil {
				return fmt.Errorf("failed to insert person score %d: %w", r.PersonID, err)
			}
		}
		s.logger.Debug("replaced person scores", slog.String("geo", geo), slog.Int("rows", len(rows)))
		return nil
	})
}

// ReplaceHaystackScores atomically replaces one geography's partition of
// the haystack_scores table.
func (s *Store) ReplaceHaystackScores(ctx context.Context, geo string, rows []scoring.HaystackRecord, generatedAt time.Time) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`delete from haystack_scores where spc_geo = ?`), geo); err != nil {
			return fmt.Errorf("failed to clear haystack scores for %s: %w", geo, err)
		}

		stmt, err := tx.PrepareContext(ctx, s.rebind(
			`insert into haystack_scores
			 (company_id, hs_score, is_sweetspot_company, is_traffic_priority,
			  is_irrelevant_hs, founder_score_mean, notes, spc_geo, generated_at)
			 values (?, ?, ?, ?, ?, ?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("failed to prepare haystack score insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, r.CompanyID, r.Score, r.IsSweetspot,
				r.IsTrafficPriority, r.IsIrrelevant, r.FounderScoreMean, r.Notes, geo, generatedAt); err != nil {
				return fmt.Errorf("failed to insert haystack score %d: %w", r.CompanyID, err)
			}
		}
		s.logger.Debug("replaced haystack scores", slog.String("geo", geo), slog.Int("rows", len(rows)))
		return nil
	})
}

// ReplaceSweetspotFlags atomically replaces the global
// company_sweetspot_flags table. Sweetspot classification runs over all
// companies, so the table is not partitioned.
func (s *Store) ReplaceSweetspotFlags(ctx context.Context, flags []classify.SweetspotFlag, generatedAt time.Time) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `delete from company_sweetspot_flags`); err != nil {
			return fmt.Errorf("failed to clear sweetspot flags: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, s.rebind(
			`insert into company_sweetspot_flags
			 (company_id, has_ai_io_domain, has_ai_name, has_sweetspot_exec,
			  is_sweetspot_company, generated_at)
			 values (?, ?, ?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("failed to prepare sweetspot flag insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, f := range flags {
			if _, err := stmt.ExecContext(ctx, f.CompanyID, f.HasAIIODomain, f.HasAIName,
				f.HasSweetspotAI, f.IsSweetspot, generatedAt); err != nil {
				return fmt.Errorf("failed to insert sweetspot flag %d: %w", f.CompanyID, err)
			}
		}
		s.logger.Debug("replaced sweetspot flags", slog.Int("rows", len(flags)))
		return nil
	})
}

// ReplaceTrafficFlags atomically replaces one geography's partition of the
// traffic_flags table.
func (s *Store) ReplaceTrafficFlags(ctx context.Context, geo string, flags []classify.TrafficFlag, generatedAt time.Time) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`delete from traffic_flags where spc_geo = ?`), geo); err != nil {
			return fmt.Errorf("failed to clear traffic flags for %s: %w", geo, err)
		}

		stmt, err := tx.PrepareContext(ctx, s.rebind(
			`insert into traffic_flags
			 (company_id, domain, last_3_months_mean, last_3_months_mean_bucket,
			  r_squared, bucket_rank, is_traffic_priority, spc_geo, generated_at)
			 values (?, ?, ?, ?, ?, ?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("failed to prepare traffic flag insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, f := range flags {
			if _, err := stmt.ExecContext(ctx, f.CompanyID, f.Domain, f.Last3MonthsMean,
				f.Bucket, f.RSquared, f.Rank, f.IsPriority, geo, generatedAt); err != nil {
				return fmt.Errorf("failed to insert traffic flag %s: %w", f.Domain, err)
			}
		}
		s.logger.Debug("replaced traffic flags", slog.String("geo", geo), slog.Int("rows", len(flags)))
		return nil
	})
}
