package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

const uploadedCompanyIDsQuery = `
	select company_id from company_upload_tracker`

// UploadedCompanyIDs returns the set of companies ever sent to the CRM.
// The tracker is append-only and not partitioned: a company uploaded once
// is never re-sent, whatever geography or score change.
func (s *Store) UploadedCompanyIDs(ctx context.Context) (map[int64]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, uploadedCompanyIDsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query upload tracker: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan upload tracker row: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// AppendUploads records exported companies in the upload tracker. Called
// only after a successful prod export, inside one transaction.
func (s *Store) AppendUploads(ctx context.Context, uploads []Upload) error {
	if len(uploads) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, s.rebind(
			`insert into company_upload_tracker (company_id, company_domain, affinity_notes, uploaded_on)
			 values (?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("failed to prepare upload tracker insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, u := range uploads {
			if _, err := stmt.ExecContext(ctx, u.CompanyID, u.Domain, u.Notes, u.UploadedOn); err != nil {
				return fmt.Errorf("failed to insert upload tracker row %d: %w", u.CompanyID, err)
			}
		}
		s.logger.Debug("appended upload tracker rows", slog.Int("rows", len(uploads)))
		return nil
	})
}
