package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tablecheck/internal/domain"
)

type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (actor, action, dataset_id, detail, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Actor, e.Action, e.DatasetID, e.Detail, e.Status, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	// Nil filter fields collapse to "match everything" in SQL.
	where := ` WHERE (? IS NULL OR actor = ?)
	             AND (? IS NULL OR action = ?)
	             AND (? IS NULL OR dataset_id = ?)`
	args := []any{
		nullable(filter.Actor), nullable(filter.Actor),
		nullable(filter.Action), nullable(filter.Action),
		nullable(filter.DatasetID), nullable(filter.DatasetID),
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	args = append(args, filter.Page.Limit(), filter.Page.Offset())
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, actor, action, dataset_id, detail, status, created_at FROM audit_log`+
			where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var datasetID, detail sql.NullString
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &datasetID, &detail, &e.Status, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}
		if datasetID.Valid {
			s := datasetID.String
			e.DatasetID = &s
		}
		if detail.Valid {
			s := detail.String
			e.Detail = &s
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
