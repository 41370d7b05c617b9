// Package repository implements SQLite persistence for datasets, reports,
// chat history, and the audit log.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tablecheck/internal/domain"
)

type DatasetRepo struct {
	db *sql.DB
}

func NewDatasetRepo(db *sql.DB) *DatasetRepo {
	return &DatasetRepo{db: db}
}

func (r *DatasetRepo) Insert(ctx context.Context, d *domain.Dataset) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO datasets (id, original_filename, file_type, delimiter, size_bytes,
		                       content_type, storage_key, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.OriginalFilename, d.FileType, d.Delimiter, d.SizeBytes,
		d.ContentType, d.StorageKey, d.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert dataset %s: %w", d.ID, err)
	}
	return nil
}

func (r *DatasetRepo) Get(ctx context.Context, id string) (*domain.Dataset, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, original_filename, file_type, delimiter, size_bytes, content_type,
		        storage_key, row_count, column_count, uploaded_at, analyzed_at
		 FROM datasets WHERE id = ?`, id)

	d, err := scanDataset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("dataset %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get dataset %s: %w", id, err)
	}
	return d, nil
}

func (r *DatasetRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.Dataset, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM datasets`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count datasets: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, original_filename, file_type, delimiter, size_bytes, content_type,
		        storage_key, row_count, column_count, uploaded_at, analyzed_at
		 FROM datasets ORDER BY uploaded_at DESC, id LIMIT ? OFFSET ?`,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Dataset
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan dataset: %w", err)
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

func (r *DatasetRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete dataset %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("dataset %q not found", id)
	}
	return nil
}

// SetShape records the row and column counts discovered on first load.
func (r *DatasetRepo) SetShape(ctx context.Context, id string, rowCount, columnCount int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE datasets SET row_count = ?, column_count = ? WHERE id = ?`,
		rowCount, columnCount, id)
	if err != nil {
		return fmt.Errorf("set shape for %s: %w", id, err)
	}
	return nil
}

// MarkAnalyzed stamps the dataset with the time of its latest analysis.
func (r *DatasetRepo) MarkAnalyzed(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE datasets SET analyzed_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return fmt.Errorf("mark analyzed %s: %w", id, err)
	}
	return nil
}

// ListOlderThan returns datasets uploaded before the cutoff, oldest first.
// Used by the retention job.
func (r *DatasetRepo) ListOlderThan(ctx context.Context, cutoff time.Time) ([]domain.Dataset, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, original_filename, file_type, delimiter, size_bytes, content_type,
		        storage_key, row_count, column_count, uploaded_at, analyzed_at
		 FROM datasets WHERE uploaded_at < ? ORDER BY uploaded_at`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list datasets older than %s: %w", cutoff, err)
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Dataset
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDataset(row rowScanner) (*domain.Dataset, error) {
	var d domain.Dataset
	var rowCount, columnCount sql.NullInt64
	var analyzedAt sql.NullTime

	err := row.Scan(&d.ID, &d.OriginalFilename, &d.FileType, &d.Delimiter, &d.SizeBytes,
		&d.ContentType, &d.StorageKey, &rowCount, &columnCount, &d.UploadedAt, &analyzedAt)
	if err != nil {
		return nil, err
	}
	if rowCount.Valid {
		d.RowCount = &rowCount.Int64
	}
	if columnCount.Valid {
		d.ColumnCount = &columnCount.Int64
	}
	if analyzedAt.Valid {
		t := analyzedAt.Time
		d.AnalyzedAt = &t
	}
	return &d, nil
}
