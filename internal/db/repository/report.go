package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"tablecheck/internal/domain"
)

type ReportRepo struct {
	db *sql.DB
}

func NewReportRepo(db *sql.DB) *ReportRepo {
	return &ReportRepo{db: db}
}

// Insert stores a new report version and fills in the generated ID.
// Findings are serialized as JSON in a single column; reports are read
// whole, never queried per-finding.
func (r *ReportRepo) Insert(ctx context.Context, rep *domain.Report) error {
	findings, err := json.Marshal(rep.Findings)
	if err != nil {
		return fmt.Errorf("marshal findings: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (dataset_id, error_count, warning_count, info_count, summary, findings, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rep.DatasetID, rep.ErrorCount, rep.WarningCount, rep.InfoCount,
		rep.Summary, string(findings), rep.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert report for %s: %w", rep.DatasetID, err)
	}

	rep.ID, err = res.LastInsertId()
	return err
}

// Latest returns the most recent report for a dataset.
func (r *ReportRepo) Latest(ctx context.Context, datasetID string) (*domain.Report, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, dataset_id, error_count, warning_count, info_count, summary, findings, created_at
		 FROM reports WHERE dataset_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`, datasetID)

	var rep domain.Report
	var findings string
	err := row.Scan(&rep.ID, &rep.DatasetID, &rep.ErrorCount, &rep.WarningCount,
		&rep.InfoCount, &rep.Summary, &findings, &rep.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("no report for dataset %q: analyze it first", datasetID)
	}
	if err != nil {
		return nil, fmt.Errorf("latest report for %s: %w", datasetID, err)
	}

	if err := json.Unmarshal([]byte(findings), &rep.Findings); err != nil {
		return nil, fmt.Errorf("unmarshal findings for report %d: %w", rep.ID, err)
	}
	return &rep, nil
}

// CountForDataset returns how many analysis runs a dataset has had.
func (r *ReportRepo) CountForDataset(ctx context.Context, datasetID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reports WHERE dataset_id = ?`, datasetID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count reports for %s: %w", datasetID, err)
	}
	return n, nil
}
