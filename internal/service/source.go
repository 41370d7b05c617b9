package service

import (
	"context"

	"tablecheck/internal/db/repository"
	"tablecheck/internal/domain"
	"tablecheck/internal/engine"
	"tablecheck/internal/quality"
	"tablecheck/internal/storage"
)

// tableSource materialises dataset blobs into tables. Shared by the
// dataset, analysis, and chat services.
type tableSource struct {
	datasets *repository.DatasetRepo
	blobs    storage.BlobStore
	loader   *engine.Loader
}

// table loads the dataset's file and backfills the stored row/column
// counts the first time the shape becomes known.
func (ts *tableSource) table(ctx context.Context, d *domain.Dataset) (*quality.Table, error) {
	path, err := ts.blobs.LocalPath(ctx, d.StorageKey)
	if err != nil {
		return nil, err
	}

	t, err := ts.loader.Load(ctx, path, d.FileType, d.Delimiter)
	if err != nil {
		return nil, err
	}

	if d.RowCount == nil || d.ColumnCount == nil {
		rows, cols := int64(t.NumRows()), int64(len(t.Columns))
		if err := ts.datasets.SetShape(ctx, d.ID, rows, cols); err != nil {
			return nil, err
		}
		d.RowCount, d.ColumnCount = &rows, &cols
	}
	return t, nil
}
