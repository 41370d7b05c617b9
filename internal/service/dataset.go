package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"tablecheck/internal/db/repository"
	"tablecheck/internal/domain"
	"tablecheck/internal/engine"
	"tablecheck/internal/quality"
	"tablecheck/internal/sampling"
	"tablecheck/internal/storage"
)

// DatasetService handles dataset lifecycle: upload, listing, profiling,
// sampling, and deletion.
type DatasetService struct {
	datasets      *repository.DatasetRepo
	source        *tableSource
	blobs         storage.BlobStore
	auditor       *Auditor
	maxSampleRows int
	logger        *slog.Logger
}

func NewDatasetService(
	datasets *repository.DatasetRepo,
	blobs storage.BlobStore,
	loader *engine.Loader,
	auditor *Auditor,
	maxSampleRows int,
	logger *slog.Logger,
) *DatasetService {
	return &DatasetService{
		datasets:      datasets,
		source:        &tableSource{datasets: datasets, blobs: blobs, loader: loader},
		blobs:         blobs,
		auditor:       auditor,
		maxSampleRows: maxSampleRows,
		logger:        logger,
	}
}

// UploadInput is one file received from the API or CLI.
type UploadInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Upload validates and stores a new dataset file. For CSV files the
// delimiter is sniffed from the leading bytes.
func (s *DatasetService) Upload(ctx context.Context, actor string, in UploadInput) (d *domain.Dataset, err error) {
	defer func() { s.auditor.Record(ctx, actor, domain.AuditActionUpload, datasetIDOf(d), in.Filename, err) }()

	if strings.TrimSpace(in.Filename) == "" {
		return nil, domain.ErrValidation("filename is required")
	}
	if len(in.Data) == 0 {
		return nil, domain.ErrValidation("uploaded file %q is empty", in.Filename)
	}

	ext := filepath.Ext(in.Filename)
	fileType, err := domain.FileTypeForExtension(ext)
	if err != nil {
		return nil, err
	}

	delimiter := ""
	if fileType == domain.FileTypeCSV {
		delimiter = engine.SniffDelimiter(in.Data)
	}

	d = &domain.Dataset{
		ID:               domain.NewDatasetID(),
		OriginalFilename: filepath.Base(in.Filename),
		FileType:         fileType,
		Delimiter:        delimiter,
		SizeBytes:        int64(len(in.Data)),
		ContentType:      in.ContentType,
		UploadedAt:       time.Now().UTC(),
	}
	d.StorageKey = fmt.Sprintf("%s/raw%s", d.ID, strings.ToLower(ext))

	if err = s.blobs.Put(ctx, d.StorageKey, in.Data); err != nil {
		return nil, fmt.Errorf("store dataset file: %w", err)
	}
	if err = s.datasets.Insert(ctx, d); err != nil {
		// The metadata row is the source of truth; drop the orphaned blob.
		if delErr := s.blobs.Delete(ctx, d.StorageKey); delErr != nil {
			s.logger.Warn("orphaned blob after failed insert", "key", d.StorageKey, "error", delErr)
		}
		return nil, err
	}

	s.logger.Info("dataset uploaded",
		"dataset_id", d.ID, "filename", d.OriginalFilename,
		"file_type", d.FileType, "size_bytes", d.SizeBytes)
	return d, nil
}

func (s *DatasetService) Get(ctx context.Context, id string) (*domain.Dataset, error) {
	return s.datasets.Get(ctx, id)
}

func (s *DatasetService) List(ctx context.Context, page domain.PageRequest) ([]domain.Dataset, int64, error) {
	return s.datasets.List(ctx, page)
}

// Delete removes the dataset's metadata and blob. Reports cascade; chat
// messages survive with their dataset reference cleared.
func (s *DatasetService) Delete(ctx context.Context, actor, id string) (err error) {
	defer func() { s.auditor.Record(ctx, actor, domain.AuditActionDelete, &id, "", err) }()

	d, err := s.datasets.Get(ctx, id)
	if err != nil {
		return err
	}
	if err = s.datasets.Delete(ctx, id); err != nil {
		return err
	}
	if blobErr := s.blobs.Delete(ctx, d.StorageKey); blobErr != nil {
		s.logger.Warn("dataset blob not removed", "dataset_id", id, "key", d.StorageKey, "error", blobErr)
	}

	s.logger.Info("dataset deleted", "dataset_id", id)
	return nil
}

// Understanding profiles the dataset: shape, per-column types and samples,
// and headline observations.
func (s *DatasetService) Understanding(ctx context.Context, id string) (*domain.DatasetUnderstanding, error) {
	d, err := s.datasets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := s.source.table(ctx, d)
	if err != nil {
		return nil, err
	}

	profiles := quality.Profile(t)
	columns := make([]domain.ColumnSummary, 0, len(profiles))
	for _, p := range profiles {
		columns = append(columns, domain.ColumnSummary{
			Name:         p.Name,
			DataType:     string(p.Kind),
			Description:  describeColumn(p, t.NumRows()),
			SampleValues: p.SampleValues,
			MissingCount: p.MissingCount,
			UniqueCount:  p.UniqueCount,
		})
	}

	return &domain.DatasetUnderstanding{
		Name: d.OriginalFilename,
		Description: fmt.Sprintf("Dataset imported via %s upload on %s.",
			strings.ToUpper(string(d.FileType)), d.UploadedAt.Format("2 January 2006")),
		RowCount:     t.NumRows(),
		ColumnCount:  len(t.Columns),
		Observations: quality.Observations(profiles),
		Columns:      columns,
	}, nil
}

func describeColumn(p quality.ColumnProfile, totalRows int) string {
	desc := fmt.Sprintf("%s column with %d distinct values", p.Kind, p.UniqueCount)
	if p.MissingCount > 0 && totalRows > 0 {
		desc += fmt.Sprintf(", %d missing", p.MissingCount)
	}
	return desc
}

// Sample returns a bounded, representative slice of the dataset's rows.
func (s *DatasetService) Sample(ctx context.Context, id string) ([]map[string]any, error) {
	d, err := s.datasets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := s.source.table(ctx, d)
	if err != nil {
		return nil, err
	}
	sampled := sampling.Smart(t, s.maxSampleRows)
	return sampled.Head(sampled.NumRows()), nil
}

func datasetIDOf(d *domain.Dataset) *string {
	if d == nil {
		return nil
	}
	return &d.ID
}
