package service

import (
	"context"
	"log/slog"
	"time"

	"tablecheck/internal/db/repository"
	"tablecheck/internal/storage"
)

// RetentionService deletes datasets past their retention age. Reports and
// chat references cascade with the metadata row.
type RetentionService struct {
	datasets *repository.DatasetRepo
	blobs    storage.BlobStore
	maxAge   time.Duration
	logger   *slog.Logger
}

func NewRetentionService(datasets *repository.DatasetRepo, blobs storage.BlobStore, maxAge time.Duration, logger *slog.Logger) *RetentionService {
	return &RetentionService{datasets: datasets, blobs: blobs, maxAge: maxAge, logger: logger}
}

// Enabled reports whether a retention age is configured.
func (s *RetentionService) Enabled() bool { return s.maxAge > 0 }

// PurgeExpired removes every dataset uploaded more than maxAge ago and
// returns how many were deleted.
func (s *RetentionService) PurgeExpired(ctx context.Context) (int, error) {
	if !s.Enabled() {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-s.maxAge)

	expired, err := s.datasets.ListOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, d := range expired {
		if err := s.datasets.Delete(ctx, d.ID); err != nil {
			s.logger.Error("retention delete failed", "dataset_id", d.ID, "error", err)
			continue
		}
		if err := s.blobs.Delete(ctx, d.StorageKey); err != nil {
			s.logger.Warn("retention blob not removed", "dataset_id", d.ID, "key", d.StorageKey, "error", err)
		}
		purged++
	}
	if purged > 0 {
		s.logger.Info("retention purge complete", "purged", purged, "cutoff", cutoff)
	}
	return purged, nil
}

// Run is the cron entrypoint.
func (s *RetentionService) Run(ctx context.Context) {
	if _, err := s.PurgeExpired(ctx); err != nil {
		s.logger.Error("retention purge failed", "error", err)
	}
}
