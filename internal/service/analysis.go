package service

import (
	"context"
	"log/slog"
	"time"

	"tablecheck/internal/db/repository"
	"tablecheck/internal/domain"
	"tablecheck/internal/engine"
	"tablecheck/internal/quality"
	"tablecheck/internal/storage"
)

// AnalysisService runs the check battery over datasets and versions the
// resulting reports.
type AnalysisService struct {
	datasets *repository.DatasetRepo
	reports  *repository.ReportRepo
	source   *tableSource
	ruleset  *quality.Ruleset
	auditor  *Auditor
	logger   *slog.Logger
}

func NewAnalysisService(
	datasets *repository.DatasetRepo,
	reports *repository.ReportRepo,
	blobs storage.BlobStore,
	loader *engine.Loader,
	ruleset *quality.Ruleset,
	auditor *Auditor,
	logger *slog.Logger,
) *AnalysisService {
	return &AnalysisService{
		datasets: datasets,
		reports:  reports,
		source:   &tableSource{datasets: datasets, blobs: blobs, loader: loader},
		ruleset:  ruleset,
		auditor:  auditor,
		logger:   logger,
	}
}

// Analyze loads the dataset, runs every check, and stores a new report
// version. Earlier reports are kept; Latest always wins.
func (s *AnalysisService) Analyze(ctx context.Context, actor, datasetID string) (rep *domain.Report, err error) {
	defer func() { s.auditor.Record(ctx, actor, domain.AuditActionAnalyze, &datasetID, "", err) }()

	d, err := s.datasets.Get(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	t, err := s.source.table(ctx, d)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	findings, err := quality.Run(ctx, t, s.ruleset)
	if err != nil {
		return nil, err
	}

	priorRuns, err := s.reports.CountForDataset(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rep = &domain.Report{
		DatasetID: datasetID,
		Version:   priorRuns + 1,
		Summary:   quality.Summarize(t, findings),
		Findings:  findings,
		CreatedAt: now,
	}
	rep.Tally()

	if err = s.reports.Insert(ctx, rep); err != nil {
		return nil, err
	}
	if err = s.datasets.MarkAnalyzed(ctx, datasetID, now); err != nil {
		return nil, err
	}

	s.logger.Info("dataset analyzed",
		"dataset_id", datasetID, "report_id", rep.ID, "version", rep.Version,
		"errors", rep.ErrorCount, "warnings", rep.WarningCount, "infos", rep.InfoCount,
		"duration_ms", time.Since(started).Milliseconds())
	return rep, nil
}

// LatestReport returns the most recent report for a dataset. Unknown
// datasets and never-analyzed datasets both surface as not-found.
func (s *AnalysisService) LatestReport(ctx context.Context, datasetID string) (*domain.Report, error) {
	if _, err := s.datasets.Get(ctx, datasetID); err != nil {
		return nil, err
	}
	rep, err := s.reports.Latest(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	rep.Version, err = s.reports.CountForDataset(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	return rep, nil
}
