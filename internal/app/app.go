// Package app wires configuration, databases, storage, and services into a
// running application.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"

	"tablecheck/internal/config"
	"tablecheck/internal/db/repository"
	"tablecheck/internal/engine"
	"tablecheck/internal/llm"
	"tablecheck/internal/quality"
	"tablecheck/internal/service"
	"tablecheck/internal/storage"
)

// Deps are the externally-owned resources the app builds on. The caller
// opens and closes them.
type Deps struct {
	Cfg     *config.Config
	DuckDB  *sql.DB
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// App holds the wired services.
type App struct {
	Datasets  *service.DatasetService
	Analysis  *service.AnalysisService
	Chat      *service.ChatService
	Audit     *service.AuditService
	Retention *service.RetentionService
}

// New wires the application. Everything that writes goes through the
// single-writer pool; the read-only audit listing uses the read pool.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg, logger := deps.Cfg, deps.Logger

	datasets := repository.NewDatasetRepo(deps.WriteDB)
	reports := repository.NewReportRepo(deps.WriteDB)
	chats := repository.NewChatRepo(deps.WriteDB)
	audit := repository.NewAuditRepo(deps.WriteDB)
	auditRead := repository.NewAuditRepo(deps.ReadDB)

	blobs, err := newBlobStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	loader := engine.NewLoader(deps.DuckDB, logger)
	loader.EnsureExcelSupport(ctx)

	ruleset := quality.DefaultRuleset()
	if cfg.RulesetPath != "" {
		ruleset, err = quality.LoadRuleset(cfg.RulesetPath)
		if err != nil {
			return nil, err
		}
		logger.Info("ruleset loaded", "path", cfg.RulesetPath)
	}

	var client llm.Client
	if cfg.ChatEnabled() {
		genai, err := llm.NewGenAI(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("init llm client: %w", err)
		}
		client = genai
		logger.Info("chat enabled", "model", cfg.GeminiModel)
	}

	auditor := service.NewAuditor(audit, logger)

	return &App{
		Datasets: service.NewDatasetService(datasets, blobs, loader, auditor, cfg.MaxSampleRows, logger),
		Analysis: service.NewAnalysisService(datasets, reports, blobs, loader, ruleset, auditor, logger),
		Chat: service.NewChatService(chats, datasets, reports, blobs, loader,
			client, auditor, logger),
		Audit:     service.NewAuditService(auditRead),
		Retention: service.NewRetentionService(datasets, blobs, cfg.RetentionMaxAge, logger),
	}, nil
}

func newBlobStore(cfg *config.Config, logger *slog.Logger) (storage.BlobStore, error) {
	if cfg.HasS3Config() {
		store, err := storage.NewS3Store(cfg, filepath.Join(cfg.DataDir, "cache"))
		if err != nil {
			return nil, err
		}
		logger.Info("blob storage: s3", "bucket", *cfg.S3Bucket, "endpoint", *cfg.S3Endpoint)
		return store, nil
	}

	store, err := storage.NewLocalStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	logger.Info("blob storage: local", "dir", cfg.DataDir)
	return store, nil
}
