// Package service implements the application operations on top of the
// repositories, blob store, loader, check engine, and LLM client.
package service

import (
	"context"
	"log/slog"
	"time"

	"tablecheck/internal/domain"
	"tablecheck/internal/db/repository"
)

// AnonymousActor is recorded when no authenticated principal is present.
const AnonymousActor = "anonymous"

// Auditor writes audit entries. Failures are logged, never propagated: an
// audit hiccup must not fail the audited operation.
type Auditor struct {
	repo   *repository.AuditRepo
	logger *slog.Logger
}

func NewAuditor(repo *repository.AuditRepo, logger *slog.Logger) *Auditor {
	return &Auditor{repo: repo, logger: logger}
}

// Record stores one audit entry. opErr marks the entry FAILED and its
// message becomes the detail.
func (a *Auditor) Record(ctx context.Context, actor, action string, datasetID *string, detail string, opErr error) {
	if actor == "" {
		actor = AnonymousActor
	}
	entry := &domain.AuditEntry{
		Actor:     actor,
		Action:    action,
		DatasetID: datasetID,
		Status:    domain.AuditStatusOK,
		CreatedAt: time.Now().UTC(),
	}
	if opErr != nil {
		entry.Status = domain.AuditStatusFailed
		detail = opErr.Error()
	}
	if detail != "" {
		entry.Detail = &detail
	}

	if err := a.repo.Insert(ctx, entry); err != nil {
		a.logger.Error("audit entry lost", "action", action, "actor", actor, "error", err)
	}
}

// AuditService exposes the audit log for the read API.
type AuditService struct {
	repo *repository.AuditRepo
}

func NewAuditService(repo *repository.AuditRepo) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	return s.repo.List(ctx, filter)
}
