package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	internaldb "tablecheck/internal/db"
	"tablecheck/internal/db/repository"
	"tablecheck/internal/domain"
	"tablecheck/internal/engine"
	"tablecheck/internal/llm"
	"tablecheck/internal/quality"
	"tablecheck/internal/storage"
)

// testEnv wires real repositories, a local blob store, and an in-memory
// DuckDB loader around t.TempDir().
type testEnv struct {
	datasets  *DatasetService
	analysis  *AnalysisService
	retention *RetentionService
	audit     *repository.AuditRepo

	datasetRepo *repository.DatasetRepo
	reportRepo  *repository.ReportRepo
	chatRepo    *repository.ChatRepo
	blobs       storage.BlobStore
	loader      *engine.Loader
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	writeDB, _ := internaldb.OpenTestSQLite(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	duck, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = duck.Close() })

	blobs, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	env := &testEnv{
		datasetRepo: repository.NewDatasetRepo(writeDB),
		reportRepo:  repository.NewReportRepo(writeDB),
		chatRepo:    repository.NewChatRepo(writeDB),
		audit:       repository.NewAuditRepo(writeDB),
		blobs:       blobs,
		loader:      engine.NewLoader(duck, logger),
	}
	auditor := NewAuditor(env.audit, logger)
	env.datasets = NewDatasetService(env.datasetRepo, blobs, env.loader, auditor, 300, logger)
	env.analysis = NewAnalysisService(env.datasetRepo, env.reportRepo, blobs, env.loader,
		quality.DefaultRuleset(), auditor, logger)
	env.retention = NewRetentionService(env.datasetRepo, blobs, 24*time.Hour, logger)
	return env
}

func (e *testEnv) chat(client llm.Client) *ChatService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewChatService(e.chatRepo, e.datasetRepo, e.reportRepo, e.blobs, e.loader,
		client, NewAuditor(e.audit, logger), logger)
}

func (e *testEnv) upload(t *testing.T, filename, content string) *domain.Dataset {
	t.Helper()
	d, err := e.datasets.Upload(context.Background(), "tester", UploadInput{
		Filename:    filename,
		ContentType: "text/csv",
		Data:        []byte(content),
	})
	require.NoError(t, err)
	return d
}

// fakeLLM records what it was asked and returns a canned reply.
type fakeLLM struct {
	lastSystem  string
	lastHistory []domain.ChatMessage
	lastUser    string
	reply       string
	err         error
}

func (f *fakeLLM) Complete(_ context.Context, system string, history []domain.ChatMessage, user string) (string, error) {
	f.lastSystem, f.lastHistory, f.lastUser = system, history, user
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}
