package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tablecheck/internal/db/repository"
	"tablecheck/internal/domain"
	"tablecheck/internal/engine"
	"tablecheck/internal/llm"
	"tablecheck/internal/storage"
)

// systemPrompt frames every chat completion. The quality report is
// presented as ground truth so the model does not invent issues.
const systemPrompt = `You are a data quality assistant. You help users understand their tabular datasets and the issues detected in them.
Treat the dataset profile and the quality report provided in the context as ground truth.
When the user asks about something not covered by the context, say that the information is not available rather than guessing.
Be concise and concrete: name the affected columns and rows when you can.`

// chatHistoryTurns bounds how many stored turns are replayed to the model.
const chatHistoryTurns = 20

// previewRows is how many leading rows are shown to the model as context.
const previewRows = 5

// ChatService runs LLM-backed conversations, optionally grounded in one
// dataset and its latest quality report.
type ChatService struct {
	chats    *repository.ChatRepo
	datasets *repository.DatasetRepo
	reports  *repository.ReportRepo
	source   *tableSource
	client   llm.Client
	auditor  *Auditor
	logger   *slog.Logger
}

func NewChatService(
	chats *repository.ChatRepo,
	datasets *repository.DatasetRepo,
	reports *repository.ReportRepo,
	blobs storage.BlobStore,
	loader *engine.Loader,
	client llm.Client,
	auditor *Auditor,
	logger *slog.Logger,
) *ChatService {
	return &ChatService{
		chats:    chats,
		datasets: datasets,
		reports:  reports,
		source:   &tableSource{datasets: datasets, blobs: blobs, loader: loader},
		client:   client,
		auditor:  auditor,
		logger:   logger,
	}
}

// Enabled reports whether an LLM client is configured.
func (s *ChatService) Enabled() bool { return s.client != nil }

// Send answers a free-standing question within a session.
func (s *ChatService) Send(ctx context.Context, actor, sessionID, message string) (*domain.ChatMessage, error) {
	return s.send(ctx, actor, sessionID, nil, message, systemPrompt)
}

// SendWithDataset answers a question grounded in a dataset: its metadata,
// a row preview, and the latest report findings are provided as context.
// The dataset must have been analyzed; without a report the chat has no
// ground truth to work from and the call fails as not-found.
func (s *ChatService) SendWithDataset(ctx context.Context, actor, sessionID, datasetID, message string) (*domain.ChatMessage, error) {
	d, err := s.datasets.Get(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	grounding, err := s.datasetContext(ctx, d)
	if err != nil {
		return nil, err
	}
	return s.send(ctx, actor, sessionID, &datasetID, message, systemPrompt+"\n\n"+grounding)
}

func (s *ChatService) send(ctx context.Context, actor, sessionID string, datasetID *string, message, system string) (reply *domain.ChatMessage, err error) {
	defer func() { s.auditor.Record(ctx, actor, domain.AuditActionChat, datasetID, sessionID, err) }()

	if !s.Enabled() {
		return nil, domain.ErrValidation("chat is not configured: set GEMINI_API_KEY")
	}
	if strings.TrimSpace(message) == "" {
		return nil, domain.ErrValidation("message is required")
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, domain.ErrValidation("session id is required")
	}

	history, err := s.chats.Recent(ctx, sessionID, chatHistoryTurns)
	if err != nil {
		return nil, err
	}

	answer, err := s.client.Complete(ctx, system, history, message)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	now := time.Now().UTC()
	userTurn := &domain.ChatMessage{
		SessionID: sessionID,
		Role:      domain.ChatRoleUser,
		Content:   message,
		DatasetID: datasetID,
		CreatedAt: now,
	}
	if err = s.chats.Append(ctx, userTurn); err != nil {
		return nil, err
	}
	reply = &domain.ChatMessage{
		SessionID: sessionID,
		Role:      domain.ChatRoleAssistant,
		Content:   answer,
		DatasetID: datasetID,
		CreatedAt: time.Now().UTC(),
	}
	if err = s.chats.Append(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// History returns the stored turns of a session, oldest first.
func (s *ChatService) History(ctx context.Context, sessionID string, page domain.PageRequest) ([]domain.ChatMessage, int64, error) {
	return s.chats.History(ctx, sessionID, page)
}

// datasetContext renders the dataset metadata, a short row preview, and the
// latest report as model context.
func (s *ChatService) datasetContext(ctx context.Context, d *domain.Dataset) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset context:\n")
	fmt.Fprintf(&b, "- id: %s\n- filename: %s\n- file type: %s\n- uploaded: %s\n",
		d.ID, d.OriginalFilename, d.FileType, d.UploadedAt.Format(time.RFC3339))

	t, err := s.source.table(ctx, d)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "- rows: %d\n- columns: %s\n", t.NumRows(), strings.Join(t.Columns, ", "))

	if preview, err := json.Marshal(t.Head(previewRows)); err == nil {
		fmt.Fprintf(&b, "\nFirst rows:\n%s\n", preview)
	}

	rep, err := s.reports.Latest(ctx, d.ID)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "\nLatest quality report (%s):\n%s\n", rep.CreatedAt.Format(time.RFC3339), rep.Summary)
	for _, f := range rep.Findings {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", f.Severity, f.Check, f.Message)
	}
	return b.String(), nil
}
