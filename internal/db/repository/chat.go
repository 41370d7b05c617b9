package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tablecheck/internal/domain"
)

type ChatRepo struct {
	db *sql.DB
}

func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

func (r *ChatRepo) Append(ctx context.Context, m *domain.ChatMessage) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_messages (session_id, role, content, dataset_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		m.SessionID, m.Role, m.Content, m.DatasetID, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("append chat message: %w", err)
	}
	m.ID, err = res.LastInsertId()
	return err
}

// History returns the stored turns of a session, oldest first.
func (r *ChatRepo) History(ctx context.Context, sessionID string, page domain.PageRequest) ([]domain.ChatMessage, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chat_messages WHERE session_id = ?`, sessionID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count chat messages: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, dataset_id, created_at
		 FROM chat_messages WHERE session_id = ? ORDER BY id LIMIT ? OFFSET ?`,
		sessionID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	msgs, err := scanChatMessages(rows)
	if err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

// Recent returns the last n turns of a session in chronological order.
// Used to build the LLM conversation context.
func (r *ChatRepo) Recent(ctx context.Context, sessionID string, n int) ([]domain.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, dataset_id, created_at
		 FROM (SELECT * FROM chat_messages WHERE session_id = ? ORDER BY id DESC LIMIT ?)
		 ORDER BY id`,
		sessionID, n)
	if err != nil {
		return nil, fmt.Errorf("recent chat messages: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	return scanChatMessages(rows)
}

func scanChatMessages(rows *sql.Rows) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		var datasetID sql.NullString
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &datasetID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		if datasetID.Valid {
			s := datasetID.String
			m.DatasetID = &s
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
