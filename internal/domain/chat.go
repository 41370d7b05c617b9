package domain

import "time"

// ChatRole is who authored a chat turn.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one stored turn of a chat session. DatasetID is set when
// the turn was asked in the context of a specific dataset.
type ChatMessage struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	DatasetID *string   `json:"dataset_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
