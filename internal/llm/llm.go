// Package llm wraps the Gemini API behind a small completion interface so
// services can be tested with a fake.
package llm

import (
	"context"

	"tablecheck/internal/domain"
)

// Client produces one assistant reply given a system prompt, prior turns,
// and the new user message.
type Client interface {
	Complete(ctx context.Context, system string, history []domain.ChatMessage, user string) (string, error)
}
