package core

import (
	"context"
	"errors"
	"fmt"
)

// Chat-completion gateway errors. 429 and 402 get their own sentinels so
// callers can turn them into domain-specific messages; every other non-2xx
// status surfaces as a StatusError.
var (
	ErrAIRateLimited   = errors.New("AI gateway rate limit exceeded")
	ErrAIQuotaExceeded = errors.New("AI gateway quota exhausted")
)

type AIStatusError struct {
	StatusCode int
}

func (err *AIStatusError) Error() string {
	return fmt.Sprintf("AI service error: %d", err.StatusCode)
}

// ChatMessage is one turn of a chat-completion conversation.
type ChatMessage struct {
	Role    string      `json:"role"` // system | user | assistant
	Content interface{} `json:"content"`
}

// CompletionService is any service that can relay a prompt to a hosted
// chat-completion model and return the model's reply text.
type CompletionService interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}
