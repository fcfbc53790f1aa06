// Package ai adapts external generative-AI providers into a crisis scorer.
package ai

import "context"

// ChatRole identifies the author of a conversation turn.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// Turn is one prior message of the conversation, passed explicitly with each
// call. The scorer holds no conversation state of its own.
type Turn struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// ScoreRequest asks for a crisis score of one user message in context.
type ScoreRequest struct {
	Message string
	Context []Turn
}

// ScoreResult is the provider's opaque 0-10 crisis score plus sentiment label.
type ScoreResult struct {
	CrisisScore float64 `json:"crisis_score"`
	Sentiment   string  `json:"sentiment"`
}

// CrisisScorer produces an AI crisis score for a user message. Callers treat
// any error as a degraded (zero-contribution) signal, never a hard failure.
type CrisisScorer interface {
	Score(ctx context.Context, req ScoreRequest) (ScoreResult, error)
}
