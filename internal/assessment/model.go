// Package assessment orchestrates crisis assessments: AI scoring, risk
// aggregation, persistence, and escalation dispatch.
package assessment

import (
	"errors"
	"time"

	"github.com/mindhaven/wellness-platform/internal/ai"
	"github.com/mindhaven/wellness-platform/internal/risk"
)

// Assessment is the stored outcome of one crisis evaluation.
type Assessment struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	CheckinID string        `json:"checkin_id,omitempty"`
	Score     float64       `json:"score"`
	Tier      risk.Tier     `json:"tier"`
	Signals   []risk.Signal `json:"signals"`
	Sentiment string        `json:"sentiment,omitempty"`
	AIUsed    bool          `json:"ai_used"`
	CreatedAt time.Time     `json:"created_at"`
}

// AssessRequest is the payload for running an assessment. Voice and History
// are optional; when History is absent the service loads the user's recent
// check-ins itself.
type AssessRequest struct {
	UserID    string              `json:"user_id"`
	Text      string              `json:"text"`
	Mood      int                 `json:"mood"`
	CheckinID string              `json:"checkin_id,omitempty"`
	Voice     *risk.VoiceAnalysis `json:"voice,omitempty"`
	History   []risk.Checkin      `json:"history,omitempty"`
	Context   []ai.Turn           `json:"context,omitempty"`
}

var (
	// ErrMissingUserID is returned when the user id is absent
	ErrMissingUserID = errors.New("user_id is required")

	// ErrInvalidMood is returned when the mood rating is outside 1-5
	ErrInvalidMood = errors.New("mood must be between 1 and 5")
)

// Validate checks the request fields.
func (r *AssessRequest) Validate() error {
	if r.UserID == "" {
		return ErrMissingUserID
	}
	if r.Mood < 1 || r.Mood > 5 {
		return ErrInvalidMood
	}
	return nil
}
