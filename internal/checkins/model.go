// Package checkins stores mood check-ins, the input history for the risk
// engine's pattern analyzer.
package checkins

import (
	"errors"
	"time"
)

// Checkin is one recorded mood check-in. CrisisScore is filled in after an
// assessment runs against the check-in, so later assessments can weigh
// recent crises.
type Checkin struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Mood        int       `json:"mood"`
	Note        string    `json:"note,omitempty"`
	CrisisScore *float64  `json:"crisis_score,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateCheckinRequest is the payload for recording a check-in.
type CreateCheckinRequest struct {
	UserID string `json:"user_id"`
	Mood   int    `json:"mood"`
	Note   string `json:"note,omitempty"`
}

var (
	// ErrInvalidMood is returned when the mood rating is outside 1-5
	ErrInvalidMood = errors.New("mood must be between 1 and 5")

	// ErrMissingUserID is returned when the user id is absent
	ErrMissingUserID = errors.New("user_id is required")
)

// Validate checks the request fields.
func (r *CreateCheckinRequest) Validate() error {
	if r.UserID == "" {
		return ErrMissingUserID
	}
	if r.Mood < 1 || r.Mood > 5 {
		return ErrInvalidMood
	}
	return nil
}
