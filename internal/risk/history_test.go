package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func checkinsAt(now time.Time, moods ...int) []Checkin {
	out := make([]Checkin, len(moods))
	for i, m := range moods {
		out[i] = Checkin{Mood: m, Timestamp: now.Add(-time.Duration(i+1) * 24 * time.Hour)}
	}
	return out
}

func TestHistorySignal(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		history      []Checkin
		contribution float64
	}{
		{"no history", nil, 0},
		{"too few entries", checkinsAt(now, 1, 1), 0},
		{"low average only", checkinsAt(now, 2, 3, 2, 2, 3), 2},
		{"low average plus consecutive low", checkinsAt(now, 2, 2, 2, 3, 3), 3},
		{"five consecutive still capped", checkinsAt(now, 1, 1, 1, 1, 1), 3},
		{"interior consecutive run", checkinsAt(now, 5, 1, 1, 2, 5), 2},
		{"run ending at oldest entry", checkinsAt(now, 5, 4, 2, 1, 1), 2},
		{"broken runs do not combine", checkinsAt(now, 2, 2, 5, 2, 5), 0},
		{"healthy pattern", checkinsAt(now, 4, 4, 5, 3, 4), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := HistorySignal(tt.history, now)
			assert.Equal(t, tt.contribution, sig.Contribution)
			assert.Equal(t, SourceHistory, sig.Source)
		})
	}
}

func TestHistoryRecentCrisisEvents(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	history := checkinsAt(now, 4, 4, 4, 4, 4)
	history[0].CrisisScore = ptr(7.5)

	sig := HistorySignal(history, now)
	assert.Equal(t, float64(2), sig.Contribution)

	// A crisis event outside the 7-day lookback does not count.
	stale := checkinsAt(now, 4, 4, 4)
	stale[0].CrisisScore = ptr(9)
	stale[0].Timestamp = now.Add(-8 * 24 * time.Hour)
	assert.Equal(t, float64(0), HistorySignal(stale, now).Contribution)

	// A low stored score does not count either.
	mild := checkinsAt(now, 4, 4, 4)
	mild[0].CrisisScore = ptr(4)
	assert.Equal(t, float64(0), HistorySignal(mild, now).Contribution)
}

// The historical contribution never exceeds 3 no matter how many qualifying
// conditions stack up.
func TestHistoryHardCap(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	history := checkinsAt(now, 1, 1, 1, 1, 1)
	for i := range history {
		history[i].CrisisScore = ptr(9)
	}

	sig := HistorySignal(history, now)
	assert.Equal(t, float64(3), sig.Contribution)
}
