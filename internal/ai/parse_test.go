package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScoreResult(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		score     float64
		sentiment string
		wantErr   bool
	}{
		{
			name:      "clean json",
			raw:       `{"crisis_score": 7.5, "sentiment": "negative"}`,
			score:     7.5,
			sentiment: "negative",
		},
		{
			name:      "markdown fenced",
			raw:       "```json\n{\"crisis_score\": 2, \"sentiment\": \"neutral\"}\n```",
			score:     2,
			sentiment: "neutral",
		},
		{
			name:      "prose around json",
			raw:       `Here is my assessment: {"crisis_score": 9, "sentiment": "negative"} Hope that helps.`,
			score:     9,
			sentiment: "negative",
		},
		{
			name:      "trailing comma repaired",
			raw:       `{"crisis_score": 4, "sentiment": "neutral",}`,
			score:     4,
			sentiment: "neutral",
		},
		{
			name:      "out of range clamped",
			raw:       `{"crisis_score": 14, "sentiment": "negative"}`,
			score:     10,
			sentiment: "negative",
		},
		{
			name:    "no json at all",
			raw:     "I cannot help with that.",
			wantErr: true,
		},
		{
			name:    "missing sentiment",
			raw:     `{"crisis_score": 3}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseScoreResult(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.score, result.CrisisScore)
			assert.Equal(t, tt.sentiment, result.Sentiment)
		})
	}
}
