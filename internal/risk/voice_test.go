package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVoiceSignal(t *testing.T) {
	tests := []struct {
		name         string
		voice        VoiceAnalysis
		contribution float64
	}{
		{
			name:         "neutral confident voice",
			voice:        VoiceAnalysis{Transcript: "talking about my day", MoodLabel: "neutral", Confidence: 0.9},
			contribution: 0,
		},
		{
			name:         "sad mood bonus",
			voice:        VoiceAnalysis{Transcript: "just tired", MoodLabel: "sad", Confidence: 0.8},
			contribution: 2,
		},
		{
			name:         "anxious rounds up",
			voice:        VoiceAnalysis{Transcript: "nothing specific", MoodLabel: "anxious", Confidence: 0.7},
			contribution: 2,
		},
		{
			name:         "low confidence bonus",
			voice:        VoiceAnalysis{Transcript: "hard to hear", MoodLabel: "angry", Confidence: 0.2},
			contribution: 2,
		},
		{
			name:         "transcript keywords at half weight",
			voice:        VoiceAnalysis{Transcript: "I want to end my life", MoodLabel: "sad", Confidence: 0.9},
			contribution: 5, // 0.5*5 + 2, rounded
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := VoiceSignal(tt.voice)
			assert.Equal(t, SourceVoice, sig.Source)
			assert.Equal(t, tt.contribution, sig.Contribution)
		})
	}
}

func TestVoiceEvidenceLabelsTranscriptMatches(t *testing.T) {
	sig := VoiceSignal(VoiceAnalysis{Transcript: "feeling hopeless", MoodLabel: "sad", Confidence: 0.5})
	assert.Contains(t, sig.Evidence, "transcript: hopeless (high)")
	assert.Contains(t, sig.Evidence, "voice mood detected: sad")
}
