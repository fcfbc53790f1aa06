package risk

import (
	"fmt"
	"math"
	"strings"
)

// VoiceAnalysis is the voice-derived mood result supplied by the caller.
type VoiceAnalysis struct {
	Transcript string  `json:"transcript"`
	MoodLabel  string  `json:"detected_mood_label"`
	Confidence float64 `json:"confidence"`
}

// lowConfidenceCutoff marks voice analyses too uncertain to trust; below it
// the signal leans toward escalation rather than away from it.
const lowConfidenceCutoff = 0.3

var voiceMoodBonus = map[string]float64{
	"sad":     2,
	"anxious": 1.5,
	"angry":   1,
}

// VoiceSignal scores a voice-mood analysis: half the transcript's keyword
// score, plus a detected-mood bonus, plus a low-confidence bonus, rounded.
// Callers omit the signal entirely when no voice analysis was supplied.
func VoiceSignal(v VoiceAnalysis) Signal {
	keywordScore, keywordEvidence := keywordScan(v.Transcript)
	raw := 0.5 * keywordScore

	var evidence []string
	for _, e := range keywordEvidence {
		evidence = append(evidence, "transcript: "+e)
	}

	label := strings.ToLower(strings.TrimSpace(v.MoodLabel))
	if bonus, ok := voiceMoodBonus[label]; ok {
		raw += bonus
		evidence = append(evidence, fmt.Sprintf("voice mood detected: %s", label))
	}

	if v.Confidence < lowConfidenceCutoff {
		raw++
		evidence = append(evidence, fmt.Sprintf("low analysis confidence (%.2f)", v.Confidence))
	}

	return Signal{
		Source:       SourceVoice,
		Contribution: math.Round(raw),
		Evidence:     evidence,
	}
}
