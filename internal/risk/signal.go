// Package risk computes crisis risk scores from independent evidence sources.
package risk

// SignalSource identifies which evidence source produced a signal.
type SignalSource string

const (
	SourceKeyword     SignalSource = "keyword"
	SourceMood        SignalSource = "mood"
	SourceAISentiment SignalSource = "ai_sentiment"
	SourceVoice       SignalSource = "voice"
	SourceHistory     SignalSource = "history"
)

// Signal is one bounded numeric contribution from a single evidence source.
// Signals are produced once per assessment and never mutated.
type Signal struct {
	Source       SignalSource `json:"source"`
	Contribution float64      `json:"contribution"`
	Evidence     []string     `json:"evidence,omitempty"`
}
