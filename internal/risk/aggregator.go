package risk

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("mindhaven/risk-aggregator")

const (
	scoreFloor   = 0
	scoreCeiling = 10
)

// Input carries every evidence source for one assessment. AI and Voice are
// optional; a nil Voice omits the voice signal entirely instead of counting
// it as zero.
type Input struct {
	Text    string
	Mood    int
	AIScore *AIScore
	Voice   *VoiceAnalysis
	History []Checkin
	Now     time.Time
}

// AIScore is the externally computed crisis score handed to the adapter.
type AIScore struct {
	Score     float64
	Sentiment string
}

// Result is the aggregate of all present signals.
type Result struct {
	Score   float64
	Tier    Tier
	Signals []Signal
}

// Evaluate runs every applicable extractor, sums the contributions, clamps
// the total into [0,10] and classifies the tier. It is a pure computation:
// same inputs always produce the same result.
func Evaluate(ctx context.Context, in Input) Result {
	_, span := tracer.Start(ctx, "risk.evaluate")
	defer span.End()

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	signals := []Signal{
		KeywordSignal(in.Text),
		MoodSignal(in.Mood),
	}

	if in.AIScore != nil {
		signals = append(signals, AISignal(in.AIScore.Score, in.AIScore.Sentiment, true))
	} else {
		signals = append(signals, AISignal(0, "", false))
	}

	if in.Voice != nil {
		signals = append(signals, VoiceSignal(*in.Voice))
	}

	signals = append(signals, HistorySignal(in.History, now))

	var total float64
	for _, s := range signals {
		total += s.Contribution
	}
	score := clamp(total, scoreFloor, scoreCeiling)
	tier := ClassifyTier(score)

	span.SetAttributes(
		attribute.Float64("risk.score", score),
		attribute.String("risk.tier", string(tier)),
		attribute.Int("risk.signal_count", len(signals)),
	)

	return Result{
		Score:   score,
		Tier:    tier,
		Signals: signals,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
