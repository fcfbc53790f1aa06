package risk

import (
	"fmt"
	"math"
)

// aiWeight discounts the externally computed crisis score before it joins the
// aggregate.
const aiWeight = 0.7

// AISignal adapts an externally computed 0-10 AI crisis score. When the AI
// call failed upstream, available is false and the adapter degrades to a zero
// contribution with no evidence rather than aborting the assessment.
func AISignal(aiScore float64, sentiment string, available bool) Signal {
	if !available {
		return Signal{Source: SourceAISentiment, Contribution: 0}
	}

	contribution := math.Round(aiScore * aiWeight)
	evidence := []string{fmt.Sprintf("ai crisis score %.1f (sentiment: %s)", aiScore, sentiment)}
	return Signal{
		Source:       SourceAISentiment,
		Contribution: contribution,
		Evidence:     evidence,
	}
}
