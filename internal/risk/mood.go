package risk

import "fmt"

// MoodSignal maps a 1-5 mood rating onto a risk contribution.
//
// The two checks below are intentionally non-exclusive: a mood of 1 trips
// both the ==1 and <=2 branches and contributes 5 in total. This additive
// behavior is load-bearing and pinned by tests; do not collapse it into a
// single lookup.
func MoodSignal(mood int) Signal {
	var contribution float64
	var evidence []string

	if mood == 1 {
		contribution += 3
		evidence = append(evidence, "mood rating at minimum (1/5)")
	}
	if mood <= 2 {
		contribution += 2
		evidence = append(evidence, fmt.Sprintf("low mood rating (%d/5)", mood))
	}

	return Signal{
		Source:       SourceMood,
		Contribution: contribution,
		Evidence:     evidence,
	}
}
