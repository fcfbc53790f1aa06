package risk

import (
	"fmt"
	"time"
)

// Checkin is one prior mood check-in considered by the pattern analyzer.
// CrisisScore carries the stored crisis score of a past assessment, when one
// was run for that check-in.
type Checkin struct {
	Mood        int       `json:"mood"`
	Timestamp   time.Time `json:"timestamp"`
	CrisisScore *float64  `json:"crisis_score,omitempty"`
}

const (
	historyMoodCap       = 3
	historyMinEntries    = 3
	historyWindow        = 5
	recentCrisisLookback = 7 * 24 * time.Hour
	recentCrisisCutoff   = 5
)

// HistorySignal analyzes the most recent check-ins (newest first) for
// sustained low mood and recent crisis assessments. The mood-pattern portion
// is hard-capped at 3 no matter how many sub-conditions fire. Fewer than 3
// history entries is not enough pattern to score.
func HistorySignal(history []Checkin, now time.Time) Signal {
	if len(history) < historyMinEntries {
		return Signal{Source: SourceHistory, Contribution: 0}
	}

	recent := history
	if len(recent) > historyWindow {
		recent = recent[:historyWindow]
	}

	var moodScore float64
	var evidence []string

	var sum float64
	for _, c := range recent {
		sum += float64(c.Mood)
	}
	avg := sum / float64(len(recent))
	if avg < 2.5 {
		moodScore += 2
		evidence = append(evidence, fmt.Sprintf("average mood %.1f over last %d check-ins", avg, len(recent)))
	}

	// Longest run of low moods anywhere in the window, not just the most
	// recent streak: an interior run is the same sustained-low pattern and
	// scoring errs toward escalation.
	consecutive := 0
	run := 0
	for _, c := range recent {
		if c.Mood > 2 {
			run = 0
			continue
		}
		run++
		if run > consecutive {
			consecutive = run
		}
	}
	if consecutive >= 3 {
		moodScore += 2
		evidence = append(evidence, fmt.Sprintf("%d consecutive low-mood check-ins", consecutive))
	}
	if consecutive >= 5 {
		moodScore++
		evidence = append(evidence, "sustained low mood across the full window")
	}
	if moodScore > historyMoodCap {
		moodScore = historyMoodCap
	}

	crisisEvents := 0
	for _, c := range recent {
		if c.CrisisScore == nil {
			continue
		}
		if now.Sub(c.Timestamp) <= recentCrisisLookback && *c.CrisisScore > recentCrisisCutoff {
			crisisEvents++
		}
	}
	var crisisScore float64
	if crisisEvents > 0 {
		crisisScore += 2
		evidence = append(evidence, fmt.Sprintf("%d crisis assessment(s) in the last 7 days", crisisEvents))
	}
	if crisisEvents > 2 {
		crisisScore++
	}

	contribution := moodScore + crisisScore
	if contribution > historyMoodCap {
		contribution = historyMoodCap
	}

	return Signal{
		Source:       SourceHistory,
		Contribution: contribution,
		Evidence:     evidence,
	}
}
