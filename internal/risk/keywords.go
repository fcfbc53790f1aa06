package risk

import (
	"fmt"
	"strings"
)

// keywordSeverity labels the word list a phrase came from.
type keywordSeverity string

const (
	severityCritical keywordSeverity = "critical"
	severityHigh     keywordSeverity = "high"
	severityModerate keywordSeverity = "moderate"
)

type keywordEntry struct {
	phrase   string
	severity keywordSeverity
	weight   float64
}

// Matching is substring-based on the full phrase, case-insensitive, no
// stemming. A critical phrase alone is enough to reach MODERATE.
var keywordTable = buildKeywordTable()

func buildKeywordTable() []keywordEntry {
	lists := []struct {
		severity keywordSeverity
		weight   float64
		phrases  []string
	}{
		{severityCritical, 5, []string{
			"suicide",
			"kill myself",
			"end my life",
			"end it all",
			"want to die",
			"take my own life",
			"better off dead",
			"no reason to live",
		}},
		{severityHigh, 3, []string{
			"self harm",
			"self-harm",
			"hurt myself",
			"cutting myself",
			"hopeless",
			"can't go on",
			"cant go on",
			"worthless",
			"no way out",
		}},
		{severityModerate, 2, []string{
			"depressed",
			"so anxious",
			"panic attack",
			"overwhelmed",
			"completely alone",
			"feel empty",
			"feel numb",
			"hate myself",
		}},
	}

	var table []keywordEntry
	for _, list := range lists {
		for _, phrase := range list.phrases {
			table = append(table, keywordEntry{phrase: phrase, severity: list.severity, weight: list.weight})
		}
	}
	return table
}

// KeywordSignal scans text against the severity word lists. Contribution is
// the sum of matches times their list weight, unbounded here and clamped by
// the aggregator.
func KeywordSignal(text string) Signal {
	score, evidence := keywordScan(text)
	return Signal{
		Source:       SourceKeyword,
		Contribution: score,
		Evidence:     evidence,
	}
}

func keywordScan(text string) (float64, []string) {
	lowered := strings.ToLower(text)
	var score float64
	var evidence []string
	for _, entry := range keywordTable {
		if strings.Contains(lowered, entry.phrase) {
			score += entry.weight
			evidence = append(evidence, fmt.Sprintf("%s (%s)", entry.phrase, entry.severity))
		}
	}
	return score, evidence
}
