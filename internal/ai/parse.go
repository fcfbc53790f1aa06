package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// parseScoreResult decodes the model's JSON reply. Gemini often wraps JSON in
// markdown fences or adds stray commentary, so malformed payloads get one
// repair pass before giving up.
func parseScoreResult(raw string) (ScoreResult, error) {
	payload := extractJSONObject(raw)
	if payload == "" {
		return ScoreResult{}, fmt.Errorf("ai: no JSON object in model reply: %q", truncateReply(raw))
	}

	var result ScoreResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(payload)
		if repairErr != nil {
			return ScoreResult{}, fmt.Errorf("ai: decode model reply: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &result); err != nil {
			return ScoreResult{}, fmt.Errorf("ai: decode repaired model reply: %w", err)
		}
	}

	if result.CrisisScore < 0 {
		result.CrisisScore = 0
	}
	if result.CrisisScore > 10 {
		result.CrisisScore = 10
	}
	if result.Sentiment == "" {
		return result, errors.New("ai: model reply missing sentiment")
	}
	return result, nil
}

// extractJSONObject pulls the outermost {...} span out of a reply that may
// carry markdown fences or prose around it.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return raw[start : end+1]
}

func truncateReply(s string) string {
	const max = 120
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
