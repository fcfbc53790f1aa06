package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const scorerSystemPrompt = `You are a mental-health risk screening assistant.
Given a user's message and recent conversation, respond with ONLY a JSON object:
{"crisis_score": <number 0-10>, "sentiment": "<positive|neutral|negative>"}
crisis_score reflects the likelihood the user is in acute emotional crisis.
When uncertain, score higher rather than lower. Do not add any other text.`

// GeminiScorer implements CrisisScorer using Google's Gemini API.
type GeminiScorer struct {
	client  *genai.Client
	modelID string
}

// NewGeminiScorer creates a crisis scorer backed by the Gemini API.
func NewGeminiScorer(ctx context.Context, apiKey, modelID string) (*GeminiScorer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ai: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("ai: failed to create gemini client: %w", err)
	}

	return &GeminiScorer{
		client:  client,
		modelID: modelID,
	}, nil
}

// Score asks Gemini for a crisis score of the message in its conversation
// context. Bounded by the caller's context deadline.
func (g *GeminiScorer) Score(ctx context.Context, req ScoreRequest) (ScoreResult, error) {
	if strings.TrimSpace(req.Message) == "" {
		return ScoreResult{}, errors.New("ai: message is required")
	}

	model := g.client.GenerativeModel(g.modelID)
	model.SetTemperature(0)
	model.SystemInstruction = genai.NewUserContent(genai.Text(scorerSystemPrompt))

	cs := model.StartChat()
	for _, turn := range req.Context {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		role := "user"
		if turn.Role == RoleAssistant {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(content)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(req.Message))
	if err != nil {
		return ScoreResult{}, fmt.Errorf("ai: gemini scoring failed: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return ScoreResult{}, errors.New("ai: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ScoreResult{}, errors.New("ai: gemini returned empty content")
	}

	var raw strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			raw.WriteString(string(text))
		}
	}

	return parseScoreResult(raw.String())
}

// Close releases resources held by the Gemini client.
func (g *GeminiScorer) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

var _ CrisisScorer = (*GeminiScorer)(nil)
