// Package ai wraps the Gemini text-generation collaborator behind a small
// Engine interface so conversation logic stays testable without network calls.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"vendexa_backend/platform/config"

	"google.golang.org/genai"
)

// Turn is one prior exchange replayed to the model for context.
type Turn struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// IntentAnalysis is the structured classification of a customer message.
type IntentAnalysis struct {
	Intent        string `json:"intent"`
	InterestLevel string `json:"interest_level"`
	Sentiment     string `json:"sentiment"`
	Summary       string `json:"summary,omitempty"`
}

// FallbackIntent is the deterministic classification used when the
// collaborator fails or returns something unparseable.
func FallbackIntent() IntentAnalysis {
	return IntentAnalysis{
		Intent:        "unknown",
		InterestLevel: "medium",
		Sentiment:     "neutral",
	}
}

// Engine generates sales conversation text. Implementations must be safe for
// concurrent use.
type Engine interface {
	// Reply produces the assistant's answer to a customer message, given the
	// lead's profile and the conversation so far.
	Reply(ctx context.Context, profile LeadProfile, history []Turn, message string) (string, error)
	// ClassifyIntent analyzes a single customer message.
	ClassifyIntent(ctx context.Context, message string) (IntentAnalysis, error)
	// GenerateProposal renders a personalized commercial proposal.
	GenerateProposal(ctx context.Context, profile LeadProfile, requirements string) (string, error)
}

// GeminiEngine implements Engine on the Gemini API.
type GeminiEngine struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiEngine creates an Engine backed by the configured Gemini model.
func NewGeminiEngine(ctx context.Context, cfg config.AIConfig) (*GeminiEngine, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiEngine{
		client:  client,
		model:   cfg.GetGeminiModel(),
		timeout: cfg.GetAITimeout(),
	}, nil
}

func (g *GeminiEngine) Reply(ctx context.Context, profile LeadProfile, history []Turn, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	chatHistory := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := genai.RoleUser
		if turn.Role == "model" {
			role = genai.RoleModel
		}
		chatHistory = append(chatHistory, genai.NewContentFromText(turn.Text, genai.Role(role)))
	}

	chatConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(salesSystemPrompt(profile), genai.RoleUser),
	}
	chat, err := g.client.Chats.Create(ctx, g.model, chatConfig, chatHistory)
	if err != nil {
		return "", err
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}

func (g *GeminiEngine) ClassifyIntent(ctx context.Context, message string) (IntentAnalysis, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(intentPrompt(message)), nil)
	if err != nil {
		return IntentAnalysis{}, err
	}
	return parseIntent(resp.Text())
}

func (g *GeminiEngine) GenerateProposal(ctx context.Context, profile LeadProfile, requirements string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(proposalPrompt(profile, requirements)), nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}

// parseIntent tolerates markdown code fences around the JSON payload, which
// Gemini emits even when told not to.
func parseIntent(raw string) (IntentAnalysis, error) {
	var analysis IntentAnalysis
	if err := json.Unmarshal([]byte(stripFences(raw)), &analysis); err != nil {
		return IntentAnalysis{}, err
	}
	if analysis.Intent == "" {
		analysis.Intent = "unknown"
	}
	if analysis.InterestLevel == "" {
		analysis.InterestLevel = "medium"
	}
	if analysis.Sentiment == "" {
		analysis.Sentiment = "neutral"
	}
	return analysis, nil
}

func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}

// DisabledEngine is the Engine used when no Gemini API key is configured.
// Every call fails, which routes the conversation service onto its
// deterministic fallbacks, so the demo stays usable offline.
type DisabledEngine struct{}

var errEngineDisabled = errors.New("gemini is not configured")

func (DisabledEngine) Reply(context.Context, LeadProfile, []Turn, string) (string, error) {
	return "", errEngineDisabled
}

func (DisabledEngine) ClassifyIntent(context.Context, string) (IntentAnalysis, error) {
	return IntentAnalysis{}, errEngineDisabled
}

func (DisabledEngine) GenerateProposal(context.Context, LeadProfile, string) (string, error) {
	return "", errEngineDisabled
}

var (
	_ Engine = (*GeminiEngine)(nil)
	_ Engine = DisabledEngine{}
)
