package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-2.0-flash"

// GeminiProvider implements DisputeClassifier using Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider initializes a new Gemini client.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: missing api key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(geminiModel)
	model.ResponseMIMEType = "application/json"
	// Classification should be repeatable, not creative.
	model.SetTemperature(0.1)
	model.SystemInstruction = genai.NewUserContent(genai.Text(
		"You are a dispute resolution analyst for a farm produce logistics and ride service."))

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

func (p *GeminiProvider) ClassifyDispute(ctx context.Context, description string) (*Classification, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("gemini: empty description")
	}

	resp, err := p.model.GenerateContent(ctx, genai.Text(buildDisputePrompt(description)))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	return parseClassification(responseText.String())
}

func buildDisputePrompt(description string) string {
	return fmt.Sprintf(`Analyze this ride dispute:
%q

Respond with a single JSON object:
{
  "category": "wrong_route" | "service_issue" | "safety_concern",
  "severity": "low" | "medium" | "high" | "critical",
  "confidence": number between 0 and 1,
  "compensation_percent": number between 0 and 100,
  "recommended_action": "string"
}

Any report of physical danger, harassment, or an accident MUST use "safety_concern".`, description)
}

// parseClassification decodes the model reply and normalises its fields.
func parseClassification(raw string) (*Classification, error) {
	cleanJSON := cleanJSONString(raw)

	var c Classification
	if err := json.Unmarshal([]byte(cleanJSON), &c); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleanJSON)
	}

	c.Category = strings.ToLower(strings.TrimSpace(c.Category))
	c.Severity = strings.ToLower(strings.TrimSpace(c.Severity))
	c.Confidence = clamp(c.Confidence, 0, 1)
	c.CompensationPercent = clamp(c.CompensationPercent, 0, 100)
	return &c, nil
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
