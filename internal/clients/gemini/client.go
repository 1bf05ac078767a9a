// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bobmcallan/quanta/internal/common"
	"github.com/bobmcallan/quanta/internal/interfaces"
	"github.com/bobmcallan/quanta/internal/models"
)

const DefaultModel = "gemini-2.0-flash"

// Client implements the NarrativeClient interface
type Client struct {
	client *genai.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GenerateContent generates AI content from a prompt
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Msg("Generating content")

	contents := genai.Text(prompt)
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// GenerateSimulationNarrative generates plain-language commentary for a
// simulation result.
func (c *Client) GenerateSimulationNarrative(ctx context.Context, result *models.SimulationResult) (string, error) {
	prompt := buildSimulationPrompt(result)
	return c.GenerateContent(ctx, prompt)
}

// buildSimulationPrompt creates a prompt summarizing the simulation inputs
// and outcomes for narrative generation.
func buildSimulationPrompt(result *models.SimulationResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `Summarize the following price simulation for %s in 2-3 short paragraphs
for a retail investor. Explain what drives the projection, how confident the
model is, and the realistic range of outcomes. Do not give financial advice.

Simulation:
- Initial Price: $%.2f
- Horizon: %d trading days
- Composite Score: %.2f (%s)
`, result.Symbol, result.InitialPrice, result.TimeHorizon, result.Score, result.Tier)

	for _, s := range result.Scenarios {
		fmt.Fprintf(&sb, "- %s scenario: final price $%.2f (%.2f%%, probability %.0f%%)\n",
			s.Type, s.FinalPrice, s.TotalReturnPercent, s.Probability*100)
	}

	for _, ci := range result.ConfidenceIntervals {
		fmt.Fprintf(&sb, "- %.0f%% confidence interval: $%.2f to $%.2f\n",
			ci.ConfidenceLevel*100, ci.LowerBound, ci.UpperBound)
	}

	var active []string
	for _, b := range result.FactorBreakdowns {
		if b.Active {
			active = append(active, fmt.Sprintf("%s (weight %.1f, hist. avg return %.2f%%)", b.Factor, b.Weight, b.HistoricalAvgReturn))
		}
	}
	if len(active) > 0 {
		fmt.Fprintf(&sb, "\nActive factors:\n")
		for _, a := range active {
			fmt.Fprintf(&sb, "- %s\n", a)
		}
	} else {
		sb.WriteString("\nNo factors are currently active.\n")
	}

	return sb.String()
}

// Ensure Client implements NarrativeClient
var _ interfaces.NarrativeClient = (*Client)(nil)
