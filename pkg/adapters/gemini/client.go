// Package gemini implements the four reasoning steps on top of the Gemini
// API: structured clarity/validation assessments, search-grounded research
// with an independent confidence pass, and final synthesis.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/tillerhq/tiller/internal/logging"
	"github.com/tillerhq/tiller/pkg/domain"
)

// Config holds the client settings. APIKey is required; model names default
// to sensible current releases.
type Config struct {
	APIKey string

	ClarityModel   string
	ResearchModel  string
	AssessorModel  string
	ValidatorModel string
	SynthesisModel string
}

func (c Config) withDefaults() Config {
	if c.ClarityModel == "" {
		c.ClarityModel = "gemini-2.0-flash"
	}
	if c.ResearchModel == "" {
		c.ResearchModel = "gemini-2.5-flash"
	}
	if c.AssessorModel == "" {
		c.AssessorModel = "gemini-2.0-flash"
	}
	if c.ValidatorModel == "" {
		c.ValidatorModel = "gemini-2.0-flash"
	}
	if c.SynthesisModel == "" {
		c.SynthesisModel = "gemini-2.0-flash"
	}
	return c
}

// Client wraps the genai SDK for the step implementations.
type Client struct {
	genai  *genai.Client
	cfg    Config
	logger *slog.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithLogger sets a structured logger for collaborator calls.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Gemini client. The API key is required; there is no
// anonymous fallback.
func NewClient(ctx context.Context, cfg Config, opts ...ClientOption) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	c := &Client{
		genai:  sdk,
		cfg:    cfg.withDefaults(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// generateJSON runs a structured-output call and decodes the JSON response
// into out. Schema enforcement happens server-side; decode failures are
// malformed-output collaborator failures.
func (c *Client) generateJSON(ctx context.Context, step domain.StepName, model, system string, contents []*genai.Content, schema *genai.Schema, temperature float32, out any) error {
	resp, err := c.genai.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(temperature),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    schema,
	})
	if err != nil {
		return domain.NewStepError(step, domain.FailureTransport, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return domain.NewStepError(step, domain.FailureEmptyResult, fmt.Errorf("model %s returned no content", model))
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return domain.NewStepError(step, domain.FailureMalformedOutput, fmt.Errorf("decoding %s response: %w", model, err))
	}
	return nil
}

// generateText runs a plain generation call and returns the trimmed text.
func (c *Client) generateText(ctx context.Context, step domain.StepName, model, system string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, string, error) {
	if cfg == nil {
		cfg = &genai.GenerateContentConfig{}
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.genai.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, "", domain.NewStepError(step, domain.FailureTransport, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, "", domain.NewStepError(step, domain.FailureEmptyResult, fmt.Errorf("model %s returned no content", model))
	}
	return resp, text, nil
}

// historyContents maps the conversation transcript to genai contents.
func historyContents(state *domain.State) []*genai.Content {
	contents := make([]*genai.Content, 0, len(state.History))
	for _, turn := range state.History {
		var role genai.Role = genai.RoleUser
		if turn.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	return contents
}
