// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

/*
Package genai wraps the Google GenAI SDK behind a small text-generation client.

It isolates the rest of the application from the SDK surface: callers hand over
a system instruction and a user prompt, and receive plain text back. Upstream
failures are reported as errors and never partially applied.
*/
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// Client generates text through the Google GenAI API.
type Client struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewClient creates a GenAI text client for the given model.
//
// # Parameters
//   - ctx: Context for client initialization.
//   - apiKey: GenAI API key. Must be non-empty.
//   - model: Model identifier (e.g. "gemini-2.0-flash").
//   - logger: Structured logger for upstream call events.
func NewClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("genai: API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("genai: model is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("genai: failed to create client: %w", err)
	}

	return &Client{client: client, model: model, logger: logger}, nil
}

// GenerateText sends a prompt to the model and returns the generated text.
//
// # Parameters
//   - ctx: Context carrying the request deadline.
//   - system: System instruction framing the model's role. May be empty.
//   - prompt: The user prompt.
func (c *Client) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		c.logger.WarnContext(ctx, "genai_generate_failed",
			slog.String("model", c.model),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("genai: generate failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("genai: model returned an empty response")
	}

	c.logger.DebugContext(ctx, "genai_generate_succeeded",
		slog.String("model", c.model),
		slog.Int("response_chars", len(text)),
	)

	return text, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}
