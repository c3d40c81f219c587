// Package gemini implements collab.Client using the Google Gemini SDK with
// native response schemas for structured output.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"interviewcoach/collab"
)

// Options configure the Gemini adapter.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int32
	APIKey      string
}

// Client wraps the Gemini API behind collab.Client.
type Client struct {
	client *genai.Client
	opts   Options
}

// New creates a new Gemini collaborator client.
func New(ctx context.Context, optFns ...func(o *Options)) (*Client, error) {
	opts := Options{
		Model:       "gemini-2.0-flash",
		Temperature: 0.2,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{client: client, opts: opts}, nil
}

// Generate implements collab.Client.
func (c *Client) Generate(ctx context.Context, req collab.Request) (*collab.Response, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: c.opts.MaxTokens,
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	temp := float32(c.opts.Temperature)
	if req.Temperature > 0 {
		temp = float32(req.Temperature)
	}
	config.Temperature = &temp

	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = buildSchema(req.Schema.Definition)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.opts.Model, buildContents(req.Messages), config)
	if err != nil {
		return nil, mapError(err)
	}

	content := json.RawMessage(result.Text())
	if err := collab.ValidateResponse(req.Schema, content); err != nil {
		return nil, err
	}

	resp := &collab.Response{
		Content:    content,
		Model:      c.opts.Model,
		StopReason: mapStopReason(result),
	}
	if result.UsageMetadata != nil {
		resp.Usage = collab.Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return resp, nil
}

// ModelID implements collab.Client.
func (c *Client) ModelID() string { return c.opts.Model }

func buildContents(msgs []collab.Message) []*genai.Content {
	out := make([]*genai.Content, len(msgs))
	for i, m := range msgs {
		role := "user"
		if m.Role == collab.RoleAssistant {
			role = "model"
		}
		out[i] = &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		}
	}
	return out
}

// buildSchema converts a JSON Schema definition map into a genai.Schema.
func buildSchema(def map[string]any) *genai.Schema {
	schema := &genai.Schema{}

	if t, ok := def["type"].(string); ok {
		schema.Type = mapType(t)
	}
	if desc, ok := def["description"].(string); ok {
		schema.Description = desc
	}
	if props, ok := def["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema)
		for k, v := range props {
			if propDef, ok := v.(map[string]any); ok {
				schema.Properties[k] = buildSchema(propDef)
			}
		}
	}
	if req, ok := def["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}
	if req, ok := def["required"].([]string); ok {
		schema.Required = append(schema.Required, req...)
	}
	if enums, ok := def["enum"].([]any); ok {
		for _, e := range enums {
			if s, ok := e.(string); ok {
				schema.Enum = append(schema.Enum, s)
			}
		}
	}
	if enums, ok := def["enum"].([]string); ok {
		schema.Enum = append(schema.Enum, enums...)
	}
	if items, ok := def["items"].(map[string]any); ok {
		schema.Items = buildSchema(items)
	}
	return schema
}

func mapType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

func mapStopReason(result *genai.GenerateContentResponse) string {
	if len(result.Candidates) > 0 {
		switch result.Candidates[0].FinishReason {
		case "STOP":
			return "end"
		case "MAX_TOKENS":
			return "max_tokens"
		}
	}
	return "end"
}

func mapError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return &collab.ErrRateLimit{Err: err}
		case apiErr.Code >= 500:
			return &collab.ErrUnavailable{Err: err}
		}
	}
	return &collab.ErrUnavailable{Err: err}
}
