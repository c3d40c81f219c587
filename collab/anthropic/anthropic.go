// Package anthropic implements collab.Client using the Anthropic Messages
// API. Structured output is obtained through a forced tool call whose input
// schema is the requested response schema.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"interviewcoach/collab"
)

// Options configure the Anthropic adapter.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Client wraps the Anthropic Messages API behind collab.Client.
type Client struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic collaborator client.
func New(optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:       string(anthropic.ModelClaudeSonnet4_20250514),
		Temperature: 0.2,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)
	return &Client{client: &client, opts: opts}
}

// NewFromClient creates an adapter from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:       string(anthropic.ModelClaudeSonnet4_20250514),
		Temperature: 0.2,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{client: client, opts: opts}
}

// Generate implements collab.Client.
func (c *Client) Generate(ctx context.Context, req collab.Request) (*collab.Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.opts.Model),
		MaxTokens: c.opts.MaxTokens,
		Messages:  buildMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	} else {
		params.Temperature = anthropic.Float(c.opts.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = int64(req.MaxTokens)
	}

	// Structured output via a forced tool call: the tool's input schema is
	// the response schema, so the tool_use block input is the reply.
	if req.Schema != nil {
		params.Tools = []anthropic.ToolUnionParam{{
			OfTool: &anthropic.ToolParam{
				Name:        req.Schema.Name,
				Description: anthropic.String(req.Schema.Description),
				InputSchema: buildInputSchema(req.Schema.Definition),
			},
		}}
		params.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: req.Schema.Name},
		}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}

	content, err := extractContent(msg, req.Schema != nil)
	if err != nil {
		return nil, err
	}
	if msg.StopReason == anthropic.StopReasonMaxTokens {
		return nil, &collab.ErrMaxTokensExceeded{Content: content}
	}

	if err := collab.ValidateResponse(req.Schema, content); err != nil {
		return nil, err
	}

	return &collab.Response{
		Content: content,
		Usage: collab.Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
			TotalTokens:  int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
		Model:      string(msg.Model),
		StopReason: mapStopReason(msg.StopReason),
	}, nil
}

// ModelID implements collab.Client.
func (c *Client) ModelID() string { return c.opts.Model }

func buildMessages(msgs []collab.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, len(msgs))
	for i, m := range msgs {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == collab.RoleAssistant {
			out[i] = anthropic.NewAssistantMessage(block)
		} else {
			out[i] = anthropic.NewUserMessage(block)
		}
	}
	return out
}

func buildInputSchema(def map[string]any) anthropic.ToolInputSchemaParam {
	schema := anthropic.ToolInputSchemaParam{Type: constant.Object("object")}
	if props, ok := def["properties"]; ok {
		schema.Properties = props
	}
	if req, ok := def["required"]; ok {
		switch required := req.(type) {
		case []string:
			schema.Required = required
		case []any:
			for _, r := range required {
				if s, ok := r.(string); ok {
					schema.Required = append(schema.Required, s)
				}
			}
		}
	}
	return schema
}

func extractContent(msg *anthropic.Message, structured bool) (json.RawMessage, error) {
	for _, block := range msg.Content {
		switch block.Type {
		case "tool_use":
			if !structured {
				continue
			}
			toolBlock := block.AsToolUse()
			raw, err := json.Marshal(toolBlock.Input)
			if err != nil {
				return nil, &collab.ErrInvalidResponse{Err: fmt.Errorf("marshal tool input: %w", err)}
			}
			return raw, nil
		case "text":
			if structured {
				continue
			}
			return json.RawMessage(block.AsText().Text), nil
		}
	}
	return nil, &collab.ErrInvalidResponse{Err: fmt.Errorf("no usable content in Anthropic response")}
}

func mapStopReason(reason anthropic.StopReason) string {
	switch reason {
	case anthropic.StopReasonMaxTokens:
		return "max_tokens"
	default:
		return "end"
	}
}

func mapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return &collab.ErrRateLimit{Err: err}
		case apiErr.StatusCode >= 500:
			return &collab.ErrUnavailable{Err: err}
		}
	}
	return &collab.ErrUnavailable{Err: err}
}
