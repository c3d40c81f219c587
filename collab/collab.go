package collab

import (
	"context"
	"encoding/json"
)

// Client is the minimal interface stages use to drive a collaborator call.
// Implementations live in the provider subpackages (openai, anthropic,
// gemini) and in the MockClient.
type Client interface {
	// Generate sends the request and returns structured output. When
	// req.Schema is set the provider must use its native structured-output
	// mechanism and the returned Content is schema-validated JSON.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this client is configured with.
	ModelID() string
}

// Request describes one collaborator call.
type Request struct {
	// System sets the collaborator's role and constraints.
	System string

	// Messages is the conversation payload. Stages typically send a single
	// user message carrying a JSON context document.
	Messages []Message

	// Schema, when set, is the JSON Schema the reply must conform to.
	Schema *Schema

	// MaxTokens bounds the reply length. Zero means provider default.
	MaxTokens int

	// Temperature controls randomness in [0, 1]. Zero means deterministic.
	Temperature float64
}

// Message is a single conversation entry.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names and defines the JSON structure expected from a collaborator.
type Schema struct {
	// Name identifies the schema (tool name for Anthropic, schema name for
	// OpenAI). Kebab-case, e.g. "observer-report".
	Name string

	// Description tells the collaborator what the structure represents.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the collaborator's output.
type Response struct {
	// Content is the generated output. With a Schema set this is the
	// validated JSON object; otherwise raw text wrapped as JSON.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the concrete model that served the request.
	Model string

	// StopReason is normalized to: "end", "max_tokens", "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
