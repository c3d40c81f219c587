package collab

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = &Schema{
	Name: "validate-test",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic": map[string]any{"type": "string"},
			"score": map[string]any{"type": "number"},
		},
		"required":             []string{"topic", "score"},
		"additionalProperties": false,
	},
}

func TestValidateResponse_Accepts(t *testing.T) {
	err := ValidateResponse(testSchema, json.RawMessage(`{"topic":"async","score":4.5}`))
	assert.NoError(t, err)
}

func TestValidateResponse_RejectsMissingRequired(t *testing.T) {
	err := ValidateResponse(testSchema, json.RawMessage(`{"topic":"async"}`))
	require.Error(t, err)
	var invalid *ErrInvalidResponse
	assert.ErrorAs(t, err, &invalid)
}

func TestValidateResponse_RejectsExtraProperty(t *testing.T) {
	err := ValidateResponse(testSchema, json.RawMessage(`{"topic":"a","score":1,"extra":true}`))
	assert.Error(t, err)
}

func TestValidateResponse_RejectsMalformedJSON(t *testing.T) {
	err := ValidateResponse(testSchema, json.RawMessage(`{"topic":`))
	assert.Error(t, err)
}

func TestValidateResponse_NilSchemaIsNoOp(t *testing.T) {
	assert.NoError(t, ValidateResponse(nil, json.RawMessage(`anything`)))
}
