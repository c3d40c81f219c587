// Package transcript renders a finished session into the persisted log
// document: participant name, the ordered turn list with visible questions,
// answers and internal rationale, and the final feedback text.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"interviewcoach/core"
)

// Turn is one serialized exchange in the persisted document.
type Turn struct {
	TurnID           int    `json:"turn_id"`
	VisibleQuestion  string `json:"agent_visible_message"`
	Answer           string `json:"user_message"`
	InternalThoughts string `json:"internal_thoughts"`
}

// Document is the persisted transcript artifact.
type Document struct {
	ParticipantName string `json:"participant_name"`
	Turns           []Turn `json:"turns"`
	FinalFeedback   string `json:"final_feedback"`
}

// Build renders the session into a Document. Final feedback is flattened to
// its summary text; a session without final feedback yields an empty string.
func Build(sess *core.Session) Document {
	doc := Document{
		ParticipantName: sess.Intake.ParticipantName,
		Turns:           make([]Turn, 0, len(sess.Turns)),
	}
	for _, turn := range sess.Turns {
		doc.Turns = append(doc.Turns, Turn{
			TurnID:           turn.TurnID,
			VisibleQuestion:  turn.Question,
			Answer:           turn.Answer,
			InternalThoughts: turn.InternalThoughts,
		})
	}
	if sess.Final != nil {
		doc.FinalFeedback = sess.Final.Summary()
	}
	return doc
}

const documentSchemaJSON = `{
	"type": "object",
	"properties": {
		"participant_name": {"type": "string"},
		"turns": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"turn_id": {"type": "integer"},
					"agent_visible_message": {"type": "string"},
					"user_message": {"type": "string"},
					"internal_thoughts": {"type": "string"}
				},
				"required": ["turn_id", "agent_visible_message", "user_message", "internal_thoughts"],
				"additionalProperties": false
			}
		},
		"final_feedback": {"type": "string"}
	},
	"required": ["participant_name", "turns", "final_feedback"],
	"additionalProperties": false
}`

const documentSchemaURL = "schema://interview-transcript.json"

// Validate checks the document against the transcript schema.
func Validate(doc Document) error {
	compiled, err := compileDocumentSchema()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("reparse transcript: %w", err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("transcript schema violation: %w", err)
	}
	return nil
}

// Save validates the document and writes it as indented JSON, creating
// parent directories as needed.
func Save(doc Document, path string) error {
	if err := Validate(doc); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create transcript dir: %w", err)
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

func compileDocumentSchema() (*jsonschema.Schema, error) {
	var parsed any
	if err := json.Unmarshal([]byte(documentSchemaJSON), &parsed); err != nil {
		return nil, fmt.Errorf("parse transcript schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(documentSchemaURL, parsed); err != nil {
		return nil, fmt.Errorf("add transcript schema: %w", err)
	}
	compiled, err := c.Compile(documentSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile transcript schema: %w", err)
	}
	return compiled, nil
}
