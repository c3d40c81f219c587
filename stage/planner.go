package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"interviewcoach/collab"
	"interviewcoach/core"
	"interviewcoach/logging"
)

// PlanSize is the fixed number of topics in every interview plan.
const PlanSize = 10

var plannedTopicsSchema = &collab.Schema{
	Name:        "planned-topics",
	Description: "Ordered list of interview topics tailored to the candidate profile.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topics": map[string]any{
				"type":        "array",
				"description": "Exactly ten distinct, non-empty topic names in interview order.",
				"items":       map[string]any{"type": "string"},
			},
		},
		"required":             []string{"topics"},
		"additionalProperties": false,
	},
}

const plannerSystem = `You are an interview planner. Given a candidate intake
profile, produce an ordered list of exactly ten distinct technical interview
topics, from warm-up fundamentals to the hardest areas for the target grade.`

// Planner builds the topic plan once per session. A plan that deviates from
// the required cardinality (wrong count, empty or duplicate entries) is a
// fatal validation error: the session must not start on a degenerate plan.
type Planner struct {
	client collab.Client
	logger logging.Logger
}

// NewPlanner constructs the planning stage.
func NewPlanner(client collab.Client, logger logging.Logger) *Planner {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Planner{client: client, logger: logger}
}

// Name implements Stage.
func (p *Planner) Name() string { return "planner" }

// Run generates the plan when none exists yet; otherwise it is a no-op.
func (p *Planner) Run(ctx context.Context, view core.View) (core.Patch, error) {
	if len(view.PlannedTopics) > 0 {
		return core.Patch{}, nil
	}

	payload, err := jsonPayload(map[string]any{
		"intake":      view.Intake,
		"topic_count": PlanSize,
	})
	if err != nil {
		return core.Patch{}, err
	}

	resp, err := p.client.Generate(ctx, collab.Request{
		System:   plannerSystem,
		Messages: []collab.Message{{Role: collab.RoleUser, Content: payload}},
		Schema:   plannedTopicsSchema,
	})
	if err != nil {
		return core.Patch{}, fmt.Errorf("planner: %w", err)
	}

	var decoded struct {
		Topics []string `json:"topics"`
	}
	if err := json.Unmarshal(resp.Content, &decoded); err != nil {
		return core.Patch{}, &core.ValidationError{Stage: "planner", Reason: "undecodable plan: " + err.Error()}
	}

	topics, err := normalizePlan(decoded.Topics)
	if err != nil {
		return core.Patch{}, err
	}

	p.logger.Info("topic plan created", "topics", len(topics), "model", p.client.ModelID())
	return core.Patch{PlannedTopics: topics}, nil
}

// normalizePlan trims entries and enforces the plan invariants: exactly
// PlanSize non-empty, distinct topics.
func normalizePlan(raw []string) ([]string, error) {
	if len(raw) != PlanSize {
		return nil, &core.ValidationError{
			Stage:  "planner",
			Reason: fmt.Sprintf("plan must contain exactly %d topics, got %d", PlanSize, len(raw)),
		}
	}
	seen := make(map[string]struct{}, len(raw))
	topics := make([]string, 0, len(raw))
	for _, topic := range raw {
		trimmed := strings.TrimSpace(topic)
		if trimmed == "" {
			return nil, &core.ValidationError{Stage: "planner", Reason: "plan contains an empty topic"}
		}
		key := strings.ToLower(trimmed)
		if _, dup := seen[key]; dup {
			return nil, &core.ValidationError{Stage: "planner", Reason: "plan contains duplicate topic " + trimmed}
		}
		seen[key] = struct{}{}
		topics = append(topics, trimmed)
	}
	return topics, nil
}
