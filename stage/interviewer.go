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

// rewriteBudget is how many regeneration attempts a duplicate question gets
// before the deterministic fallback kicks in.
const rewriteBudget = 2

var questionSchema = &collab.Schema{
	Name:        "interview-question",
	Description: "The next question to ask the candidate.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{"type": "string"},
			"rationale": map[string]any{
				"type":        "string",
				"description": "Internal reasoning for why this question was chosen. Never shown to the candidate.",
			},
		},
		"required":             []string{"question", "rationale"},
		"additionalProperties": false,
	},
}

const interviewerSystem = `You are a senior technical interviewer. Produce
exactly one next question for the candidate, following the given strategy
and difficulty tier. Stay on the current topic unless the strategy says to
change it. Never repeat a question from the avoid list.`

// Interviewer produces the next question. It selects a strategy from the
// last observer report, asks the question collaborator, rejects
// near-duplicate output with a bounded rewrite loop, and falls back to a
// deterministic topic question when the budget is exhausted. Duplicate
// exhaustion is recovered locally and never surfaces as an error.
type Interviewer struct {
	client collab.Client
	logger logging.Logger
}

// NewInterviewer constructs the question generation stage.
func NewInterviewer(client collab.Client, logger logging.Logger) *Interviewer {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Interviewer{client: client, logger: logger}
}

// Name implements Stage.
func (iv *Interviewer) Name() string { return "interviewer" }

// Run generates the next pending question for the session.
func (iv *Interviewer) Run(ctx context.Context, view core.View) (core.Patch, error) {
	strategy := StrategyAskStandard
	if view.LastReport != nil {
		strategy = SelectStrategy(*view.LastReport)
	}
	topic := view.CurrentTopic()

	question, rationale, err := iv.generate(ctx, view, strategy, topic)
	if err != nil {
		return core.Patch{}, fmt.Errorf("interviewer: %w", err)
	}
	if question == "" {
		question, topic = fallbackQuestion(view)
		rationale = "strategy=" + string(strategy) + " (deterministic fallback after duplicate rewrites)"
	}

	pending := core.PendingQuestion{
		Question:   question,
		Rationale:  rationale,
		Topic:      topic,
		Difficulty: view.Difficulty,
	}
	patch := core.Patch{
		Pending:     &pending,
		AskQuestion: question,
	}
	if topic != "" {
		patch.CoverTopics = []string{topic}
	}
	return patch, nil
}

// generate runs the collaborator with the rewrite loop. An empty question
// with a nil error means the rewrite budget was exhausted on duplicates;
// collaborator failures propagate so the turn stays retryable.
func (iv *Interviewer) generate(ctx context.Context, view core.View, strategy Strategy, topic string) (string, string, error) {
	avoid := append([]string(nil), view.AskedQuestions...)

	for attempt := 0; attempt <= rewriteBudget; attempt++ {
		doc := map[string]any{
			"intake":           view.Intake,
			"skill_matrix":     view.Skills,
			"recent_turns":     recentTurns(view.Turns),
			"strategy":         strategy,
			"difficulty":       view.Difficulty,
			"current_topic":    topic,
			"topics_remaining": remainingTopics(view),
			"avoid_questions":  avoid,
		}
		if notes := RenderExpertNotes(view.Experts); notes != "" {
			doc["expert_notes"] = notes
		}
		if attempt > 0 {
			doc["rewrite_instruction"] = "Your previous question was too similar to one already asked. Produce a substantially different question; avoid every entry of avoid_questions."
		}

		payload, err := jsonPayload(doc)
		if err != nil {
			return "", "", err
		}
		resp, err := iv.client.Generate(ctx, collab.Request{
			System:   interviewerSystem,
			Messages: []collab.Message{{Role: collab.RoleUser, Content: payload}},
			Schema:   questionSchema,
		})
		if err != nil {
			return "", "", err
		}

		var decoded struct {
			Question  string `json:"question"`
			Rationale string `json:"rationale"`
		}
		if err := json.Unmarshal(resp.Content, &decoded); err != nil {
			return "", "", &core.ValidationError{Stage: "interviewer", Reason: "undecodable question: " + err.Error()}
		}
		candidate := strings.TrimSpace(decoded.Question)
		if candidate != "" && !IsDuplicate(candidate, avoid) {
			return candidate, fmt.Sprintf("strategy=%s %s", strategy, decoded.Rationale), nil
		}

		iv.logger.Debug("duplicate question rejected", "attempt", attempt)
		if candidate != "" {
			avoid = append(avoid, candidate)
		}
	}
	return "", "", nil
}

// fallbackQuestion picks the next planned topic not yet covered and renders
// a deterministic question for it. With every topic covered it emits a
// generic continuation prompt.
func fallbackQuestion(view core.View) (string, string) {
	covered := make(map[string]struct{}, len(view.CoveredTopics))
	for _, topic := range view.CoveredTopics {
		covered[strings.ToLower(topic)] = struct{}{}
	}
	for _, topic := range view.PlannedTopics {
		if _, done := covered[strings.ToLower(topic)]; done {
			continue
		}
		q := fmt.Sprintf("Let's move on. Could you walk me through your experience with %s?", topic)
		if !IsDuplicate(q, view.AskedQuestions) {
			return q, topic
		}
	}
	return "Is there anything you would like to add to your previous answer?", view.CurrentTopic()
}

func remainingTopics(view core.View) []string {
	if view.TopicIndex >= len(view.PlannedTopics) {
		return nil
	}
	return view.PlannedTopics[view.TopicIndex:]
}
