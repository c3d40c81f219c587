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

var observerReportSchema = &collab.Schema{
	Name:        "observer-report",
	Description: "Structured evaluation of the candidate's latest answer.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"detected_topic": map[string]any{"type": "string"},
			"answer_quality": map[string]any{
				"type":        "number",
				"description": "Answer quality on a 0 to 5 scale.",
			},
			"confidence": map[string]any{
				"type":        "number",
				"description": "Observer confidence in its own evaluation, 0 to 1.",
			},
			"flags": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"off_topic":     map[string]any{"type": "boolean"},
					"hallucination": map[string]any{"type": "boolean"},
					"contradiction": map[string]any{"type": "boolean"},
					"role_reversal": map[string]any{"type": "boolean"},
				},
				"required":             []string{"off_topic", "hallucination", "contradiction", "role_reversal"},
				"additionalProperties": false,
			},
			"recommended_next_action": map[string]any{
				"type": "string",
				"enum": []string{
					"ASK_DEEPER", "ASK_EASIER", "CHANGE_TOPIC", "HANDLE_OFFTOPIC",
					"HANDLE_HALLUCINATION", "HANDLE_ROLE_REVERSAL", "WRAP_UP",
				},
			},
			"recommended_question_style": map[string]any{"type": "string"},
			"fact_check_notes":           map[string]any{"type": "string"},
			"skills_delta": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "number"},
			},
		},
		"required": []string{
			"detected_topic", "answer_quality", "confidence", "flags",
			"recommended_next_action", "recommended_question_style",
		},
		"additionalProperties": false,
	},
}

const observerSystem = `You are a silent interview observer. Evaluate the
candidate's latest answer against the question that was asked. Detect the
topic actually discussed, grade the answer quality from 0 (no signal) to 5
(excellent), flag off-topic replies, hallucinated facts, contradictions with
earlier answers and attempts to reverse roles, and recommend the next action.`

// Observer evaluates the candidate's answer to the pending question and
// commits the completed exchange as a turn record. It is the only stage
// that commits turns.
type Observer struct {
	client collab.Client
	logger logging.Logger
}

// NewObserver constructs the observation stage.
func NewObserver(client collab.Client, logger logging.Logger) *Observer {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Observer{client: client, logger: logger}
}

// Name implements Stage.
func (o *Observer) Name() string { return "observer" }

// Run evaluates the latest answer. It requires a pending question and an
// answer; the session is left untouched when the collaborator call fails,
// so the turn stays retryable.
func (o *Observer) Run(ctx context.Context, view core.View) (core.Patch, error) {
	if view.Pending == nil {
		return core.Patch{}, &core.ValidationError{Stage: "observer", Reason: "no pending question to observe"}
	}
	if strings.TrimSpace(view.LastAnswer) == "" {
		return core.Patch{}, &core.ValidationError{Stage: "observer", Reason: "no candidate answer to observe"}
	}

	payload, err := jsonPayload(map[string]any{
		"intake":        view.Intake,
		"current_topic": view.CurrentTopic(),
		"question":      view.Pending.Question,
		"answer":        view.LastAnswer,
		"recent_turns":  recentTurns(view.Turns),
	})
	if err != nil {
		return core.Patch{}, err
	}

	resp, err := o.client.Generate(ctx, collab.Request{
		System:   observerSystem,
		Messages: []collab.Message{{Role: collab.RoleUser, Content: payload}},
		Schema:   observerReportSchema,
	})
	if err != nil {
		return core.Patch{}, fmt.Errorf("observer: %w", err)
	}

	var report core.ObserverReport
	if err := json.Unmarshal(resp.Content, &report); err != nil {
		return core.Patch{}, &core.ValidationError{Stage: "observer", Reason: "undecodable report: " + err.Error()}
	}
	report.Clamp()
	if !core.ValidAction(report.RecommendedNextAction) {
		return core.Patch{}, &core.ValidationError{
			Stage:  "observer",
			Reason: "unknown next action " + string(report.RecommendedNextAction),
		}
	}

	turn := core.TurnRecord{
		TurnID:           len(view.Turns) + 1,
		Question:         view.Pending.Question,
		Answer:           view.LastAnswer,
		InternalThoughts: renderRationale(report, view.Pending.Rationale),
		Topic:            view.Pending.Topic,
		DifficultyBefore: view.Pending.Difficulty,
		DifficultyAfter:  NextDifficulty(view.Difficulty, report),
		Flags:            report.Flags,
		SkillsDelta:      report.SkillsDelta,
	}

	o.logger.Debug("answer observed", "turn", turn.TurnID,
		"topic", report.DetectedTopic, "quality", report.AnswerQuality,
		"action", report.RecommendedNextAction)

	patch := core.Patch{
		Report:       &report,
		Turn:         &turn,
		ClearPending: true,
	}
	if report.DetectedTopic != "" {
		patch.CoverTopics = []string{report.DetectedTopic}
	}
	return patch, nil
}

// renderRationale composes a turn's internal thoughts from the observer's
// evaluation of the answer and the interviewer's rationale for the question
// that elicited it.
func renderRationale(report core.ObserverReport, questionRationale string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Observer]: topic=%s quality=%.1f action=%s",
		report.DetectedTopic, report.AnswerQuality, report.RecommendedNextAction)
	for _, flag := range flagNames(report.Flags) {
		b.WriteString(" flag=")
		b.WriteString(flag)
	}
	if report.FactCheckNotes != "" {
		b.WriteString(" notes=")
		b.WriteString(report.FactCheckNotes)
	}
	if questionRationale != "" {
		b.WriteString(" [Interviewer]: ")
		b.WriteString(questionRationale)
	}
	return b.String()
}

func flagNames(f core.ObserverFlags) []string {
	var names []string
	if f.OffTopic {
		names = append(names, "off_topic")
	}
	if f.Hallucination {
		names = append(names, "hallucination")
	}
	if f.Contradiction {
		names = append(names, "contradiction")
	}
	if f.RoleReversal {
		names = append(names, "role_reversal")
	}
	return names
}
