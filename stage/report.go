package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"interviewcoach/collab"
	"interviewcoach/core"
	"interviewcoach/logging"
)

var finalFeedbackSchema = &collab.Schema{
	Name:        "final-feedback",
	Description: "Complete end-of-interview assessment of the candidate.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"decision": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"grade":            map[string]any{"type": "string"},
					"recommendation":   map[string]any{"type": "string"},
					"confidence_score": map[string]any{"type": "number"},
				},
				"required":             []string{"grade", "recommendation", "confidence_score"},
				"additionalProperties": false,
			},
			"hard_skills": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"confirmed": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"gaps_with_correct_answers": map[string]any{
						"type":                 "object",
						"additionalProperties": map[string]any{"type": "string"},
					},
				},
				"additionalProperties": false,
			},
			"soft_skills": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"clarity":    map[string]any{"type": "string"},
					"honesty":    map[string]any{"type": "string"},
					"engagement": map[string]any{"type": "string"},
					"examples":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required":             []string{"clarity", "honesty", "engagement"},
				"additionalProperties": false,
			},
			"roadmap": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"next_steps": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"links":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"additionalProperties": false,
			},
		},
		"required":             []string{"decision", "hard_skills", "soft_skills", "roadmap"},
		"additionalProperties": false,
	},
}

const reporterSystem = `You are the hiring committee reporter. Given the full
interview history, skill matrix and observer reports, produce the final
assessment: a grade decision, confirmed hard skills and gaps with the
answers that were expected, soft-skill observations and a study roadmap.`

// Reporter produces the terminal FinalFeedback. It runs exactly once per
// session; a reporter failure is recovered with a deterministic fallback
// summary citing the termination reason, so no session ends without final
// feedback.
type Reporter struct {
	client collab.Client
	logger logging.Logger
}

// NewReporter constructs the finalization stage.
func NewReporter(client collab.Client, logger logging.Logger) *Reporter {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Reporter{client: client, logger: logger}
}

// Name implements Stage.
func (r *Reporter) Name() string { return "reporter" }

// Run synthesizes final feedback. It never returns an error: reporter
// failures degrade to the fallback summary.
func (r *Reporter) Run(ctx context.Context, view core.View) (core.Patch, error) {
	stop := true
	reason := view.StopReason
	if reason == "" {
		reason = "topic plan exhausted"
	}

	final, err := r.invoke(ctx, view)
	if err != nil {
		r.logger.Warn("reporter failed, using fallback summary", "error", err)
		final = fallbackFeedback(view, reason)
	}

	return core.Patch{
		Final:      final,
		Stop:       &stop,
		StopReason: reason,
	}, nil
}

func (r *Reporter) invoke(ctx context.Context, view core.View) (*core.FinalFeedback, error) {
	payload, err := jsonPayload(map[string]any{
		"intake":           view.Intake,
		"skill_matrix":     view.Skills,
		"turns":            view.Turns,
		"observer_reports": view.Reports,
		"expert_notes":     RenderExpertNotes(view.Experts),
		"stop_reason":      view.StopReason,
	})
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Generate(ctx, collab.Request{
		System:    reporterSystem,
		Messages:  []collab.Message{{Role: collab.RoleUser, Content: payload}},
		Schema:    finalFeedbackSchema,
		MaxTokens: 4096,
	})
	if err != nil {
		return nil, err
	}
	var final core.FinalFeedback
	if err := json.Unmarshal(resp.Content, &final); err != nil {
		return nil, fmt.Errorf("undecodable final feedback: %w", err)
	}
	if final.Decision.Recommendation == "" {
		return nil, fmt.Errorf("final feedback carries no recommendation")
	}
	return &final, nil
}

// fallbackFeedback derives a deterministic assessment from the skill matrix
// alone: confirmed topics at or above the default tier, gaps below it.
func fallbackFeedback(view core.View, reason string) *core.FinalFeedback {
	var confirmed []string
	gaps := map[string]string{}
	for topic, st := range view.Skills.Topics {
		if st.LevelEstimate >= core.DefaultDifficulty {
			confirmed = append(confirmed, topic)
		} else if len(st.Evidence) > 0 {
			gaps[topic] = "insufficient evidence of competence, review this area"
		}
	}
	sort.Strings(confirmed)

	steps := make([]string, 0, len(gaps))
	for topic := range gaps {
		steps = append(steps, "study "+topic)
	}
	sort.Strings(steps)

	return &core.FinalFeedback{
		Decision: core.Decision{
			Grade:           view.Intake.GradeTarget,
			Recommendation:  fmt.Sprintf("Interview ended (%s) after %d turns; automated summary.", reason, len(view.Turns)),
			ConfidenceScore: 0.3,
		},
		HardSkills: core.HardSkillsFeedback{
			Confirmed:              confirmed,
			GapsWithCorrectAnswers: gaps,
		},
		SoftSkills: core.SoftSkillsFeedback{
			Clarity:    "not assessed",
			Honesty:    "not assessed",
			Engagement: "not assessed",
		},
		Roadmap: core.Roadmap{NextSteps: steps},
	}
}
