package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"interviewcoach/collab"
	"interviewcoach/core"
	"interviewcoach/logging"
)

var expertEvaluationSchema = &collab.Schema{
	Name:        "expert-evaluation",
	Description: "Advisory commentary on the candidate's latest answer.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"comment": map[string]any{"type": "string"},
			"question": map[string]any{
				"type":        "string",
				"description": "Optional clarifying question worth asking the candidate.",
			},
		},
		"required":             []string{"comment"},
		"additionalProperties": false,
	},
}

var expertSystems = map[core.ExpertRole]string{
	core.ExpertAnalyst: `You are a business analyst on an interview panel.
Comment briefly on how well the candidate's latest answer connects technical
choices to product requirements.`,
	core.ExpertDesigner: `You are a system designer on an interview panel.
Comment briefly on the architectural soundness and trade-off awareness in
the candidate's latest answer.`,
	core.ExpertQA: `You are a QA engineer on an interview panel. Comment
briefly on correctness risks, unverified claims and testability in the
candidate's latest answer.`,
	core.ExpertTeamLead: `You are a team lead on an interview panel. Comment
briefly on the communication style and collaboration signals in the
candidate's latest answer.`,
	core.ExpertTechLead: `You are a tech lead on an interview panel. Comment
briefly on the technical depth and design judgment in the candidate's
latest answer.`,
}

// Experts fans the latest answer out to a set of advisory roles in
// parallel. Each role writes only its own key of the evaluation map, so the
// merge is order-independent. Individual role failures are absorbed: the
// panel is advisory and must never block the interview.
type Experts struct {
	client collab.Client
	logger logging.Logger
}

// NewExperts constructs the expert panel stage.
func NewExperts(client collab.Client, logger logging.Logger) *Experts {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Experts{client: client, logger: logger}
}

// Name implements Stage.
func (e *Experts) Name() string { return "experts" }

// Run consults the roles selected from the last observer report. With no
// report or no selected roles it is a no-op.
func (e *Experts) Run(ctx context.Context, view core.View) (core.Patch, error) {
	if view.LastReport == nil || len(view.Turns) == 0 {
		return core.Patch{}, nil
	}
	roles := SelectExpertRoles(*view.LastReport)
	if len(roles) == 0 {
		return core.Patch{}, nil
	}

	last := view.Turns[len(view.Turns)-1]
	payload, err := jsonPayload(map[string]any{
		"answer":        last.Answer,
		"question":      last.Question,
		"current_topic": view.CurrentTopic(),
	})
	if err != nil {
		return core.Patch{}, err
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		merged = make(map[core.ExpertRole]core.ExpertEvaluation, len(roles))
	)
	for _, role := range roles {
		wg.Add(1)
		go func(role core.ExpertRole) {
			defer wg.Done()
			eval, err := e.consult(ctx, role, payload)
			if err != nil {
				e.logger.Warn("expert consultation failed", "role", role, "error", err)
				return
			}
			mu.Lock()
			merged[role] = eval
			mu.Unlock()
		}(role)
	}
	wg.Wait()

	if len(merged) == 0 {
		return core.Patch{}, nil
	}
	return core.Patch{Experts: merged}, nil
}

func (e *Experts) consult(ctx context.Context, role core.ExpertRole, payload string) (core.ExpertEvaluation, error) {
	system, ok := expertSystems[role]
	if !ok {
		return core.ExpertEvaluation{}, fmt.Errorf("no prompt configured for expert role %s", role)
	}
	resp, err := e.client.Generate(ctx, collab.Request{
		System:   system,
		Messages: []collab.Message{{Role: collab.RoleUser, Content: payload}},
		Schema:   expertEvaluationSchema,
	})
	if err != nil {
		return core.ExpertEvaluation{}, err
	}
	var decoded struct {
		Comment  string `json:"comment"`
		Question string `json:"question"`
	}
	if err := json.Unmarshal(resp.Content, &decoded); err != nil {
		return core.ExpertEvaluation{}, fmt.Errorf("undecodable evaluation: %w", err)
	}
	return core.ExpertEvaluation{Role: role, Comment: decoded.Comment, Question: decoded.Question}, nil
}

// RenderExpertNotes flattens the evaluation map into one string with roles
// in lexicographic order, for inclusion in internal rationale text.
func RenderExpertNotes(evals map[core.ExpertRole]core.ExpertEvaluation) string {
	if len(evals) == 0 {
		return ""
	}
	roles := make([]core.ExpertRole, 0, len(evals))
	for role := range evals {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })

	var b strings.Builder
	for i, role := range roles {
		if i > 0 {
			b.WriteString(" ")
		}
		eval := evals[role]
		fmt.Fprintf(&b, "[%s]: %s", role, eval.Comment)
		if eval.Question != "" {
			fmt.Fprintf(&b, " (suggests: %s)", eval.Question)
		}
	}
	return b.String()
}
