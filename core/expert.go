package core

// ExpertRole identifies an advisory panel member. Roles are compared and
// rendered in lexicographic order so merged commentary is deterministic.
type ExpertRole string

const (
	ExpertAnalyst  ExpertRole = "analyst"
	ExpertDesigner ExpertRole = "designer"
	ExpertQA       ExpertRole = "qa"
	ExpertTeamLead ExpertRole = "team_lead"
	ExpertTechLead ExpertRole = "tech_lead"
)

// ExpertEvaluation is one advisory comment produced by a panel role for the
// current turn. Question, when present, is a clarifying question the expert
// suggests asking.
type ExpertEvaluation struct {
	Role     ExpertRole `json:"role"`
	Comment  string     `json:"comment"`
	Question string     `json:"question,omitempty"`
}
