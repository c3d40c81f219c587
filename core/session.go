package core

import (
	"time"

	"github.com/google/uuid"
)

// DefaultDifficulty is the starting difficulty tier for new sessions.
const DefaultDifficulty = 3

// Session is the single mutable record threaded through all stages of one
// interview. The engine owns it exclusively: stages read a View and return a
// Patch, and Apply is the only writer.
type Session struct {
	ID     string        `json:"id"`
	Intake IntakeProfile `json:"intake"`

	PlannedTopics []string `json:"planned_topics,omitempty"`
	// TopicIndex points into PlannedTopics; len(PlannedTopics) means the
	// plan is exhausted. It never decreases.
	TopicIndex int `json:"current_topic_index"`

	Difficulty     int      `json:"difficulty"`
	CoveredTopics  []string `json:"topics_covered,omitempty"`
	AskedQuestions []string `json:"asked_questions,omitempty"`

	Skills  SkillMatrix      `json:"skill_matrix"`
	Turns   []TurnRecord     `json:"turns,omitempty"`
	Reports []ObserverReport `json:"observer_reports,omitempty"`

	LastReport *ObserverReport                 `json:"last_observer_report,omitempty"`
	Experts    map[ExpertRole]ExpertEvaluation `json:"expert_evaluations,omitempty"`
	Pending    *PendingQuestion                `json:"pending_question,omitempty"`
	LastAnswer string                          `json:"last_user_message,omitempty"`

	StopRequested bool           `json:"stop_requested"`
	StopReason    string         `json:"stop_reason,omitempty"`
	Final         *FinalFeedback `json:"final_feedback,omitempty"`

	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// NewSession creates a fresh session for the given intake with the default
// difficulty and a baseline skill matrix.
func NewSession(intake IntakeProfile) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:         uuid.NewString(),
		Intake:     intake,
		Difficulty: DefaultDifficulty,
		Skills:     NewSkillMatrix(),
		Experts:    map[ExpertRole]ExpertEvaluation{},
		Created:    now,
		Updated:    now,
	}
}

// PlanExhausted reports whether the topic plan has been fully traversed.
func (s *Session) PlanExhausted() bool {
	return len(s.PlannedTopics) > 0 && s.TopicIndex >= len(s.PlannedTopics)
}

// CurrentTopic returns the planned topic under the current index, or ""
// when no plan exists or the plan is exhausted.
func (s *Session) CurrentTopic() string {
	if s.TopicIndex < 0 || s.TopicIndex >= len(s.PlannedTopics) {
		return ""
	}
	return s.PlannedTopics[s.TopicIndex]
}

// View is the read-only snapshot of session state handed to stages. Slices
// and maps are copies, so a View can safely cross goroutine boundaries in
// the expert panel.
type View struct {
	SessionID string
	Intake    IntakeProfile

	PlannedTopics []string
	TopicIndex    int

	Difficulty     int
	CoveredTopics  []string
	AskedQuestions []string

	Skills  SkillMatrix
	Turns   []TurnRecord
	Reports []ObserverReport

	LastReport *ObserverReport
	Experts    map[ExpertRole]ExpertEvaluation
	Pending    *PendingQuestion
	LastAnswer string

	StopRequested bool
	StopReason    string
}

// CurrentTopic mirrors Session.CurrentTopic for stage code working on a View.
func (v View) CurrentTopic() string {
	if v.TopicIndex < 0 || v.TopicIndex >= len(v.PlannedTopics) {
		return ""
	}
	return v.PlannedTopics[v.TopicIndex]
}

// PlanExhausted mirrors Session.PlanExhausted.
func (v View) PlanExhausted() bool {
	return len(v.PlannedTopics) > 0 && v.TopicIndex >= len(v.PlannedTopics)
}

// Snapshot produces a View with defensively copied collections.
func (s *Session) Snapshot() View {
	v := View{
		SessionID:      s.ID,
		Intake:         s.Intake,
		PlannedTopics:  append([]string(nil), s.PlannedTopics...),
		TopicIndex:     s.TopicIndex,
		Difficulty:     s.Difficulty,
		CoveredTopics:  append([]string(nil), s.CoveredTopics...),
		AskedQuestions: append([]string(nil), s.AskedQuestions...),
		Skills:         s.Skills.Clone(),
		Turns:          append([]TurnRecord(nil), s.Turns...),
		Reports:        append([]ObserverReport(nil), s.Reports...),
		LastAnswer:     s.LastAnswer,
		StopRequested:  s.StopRequested,
		StopReason:     s.StopReason,
	}
	if s.LastReport != nil {
		rep := *s.LastReport
		v.LastReport = &rep
	}
	if s.Pending != nil {
		pending := *s.Pending
		v.Pending = &pending
	}
	if len(s.Experts) > 0 {
		v.Experts = make(map[ExpertRole]ExpertEvaluation, len(s.Experts))
		for role, eval := range s.Experts {
			v.Experts[role] = eval
		}
	}
	return v
}
