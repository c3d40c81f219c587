package core

import "math"

// NextAction is the observer's routing recommendation for the upcoming turn.
type NextAction string

const (
	ActionAskDeeper           NextAction = "ASK_DEEPER"
	ActionAskEasier           NextAction = "ASK_EASIER"
	ActionChangeTopic         NextAction = "CHANGE_TOPIC"
	ActionHandleOffTopic      NextAction = "HANDLE_OFFTOPIC"
	ActionHandleHallucination NextAction = "HANDLE_HALLUCINATION"
	ActionHandleRoleReversal  NextAction = "HANDLE_ROLE_REVERSAL"
	ActionWrapUp              NextAction = "WRAP_UP"
)

// ValidAction reports whether a is one of the known next actions.
func ValidAction(a NextAction) bool {
	switch a {
	case ActionAskDeeper, ActionAskEasier, ActionChangeTopic, ActionHandleOffTopic,
		ActionHandleHallucination, ActionHandleRoleReversal, ActionWrapUp:
		return true
	}
	return false
}

// ObserverFlags mark conversational anomalies detected in the latest answer.
// Any of RoleReversal, OffTopic or Hallucination suppresses difficulty
// adjustment for the turn: these are conversational repairs, not competence
// evidence.
type ObserverFlags struct {
	OffTopic      bool `json:"off_topic"`
	Hallucination bool `json:"hallucination"`
	Contradiction bool `json:"contradiction"`
	RoleReversal  bool `json:"role_reversal"`
}

// Suppressing reports whether the flags disable difficulty adjustment.
func (f ObserverFlags) Suppressing() bool {
	return f.RoleReversal || f.OffTopic || f.Hallucination
}

// ObserverReport is the normalized evaluation of the candidate's latest
// answer. It is produced at the collaborator boundary from whatever wrapper
// shape the evaluation collaborator returned, already clamped and validated:
//   - AnswerQuality lies in [0, 5]
//   - Confidence lies in [0, 1]
//   - SkillsDelta contains only finite values
//   - RecommendedNextAction is a known NextAction
type ObserverReport struct {
	DetectedTopic            string             `json:"detected_topic"`
	AnswerQuality            float64            `json:"answer_quality"`
	Confidence               float64            `json:"confidence"`
	Flags                    ObserverFlags      `json:"flags"`
	RecommendedNextAction    NextAction         `json:"recommended_next_action"`
	RecommendedQuestionStyle string             `json:"recommended_question_style"`
	FactCheckNotes           string             `json:"fact_check_notes,omitempty"`
	SkillsDelta              map[string]float64 `json:"skills_delta,omitempty"`
}

// Clamp normalizes the numeric fields in place and drops non-finite skill
// deltas. A partially useful report is better than none, so bad delta
// entries are discarded silently instead of rejecting the whole report.
func (r *ObserverReport) Clamp() {
	r.AnswerQuality = clampFloat(r.AnswerQuality, 0, 5)
	r.Confidence = clampFloat(r.Confidence, 0, 1)
	for topic, delta := range r.SkillsDelta {
		if math.IsNaN(delta) || math.IsInf(delta, 0) {
			delete(r.SkillsDelta, topic)
		}
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(hi, math.Max(lo, v))
}
