package core

import "math"

// Difficulty bounds. The difficulty tier and every skill level estimate are
// integers clamped to this range.
const (
	LevelMin = 1
	LevelMax = 5
)

// DefaultSkillKeys is the baseline skill vocabulary used to zero-initialize
// a session's skill matrix. Topics outside this vocabulary are added lazily
// when the observer reports a delta for them.
var DefaultSkillKeys = []string{
	"fundamentals",
	"async",
	"db_modeling",
	"queues",
	"observability",
	"architecture",
	"testing",
	"llm_integration",
}

// SkillEvidence is one piece of evidence backing a topic's level estimate.
type SkillEvidence struct {
	Topic  string `json:"topic"`
	Notes  string `json:"notes"`
	TurnID int    `json:"turn_id"`
}

// SkillTopicState aggregates the competence belief for one topic. Confirmed,
// Gaps and Evidence are append-only; LevelEstimate always lies in
// [LevelMin, LevelMax].
type SkillTopicState struct {
	LevelEstimate int             `json:"level_estimate"`
	Confirmed     []string        `json:"confirmed,omitempty"`
	Gaps          []string        `json:"gaps,omitempty"`
	Evidence      []SkillEvidence `json:"evidence,omitempty"`
}

// SkillMatrix maps topic name to its aggregated state. Only the skill
// aggregator stage writes it; it is never reset mid-session.
type SkillMatrix struct {
	Topics map[string]SkillTopicState `json:"topics"`
}

// NewSkillMatrix returns a matrix seeded with the baseline vocabulary at the
// minimum level.
func NewSkillMatrix() SkillMatrix {
	topics := make(map[string]SkillTopicState, len(DefaultSkillKeys))
	for _, key := range DefaultSkillKeys {
		topics[key] = SkillTopicState{LevelEstimate: LevelMin}
	}
	return SkillMatrix{Topics: topics}
}

// Clone returns a deep copy safe for divergent mutation.
func (m SkillMatrix) Clone() SkillMatrix {
	out := SkillMatrix{Topics: make(map[string]SkillTopicState, len(m.Topics))}
	for topic, st := range m.Topics {
		cp := st
		cp.Confirmed = append([]string(nil), st.Confirmed...)
		cp.Gaps = append([]string(nil), st.Gaps...)
		cp.Evidence = append([]SkillEvidence(nil), st.Evidence...)
		out.Topics[topic] = cp
	}
	return out
}

// ClampLevel rounds v to the nearest integer and clamps it into
// [LevelMin, LevelMax].
func ClampLevel(v float64) int {
	rounded := int(math.Round(v))
	if rounded < LevelMin {
		return LevelMin
	}
	if rounded > LevelMax {
		return LevelMax
	}
	return rounded
}
