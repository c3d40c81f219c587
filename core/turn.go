package core

// TurnRecord is one committed question/answer exchange. Records are
// append-only and immutable once committed; IDs are contiguous starting
// at 1.
type TurnRecord struct {
	TurnID           int                `json:"turn_id"`
	Question         string             `json:"agent_visible_message"`
	Answer           string             `json:"user_message"`
	InternalThoughts string             `json:"internal_thoughts"`
	Topic            string             `json:"topic,omitempty"`
	DifficultyBefore int                `json:"difficulty_before,omitempty"`
	DifficultyAfter  int                `json:"difficulty_after,omitempty"`
	Flags            ObserverFlags      `json:"flags"`
	SkillsDelta      map[string]float64 `json:"skills_delta,omitempty"`
}

// PendingQuestion is a question that has been asked but whose answer has not
// been observed yet. It is committed into a TurnRecord by the observer stage
// together with the next candidate message.
type PendingQuestion struct {
	Question   string `json:"question"`
	Rationale  string `json:"rationale"` // internal, never shown to the candidate
	Topic      string `json:"topic,omitempty"`
	Difficulty int    `json:"difficulty"`
}
