package core

import (
	"fmt"
	"sort"
	"strings"
)

// Decision is the hiring-style verdict in the final feedback.
type Decision struct {
	Grade           GradeTarget `json:"grade"`
	Recommendation  string      `json:"recommendation"`
	ConfidenceScore float64     `json:"confidence_score"`
}

// HardSkillsFeedback lists confirmed competencies and gaps with the answers
// the candidate should have given.
type HardSkillsFeedback struct {
	Confirmed              []string          `json:"confirmed,omitempty"`
	GapsWithCorrectAnswers map[string]string `json:"gaps_with_correct_answers,omitempty"`
}

// SoftSkillsFeedback covers communication qualities observed across turns.
type SoftSkillsFeedback struct {
	Clarity    string   `json:"clarity"`
	Honesty    string   `json:"honesty"`
	Engagement string   `json:"engagement"`
	Examples   []string `json:"examples,omitempty"`
}

// Roadmap suggests what to study before the next attempt.
type Roadmap struct {
	NextSteps []string `json:"next_steps,omitempty"`
	Links     []string `json:"links,omitempty"`
}

// FinalFeedback is the terminal session artifact. Exactly one is produced
// per session; no turns are processed after it exists.
type FinalFeedback struct {
	Decision   Decision           `json:"decision"`
	HardSkills HardSkillsFeedback `json:"hard_skills"`
	SoftSkills SoftSkillsFeedback `json:"soft_skills"`
	Roadmap    Roadmap            `json:"roadmap"`
}

// Summary renders the feedback as a single human-readable string for the
// transcript document.
func (f FinalFeedback) Summary() string {
	parts := []string{
		fmt.Sprintf("Grade: %s.", f.Decision.Grade),
		fmt.Sprintf("Recommendation: %s.", f.Decision.Recommendation),
		fmt.Sprintf("Confidence: %.2f.", f.Decision.ConfidenceScore),
	}
	if len(f.HardSkills.Confirmed) > 0 {
		parts = append(parts, "Confirmed: "+strings.Join(f.HardSkills.Confirmed, "; ")+".")
	}
	if len(f.HardSkills.GapsWithCorrectAnswers) > 0 {
		gaps := make([]string, 0, len(f.HardSkills.GapsWithCorrectAnswers))
		for gap := range f.HardSkills.GapsWithCorrectAnswers {
			gaps = append(gaps, gap)
		}
		sort.Strings(gaps)
		parts = append(parts, "Gaps: "+strings.Join(gaps, ", ")+".")
	}
	if len(f.SoftSkills.Examples) > 0 {
		parts = append(parts, "Examples: "+strings.Join(f.SoftSkills.Examples, "; ")+".")
	}
	if len(f.Roadmap.NextSteps) > 0 {
		parts = append(parts, "Next steps: "+strings.Join(f.Roadmap.NextSteps, "; ")+".")
	}
	return strings.Join(parts, " ")
}
