package core

import "strings"

// GradeTarget is the seniority grade the candidate is interviewing for.
// The ordering matters: final feedback may recommend a grade below the target.
type GradeTarget string

const (
	GradeIntern    GradeTarget = "intern"
	GradeJunior    GradeTarget = "junior"
	GradeMiddle    GradeTarget = "middle"
	GradeSenior    GradeTarget = "senior"
	GradeStaff     GradeTarget = "staff"
	GradePrincipal GradeTarget = "principal"
)

// ValidGrade reports whether g is one of the known grade targets.
func ValidGrade(g GradeTarget) bool {
	switch g {
	case GradeIntern, GradeJunior, GradeMiddle, GradeSenior, GradeStaff, GradePrincipal:
		return true
	}
	return false
}

// IntakeProfile is the immutable participant profile collected before the
// interview starts. It seeds the topic plan and the final report.
type IntakeProfile struct {
	ParticipantName   string      `json:"participant_name"`
	Position          string      `json:"position"`
	GradeTarget       GradeTarget `json:"grade_target"`
	ExperienceSummary string      `json:"experience_summary"`
}

// Validate checks the profile fields required to start a session.
func (p IntakeProfile) Validate() error {
	if strings.TrimSpace(p.ParticipantName) == "" {
		return &ValidationError{Stage: "intake", Reason: "participant name is empty"}
	}
	if strings.TrimSpace(p.Position) == "" {
		return &ValidationError{Stage: "intake", Reason: "position is empty"}
	}
	if !ValidGrade(p.GradeTarget) {
		return &ValidationError{Stage: "intake", Reason: "unknown grade target " + string(p.GradeTarget)}
	}
	return nil
}
