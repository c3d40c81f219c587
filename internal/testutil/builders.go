// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing core model objects (reports, sessions,
// canned collaborator responses). These helpers are intentionally minimal
// and not intended for production usage.
package testutil

import (
	"encoding/json"
	"fmt"

	"interviewcoach/core"
)

// ReportBuilder provides a fluent helper for constructing observer reports
// in tests. Chain only the parts you need; sensible defaults are applied.
//
//	rep := NewReportBuilder().Quality(4.5).Action(core.ActionAskDeeper).Build()
type ReportBuilder struct {
	report core.ObserverReport
}

// NewReportBuilder creates a builder with a neutral mid-quality report.
func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{report: core.ObserverReport{
		DetectedTopic:         "fundamentals",
		AnswerQuality:         3.0,
		Confidence:            0.8,
		RecommendedNextAction: core.ActionAskDeeper,
	}}
}

// Topic sets the detected topic (chainable).
func (b *ReportBuilder) Topic(t string) *ReportBuilder { b.report.DetectedTopic = t; return b }

// Quality sets the answer quality score (chainable).
func (b *ReportBuilder) Quality(q float64) *ReportBuilder { b.report.AnswerQuality = q; return b }

// Confidence sets the observer confidence (chainable).
func (b *ReportBuilder) Confidence(c float64) *ReportBuilder { b.report.Confidence = c; return b }

// Action sets the recommended next action (chainable).
func (b *ReportBuilder) Action(a core.NextAction) *ReportBuilder {
	b.report.RecommendedNextAction = a
	return b
}

// Flags sets the anomaly flags (chainable).
func (b *ReportBuilder) Flags(f core.ObserverFlags) *ReportBuilder { b.report.Flags = f; return b }

// Delta adds one skill delta entry (chainable).
func (b *ReportBuilder) Delta(topic string, delta float64) *ReportBuilder {
	if b.report.SkillsDelta == nil {
		b.report.SkillsDelta = map[string]float64{}
	}
	b.report.SkillsDelta[topic] = delta
	return b
}

// Build returns the assembled report.
func (b *ReportBuilder) Build() core.ObserverReport { return b.report }

// BuildJSON returns the report serialized for use as a canned collaborator
// response.
func (b *ReportBuilder) BuildJSON() json.RawMessage {
	raw, err := json.Marshal(b.report)
	if err != nil {
		panic(err)
	}
	return raw
}

// Intake returns a valid intake profile for tests.
func Intake() core.IntakeProfile {
	return core.IntakeProfile{
		ParticipantName:   "Alex Doe",
		Position:          "Backend Engineer",
		GradeTarget:       core.GradeMiddle,
		ExperienceSummary: "5 years of backend development",
	}
}

// SessionBuilder provides a fluent helper for constructing sessions in a
// specific mid-interview state.
type SessionBuilder struct {
	sess *core.Session
}

// NewSessionBuilder creates a builder around a fresh session with a valid
// intake and a ten-topic plan.
func NewSessionBuilder() *SessionBuilder {
	sess := core.NewSession(Intake())
	sess.PlannedTopics = PlanTopics()
	return &SessionBuilder{sess: sess}
}

// Difficulty sets the current tier (chainable).
func (b *SessionBuilder) Difficulty(tier int) *SessionBuilder {
	b.sess.Difficulty = tier
	return b
}

// TopicIndex sets the current plan position (chainable).
func (b *SessionBuilder) TopicIndex(idx int) *SessionBuilder {
	b.sess.TopicIndex = idx
	return b
}

// Pending sets a pending question (chainable).
func (b *SessionBuilder) Pending(question string) *SessionBuilder {
	b.sess.Pending = &core.PendingQuestion{
		Question:   question,
		Rationale:  "strategy=ask_standard test",
		Topic:      b.sess.CurrentTopic(),
		Difficulty: b.sess.Difficulty,
	}
	return b
}

// Answer sets the candidate's latest message (chainable).
func (b *SessionBuilder) Answer(message string) *SessionBuilder {
	b.sess.LastAnswer = message
	return b
}

// Report sets the last observer report (chainable).
func (b *SessionBuilder) Report(rep core.ObserverReport) *SessionBuilder {
	b.sess.LastReport = &rep
	return b
}

// Turns appends n committed placeholder turns with contiguous IDs
// (chainable).
func (b *SessionBuilder) Turns(n int) *SessionBuilder {
	for i := 0; i < n; i++ {
		id := len(b.sess.Turns) + 1
		b.sess.Turns = append(b.sess.Turns, core.TurnRecord{
			TurnID:   id,
			Question: fmt.Sprintf("question %d", id),
			Answer:   fmt.Sprintf("answer %d", id),
		})
	}
	return b
}

// Build returns the assembled session.
func (b *SessionBuilder) Build() *core.Session { return b.sess }

// PlanTopics returns a deterministic ten-topic plan.
func PlanTopics() []string {
	return []string{
		"fundamentals", "async", "db_modeling", "queues", "observability",
		"architecture", "testing", "llm_integration", "networking", "security",
	}
}

// QuestionJSON renders an interviewer-style structured response.
func QuestionJSON(question, rationale string) json.RawMessage {
	raw, err := json.Marshal(map[string]string{"question": question, "rationale": rationale})
	if err != nil {
		panic(err)
	}
	return raw
}

// PlanJSON renders a planner-style structured response with the given
// topics.
func PlanJSON(topics []string) json.RawMessage {
	raw, err := json.Marshal(map[string]any{"topics": topics})
	if err != nil {
		panic(err)
	}
	return raw
}
