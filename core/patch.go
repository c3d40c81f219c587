package core

import (
	"fmt"
	"time"
)

// Patch is the explicit state update a stage returns. All fields are
// optional; nil/zero means "leave unchanged". The field a stage may set is
// fixed by design:
//
//	planner      PlannedTopics
//	observer     Report, Turn, ClearPending, CoverTopics
//	skills       Skills
//	difficulty   Difficulty
//	tracker      TopicIndex, CoverTopics
//	experts      Experts
//	interviewer  Pending, AskQuestion, CoverTopics
//	finalizer    Final, Stop
//	router       Answer, Stop
type Patch struct {
	PlannedTopics []string

	TopicIndex *int
	Difficulty *int

	Report       *ObserverReport
	Turn         *TurnRecord
	ClearPending bool

	Skills *SkillMatrix

	AskQuestion string
	CoverTopics []string

	Experts map[ExpertRole]ExpertEvaluation

	Pending *PendingQuestion
	Answer  *string

	Stop       *bool
	StopReason string
	Final      *FinalFeedback
}

// Empty reports whether the patch carries no updates at all.
func (p Patch) Empty() bool {
	return p.PlannedTopics == nil && p.TopicIndex == nil && p.Difficulty == nil &&
		p.Report == nil && p.Turn == nil && !p.ClearPending && p.Skills == nil &&
		p.AskQuestion == "" && len(p.CoverTopics) == 0 && len(p.Experts) == 0 &&
		p.Pending == nil && p.Answer == nil && p.Stop == nil && p.Final == nil &&
		p.StopReason == ""
}

// Apply merges a patch into the session. It is the single merge step: it
// enforces the state invariants (contiguous turn IDs, non-decreasing topic
// index, clamped difficulty, exact-text question dedup) regardless of what
// a stage handed back.
func (s *Session) Apply(p Patch) error {
	if p.PlannedTopics != nil {
		s.PlannedTopics = append([]string(nil), p.PlannedTopics...)
		s.TopicIndex = 0
	}
	if p.TopicIndex != nil {
		idx := *p.TopicIndex
		if idx < s.TopicIndex {
			return fmt.Errorf("topic index may not decrease: %d -> %d", s.TopicIndex, idx)
		}
		if idx > len(s.PlannedTopics) {
			idx = len(s.PlannedTopics)
		}
		s.TopicIndex = idx
	}
	if p.Difficulty != nil {
		tier := *p.Difficulty
		if tier < LevelMin {
			tier = LevelMin
		}
		if tier > LevelMax {
			tier = LevelMax
		}
		s.Difficulty = tier
	}
	if p.Report != nil {
		rep := *p.Report
		s.LastReport = &rep
		s.Reports = append(s.Reports, rep)
	}
	if p.Turn != nil {
		want := len(s.Turns) + 1
		if p.Turn.TurnID != want {
			return fmt.Errorf("turn id %d breaks contiguity, want %d", p.Turn.TurnID, want)
		}
		s.Turns = append(s.Turns, *p.Turn)
	}
	if p.Skills != nil {
		s.Skills = p.Skills.Clone()
	}
	if p.AskQuestion != "" {
		s.addAskedQuestion(p.AskQuestion)
	}
	for _, topic := range p.CoverTopics {
		s.addCoveredTopic(topic)
	}
	if len(p.Experts) > 0 {
		if s.Experts == nil {
			s.Experts = map[ExpertRole]ExpertEvaluation{}
		}
		for role, eval := range p.Experts {
			s.Experts[role] = eval
		}
	}
	if p.ClearPending {
		s.Pending = nil
	}
	if p.Pending != nil {
		pending := *p.Pending
		s.Pending = &pending
	}
	if p.Answer != nil {
		s.LastAnswer = *p.Answer
	}
	if p.Stop != nil {
		s.StopRequested = *p.Stop
	}
	if p.StopReason != "" && s.StopReason == "" {
		s.StopReason = p.StopReason
	}
	if p.Final != nil {
		if s.Final != nil {
			return fmt.Errorf("final feedback already produced")
		}
		final := *p.Final
		s.Final = &final
	}
	s.Updated = time.Now().UTC()
	return nil
}

func (s *Session) addAskedQuestion(q string) {
	for _, existing := range s.AskedQuestions {
		if existing == q {
			return
		}
	}
	s.AskedQuestions = append(s.AskedQuestions, q)
}

func (s *Session) addCoveredTopic(topic string) {
	if topic == "" {
		return
	}
	for _, existing := range s.CoveredTopics {
		if existing == topic {
			return
		}
	}
	s.CoveredTopics = append(s.CoveredTopics, topic)
}
