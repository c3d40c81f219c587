package stage

import (
	"context"
	"fmt"

	"interviewcoach/core"
	"interviewcoach/logging"
)

// Skills folds the last observer report into the skill matrix. Level
// estimates move by the reported delta and get clamped into the valid
// range; evidence is appended, never rewritten.
type Skills struct {
	logger logging.Logger
}

// NewSkills constructs the skill aggregation stage.
func NewSkills(logger logging.Logger) *Skills {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Skills{logger: logger}
}

// Name implements Stage.
func (s *Skills) Name() string { return "skills" }

// Run applies the report's skill deltas. It is a no-op without a report or
// when the report carries no deltas and no evidence material.
func (s *Skills) Run(_ context.Context, view core.View) (core.Patch, error) {
	report := view.LastReport
	if report == nil {
		return core.Patch{}, nil
	}

	turnID := len(view.Turns)
	matrix := view.Skills.Clone()
	changed := false

	if matrix.Topics == nil {
		matrix.Topics = map[string]core.SkillTopicState{}
	}
	for topic, delta := range report.SkillsDelta {
		st, known := matrix.Topics[topic]
		if known {
			st.LevelEstimate = core.ClampLevel(float64(st.LevelEstimate) + delta)
		} else {
			// First mention of a topic: the delta itself is the estimate.
			st = core.SkillTopicState{LevelEstimate: core.ClampLevel(delta)}
		}
		st.Evidence = append(st.Evidence, core.SkillEvidence{
			Topic:  topic,
			Notes:  fmt.Sprintf("delta %+.2f at quality %.1f", delta, report.AnswerQuality),
			TurnID: turnID,
		})
		switch {
		case delta > 0:
			st.Confirmed = appendUnique(st.Confirmed, report.DetectedTopic)
		case delta < 0:
			st.Gaps = appendUnique(st.Gaps, report.DetectedTopic)
		}
		matrix.Topics[topic] = st
		changed = true
	}

	if !changed {
		return core.Patch{}, nil
	}
	s.logger.Debug("skill matrix updated", "deltas", len(report.SkillsDelta), "turn", turnID)
	return core.Patch{Skills: &matrix}, nil
}

func appendUnique(list []string, item string) []string {
	if item == "" {
		return list
	}
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}
