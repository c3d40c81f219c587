package stage

import (
	"context"

	"interviewcoach/core"
	"interviewcoach/logging"
)

// Tracker advances the topic index through the plan. The index never
// decreases and moves at most one position per turn, on an explicit
// CHANGE_TOPIC recommendation or a WRAP_UP past the last planned topic.
type Tracker struct {
	logger logging.Logger
}

// NewTracker constructs the topic tracking stage.
func NewTracker(logger logging.Logger) *Tracker {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Tracker{logger: logger}
}

// Name implements Stage.
func (t *Tracker) Name() string { return "tracker" }

// Run advances the index when the last report asks for it. The topic being
// left is recorded as covered.
func (t *Tracker) Run(_ context.Context, view core.View) (core.Patch, error) {
	report := view.LastReport
	if report == nil || len(view.PlannedTopics) == 0 || view.PlanExhausted() {
		return core.Patch{}, nil
	}

	switch report.RecommendedNextAction {
	case core.ActionChangeTopic, core.ActionWrapUp:
	default:
		return core.Patch{}, nil
	}

	leaving := view.CurrentTopic()
	next := view.TopicIndex + 1
	t.logger.Debug("topic advanced", "from", leaving, "index", next)

	patch := core.Patch{TopicIndex: &next}
	if leaving != "" {
		patch.CoverTopics = []string{leaving}
	}
	return patch, nil
}
