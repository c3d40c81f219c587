package stage

import (
	"context"

	"interviewcoach/core"
	"interviewcoach/logging"
)

// Promotion / demotion thresholds for answer quality.
const (
	promoteQuality = 4.0
	demoteQuality  = 2.0
)

// NextDifficulty returns the tier that follows current given a report.
// Suppression flags (role reversal, off-topic, hallucination) freeze the
// tier: those turns are conversational repairs, not competence evidence.
// Quality >= 4 promotes one tier, quality <= 2 demotes one tier, both
// clamped to [core.LevelMin, core.LevelMax]. The function is pure and
// idempotent for an unchanged input pair.
func NextDifficulty(current int, report core.ObserverReport) int {
	if report.Flags.Suppressing() {
		return current
	}
	switch {
	case report.AnswerQuality >= promoteQuality:
		if current < core.LevelMax {
			return current + 1
		}
	case report.AnswerQuality <= demoteQuality:
		if current > core.LevelMin {
			return current - 1
		}
	}
	return current
}

// Difficulty applies NextDifficulty to session state. It is the only writer
// of the difficulty tier.
type Difficulty struct {
	logger logging.Logger
}

// NewDifficulty constructs the difficulty stage.
func NewDifficulty(logger logging.Logger) *Difficulty {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Difficulty{logger: logger}
}

// Name implements Stage.
func (d *Difficulty) Name() string { return "difficulty" }

// Run adjusts the tier from the last observer report. No report or an
// unchanged tier yields an empty patch.
func (d *Difficulty) Run(_ context.Context, view core.View) (core.Patch, error) {
	if view.LastReport == nil {
		return core.Patch{}, nil
	}
	next := NextDifficulty(view.Difficulty, *view.LastReport)
	if next == view.Difficulty {
		return core.Patch{}, nil
	}
	d.logger.Debug("difficulty adjusted", "from", view.Difficulty, "to", next,
		"quality", view.LastReport.AnswerQuality)
	return core.Patch{Difficulty: &next}, nil
}
