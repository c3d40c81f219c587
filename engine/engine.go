package engine

import (
	"context"
	"fmt"
	"strings"

	"interviewcoach/collab"
	"interviewcoach/core"
	"interviewcoach/logging"
	"interviewcoach/stage"
)

// Collaborators are the external model clients, one per concern. Any of
// them may be the same underlying client.
type Collaborators struct {
	Planner     collab.Client
	Observer    collab.Client
	Interviewer collab.Client
	Expert      collab.Client
	Reporter    collab.Client
}

// Config tunes engine behavior.
type Config struct {
	// MaxTurns caps the number of committed turns; reaching it raises the
	// stop flag. Zero means no limit.
	MaxTurns int
	// StopWords end the session when the candidate's message, case-folded
	// and trimmed, equals one of them. Defaults to DefaultStopWords.
	StopWords []string
	Logger    logging.Logger
}

// DefaultStopWords returns the stop commands recognized out of the box,
// in English and Russian.
func DefaultStopWords() []string {
	return []string{"stop", "стоп", "стоп интервью"}
}

// StepResult is the outcome of one engine step: either the next question to
// show the candidate, or the final feedback when the session ended.
type StepResult struct {
	Question string
	Feedback *core.FinalFeedback
	Done     bool
}

// Engine drives one session through the staged pipeline. It owns the merge
// loop: every stage receives a fresh snapshot and its patch is fully applied
// before the next stage runs.
type Engine struct {
	planner     *stage.Planner
	observer    *stage.Observer
	difficulty  *stage.Difficulty
	skills      *stage.Skills
	tracker     *stage.Tracker
	experts     *stage.Experts
	interviewer *stage.Interviewer
	reporter    *stage.Reporter

	cfg    Config
	logger logging.Logger
}

// New wires the pipeline stages around the given collaborators.
func New(clients Collaborators, cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = logging.NoOpLogger{}
	}
	if len(cfg.StopWords) == 0 {
		cfg.StopWords = DefaultStopWords()
	}
	return &Engine{
		planner:     stage.NewPlanner(clients.Planner, cfg.Logger),
		observer:    stage.NewObserver(clients.Observer, cfg.Logger),
		difficulty:  stage.NewDifficulty(cfg.Logger),
		skills:      stage.NewSkills(cfg.Logger),
		tracker:     stage.NewTracker(cfg.Logger),
		experts:     stage.NewExperts(clients.Expert, cfg.Logger),
		interviewer: stage.NewInterviewer(clients.Interviewer, cfg.Logger),
		reporter:    stage.NewReporter(clients.Reporter, cfg.Logger),
		cfg:         cfg,
		logger:      cfg.Logger,
	}
}

// Step advances the session by one turn. message is the candidate's newest
// input, empty on the opening step. Transient stage failures leave the
// session unchanged so the same step can be retried; a ValidationError is
// fatal for the session.
func (e *Engine) Step(ctx context.Context, sess *core.Session, message string) (StepResult, error) {
	if sess.Final != nil {
		return StepResult{}, core.ErrSessionClosed
	}

	if message != "" {
		answer := message
		patch := core.Patch{Answer: &answer}
		if e.isStopWord(message) {
			stop := true
			patch.Stop = &stop
			patch.StopReason = "stop requested by candidate"
		}
		if err := sess.Apply(patch); err != nil {
			return StepResult{}, err
		}
	}

	if len(sess.PlannedTopics) == 0 {
		if err := e.runAndApply(ctx, e.planner, sess); err != nil {
			return StepResult{}, err
		}
	}

	if sess.StopRequested {
		return e.finalize(ctx, sess)
	}

	// No pending question means nothing to observe yet: open the interview
	// by asking directly. With a pending question but no new message the
	// step is idempotent and re-serves the same question.
	if sess.Pending == nil {
		return e.ask(ctx, sess)
	}
	if strings.TrimSpace(message) == "" {
		return StepResult{Question: sess.Pending.Question}, nil
	}

	if err := e.runAndApply(ctx, e.observer, sess); err != nil {
		return StepResult{}, err
	}
	if err := e.runAndApply(ctx, e.skills, sess); err != nil {
		return StepResult{}, err
	}

	if e.cfg.MaxTurns > 0 && len(sess.Turns) >= e.cfg.MaxTurns {
		stop := true
		if err := sess.Apply(core.Patch{Stop: &stop, StopReason: "turn limit reached"}); err != nil {
			return StepResult{}, err
		}
	}
	if e.shouldFinalize(sess) {
		return e.finalize(ctx, sess)
	}

	if err := e.runAndApply(ctx, e.difficulty, sess); err != nil {
		return StepResult{}, err
	}
	if err := e.runAndApply(ctx, e.tracker, sess); err != nil {
		return StepResult{}, err
	}
	if err := e.runAndApply(ctx, e.experts, sess); err != nil {
		return StepResult{}, err
	}
	return e.ask(ctx, sess)
}

// ask runs the interviewer and returns the new pending question.
func (e *Engine) ask(ctx context.Context, sess *core.Session) (StepResult, error) {
	if err := e.runAndApply(ctx, e.interviewer, sess); err != nil {
		return StepResult{}, err
	}
	if sess.Pending == nil {
		return StepResult{}, fmt.Errorf("interviewer produced no question")
	}
	return StepResult{Question: sess.Pending.Question}, nil
}

// finalize runs the reporter, which never fails: it degrades to a fallback
// summary instead. Finalization is not cancellable by design; it runs to
// completion once started.
func (e *Engine) finalize(ctx context.Context, sess *core.Session) (StepResult, error) {
	if err := e.runAndApply(ctx, e.reporter, sess); err != nil {
		return StepResult{}, err
	}
	e.logger.Info("session finalized", "session", sess.ID,
		"turns", len(sess.Turns), "reason", sess.StopReason)
	return StepResult{Feedback: sess.Final, Done: true}, nil
}

// shouldFinalize implements the plan-exhaustion trigger: the plan has been
// fully traversed and the observer recommends wrapping up or moving past
// the last topic.
func (e *Engine) shouldFinalize(sess *core.Session) bool {
	if sess.StopRequested {
		return true
	}
	if !sess.PlanExhausted() || sess.LastReport == nil {
		return false
	}
	switch sess.LastReport.RecommendedNextAction {
	case core.ActionWrapUp, core.ActionChangeTopic:
		return true
	}
	return false
}

func (e *Engine) runAndApply(ctx context.Context, st stage.Stage, sess *core.Session) error {
	patch, err := st.Run(ctx, sess.Snapshot())
	if err != nil {
		return fmt.Errorf("stage %s: %w", st.Name(), err)
	}
	if patch.Empty() {
		return nil
	}
	if err := sess.Apply(patch); err != nil {
		return fmt.Errorf("merge %s patch: %w", st.Name(), err)
	}
	return nil
}

func (e *Engine) isStopWord(message string) bool {
	normalized := strings.ToLower(strings.TrimSpace(message))
	for _, word := range e.cfg.StopWords {
		if normalized == strings.ToLower(word) {
			return true
		}
	}
	return false
}
