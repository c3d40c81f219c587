package stage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interviewcoach/collab"
	"interviewcoach/core"
	"interviewcoach/internal/testutil"
)

func TestInterviewer_AcceptsFreshQuestion(t *testing.T) {
	mock := collab.NewMockClient(collab.MockResponse{
		Content: testutil.QuestionJSON("Explain how goroutines are scheduled.", "warm-up"),
	})
	stage := NewInterviewer(mock, nil)

	sess := testutil.NewSessionBuilder().Build()
	patch, err := stage.Run(context.Background(), sess.Snapshot())
	require.NoError(t, err)

	require.NotNil(t, patch.Pending)
	assert.Equal(t, "Explain how goroutines are scheduled.", patch.Pending.Question)
	assert.Equal(t, patch.Pending.Question, patch.AskQuestion)
	assert.Equal(t, sess.Difficulty, patch.Pending.Difficulty)
	assert.Contains(t, patch.Pending.Rationale, "strategy=ask_standard")
	assert.Equal(t, 1, mock.CallCount())
}

func TestInterviewer_RewritesDuplicates(t *testing.T) {
	// First reply repeats an already-asked question verbatim; the rewrite
	// must yield a question that is not a near-duplicate of it.
	mock := collab.NewMockClient(
		collab.MockResponse{Content: testutil.QuestionJSON("What is a goroutine?", "r1")},
		collab.MockResponse{Content: testutil.QuestionJSON("How does the scheduler preempt long-running work?", "r2")},
	)
	stage := NewInterviewer(mock, nil)

	sess := testutil.NewSessionBuilder().Build()
	require.NoError(t, sess.Apply(core.Patch{AskQuestion: "What is a goroutine?"}))

	patch, err := stage.Run(context.Background(), sess.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, "How does the scheduler preempt long-running work?", patch.Pending.Question)
	assert.False(t, IsDuplicate(patch.Pending.Question, []string{"What is a goroutine?"}))
	assert.Equal(t, 2, mock.CallCount())

	// The rewrite request carries the explicit avoid instruction.
	second := mock.Calls[1].Messages[0].Content
	assert.Contains(t, second, "rewrite_instruction")
}

func TestInterviewer_FallbackAfterRewriteBudget(t *testing.T) {
	dup := testutil.QuestionJSON("What is a goroutine?", "r")
	mock := collab.NewMockClient(
		collab.MockResponse{Content: dup},
		collab.MockResponse{Content: dup},
		collab.MockResponse{Content: dup},
	)
	stage := NewInterviewer(mock, nil)

	sess := testutil.NewSessionBuilder().Build()
	require.NoError(t, sess.Apply(core.Patch{AskQuestion: "What is a goroutine?"}))

	patch, err := stage.Run(context.Background(), sess.Snapshot())
	require.NoError(t, err)

	// Budget is the initial attempt plus two rewrites.
	assert.Equal(t, 3, mock.CallCount())
	assert.Contains(t, patch.Pending.Question, sess.PlannedTopics[0])
	assert.Contains(t, patch.Pending.Rationale, "fallback")
}

func TestInterviewer_GenericPromptWhenAllTopicsCovered(t *testing.T) {
	sess := testutil.NewSessionBuilder().Build()
	require.NoError(t, sess.Apply(core.Patch{CoverTopics: testutil.PlanTopics()}))

	question, _ := fallbackQuestion(sess.Snapshot())
	assert.Equal(t, "Is there anything you would like to add to your previous answer?", question)
}

func TestInterviewer_StrategyFollowsReport(t *testing.T) {
	mock := collab.NewMockClient(collab.MockResponse{
		Content: testutil.QuestionJSON("Could you simplify that for a junior colleague?", "r"),
	})
	stage := NewInterviewer(mock, nil)

	sess := testutil.NewSessionBuilder().
		Report(testutil.NewReportBuilder().Action(core.ActionAskEasier).Build()).
		Build()

	patch, err := stage.Run(context.Background(), sess.Snapshot())
	require.NoError(t, err)
	assert.Contains(t, patch.Pending.Rationale, "strategy=simplify")
	assert.Contains(t, mock.Calls[0].Messages[0].Content, `"strategy":"simplify"`)
}

func TestInterviewer_CollaboratorErrorPropagates(t *testing.T) {
	mock := collab.NewMockClient(collab.MockResponse{Err: &collab.ErrUnavailable{}})
	stage := NewInterviewer(mock, nil)

	sess := testutil.NewSessionBuilder().Build()
	_, err := stage.Run(context.Background(), sess.Snapshot())
	require.Error(t, err)
}
