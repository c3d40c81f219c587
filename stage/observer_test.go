package stage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interviewcoach/collab"
	"interviewcoach/core"
	"interviewcoach/internal/testutil"
)

func TestObserver_CommitsTurn(t *testing.T) {
	report := testutil.NewReportBuilder().
		Topic("async").
		Quality(4.2).
		Delta("async", 0.5)
	mock := collab.NewMockClient(collab.MockResponse{Content: report.BuildJSON()})
	observer := NewObserver(mock, nil)

	sess := testutil.NewSessionBuilder().
		Pending("Explain event loops.").
		Answer("An event loop dispatches ready callbacks...").
		Build()

	patch, err := observer.Run(context.Background(), sess.Snapshot())
	require.NoError(t, err)
	require.NotNil(t, patch.Turn)
	require.NotNil(t, patch.Report)
	assert.True(t, patch.ClearPending)

	assert.Equal(t, 1, patch.Turn.TurnID)
	assert.Equal(t, "Explain event loops.", patch.Turn.Question)
	assert.Equal(t, "An event loop dispatches ready callbacks...", patch.Turn.Answer)
	assert.Equal(t, sess.Difficulty, patch.Turn.DifficultyBefore)
	assert.Equal(t, []string{"async"}, patch.CoverTopics)
	assert.Contains(t, patch.Turn.InternalThoughts, "[Observer]:")
	assert.Contains(t, patch.Turn.InternalThoughts, "[Interviewer]:")
}

func TestObserver_TurnIDFollowsHistory(t *testing.T) {
	mock := collab.NewMockClient(collab.MockResponse{Content: testutil.NewReportBuilder().BuildJSON()})
	observer := NewObserver(mock, nil)

	sess := testutil.NewSessionBuilder().
		Turns(3).
		Pending("q4").
		Answer("a4").
		Build()

	patch, err := observer.Run(context.Background(), sess.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, 4, patch.Turn.TurnID)
}

func TestObserver_HallucinationMarkerInRationale(t *testing.T) {
	report := testutil.NewReportBuilder().
		Quality(4.8).
		Flags(core.ObserverFlags{Hallucination: true})
	mock := collab.NewMockClient(collab.MockResponse{Content: report.BuildJSON()})
	observer := NewObserver(mock, nil)

	sess := testutil.NewSessionBuilder().Pending("q").Answer("a").Build()
	patch, err := observer.Run(context.Background(), sess.Snapshot())
	require.NoError(t, err)

	assert.Contains(t, patch.Turn.InternalThoughts, "hallucination")
	// High quality with a suppression flag must not adjust the tier.
	assert.Equal(t, sess.Difficulty, patch.Turn.DifficultyAfter)
}

func TestObserver_ClampsOutOfRangeReport(t *testing.T) {
	raw, err := json.Marshal(map[string]any{
		"detected_topic":             "async",
		"answer_quality":             9.5,
		"confidence":                 1.7,
		"flags":                      map[string]bool{},
		"recommended_next_action":    "ASK_DEEPER",
		"recommended_question_style": "open",
	})
	require.NoError(t, err)
	mock := collab.NewMockClient(collab.MockResponse{Content: raw})
	observer := NewObserver(mock, nil)

	sess := testutil.NewSessionBuilder().Pending("q").Answer("a").Build()
	patch, err := observer.Run(context.Background(), sess.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, 5.0, patch.Report.AnswerQuality)
	assert.Equal(t, 1.0, patch.Report.Confidence)
}

func TestObserver_UnknownActionIsFatal(t *testing.T) {
	raw, err := json.Marshal(map[string]any{
		"detected_topic":             "async",
		"answer_quality":             3.0,
		"confidence":                 0.9,
		"flags":                      map[string]bool{},
		"recommended_next_action":    "DO_SOMETHING_WEIRD",
		"recommended_question_style": "open",
	})
	require.NoError(t, err)
	mock := collab.NewMockClient(collab.MockResponse{Content: raw})
	observer := NewObserver(mock, nil)

	sess := testutil.NewSessionBuilder().Pending("q").Answer("a").Build()
	_, err = observer.Run(context.Background(), sess.Snapshot())
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func TestObserver_RequiresPendingAndAnswer(t *testing.T) {
	observer := NewObserver(collab.NewMockClient(), nil)

	noPending := testutil.NewSessionBuilder().Answer("a").Build()
	_, err := observer.Run(context.Background(), noPending.Snapshot())
	assert.True(t, core.IsValidation(err))

	noAnswer := testutil.NewSessionBuilder().Pending("q").Build()
	_, err = observer.Run(context.Background(), noAnswer.Snapshot())
	assert.True(t, core.IsValidation(err))
}

func TestObserver_TransientFailureLeavesNoPatch(t *testing.T) {
	mock := collab.NewMockClient(collab.MockResponse{Err: &collab.ErrRateLimit{}})
	observer := NewObserver(mock, nil)

	sess := testutil.NewSessionBuilder().Pending("q").Answer("a").Build()
	patch, err := observer.Run(context.Background(), sess.Snapshot())
	require.Error(t, err)
	assert.True(t, patch.Empty())
}
