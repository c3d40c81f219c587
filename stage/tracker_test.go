package stage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interviewcoach/core"
	"interviewcoach/internal/testutil"
)

func TestTracker_AdvancesOnChangeTopic(t *testing.T) {
	stage := NewTracker(nil)

	sess := testutil.NewSessionBuilder().
		TopicIndex(2).
		Report(testutil.NewReportBuilder().Action(core.ActionChangeTopic).Build()).
		Build()

	patch, err := stage.Run(context.Background(), sess.Snapshot())
	require.NoError(t, err)
	require.NotNil(t, patch.TopicIndex)
	assert.Equal(t, 3, *patch.TopicIndex)
	assert.Equal(t, []string{sess.PlannedTopics[2]}, patch.CoverTopics)
}

func TestTracker_AdvancesAtMostOnePerTurn(t *testing.T) {
	stage := NewTracker(nil)

	sess := testutil.NewSessionBuilder().
		Report(testutil.NewReportBuilder().Action(core.ActionChangeTopic).Build()).
		Build()

	patch, err := stage.Run(context.Background(), sess.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, sess.TopicIndex+1, *patch.TopicIndex)
}

func TestTracker_HoldsWithoutAdvanceSignal(t *testing.T) {
	stage := NewTracker(nil)

	for _, action := range []core.NextAction{
		core.ActionAskDeeper, core.ActionAskEasier,
		core.ActionHandleOffTopic, core.ActionHandleHallucination,
		core.ActionHandleRoleReversal,
	} {
		sess := testutil.NewSessionBuilder().
			Report(testutil.NewReportBuilder().Action(action).Build()).
			Build()
		patch, err := stage.Run(context.Background(), sess.Snapshot())
		require.NoError(t, err)
		assert.True(t, patch.Empty(), "action %s must not advance", action)
	}
}

func TestTracker_NoOpWhenExhaustedOrUnplanned(t *testing.T) {
	stage := NewTracker(nil)

	exhausted := testutil.NewSessionBuilder().
		TopicIndex(len(testutil.PlanTopics())).
		Report(testutil.NewReportBuilder().Action(core.ActionChangeTopic).Build()).
		Build()
	patch, err := stage.Run(context.Background(), exhausted.Snapshot())
	require.NoError(t, err)
	assert.True(t, patch.Empty())

	unplanned := core.NewSession(testutil.Intake())
	unplanned.LastReport = &core.ObserverReport{RecommendedNextAction: core.ActionChangeTopic}
	patch, err = stage.Run(context.Background(), unplanned.Snapshot())
	require.NoError(t, err)
	assert.True(t, patch.Empty())
}
