package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"interviewcoach/core"
	"interviewcoach/internal/testutil"
)

func TestSelectStrategy_ActionTable(t *testing.T) {
	tests := []struct {
		action core.NextAction
		want   Strategy
	}{
		{core.ActionAskDeeper, StrategyDeepen},
		{core.ActionAskEasier, StrategySimplify},
		{core.ActionChangeTopic, StrategyChangeTopic},
		{core.ActionHandleOffTopic, StrategyReturnToTopic},
		{core.ActionHandleHallucination, StrategyChallengeHallucination},
		{core.ActionHandleRoleReversal, StrategyReturnRoles},
		{core.ActionWrapUp, StrategyWrapUp},
		{core.NextAction("SOMETHING_ELSE"), StrategyAskStandard},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			report := testutil.NewReportBuilder().Action(tt.action).Build()
			assert.Equal(t, tt.want, SelectStrategy(report))
		})
	}
}

func TestSelectStrategy_FlagsOutrankAction(t *testing.T) {
	report := testutil.NewReportBuilder().
		Action(core.ActionAskDeeper).
		Flags(core.ObserverFlags{RoleReversal: true}).
		Build()
	assert.Equal(t, StrategyReturnRoles, SelectStrategy(report))

	report = testutil.NewReportBuilder().
		Action(core.ActionChangeTopic).
		Flags(core.ObserverFlags{Hallucination: true}).
		Build()
	assert.Equal(t, StrategyChallengeHallucination, SelectStrategy(report))

	report = testutil.NewReportBuilder().
		Action(core.ActionWrapUp).
		Flags(core.ObserverFlags{OffTopic: true}).
		Build()
	assert.Equal(t, StrategyReturnToTopic, SelectStrategy(report))

	// A drifting answer gets steered back on topic before any made-up
	// claims are challenged.
	report = testutil.NewReportBuilder().
		Action(core.ActionAskDeeper).
		Flags(core.ObserverFlags{OffTopic: true, Hallucination: true}).
		Build()
	assert.Equal(t, StrategyReturnToTopic, SelectStrategy(report))
}

func TestSelectStrategy_RoleReversalHighestPriority(t *testing.T) {
	report := testutil.NewReportBuilder().
		Flags(core.ObserverFlags{RoleReversal: true, Hallucination: true, OffTopic: true}).
		Build()
	assert.Equal(t, StrategyReturnRoles, SelectStrategy(report))
}

func TestSelectExpertRoles(t *testing.T) {
	report := testutil.NewReportBuilder().
		Flags(core.ObserverFlags{Hallucination: true}).
		Build()
	assert.Equal(t, []core.ExpertRole{core.ExpertQA, core.ExpertTechLead}, SelectExpertRoles(report))

	report = testutil.NewReportBuilder().Action(core.ActionWrapUp).Build()
	assert.Equal(t, []core.ExpertRole{core.ExpertAnalyst, core.ExpertTechLead}, SelectExpertRoles(report))

	report = testutil.NewReportBuilder().
		Flags(core.ObserverFlags{Contradiction: true}).
		Build()
	assert.Equal(t, []core.ExpertRole{core.ExpertAnalyst, core.ExpertDesigner}, SelectExpertRoles(report))

	report = testutil.NewReportBuilder().Build()
	assert.Empty(t, SelectExpertRoles(report))
}

func TestSelectExpertRoles_SortedAndDeduplicated(t *testing.T) {
	report := testutil.NewReportBuilder().
		Action(core.ActionHandleHallucination).
		Flags(core.ObserverFlags{Hallucination: true, RoleReversal: true, Contradiction: true}).
		Build()
	roles := SelectExpertRoles(report)
	assert.Equal(t, []core.ExpertRole{
		core.ExpertAnalyst,
		core.ExpertDesigner,
		core.ExpertQA,
		core.ExpertTeamLead,
		core.ExpertTechLead,
	}, roles)
}
