package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIntake() IntakeProfile {
	return IntakeProfile{
		ParticipantName:   "Alex Doe",
		Position:          "Backend Engineer",
		GradeTarget:       GradeMiddle,
		ExperienceSummary: "5 years",
	}
}

func TestNewSession_Defaults(t *testing.T) {
	sess := NewSession(testIntake())

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, DefaultDifficulty, sess.Difficulty)
	assert.Empty(t, sess.Turns)
	assert.Len(t, sess.Skills.Topics, len(DefaultSkillKeys))
	for _, st := range sess.Skills.Topics {
		assert.Equal(t, LevelMin, st.LevelEstimate)
	}
}

func TestApply_TurnContiguity(t *testing.T) {
	sess := NewSession(testIntake())

	err := sess.Apply(Patch{Turn: &TurnRecord{TurnID: 1, Question: "q1", Answer: "a1"}})
	require.NoError(t, err)
	err = sess.Apply(Patch{Turn: &TurnRecord{TurnID: 2, Question: "q2", Answer: "a2"}})
	require.NoError(t, err)

	// Gaps and repeats are both rejected.
	assert.Error(t, sess.Apply(Patch{Turn: &TurnRecord{TurnID: 4}}))
	assert.Error(t, sess.Apply(Patch{Turn: &TurnRecord{TurnID: 2}}))

	for i, turn := range sess.Turns {
		assert.Equal(t, i+1, turn.TurnID)
	}
}

func TestApply_TopicIndexNeverDecreases(t *testing.T) {
	sess := NewSession(testIntake())
	require.NoError(t, sess.Apply(Patch{PlannedTopics: []string{"a", "b", "c"}}))

	two := 2
	require.NoError(t, sess.Apply(Patch{TopicIndex: &two}))

	one := 1
	assert.Error(t, sess.Apply(Patch{TopicIndex: &one}))
	assert.Equal(t, 2, sess.TopicIndex)

	// Index caps at plan length instead of overshooting.
	nine := 9
	require.NoError(t, sess.Apply(Patch{TopicIndex: &nine}))
	assert.Equal(t, 3, sess.TopicIndex)
	assert.True(t, sess.PlanExhausted())
}

func TestApply_PlanResetsIndex(t *testing.T) {
	sess := NewSession(testIntake())
	require.NoError(t, sess.Apply(Patch{PlannedTopics: []string{"a", "b"}}))
	one := 1
	require.NoError(t, sess.Apply(Patch{TopicIndex: &one}))

	require.NoError(t, sess.Apply(Patch{PlannedTopics: []string{"x", "y", "z"}}))
	assert.Equal(t, 0, sess.TopicIndex)
	assert.Equal(t, "x", sess.CurrentTopic())
}

func TestApply_DifficultyClamped(t *testing.T) {
	sess := NewSession(testIntake())

	high := 99
	require.NoError(t, sess.Apply(Patch{Difficulty: &high}))
	assert.Equal(t, LevelMax, sess.Difficulty)

	low := -3
	require.NoError(t, sess.Apply(Patch{Difficulty: &low}))
	assert.Equal(t, LevelMin, sess.Difficulty)
}

func TestApply_AskedQuestionsExactDedup(t *testing.T) {
	sess := NewSession(testIntake())

	require.NoError(t, sess.Apply(Patch{AskQuestion: "What is a goroutine?"}))
	require.NoError(t, sess.Apply(Patch{AskQuestion: "What is a goroutine?"}))
	require.NoError(t, sess.Apply(Patch{AskQuestion: "What is a channel?"}))

	assert.Equal(t, []string{"What is a goroutine?", "What is a channel?"}, sess.AskedQuestions)
}

func TestApply_CoveredTopicsUnion(t *testing.T) {
	sess := NewSession(testIntake())

	require.NoError(t, sess.Apply(Patch{CoverTopics: []string{"async", "queues"}}))
	require.NoError(t, sess.Apply(Patch{CoverTopics: []string{"async", ""}}))

	assert.Equal(t, []string{"async", "queues"}, sess.CoveredTopics)
}

func TestApply_FinalOnlyOnce(t *testing.T) {
	sess := NewSession(testIntake())

	final := FinalFeedback{Decision: Decision{Grade: GradeMiddle, Recommendation: "hire"}}
	require.NoError(t, sess.Apply(Patch{Final: &final}))
	assert.Error(t, sess.Apply(Patch{Final: &final}))
}

func TestApply_StopReasonFirstWins(t *testing.T) {
	sess := NewSession(testIntake())

	stop := true
	require.NoError(t, sess.Apply(Patch{Stop: &stop, StopReason: "first"}))
	require.NoError(t, sess.Apply(Patch{StopReason: "second"}))
	assert.Equal(t, "first", sess.StopReason)
}

func TestApply_ExpertsOverwritePerRole(t *testing.T) {
	sess := NewSession(testIntake())

	require.NoError(t, sess.Apply(Patch{Experts: map[ExpertRole]ExpertEvaluation{
		ExpertQA: {Role: ExpertQA, Comment: "old"},
	}}))
	require.NoError(t, sess.Apply(Patch{Experts: map[ExpertRole]ExpertEvaluation{
		ExpertQA:       {Role: ExpertQA, Comment: "new"},
		ExpertTechLead: {Role: ExpertTechLead, Comment: "depth ok"},
	}}))

	assert.Equal(t, "new", sess.Experts[ExpertQA].Comment)
	assert.Len(t, sess.Experts, 2)
}

func TestSnapshot_IsolatedFromSession(t *testing.T) {
	sess := NewSession(testIntake())
	require.NoError(t, sess.Apply(Patch{PlannedTopics: []string{"a", "b"}}))

	view := sess.Snapshot()
	view.PlannedTopics[0] = "mutated"
	view.Skills.Topics["fundamentals"] = SkillTopicState{LevelEstimate: 5}

	assert.Equal(t, "a", sess.PlannedTopics[0])
	assert.Equal(t, LevelMin, sess.Skills.Topics["fundamentals"].LevelEstimate)
}

func TestObserverReport_Clamp(t *testing.T) {
	report := ObserverReport{
		AnswerQuality: 7.2,
		Confidence:    -0.4,
		SkillsDelta: map[string]float64{
			"async":  0.5,
			"queues": math.NaN(),
			"db":     math.Inf(1),
		},
	}
	report.Clamp()

	assert.Equal(t, 5.0, report.AnswerQuality)
	assert.Equal(t, 0.0, report.Confidence)
	assert.Equal(t, map[string]float64{"async": 0.5}, report.SkillsDelta)
}

func TestClampLevel(t *testing.T) {
	assert.Equal(t, 1, ClampLevel(-2.3))
	assert.Equal(t, 2, ClampLevel(2.4))
	assert.Equal(t, 3, ClampLevel(2.5))
	assert.Equal(t, 5, ClampLevel(11))
}

func TestIntakeProfile_Validate(t *testing.T) {
	assert.NoError(t, testIntake().Validate())

	bad := testIntake()
	bad.ParticipantName = "  "
	assert.Error(t, bad.Validate())

	bad = testIntake()
	bad.GradeTarget = "wizard"
	err := bad.Validate()
	assert.True(t, IsValidation(err))
}
