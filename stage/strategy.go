package stage

import (
	"sort"

	"interviewcoach/core"
)

// Strategy is the questioning approach for the next turn.
type Strategy string

const (
	StrategyDeepen                 Strategy = "deepen"
	StrategySimplify               Strategy = "simplify"
	StrategyChangeTopic            Strategy = "change_topic"
	StrategyReturnToTopic          Strategy = "return_to_topic"
	StrategyChallengeHallucination Strategy = "challenge_hallucination"
	StrategyReturnRoles            Strategy = "return_roles"
	StrategyWrapUp                 Strategy = "wrap_up"
	StrategyAskStandard            Strategy = "ask_standard"
)

// SelectStrategy maps the observer's flags and recommended action to a
// questioning strategy. It is a pure decision table; flags outrank the
// action field when they conflict, with role reversal the highest priority
// repair, then off-topic, then hallucination.
func SelectStrategy(report core.ObserverReport) Strategy {
	switch {
	case report.Flags.RoleReversal:
		return StrategyReturnRoles
	case report.Flags.OffTopic:
		return StrategyReturnToTopic
	case report.Flags.Hallucination:
		return StrategyChallengeHallucination
	}

	switch report.RecommendedNextAction {
	case core.ActionAskDeeper:
		return StrategyDeepen
	case core.ActionAskEasier:
		return StrategySimplify
	case core.ActionChangeTopic:
		return StrategyChangeTopic
	case core.ActionHandleOffTopic:
		return StrategyReturnToTopic
	case core.ActionHandleHallucination:
		return StrategyChallengeHallucination
	case core.ActionHandleRoleReversal:
		return StrategyReturnRoles
	case core.ActionWrapUp:
		return StrategyWrapUp
	default:
		return StrategyAskStandard
	}
}

// SelectExpertRoles picks the advisory roles to consult for a turn, derived
// from the observer's routing decision. The result is sorted so callers get
// a stable order. An empty result skips the panel entirely.
func SelectExpertRoles(report core.ObserverReport) []core.ExpertRole {
	roles := map[core.ExpertRole]struct{}{}

	if report.Flags.Hallucination || report.RecommendedNextAction == core.ActionHandleHallucination {
		roles[core.ExpertQA] = struct{}{}
		roles[core.ExpertTechLead] = struct{}{}
	}
	if report.Flags.RoleReversal || report.RecommendedNextAction == core.ActionHandleRoleReversal {
		roles[core.ExpertTeamLead] = struct{}{}
	}
	if report.Flags.Contradiction {
		roles[core.ExpertAnalyst] = struct{}{}
		roles[core.ExpertDesigner] = struct{}{}
	}
	if report.RecommendedNextAction == core.ActionWrapUp {
		roles[core.ExpertAnalyst] = struct{}{}
		roles[core.ExpertTechLead] = struct{}{}
	}

	out := make([]core.ExpertRole, 0, len(roles))
	for role := range roles {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
