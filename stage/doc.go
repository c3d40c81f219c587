// Package stage implements the interview pipeline stages: topic planner,
// observer normalizer, skill aggregator, difficulty engine, topic tracker,
// expert panel, question generator and finalization. Each stage reads a
// core.View and returns a core.Patch; the engine merges patches between
// stages so no stage ever observes a partially merged state.
package stage
