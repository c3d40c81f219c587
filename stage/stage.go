package stage

import (
	"context"
	"encoding/json"
	"fmt"

	"interviewcoach/core"
)

// Stage is one step of the interview pipeline.
type Stage interface {
	Name() string
	Run(ctx context.Context, view core.View) (core.Patch, error)
}

// recentTurnWindow caps how many committed turns are sent to collaborators
// as conversational context.
const recentTurnWindow = 5

func recentTurns(turns []core.TurnRecord) []core.TurnRecord {
	if len(turns) <= recentTurnWindow {
		return turns
	}
	return turns[len(turns)-recentTurnWindow:]
}

// jsonPayload renders a context document for a collaborator call.
func jsonPayload(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode collaborator payload: %w", err)
	}
	return string(raw), nil
}
