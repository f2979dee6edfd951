package services

import (
	"context"

	"github.com/calebmoran/questforge/pkg/state"
)

// EventContext carries everything the oracle needs to write a narrative
// beat: the character as it stands, the campaign flavor, and optionally
// a forced event type and the player action that triggered the beat.
type EventContext struct {
	CharacterName string
	HP            int
	MaxHP         int
	Attack        int
	Defense       int
	Scenario      string
	ForcedType    state.EventType
	Trigger       string
}

// NarrativeOracle generates story content for a campaign. Implementations
// must be safe for concurrent use.
type NarrativeOracle interface {
	// InitModel prepares the named model for use. No-op for hosted APIs.
	InitModel(ctx context.Context, modelName string) error

	// GenerateEvent produces a structured pending event: narrative text,
	// event type, optional stat effects and item reference.
	GenerateEvent(ctx context.Context, ec EventContext) (*state.PendingEvent, error)

	// Narrate produces flavor text with no mechanical payload.
	Narrate(ctx context.Context, ec EventContext) (string, error)

	// Ping checks that the oracle backend is reachable.
	Ping(ctx context.Context) error
}
