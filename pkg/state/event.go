package state

import (
	"time"

	"github.com/google/uuid"
)

// EventType categorizes a generated event or log entry.
type EventType string

const (
	EventDescriptive   EventType = "Descriptive"
	EventEnvironmental EventType = "Environmental"
	EventCombat        EventType = "Combat"
	EventItemDrop      EventType = "Item_Drop"
)

// KnownEventType reports whether t is one of the defined event types.
// Oracle output is untrusted, so resolvers check before applying effects.
func KnownEventType(t EventType) bool {
	switch t {
	case EventDescriptive, EventEnvironmental, EventCombat, EventItemDrop:
		return true
	}
	return false
}

// EventEffects are the raw stat deltas an event carries before dice
// tiering scales them.
type EventEffects struct {
	Health  int `json:"health"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
}

// IsZero reports whether the effects would change nothing.
func (e EventEffects) IsZero() bool {
	return e.Health == 0 && e.Attack == 0 && e.Defense == 0
}

// PendingEvent is a generated event awaiting the player's choice.
// Lifecycle: set when the event is introduced, cleared when resolved or
// the campaign resets.
type PendingEvent struct {
	Event   string       `json:"event"`
	Type    EventType    `json:"type"`
	ItemID  string       `json:"item_id,omitempty"`
	Effects EventEffects `json:"effects"`
}

// GameEvent is one immutable, ordered entry in a campaign's append-only
// log. EventNumber increases monotonically per campaign.
type GameEvent struct {
	CampaignID  uuid.UUID     `json:"campaign_id"`
	EventNumber int           `json:"event_number"`
	Type        EventType     `json:"type"`
	Message     string        `json:"message"`
	Effects     *EventEffects `json:"effects,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
}
