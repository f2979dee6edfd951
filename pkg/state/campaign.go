package state

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/calebmoran/questforge/pkg/action"
	"github.com/calebmoran/questforge/pkg/actor"
)

// Phase is the campaign's current position in the gameplay state machine.
// Exactly one phase is active per campaign.
type Phase string

const (
	PhaseExploration Phase = "exploration"
	PhaseEventChoice Phase = "event_choice"
	PhaseItemChoice  Phase = "item_choice"
	PhaseCombat      Phase = "combat"
)

// phaseActions is the transition validity table: which action types each
// phase accepts. Anything else is rejected without mutation.
var phaseActions = map[Phase][]action.Type{
	PhaseExploration: {action.Continue, action.Search},
	PhaseEventChoice: {action.AcceptEvent, action.RejectEvent},
	PhaseItemChoice:  {action.PickupItem, action.RejectItem, action.EquipItem},
	PhaseCombat:      {action.Attack, action.UseItem, action.Flee},
}

// Allows reports whether the phase accepts the given action type.
func (p Phase) Allows(t action.Type) bool {
	return slices.Contains(phaseActions[p], t)
}

// CampaignState is the persisted record for one campaign. PendingEvent
// and CurrentEnemy bridge one response to the player's next action; they
// live on the record (not in process memory) so state survives restarts
// and concurrent requests observe a consistent view.
type CampaignState struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name,omitempty"`
	Phase     Phase            `json:"phase"`
	Character *actor.Character `json:"character"`
	Inventory []string         `json:"inventory,omitempty"`

	PendingEvent *PendingEvent `json:"pending_event,omitempty"`
	CurrentEnemy *actor.Enemy  `json:"current_enemy,omitempty"`

	EventCounter int  `json:"event_counter"`
	IsEnded      bool `json:"is_ended,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCampaign creates a campaign in the exploration phase.
func NewCampaign(name string, c *actor.Character) *CampaignState {
	return &CampaignState{
		ID:        uuid.New(),
		Name:      name,
		Phase:     PhaseExploration,
		Character: c,
		Inventory: make([]string, 0),
		CreatedAt: time.Now(),
	}
}

// NextEventNumber increments and returns the monotonic event counter.
func (cs *CampaignState) NextEventNumber() int {
	cs.EventCounter++
	return cs.EventCounter
}

// HasItem reports whether the inventory contains the item ID.
func (cs *CampaignState) HasItem(id string) bool {
	return slices.Contains(cs.Inventory, id)
}

// AddItem appends an item ID to the inventory.
func (cs *CampaignState) AddItem(id string) {
	cs.Inventory = append(cs.Inventory, id)
}

// RemoveItem removes the first occurrence of the item ID from the
// inventory. Returns false if it was not held.
func (cs *CampaignState) RemoveItem(id string) bool {
	for i, held := range cs.Inventory {
		if held == id {
			cs.Inventory = append(cs.Inventory[:i], cs.Inventory[i+1:]...)
			return true
		}
	}
	return false
}
