package action

import (
	"fmt"

	"github.com/google/uuid"
)

// Type identifies what the player wants to do this turn.
type Type string

const (
	Continue    Type = "continue"
	Search      Type = "search"
	Attack      Type = "attack"
	UseItem     Type = "use_item"
	PickupItem  Type = "pickup_item"
	RejectItem  Type = "reject_item"
	EquipItem   Type = "equip_item"
	AcceptEvent Type = "accept_event"
	RejectEvent Type = "reject_event"
	Flee        Type = "flee"
)

var known = map[Type]bool{
	Continue:    true,
	Search:      true,
	Attack:      true,
	UseItem:     true,
	PickupItem:  true,
	RejectItem:  true,
	EquipItem:   true,
	AcceptEvent: true,
	RejectEvent: true,
	Flee:        true,
}

// Known reports whether t is a recognized action type.
func Known(t Type) bool {
	return known[t]
}

// Data is the free-form payload accompanying an action: the item a
// use/equip action targets, or a scripted dice roll for integration tests.
type Data struct {
	ItemID   string `json:"item_id,omitempty"`
	DiceRoll *int   `json:"dice_roll,omitempty"`
}

// PlayerAction is one player turn request against a campaign.
type PlayerAction struct {
	CampaignID uuid.UUID `json:"campaign_id"`
	Type       Type      `json:"action"`
	Data       Data      `json:"data,omitempty"`
}

func (pa *PlayerAction) Validate() error {
	if pa.CampaignID == uuid.Nil {
		return fmt.Errorf("campaign_id is required")
	}
	if pa.Type == "" {
		return fmt.Errorf("action is required")
	}
	if !Known(pa.Type) {
		return fmt.Errorf("unknown action type %q", pa.Type)
	}
	return nil
}
