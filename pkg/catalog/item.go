package catalog

import "fmt"

// ItemType classifies a catalog item.
type ItemType string

const (
	ItemPotion ItemType = "potion"
	ItemWeapon ItemType = "weapon"
	ItemArmor  ItemType = "armor"
	ItemShield ItemType = "shield"
)

// Equipment slot names. One slot holds at most one item.
const (
	SlotWeapon = "weapon"
	SlotArmor  = "armor"
	SlotShield = "shield"
)

// Item is immutable reference data loaded from the catalog.
// Stat fields are the item's contribution while equipped; Heal only
// applies to potions.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        ItemType `json:"type"`
	Description string   `json:"description,omitempty"`
	Attack      int      `json:"attack,omitempty"`
	Defense     int      `json:"defense,omitempty"`
	HPBonus     int      `json:"hp_bonus,omitempty"`
	Heal        int      `json:"heal,omitempty"`
}

// IsEquippable reports whether the item occupies an equipment slot.
func (i *Item) IsEquippable() bool {
	switch i.Type {
	case ItemWeapon, ItemArmor, ItemShield:
		return true
	}
	return false
}

// Slot returns the equipment slot this item occupies, or "" for
// non-equippable items.
func (i *Item) Slot() string {
	switch i.Type {
	case ItemWeapon:
		return SlotWeapon
	case ItemArmor:
		return SlotArmor
	case ItemShield:
		return SlotShield
	}
	return ""
}

// Validate checks the item's reference data for catalog loading.
func (i *Item) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("item id is required")
	}
	if i.Name == "" {
		return fmt.Errorf("item %s: name is required", i.ID)
	}
	switch i.Type {
	case ItemPotion, ItemWeapon, ItemArmor, ItemShield:
	default:
		return fmt.Errorf("item %s: unknown type %q", i.ID, i.Type)
	}
	if i.Type == ItemPotion && i.Heal <= 0 {
		return fmt.Errorf("item %s: potion must have a positive heal amount", i.ID)
	}
	return nil
}
