package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItem_Slot(t *testing.T) {
	tests := []struct {
		itemType   ItemType
		wantSlot   string
		equippable bool
	}{
		{ItemWeapon, SlotWeapon, true},
		{ItemArmor, SlotArmor, true},
		{ItemShield, SlotShield, true},
		{ItemPotion, "", false},
	}

	for _, tt := range tests {
		item := &Item{ID: "x", Name: "X", Type: tt.itemType, Heal: 5}
		assert.Equal(t, tt.wantSlot, item.Slot())
		assert.Equal(t, tt.equippable, item.IsEquippable())
	}
}

func TestItem_Validate(t *testing.T) {
	valid := &Item{ID: "iron_sword", Name: "Iron Sword", Type: ItemWeapon, Attack: 3}
	assert.NoError(t, valid.Validate())

	missingID := &Item{Name: "Iron Sword", Type: ItemWeapon}
	assert.Error(t, missingID.Validate())

	badType := &Item{ID: "x", Name: "X", Type: "scroll"}
	assert.Error(t, badType.Validate())

	flatPotion := &Item{ID: "p", Name: "P", Type: ItemPotion}
	assert.Error(t, flatPotion.Validate())
}

func TestEnemy_Validate(t *testing.T) {
	valid := &Enemy{ID: "giant_rat", Name: "Giant Rat", Health: 8, Attack: 3, Defense: 1, Tier: TierEasy}
	assert.NoError(t, valid.Validate())

	noHealth := &Enemy{ID: "ghost", Name: "Ghost", Attack: 2}
	assert.Error(t, noHealth.Validate())

	badTier := &Enemy{ID: "x", Name: "X", Health: 5, Tier: "nightmare"}
	assert.Error(t, badTier.Validate())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Rusty Short Sword", DisplayName("rusty_short_sword"))
	assert.Equal(t, "Potion", DisplayName("potion"))
	assert.Equal(t, "", DisplayName(""))
}
