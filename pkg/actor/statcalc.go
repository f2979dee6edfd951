package actor

import (
	"fmt"

	"github.com/calebmoran/questforge/pkg/catalog"
)

// Damage computes clamped damage: max(0, raw - defense).
func Damage(raw, defense int) int {
	if defense < 0 {
		defense = 0
	}
	d := raw - defense
	if d < 0 {
		return 0
	}
	return d
}

// StatDelta is the difference in stat contributions between two items.
type StatDelta struct {
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	HPBonus int `json:"hp_bonus"`
}

// IsZero reports whether applying the delta would change nothing.
func (d StatDelta) IsZero() bool {
	return d.Attack == 0 && d.Defense == 0 && d.HPBonus == 0
}

// EquipDelta computes the stat change from replacing old with new in a
// slot. old may be nil (empty slot). Equipping the same item twice
// yields a zero delta, which makes repeated equips idempotent.
func EquipDelta(old, new *catalog.Item) StatDelta {
	d := StatDelta{}
	if new != nil {
		d.Attack += new.Attack
		d.Defense += new.Defense
		d.HPBonus += new.HPBonus
	}
	if old != nil {
		d.Attack -= old.Attack
		d.Defense -= old.Defense
		d.HPBonus -= old.HPBonus
	}
	return d
}

// ApplyDamage reduces HP by max(0, raw - defense) and returns the damage
// dealt. HP never drops below 0.
func (s *CharacterSpec) ApplyDamage(raw, defense int) int {
	dealt := Damage(raw, defense)
	s.HP -= dealt
	s.clamp()
	return dealt
}

// ApplyHeal raises HP by amount, clamped to MaxHP, and returns the new HP.
// Negative amounts are ignored.
func (s *CharacterSpec) ApplyHeal(amount int) int {
	if amount > 0 {
		s.HP += amount
	}
	s.clamp()
	return s.HP
}

// AdjustHP applies a signed health effect directly, bypassing defense.
// Used for event effects where the narrative already decided the outcome.
// A boon that would push HP past MaxHP raises MaxHP with it.
func (s *CharacterSpec) AdjustHP(delta int) {
	s.HP += delta
	if s.HP > s.MaxHP {
		s.MaxHP = s.HP
	}
	s.clamp()
}

// ApplyDelta applies an equip stat delta. Attack and defense clamp at 0,
// MaxHP stays positive, and HP clamps into the new [0, MaxHP] range.
func (s *CharacterSpec) ApplyDelta(d StatDelta) {
	s.Attack += d.Attack
	s.Defense += d.Defense
	s.MaxHP += d.HPBonus
	s.clamp()
}

// ApplyDamage mutates the character through its spec and rebuilds the actor.
func (c *Character) ApplyDamage(raw, defense int) (int, error) {
	dealt := c.Spec.ApplyDamage(raw, defense)
	return dealt, c.rebuild()
}

// Heal raises the character's HP, clamped to MaxHP.
func (c *Character) Heal(amount int) error {
	c.Spec.ApplyHeal(amount)
	return c.rebuild()
}

// AdjustHP applies a signed health effect directly.
func (c *Character) AdjustHP(delta int) error {
	c.Spec.AdjustHP(delta)
	return c.rebuild()
}

// ApplyDelta shifts the character's stats and rebuilds the actor.
func (c *Character) ApplyDelta(d StatDelta) error {
	c.Spec.ApplyDelta(d)
	return c.rebuild()
}

// Equip places item into its slot, removing and returning the previous
// occupant's ID. The stat delta between the items is applied to the
// character. Equipping the item already in the slot is a no-op.
func (c *Character) Equip(item *catalog.Item, old *catalog.Item) (string, error) {
	if item == nil || !item.IsEquippable() {
		return "", fmt.Errorf("item is not equippable")
	}
	slot := item.Slot()
	if c.Spec.Equipment == nil {
		c.Spec.Equipment = make(map[string]string)
	}
	prev := c.Spec.Equipment[slot]

	c.Spec.ApplyDelta(EquipDelta(old, item))
	c.Spec.Equipment[slot] = item.ID

	return prev, c.rebuild()
}
