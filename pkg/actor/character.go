package actor

import (
	"encoding/json"
	"fmt"

	"github.com/jwebster45206/d20"
)

// CharacterSpec is the serializable state of the player character.
// Invariant: 0 <= HP <= MaxHP; Attack and Defense are non-negative.
// Equipment maps slot name to the catalog ID of the occupying item.
type CharacterSpec struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	HP        int               `json:"hp"`
	MaxHP     int               `json:"max_hp"`
	Attack    int               `json:"attack"`
	Defense   int               `json:"defense"`
	Equipment map[string]string `json:"equipment,omitempty"`
}

// Character is the runtime representation of the player character:
// the persisted spec plus a d20.Actor rebuilt from it. The spec is the
// source of truth; every stat mutation goes through the spec and the
// actor is rebuilt to match.
type Character struct {
	Spec  *CharacterSpec
	Actor *d20.Actor
}

// NewCharacterFromSpec builds a Character, constructing its d20.Actor.
func NewCharacterFromSpec(spec *CharacterSpec) (*Character, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}
	if spec.MaxHP <= 0 {
		return nil, fmt.Errorf("character %s: max hp must be positive", spec.ID)
	}
	spec.clamp()

	c := &Character{Spec: spec}
	if err := c.rebuild(); err != nil {
		return nil, err
	}
	return c, nil
}

// rebuild reconstructs the d20.Actor from the current spec values.
func (c *Character) rebuild() error {
	a, err := d20.NewActor(c.Spec.ID).
		WithHP(c.Spec.MaxHP).
		WithAC(c.Spec.Defense).
		WithAttributes(map[string]int{
			"attack":  c.Spec.Attack,
			"defense": c.Spec.Defense,
		}).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build actor: %w", err)
	}
	if c.Spec.HP != c.Spec.MaxHP {
		if err := a.SetHP(c.Spec.HP); err != nil {
			return fmt.Errorf("failed to set HP: %w", err)
		}
	}
	c.Actor = a
	return nil
}

// clamp enforces the spec invariants in place.
func (s *CharacterSpec) clamp() {
	if s.Attack < 0 {
		s.Attack = 0
	}
	if s.Defense < 0 {
		s.Defense = 0
	}
	if s.MaxHP < 1 {
		s.MaxHP = 1
	}
	if s.HP < 0 {
		s.HP = 0
	}
	if s.HP > s.MaxHP {
		s.HP = s.MaxHP
	}
}

// IsDown returns true if the character's HP has reached 0.
func (c *Character) IsDown() bool {
	return c.Actor.IsKnockedOut()
}

// MarshalJSON serializes the character: static identity from the spec,
// runtime stats read back from the actor.
func (c *Character) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}

	out := CharacterSpec{
		ID:        c.Spec.ID,
		Name:      c.Spec.Name,
		HP:        c.Actor.HP(),
		MaxHP:     c.Actor.MaxHP(),
		Equipment: c.Spec.Equipment,
	}
	if v, ok := c.Actor.Attribute("attack"); ok {
		out.Attack = v
	}
	if v, ok := c.Actor.Attribute("defense"); ok {
		out.Defense = v
	}
	return json.Marshal(&out)
}

// UnmarshalJSON reconstructs the character and rebuilds its actor.
func (c *Character) UnmarshalJSON(data []byte) error {
	var spec CharacterSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("failed to unmarshal character spec: %w", err)
	}
	spec.clamp()
	c.Spec = &spec
	return c.rebuild()
}
