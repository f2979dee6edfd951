package catalog

import "fmt"

// Enemy difficulty tiers.
const (
	TierEasy   = "easy"
	TierMedium = "medium"
	TierHard   = "hard"
)

// Enemy is an immutable catalog template. Combat instantiates a mutable
// runtime copy (actor.Enemy) from it; the template itself is never mutated.
type Enemy struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Health      int      `json:"health"`
	Attack      int      `json:"attack"`
	Defense     int      `json:"defense"`
	Sprite      string   `json:"sprite,omitempty"`
	Tier        string   `json:"tier,omitempty"`
	Loot        []string `json:"loot,omitempty"` // item IDs granted on defeat
}

// Validate checks the enemy's reference data for catalog loading.
func (e *Enemy) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("enemy id is required")
	}
	if e.Name == "" {
		return fmt.Errorf("enemy %s: name is required", e.ID)
	}
	if e.Health <= 0 {
		return fmt.Errorf("enemy %s: health must be positive", e.ID)
	}
	if e.Attack < 0 || e.Defense < 0 {
		return fmt.Errorf("enemy %s: attack and defense must be non-negative", e.ID)
	}
	switch e.Tier {
	case "", TierEasy, TierMedium, TierHard:
	default:
		return fmt.Errorf("enemy %s: unknown tier %q", e.ID, e.Tier)
	}
	return nil
}
