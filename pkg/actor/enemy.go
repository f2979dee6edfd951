package actor

import "github.com/calebmoran/questforge/pkg/catalog"

// Enemy is the mutable runtime copy of a catalog enemy, scoped to one
// active encounter. Only Health changes during combat; the template
// fields are carried for the response payload.
type Enemy struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Health    int      `json:"health"`
	MaxHealth int      `json:"max_health"`
	Attack    int      `json:"attack"`
	Defense   int      `json:"defense"`
	Sprite    string   `json:"sprite,omitempty"`
	Tier      string   `json:"tier,omitempty"`
	Loot      []string `json:"loot,omitempty"`
}

// SpawnEnemy instantiates a runtime enemy from a catalog template.
func SpawnEnemy(t *catalog.Enemy) *Enemy {
	if t == nil {
		return nil
	}
	return &Enemy{
		ID:        t.ID,
		Name:      t.Name,
		Health:    t.Health,
		MaxHealth: t.Health,
		Attack:    t.Attack,
		Defense:   t.Defense,
		Sprite:    t.Sprite,
		Tier:      t.Tier,
		Loot:      t.Loot,
	}
}

// TakeDamage reduces the enemy's health by n. Health cannot go below 0.
func (e *Enemy) TakeDamage(n int) {
	if n <= 0 {
		return
	}
	e.Health -= n
	if e.Health < 0 {
		e.Health = 0
	}
}

// IsDefeated returns true if the enemy's health is 0 or less.
func (e *Enemy) IsDefeated() bool {
	return e.Health <= 0
}
