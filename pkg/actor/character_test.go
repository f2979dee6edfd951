package actor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebmoran/questforge/pkg/catalog"
)

var enemyTemplate = catalog.Enemy{
	ID:      "giant_rat",
	Name:    "Giant Rat",
	Health:  8,
	Attack:  3,
	Defense: 1,
	Tier:    catalog.TierEasy,
}

func TestNewCharacterFromSpec(t *testing.T) {
	c, err := NewCharacterFromSpec(testSpec())
	require.NoError(t, err)
	require.NotNil(t, c.Actor)

	assert.Equal(t, 50, c.Actor.HP())
	assert.Equal(t, 50, c.Actor.MaxHP())
	assert.Equal(t, 5, c.Actor.AC())

	atk, ok := c.Actor.Attribute("attack")
	require.True(t, ok)
	assert.Equal(t, 10, atk)
}

func TestNewCharacterFromSpec_NilSpec(t *testing.T) {
	_, err := NewCharacterFromSpec(nil)
	assert.Error(t, err)
}

func TestNewCharacterFromSpec_ClampsNegativeStats(t *testing.T) {
	spec := testSpec()
	spec.Attack = -3
	spec.HP = 80

	c, err := NewCharacterFromSpec(spec)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Spec.Attack)
	assert.Equal(t, 50, c.Spec.HP)
}

func TestCharacter_JSONRoundTrip(t *testing.T) {
	c, err := NewCharacterFromSpec(testSpec())
	require.NoError(t, err)
	require.NoError(t, c.AdjustHP(-12))

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var decoded Character
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, c.Spec.ID, decoded.Spec.ID)
	assert.Equal(t, 38, decoded.Spec.HP)
	assert.Equal(t, 38, decoded.Actor.HP())
	assert.Equal(t, 50, decoded.Actor.MaxHP())
}

func TestCharacter_LethalDamageSyncsActor(t *testing.T) {
	c, err := NewCharacterFromSpec(testSpec())
	require.NoError(t, err)

	dealt, err := c.ApplyDamage(100, 0)
	require.NoError(t, err)
	assert.Equal(t, 100, dealt)

	assert.Equal(t, 0, c.Spec.HP)
	assert.Equal(t, 0, c.Actor.HP())
	assert.True(t, c.IsDown())
}

func TestCharacter_MarshalReflectsActorStats(t *testing.T) {
	c, err := NewCharacterFromSpec(testSpec())
	require.NoError(t, err)
	require.NoError(t, c.ApplyDelta(StatDelta{Attack: 4}))
	_, err = c.ApplyDamage(20, 0)
	require.NoError(t, err)

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var out CharacterSpec
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, 30, out.HP)
	assert.Equal(t, 50, out.MaxHP)
	assert.Equal(t, 14, out.Attack)
}

func TestSpawnEnemy(t *testing.T) {
	e := SpawnEnemy(&enemyTemplate)
	require.NotNil(t, e)

	assert.Equal(t, "giant_rat", e.ID)
	assert.Equal(t, 8, e.Health)
	assert.Equal(t, 8, e.MaxHealth)

	e.TakeDamage(3)
	assert.Equal(t, 5, e.Health)
	assert.False(t, e.IsDefeated())

	// Template is untouched
	assert.Equal(t, 8, enemyTemplate.Health)

	e.TakeDamage(100)
	assert.Equal(t, 0, e.Health)
	assert.True(t, e.IsDefeated())
}
