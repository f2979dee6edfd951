package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebmoran/questforge/pkg/actor"
	"github.com/calebmoran/questforge/pkg/state"
)

func setupTestStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s := NewRedisStorage(mr.Addr(), t.TempDir(), logger)
	t.Cleanup(func() { _ = s.Close() })

	return s, mr
}

func testCampaign(t *testing.T) *state.CampaignState {
	t.Helper()
	c, err := actor.NewCharacterFromSpec(&actor.CharacterSpec{
		ID: "hero", Name: "Hero", HP: 50, MaxHP: 50, Attack: 10, Defense: 5,
	})
	require.NoError(t, err)
	return state.NewCampaign("test campaign", c)
}

func TestRedisStorage_SaveAndLoadCampaign(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()

	cs := testCampaign(t)
	cs.AddItem("healing_potion")
	cs.Phase = state.PhaseCombat
	cs.CurrentEnemy = &actor.Enemy{ID: "giant_rat", Name: "Giant Rat", Health: 8, MaxHealth: 8, Attack: 3, Defense: 1}

	require.NoError(t, s.SaveCampaign(ctx, cs.ID, cs))

	loaded, err := s.LoadCampaign(ctx, cs.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, cs.ID, loaded.ID)
	assert.Equal(t, state.PhaseCombat, loaded.Phase)
	assert.Equal(t, []string{"healing_potion"}, loaded.Inventory)
	require.NotNil(t, loaded.CurrentEnemy)
	assert.Equal(t, "giant_rat", loaded.CurrentEnemy.ID)
	require.NotNil(t, loaded.Character)
	assert.Equal(t, 50, loaded.Character.Actor.MaxHP())
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestRedisStorage_LoadMissingCampaign(t *testing.T) {
	s, _ := setupTestStorage(t)

	loaded, err := s.LoadCampaign(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_DeleteCampaign(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()

	cs := testCampaign(t)
	require.NoError(t, s.SaveCampaign(ctx, cs.ID, cs))
	require.NoError(t, s.AppendEvent(ctx, &state.GameEvent{
		CampaignID: cs.ID, EventNumber: 1, Type: state.EventDescriptive, Message: "begin", Timestamp: time.Now(),
	}))

	require.NoError(t, s.DeleteCampaign(ctx, cs.ID))

	loaded, err := s.LoadCampaign(ctx, cs.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	events, err := s.RecentEvents(ctx, cs.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRedisStorage_EventLogOrderAndLimit(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()
	id := uuid.New()

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.AppendEvent(ctx, &state.GameEvent{
			CampaignID:  id,
			EventNumber: i,
			Type:        state.EventDescriptive,
			Message:     "step",
			Timestamp:   time.Now(),
		}))
	}

	events, err := s.RecentEvents(ctx, id, 3)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Most recent entries, in append order
	assert.Equal(t, 3, events[0].EventNumber)
	assert.Equal(t, 5, events[2].EventNumber)
}

func TestRedisStorage_Locks(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()
	id := uuid.New()

	locked, err := s.AcquireLock(ctx, id, "worker-a", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, locked)

	// Second acquire fails while held
	locked, err = s.AcquireLock(ctx, id, "worker-b", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, locked)

	// Non-owner release is a no-op
	require.NoError(t, s.ReleaseLock(ctx, id, "worker-b"))
	locked, err = s.AcquireLock(ctx, id, "worker-b", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, locked)

	// Owner release frees the lock
	require.NoError(t, s.ReleaseLock(ctx, id, "worker-a"))
	locked, err = s.AcquireLock(ctx, id, "worker-b", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestRedisStorage_CatalogFromFilesystem(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	dataDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "items"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "enemies"), 0o755))

	itemJSON := `{"name":"Iron Sword","type":"weapon","attack":3}`
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "items", "iron_sword.json"), []byte(itemJSON), 0o644))
	potionJSON := `{"type":"potion","heal":10}`
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "items", "healing_potion.json"), []byte(potionJSON), 0o644))
	enemyJSON := `{"name":"Giant Rat","health":8,"attack":3,"defense":1,"tier":"easy","loot":["healing_potion"]}`
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "enemies", "giant_rat.json"), []byte(enemyJSON), 0o644))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s := NewRedisStorage(mr.Addr(), dataDir, logger)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	item, err := s.GetItem(ctx, "iron_sword")
	require.NoError(t, err)
	assert.Equal(t, "iron_sword", item.ID)
	assert.Equal(t, 3, item.Attack)

	// Name falls back to the display form of the ID
	potion, err := s.GetItem(ctx, "healing_potion")
	require.NoError(t, err)
	assert.Equal(t, "Healing Potion", potion.Name)

	_, err = s.GetItem(ctx, "excalibur")
	assert.ErrorIs(t, err, ErrNotFound)

	items, err := s.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "healing_potion", items[0].ID)
	assert.Equal(t, "iron_sword", items[1].ID)

	enemy, err := s.GetEnemy(ctx, "giant_rat")
	require.NoError(t, err)
	assert.Equal(t, 8, enemy.Health)
	assert.Equal(t, []string{"healing_potion"}, enemy.Loot)

	enemies, err := s.ListEnemies(ctx)
	require.NoError(t, err)
	require.Len(t, enemies, 1)
	assert.Equal(t, "giant_rat", enemies[0].ID)
}
