package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/calebmoran/questforge/pkg/catalog"
	"github.com/calebmoran/questforge/pkg/state"
)

// MockStorage is an in-memory implementation of Storage for testing.
// Campaigns round-trip through JSON so tests exercise the same
// serialization path as Redis.
type MockStorage struct {
	mu        sync.RWMutex
	campaigns map[uuid.UUID][]byte
	events    map[uuid.UUID][]state.GameEvent
	items     map[string]catalog.Item
	enemies   map[string]catalog.Enemy
	locks     map[uuid.UUID]string

	// Optional error injection
	SaveError   error
	LoadError   error
	AppendError error
	PingError   error
}

var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates an empty in-memory storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		campaigns: make(map[uuid.UUID][]byte),
		events:    make(map[uuid.UUID][]state.GameEvent),
		items:     make(map[string]catalog.Item),
		enemies:   make(map[string]catalog.Enemy),
		locks:     make(map[uuid.UUID]string),
	}
}

// RegisterItem seeds a catalog item.
func (m *MockStorage) RegisterItem(item catalog.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
}

// RegisterEnemy seeds a catalog enemy.
func (m *MockStorage) RegisterEnemy(enemy catalog.Enemy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enemies[enemy.ID] = enemy
}

func (m *MockStorage) Ping(ctx context.Context) error {
	return m.PingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveCampaign(ctx context.Context, id uuid.UUID, cs *state.CampaignState) error {
	if m.SaveError != nil {
		return m.SaveError
	}

	cs.UpdatedAt = time.Now()
	data, err := json.Marshal(cs)
	if err != nil {
		return fmt.Errorf("failed to marshal campaign: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns[id] = data
	return nil
}

func (m *MockStorage) LoadCampaign(ctx context.Context, id uuid.UUID) (*state.CampaignState, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}

	m.mu.RLock()
	data, ok := m.campaigns[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var cs state.CampaignState
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal campaign: %w", err)
	}
	return &cs, nil
}

func (m *MockStorage) DeleteCampaign(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.campaigns, id)
	delete(m.events, id)
	delete(m.locks, id)
	return nil
}

func (m *MockStorage) AppendEvent(ctx context.Context, ev *state.GameEvent) error {
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[ev.CampaignID] = append(m.events[ev.CampaignID], *ev)
	return nil
}

func (m *MockStorage) RecentEvents(ctx context.Context, id uuid.UUID, limit int) ([]state.GameEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.events[id]
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]state.GameEvent, len(all))
	copy(out, all)
	return out, nil
}

func (m *MockStorage) GetItem(ctx context.Context, id string) (*catalog.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return &item, nil
}

func (m *MockStorage) ListItems(ctx context.Context) ([]catalog.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]catalog.Item, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *MockStorage) GetEnemy(ctx context.Context, id string) (*catalog.Enemy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	enemy, ok := m.enemies[id]
	if !ok {
		return nil, fmt.Errorf("enemy %s: %w", id, ErrNotFound)
	}
	return &enemy, nil
}

func (m *MockStorage) ListEnemies(ctx context.Context) ([]catalog.Enemy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	enemies := make([]catalog.Enemy, 0, len(m.enemies))
	for _, enemy := range m.enemies {
		enemies = append(enemies, enemy)
	}
	sort.Slice(enemies, func(i, j int) bool { return enemies[i].ID < enemies[j].ID })
	return enemies, nil
}

func (m *MockStorage) AcquireLock(ctx context.Context, id uuid.UUID, owner string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[id]; held {
		return false, nil
	}
	m.locks[id] = owner
	return true, nil
}

func (m *MockStorage) ReleaseLock(ctx context.Context, id uuid.UUID, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[id] == owner {
		delete(m.locks, id)
	}
	return nil
}
