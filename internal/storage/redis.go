package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/calebmoran/questforge/pkg/catalog"
	"github.com/calebmoran/questforge/pkg/state"
)

// Campaigns persist for a month of inactivity before Redis evicts them.
const campaignTTL = 30 * 24 * time.Hour

// Only the lock owner may release; anything else is a no-op.
var releaseLockScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisStorage implements the Storage interface using Redis for campaign
// state and the event log, and the filesystem for catalog reference data.
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	if dataDir == "" {
		dataDir = "./data"
	}

	return &RedisStorage{
		client:  rdb,
		logger:  logger,
		dataDir: dataDir,
	}
}

func campaignKey(id uuid.UUID) string {
	return "campaign:" + id.String()
}

func eventsKey(id uuid.UUID) string {
	return "campaign-events:" + id.String()
}

func lockKey(id uuid.UUID) string {
	return "campaign-lock:" + id.String()
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Campaign operations (Redis-backed)

func (r *RedisStorage) SaveCampaign(ctx context.Context, id uuid.UUID, cs *state.CampaignState) error {
	cs.UpdatedAt = time.Now()

	data, err := json.Marshal(cs)
	if err != nil {
		r.logger.Error("Failed to marshal campaign", "uuid", id, "error", err)
		return fmt.Errorf("failed to marshal campaign: %w", err)
	}

	if err := r.client.Set(ctx, campaignKey(id), string(data), campaignTTL).Err(); err != nil {
		r.logger.Error("Failed to save campaign", "uuid", id, "error", err)
		return fmt.Errorf("failed to save campaign: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadCampaign(ctx context.Context, id uuid.UUID) (*state.CampaignState, error) {
	cmd := r.client.Get(ctx, campaignKey(id))
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Campaign not found", "uuid", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load campaign", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}

	var cs state.CampaignState
	if err := json.Unmarshal([]byte(cmd.Val()), &cs); err != nil {
		r.logger.Error("Failed to unmarshal campaign", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal campaign: %w", err)
	}

	return &cs, nil
}

func (r *RedisStorage) DeleteCampaign(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, campaignKey(id), eventsKey(id), lockKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete campaign", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	return nil
}

// Event log operations (Redis lists, append-only)

func (r *RedisStorage) AppendEvent(ctx context.Context, ev *state.GameEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, eventsKey(ev.CampaignID), string(data))
	pipe.Expire(ctx, eventsKey(ev.CampaignID), campaignTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to append event", "uuid", ev.CampaignID, "error", err)
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

func (r *RedisStorage) RecentEvents(ctx context.Context, id uuid.UUID, limit int) ([]state.GameEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	raw, err := r.client.LRange(ctx, eventsKey(id), int64(-limit), -1).Result()
	if err != nil {
		r.logger.Error("Failed to load events", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	events := make([]state.GameEvent, 0, len(raw))
	for _, item := range raw {
		var ev state.GameEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			r.logger.Warn("Skipping malformed event entry", "uuid", id, "error", err)
			continue
		}
		events = append(events, ev)
	}

	return events, nil
}

// Catalog operations (filesystem-backed)

func (r *RedisStorage) GetItem(ctx context.Context, id string) (*catalog.Item, error) {
	path := filepath.Join(r.dataDir, "items", id+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read item file: %w", err)
	}

	var item catalog.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item %s: %w", id, err)
	}
	item.ID = id // Filename overrides any ID in the JSON
	if item.Name == "" {
		item.Name = catalog.DisplayName(id)
	}

	return &item, nil
}

func (r *RedisStorage) ListItems(ctx context.Context) ([]catalog.Item, error) {
	var items []catalog.Item
	err := r.walkCatalog("items", func(id string, data []byte) {
		var item catalog.Item
		if err := json.Unmarshal(data, &item); err != nil {
			r.logger.Warn("Failed to unmarshal item file", "id", id, "error", err)
			return
		}
		item.ID = id
		if item.Name == "" {
			item.Name = catalog.DisplayName(id)
		}
		items = append(items, item)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *RedisStorage) GetEnemy(ctx context.Context, id string) (*catalog.Enemy, error) {
	path := filepath.Join(r.dataDir, "enemies", id+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("enemy %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read enemy file: %w", err)
	}

	var enemy catalog.Enemy
	if err := json.Unmarshal(data, &enemy); err != nil {
		return nil, fmt.Errorf("failed to unmarshal enemy %s: %w", id, err)
	}
	enemy.ID = id
	if enemy.Name == "" {
		enemy.Name = catalog.DisplayName(id)
	}

	return &enemy, nil
}

func (r *RedisStorage) ListEnemies(ctx context.Context) ([]catalog.Enemy, error) {
	var enemies []catalog.Enemy
	err := r.walkCatalog("enemies", func(id string, data []byte) {
		var enemy catalog.Enemy
		if err := json.Unmarshal(data, &enemy); err != nil {
			r.logger.Warn("Failed to unmarshal enemy file", "id", id, "error", err)
			return
		}
		enemy.ID = id
		if enemy.Name == "" {
			enemy.Name = catalog.DisplayName(id)
		}
		enemies = append(enemies, enemy)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list enemies: %w", err)
	}

	sort.Slice(enemies, func(i, j int) bool { return enemies[i].ID < enemies[j].ID })
	return enemies, nil
}

// walkCatalog visits each JSON file in a catalog subdirectory, passing its
// snake_case ID (filename without extension) and contents to fn.
func (r *RedisStorage) walkCatalog(subdir string, fn func(id string, data []byte)) error {
	dir := filepath.Join(r.dataDir, subdir)

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			r.logger.Warn("Failed to read catalog file", "path", path, "error", err)
			return nil
		}

		id := strings.TrimSuffix(filepath.Base(path), ".json")
		fn(id, data)
		return nil
	})
}

// Per-campaign locks

func (r *RedisStorage) AcquireLock(ctx context.Context, id uuid.UUID, owner string, ttl time.Duration) (bool, error) {
	locked, err := r.client.SetNX(ctx, lockKey(id), owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire campaign lock: %w", err)
	}
	return locked, nil
}

func (r *RedisStorage) ReleaseLock(ctx context.Context, id uuid.UUID, owner string) error {
	if err := releaseLockScript.Run(ctx, r.client, []string{lockKey(id)}, owner).Err(); err != nil {
		r.logger.Error("Failed to release campaign lock", "error", err, "uuid", id)
		return err
	}
	return nil
}
