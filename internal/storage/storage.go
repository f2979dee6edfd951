package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/calebmoran/questforge/pkg/catalog"
	"github.com/calebmoran/questforge/pkg/state"
)

// ErrNotFound is returned when a referenced record or catalog entry
// does not exist.
var ErrNotFound = errors.New("not found")

// Storage is the backend contract the engine consumes: campaign records
// and the append-only event log in Redis, catalog reference data from
// the filesystem, and per-campaign locks for serializing actions.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Campaign operations (Redis-backed)
	SaveCampaign(ctx context.Context, id uuid.UUID, cs *state.CampaignState) error
	// LoadCampaign returns nil for a missing campaign.
	LoadCampaign(ctx context.Context, id uuid.UUID) (*state.CampaignState, error)
	DeleteCampaign(ctx context.Context, id uuid.UUID) error

	// Event log operations (Redis-backed, append-only)
	AppendEvent(ctx context.Context, ev *state.GameEvent) error
	RecentEvents(ctx context.Context, id uuid.UUID, limit int) ([]state.GameEvent, error)

	// Catalog operations (filesystem-backed)
	GetItem(ctx context.Context, id string) (*catalog.Item, error)
	ListItems(ctx context.Context) ([]catalog.Item, error)
	GetEnemy(ctx context.Context, id string) (*catalog.Enemy, error)
	ListEnemies(ctx context.Context) ([]catalog.Enemy, error)

	// Per-campaign mutual exclusion around read-modify-write of the
	// campaign record. AcquireLock returns false when already held.
	AcquireLock(ctx context.Context, id uuid.UUID, owner string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, id uuid.UUID, owner string) error
}
