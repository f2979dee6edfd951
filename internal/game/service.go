package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/calebmoran/questforge/internal/services"
	"github.com/calebmoran/questforge/internal/storage"
	"github.com/calebmoran/questforge/pkg/action"
	"github.com/calebmoran/questforge/pkg/actor"
	"github.com/calebmoran/questforge/pkg/dice"
	"github.com/calebmoran/questforge/pkg/state"
)

const lockTTL = 30 * time.Second

// Sentinel errors for conditions the HTTP layer maps to status codes.
var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrCampaignBusy     = errors.New("campaign is processing another action")
)

// ValidationError marks a rejected action. The campaign is never mutated
// and nothing is appended to its event log.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// EncounterTable maps a d20 roll to an encounter kind. Rolls up to
// QuietMax are quiet, up to EventMax narrative events, up to ItemMax
// item drops, and everything above is combat.
type EncounterTable struct {
	QuietMax int
	EventMax int
	ItemMax  int
}

type encounterKind int

const (
	encounterQuiet encounterKind = iota
	encounterEvent
	encounterItem
	encounterCombat
)

func (t EncounterTable) kind(roll int) encounterKind {
	switch {
	case roll <= t.QuietMax:
		return encounterQuiet
	case roll <= t.EventMax:
		return encounterEvent
	case roll <= t.ItemMax:
		return encounterItem
	default:
		return encounterCombat
	}
}

// Policy collects the tunable rules of the engine. Injectable so tests
// can pin thresholds.
type Policy struct {
	Continue      EncounterTable
	Search        EncounterTable
	Tiers         dice.Tiers
	FleeDC        int
	OracleTimeout time.Duration
}

// DefaultPolicy returns the standard rules. Searching is riskier and
// more rewarding than continuing.
func DefaultPolicy() Policy {
	return Policy{
		Continue:      EncounterTable{QuietMax: 10, EventMax: 15, ItemMax: 17},
		Search:        EncounterTable{QuietMax: 6, EventMax: 12, ItemMax: 16},
		Tiers:         dice.DefaultTiers(),
		FleeDC:        10,
		OracleTimeout: 30 * time.Second,
	}
}

// Service is the game engine: it owns the phase state machine and
// serializes all writes to a campaign behind its storage lock.
type Service struct {
	storage    storage.Storage
	oracle     services.NarrativeOracle
	roller     dice.Roller
	policy     Policy
	logger     *slog.Logger
	instanceID string
}

func NewService(st storage.Storage, oracle services.NarrativeOracle, roller dice.Roller, policy Policy, logger *slog.Logger) *Service {
	return &Service{
		storage:    st,
		oracle:     oracle,
		roller:     roller,
		policy:     policy,
		logger:     logger,
		instanceID: uuid.NewString(),
	}
}

// DefaultCharacterSpec returns the starting stat block for a new
// campaign's character.
func DefaultCharacterSpec(name string) *actor.CharacterSpec {
	if name == "" {
		name = "Adventurer"
	}
	return &actor.CharacterSpec{
		ID:      "player",
		Name:    name,
		HP:      50,
		MaxHP:   50,
		Attack:  10,
		Defense: 5,
	}
}

// CreateCampaign creates and persists a fresh campaign in the
// exploration phase. A nil spec gets the default stat block.
func (s *Service) CreateCampaign(ctx context.Context, name string, spec *actor.CharacterSpec) (*state.CampaignState, error) {
	if spec == nil {
		spec = DefaultCharacterSpec("")
	}
	c, err := actor.NewCharacterFromSpec(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to create character: %w", err)
	}

	cs := state.NewCampaign(name, c)
	if err := s.storage.SaveCampaign(ctx, cs.ID, cs); err != nil {
		return nil, fmt.Errorf("failed to save campaign: %w", err)
	}

	s.logger.Info("Campaign created", "campaign_id", cs.ID, "character", c.Spec.Name)
	return cs, nil
}

// ProcessAction validates, applies, and persists one player action.
// The campaign lock is held across the whole read-modify-write, so at
// most one action per campaign is in flight at a time. Exactly one
// event is appended to the log per applied action.
func (s *Service) ProcessAction(ctx context.Context, pa *action.PlayerAction) (*state.GameResponse, error) {
	if err := pa.Validate(); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	locked, err := s.storage.AcquireLock(ctx, pa.CampaignID, s.instanceID, lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire campaign lock: %w", err)
	}
	if !locked {
		return nil, ErrCampaignBusy
	}
	defer func() {
		if err := s.storage.ReleaseLock(ctx, pa.CampaignID, s.instanceID); err != nil {
			s.logger.Warn("Failed to release campaign lock", "campaign_id", pa.CampaignID, "error", err)
		}
	}()

	cs, err := s.storage.LoadCampaign(ctx, pa.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}
	if cs == nil {
		return nil, ErrCampaignNotFound
	}
	if cs.IsEnded {
		return nil, &ValidationError{Reason: "campaign has ended"}
	}
	if !cs.Phase.Allows(pa.Type) {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("action %q is not valid in phase %q", pa.Type, cs.Phase),
		}
	}

	var resp *state.GameResponse
	var ev *state.GameEvent
	switch cs.Phase {
	case state.PhaseExploration:
		resp, ev, err = s.explore(ctx, cs, pa)
	case state.PhaseEventChoice:
		resp, ev, err = s.resolveEvent(ctx, cs, pa)
	case state.PhaseItemChoice:
		resp, ev, err = s.resolveItemChoice(ctx, cs, pa)
	case state.PhaseCombat:
		resp, ev, err = s.resolveCombat(ctx, cs, pa)
	default:
		err = &ValidationError{Reason: fmt.Sprintf("unknown phase %q", cs.Phase)}
	}
	if err != nil {
		return nil, err
	}

	if err := s.storage.SaveCampaign(ctx, cs.ID, cs); err != nil {
		return nil, fmt.Errorf("failed to save campaign: %w", err)
	}
	if err := s.storage.AppendEvent(ctx, ev); err != nil {
		// The saved campaign state is canonical. A failed journal write
		// should not surface as an error for an action that already took
		// effect.
		s.logger.Warn("Failed to append event",
			"campaign_id", cs.ID,
			"event_number", ev.EventNumber,
			"error", err)
	}

	resp.Phase = cs.Phase
	resp.Choices = state.ChoicesFor(cs.Phase)
	if cs.IsEnded {
		resp.Choices = []string{}
	}
	resp.Character = cs.Character.Spec
	if cs.CurrentEnemy != nil {
		resp.Enemy = cs.CurrentEnemy
	}

	s.logger.Debug("Action applied",
		"campaign_id", cs.ID,
		"action", pa.Type,
		"phase", cs.Phase,
		"event_number", ev.EventNumber)
	return resp, nil
}

// eventContext snapshots the campaign for the oracle.
func (s *Service) eventContext(cs *state.CampaignState, trigger string, forced state.EventType) services.EventContext {
	spec := cs.Character.Spec
	return services.EventContext{
		CharacterName: spec.Name,
		HP:            spec.HP,
		MaxHP:         spec.MaxHP,
		Attack:        spec.Attack,
		Defense:       spec.Defense,
		Scenario:      cs.Name,
		ForcedType:    forced,
		Trigger:       trigger,
	}
}

// narrate asks the oracle for flavor text, falling back to the given
// text when the oracle fails. Oracle trouble never fails the action.
func (s *Service) narrate(ctx context.Context, cs *state.CampaignState, trigger string, forced state.EventType, fallback string) string {
	octx, cancel := context.WithTimeout(ctx, s.policy.OracleTimeout)
	defer cancel()

	text, err := s.oracle.Narrate(octx, s.eventContext(cs, trigger, forced))
	if err != nil {
		s.logger.Warn("Oracle narration failed, using fallback", "campaign_id", cs.ID, "error", err)
		return fallback
	}
	return text
}

// newEvent builds the log entry for an applied transition, consuming
// the next event number.
func newEvent(cs *state.CampaignState, t state.EventType, message string, effects *state.EventEffects) *state.GameEvent {
	return &state.GameEvent{
		CampaignID:  cs.ID,
		EventNumber: cs.NextEventNumber(),
		Type:        t,
		Message:     message,
		Effects:     effects,
		Timestamp:   time.Now(),
	}
}
