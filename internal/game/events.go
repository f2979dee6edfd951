package game

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/calebmoran/questforge/internal/storage"
	"github.com/calebmoran/questforge/pkg/action"
	"github.com/calebmoran/questforge/pkg/actor"
	"github.com/calebmoran/questforge/pkg/catalog"
	"github.com/calebmoran/questforge/pkg/dice"
	"github.com/calebmoran/questforge/pkg/state"
)

// rollD20 rolls the action die, honoring a scripted roll when the
// request carries one.
func (s *Service) rollD20(pa *action.PlayerAction) int {
	if pa.Data.DiceRoll != nil {
		r := *pa.Data.DiceRoll
		if r < dice.D20Min {
			r = dice.D20Min
		}
		if r > dice.D20Max {
			r = dice.D20Max
		}
		return r
	}
	return s.roller.Roll(dice.D20Min, dice.D20Max)
}

// explore resolves continue/search: roll the encounter die and branch
// into a quiet beat, a narrative event, an item drop, or combat.
func (s *Service) explore(ctx context.Context, cs *state.CampaignState, pa *action.PlayerAction) (*state.GameResponse, *state.GameEvent, error) {
	table := s.policy.Continue
	trigger := "continue forward"
	if pa.Type == action.Search {
		table = s.policy.Search
		trigger = "search the area"
	}

	roll := s.rollD20(pa)
	switch table.kind(roll) {
	case encounterQuiet:
		return s.quietBeat(ctx, cs, trigger)
	case encounterEvent:
		return s.narrativeEvent(ctx, cs, trigger)
	case encounterItem:
		return s.itemDrop(ctx, cs, trigger)
	default:
		return s.startCombat(ctx, cs, trigger)
	}
}

func (s *Service) quietBeat(ctx context.Context, cs *state.CampaignState, trigger string) (*state.GameResponse, *state.GameEvent, error) {
	message := s.narrate(ctx, cs, trigger, state.EventDescriptive,
		"The way ahead is quiet. Nothing stirs.")

	resp := &state.GameResponse{
		Success: true,
		Type:    state.ResponseStory,
		Message: message,
	}
	return resp, newEvent(cs, state.EventDescriptive, message, nil), nil
}

func (s *Service) narrativeEvent(ctx context.Context, cs *state.CampaignState, trigger string) (*state.GameResponse, *state.GameEvent, error) {
	octx, cancel := context.WithTimeout(ctx, s.policy.OracleTimeout)
	defer cancel()

	pe, err := s.oracle.GenerateEvent(octx, s.eventContext(cs, trigger, ""))
	if err != nil {
		s.logger.Warn("Oracle event generation failed, using fallback", "campaign_id", cs.ID, "error", err)
		pe = &state.PendingEvent{
			Event: "Something unseen shifts in the dark. You sense this moment matters.",
			Type:  state.EventDescriptive,
		}
	}

	cs.PendingEvent = pe
	cs.Phase = state.PhaseEventChoice

	resp := &state.GameResponse{
		Success: true,
		Type:    state.ResponseStory,
		Message: pe.Event,
	}
	return resp, newEvent(cs, pe.Type, pe.Event, nil), nil
}

func (s *Service) itemDrop(ctx context.Context, cs *state.CampaignState, trigger string) (*state.GameResponse, *state.GameEvent, error) {
	items, err := s.storage.ListItems(ctx)
	if err != nil || len(items) == 0 {
		if err != nil {
			s.logger.Warn("Item catalog unavailable, degrading to quiet beat", "campaign_id", cs.ID, "error", err)
		}
		return s.quietBeat(ctx, cs, trigger)
	}

	item := items[s.roller.Roll(0, len(items)-1)]
	message := s.narrate(ctx, cs, trigger, state.EventItemDrop,
		fmt.Sprintf("You spot a %s lying in the dust.", item.Name))

	cs.PendingEvent = &state.PendingEvent{
		Event:  message,
		Type:   state.EventItemDrop,
		ItemID: item.ID,
	}
	cs.Phase = state.PhaseItemChoice

	resp := &state.GameResponse{
		Success: true,
		Type:    state.ResponseItem,
		Message: message,
	}
	return resp, newEvent(cs, state.EventItemDrop, message, nil), nil
}

func (s *Service) startCombat(ctx context.Context, cs *state.CampaignState, trigger string) (*state.GameResponse, *state.GameEvent, error) {
	enemies, err := s.storage.ListEnemies(ctx)
	if err != nil || len(enemies) == 0 {
		if err != nil {
			s.logger.Warn("Enemy catalog unavailable, degrading to quiet beat", "campaign_id", cs.ID, "error", err)
		}
		return s.quietBeat(ctx, cs, trigger)
	}

	template := enemies[s.roller.Roll(0, len(enemies)-1)]
	cs.CurrentEnemy = actor.SpawnEnemy(&template)
	cs.Phase = state.PhaseCombat

	message := s.narrate(ctx, cs, trigger, state.EventCombat,
		fmt.Sprintf("A %s lunges from the shadows!", cs.CurrentEnemy.Name))

	resp := &state.GameResponse{
		Success: true,
		Type:    state.ResponseCombat,
		Message: message,
	}
	return resp, newEvent(cs, state.EventCombat, message, nil), nil
}

// resolveEvent settles a pending narrative event. Declining is always a
// zero-mutation path; accepting rolls the d20 and scales the event's
// effects by the outcome tier.
func (s *Service) resolveEvent(ctx context.Context, cs *state.CampaignState, pa *action.PlayerAction) (*state.GameResponse, *state.GameEvent, error) {
	pe := cs.PendingEvent
	if pe == nil {
		return nil, nil, &ValidationError{Reason: "no pending event to resolve"}
	}

	cs.PendingEvent = nil
	cs.Phase = state.PhaseExploration

	if pa.Type == action.RejectEvent {
		evType := pe.Type
		if !state.KnownEventType(evType) {
			evType = state.EventDescriptive
		}
		outcome := &state.FinalOutcome{
			ResultingStats: *cs.Character.Spec,
			DiceRoll:       0,
			Notes:          "You chose not to engage. Nothing changed.",
		}
		message := "You step back and let the moment pass."
		resp := &state.GameResponse{
			Success: true,
			Type:    state.ResponseStory,
			Message: message,
			Outcome: outcome,
		}
		return resp, newEvent(cs, evType, message, nil), nil
	}

	roll := s.rollD20(pa)

	// Unrecognized event types resolve as pure narration.
	if !state.KnownEventType(pe.Type) {
		outcome := &state.FinalOutcome{
			ResultingStats: *cs.Character.Spec,
			DiceRoll:       roll,
			Notes:          "The moment passes without consequence.",
		}
		resp := &state.GameResponse{
			Success: true,
			Type:    state.ResponseStory,
			Message: pe.Event,
			Outcome: outcome,
		}
		return resp, newEvent(cs, state.EventDescriptive, pe.Event, nil), nil
	}

	tier := s.policy.Tiers.Classify(roll)
	scaled := state.EventEffects{
		Health:  s.policy.Tiers.Scale(tier, pe.Effects.Health),
		Attack:  s.policy.Tiers.Scale(tier, pe.Effects.Attack),
		Defense: s.policy.Tiers.Scale(tier, pe.Effects.Defense),
	}

	if scaled.Health != 0 {
		if err := cs.Character.AdjustHP(scaled.Health); err != nil {
			return nil, nil, fmt.Errorf("failed to apply health effect: %w", err)
		}
	}
	if scaled.Attack != 0 || scaled.Defense != 0 {
		if err := cs.Character.ApplyDelta(actor.StatDelta{Attack: scaled.Attack, Defense: scaled.Defense}); err != nil {
			return nil, nil, fmt.Errorf("failed to apply stat effects: %w", err)
		}
	}

	var equippedID string
	if pe.ItemID != "" {
		id, err := s.resolveEventItem(ctx, cs, pe.ItemID)
		if err != nil {
			s.logger.Warn("Failed to resolve event item", "campaign_id", cs.ID, "item_id", pe.ItemID, "error", err)
		}
		equippedID = id
	}

	notes := outcomeNotes(roll, tier, scaled, equippedID)
	if cs.Character.IsDown() {
		cs.IsEnded = true
		notes += " The ordeal proves fatal."
	}

	outcome := &state.FinalOutcome{
		ResultingStats: *cs.Character.Spec,
		DiceRoll:       roll,
		ItemEquippedID: equippedID,
		Notes:          notes,
	}
	resp := &state.GameResponse{
		Success: true,
		Type:    state.ResponseStory,
		Message: pe.Event,
		Outcome: outcome,
	}
	return resp, newEvent(cs, pe.Type, notes, &scaled), nil
}

// resolveEventItem delivers an event's item payload: equippable items
// are equipped on the spot (the displaced piece goes to the inventory),
// anything else is pocketed. Returns the equipped item ID, if any.
func (s *Service) resolveEventItem(ctx context.Context, cs *state.CampaignState, itemID string) (string, error) {
	item, err := s.storage.GetItem(ctx, itemID)
	if err != nil {
		return "", err
	}

	if !item.IsEquippable() {
		cs.AddItem(item.ID)
		return "", nil
	}

	old, err := s.equippedInSlot(ctx, cs, item.Slot())
	if err != nil {
		return "", err
	}
	prev, err := cs.Character.Equip(item, old)
	if err != nil {
		return "", err
	}
	if prev != "" && prev != item.ID {
		cs.AddItem(prev)
	}
	return item.ID, nil
}

// equippedInSlot loads the catalog entry for whatever currently occupies
// the slot, or nil when the slot is empty.
func (s *Service) equippedInSlot(ctx context.Context, cs *state.CampaignState, slot string) (*catalog.Item, error) {
	id, ok := cs.Character.Spec.Equipment[slot]
	if !ok || id == "" {
		return nil, nil
	}
	item, err := s.storage.GetItem(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return item, err
}

func outcomeNotes(roll int, tier dice.Tier, scaled state.EventEffects, equippedID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rolled %d (%s).", roll, tier)
	if scaled.Health != 0 {
		fmt.Fprintf(&b, " Health %+d.", scaled.Health)
	}
	if scaled.Attack != 0 {
		fmt.Fprintf(&b, " Attack %+d.", scaled.Attack)
	}
	if scaled.Defense != 0 {
		fmt.Fprintf(&b, " Defense %+d.", scaled.Defense)
	}
	if equippedID != "" {
		fmt.Fprintf(&b, " Equipped %s.", catalog.DisplayName(equippedID))
	}
	if scaled.IsZero() && equippedID == "" {
		b.WriteString(" No lasting effect.")
	}
	return b.String()
}

// resolveItemChoice settles a pending item drop: take it, equip it, or
// walk away.
func (s *Service) resolveItemChoice(ctx context.Context, cs *state.CampaignState, pa *action.PlayerAction) (*state.GameResponse, *state.GameEvent, error) {
	pe := cs.PendingEvent
	if pe == nil || pe.ItemID == "" {
		return nil, nil, &ValidationError{Reason: "no pending item to resolve"}
	}

	switch pa.Type {
	case action.RejectItem:
		cs.PendingEvent = nil
		cs.Phase = state.PhaseExploration
		message := fmt.Sprintf("You leave the %s where it lies.", catalog.DisplayName(pe.ItemID))
		resp := &state.GameResponse{
			Success: true,
			Type:    state.ResponseItem,
			Message: message,
		}
		return resp, newEvent(cs, state.EventItemDrop, message, nil), nil

	case action.PickupItem:
		cs.AddItem(pe.ItemID)
		cs.PendingEvent = nil
		cs.Phase = state.PhaseExploration
		message := fmt.Sprintf("You take the %s.", catalog.DisplayName(pe.ItemID))
		resp := &state.GameResponse{
			Success: true,
			Type:    state.ResponseItem,
			Message: message,
		}
		return resp, newEvent(cs, state.EventItemDrop, message, nil), nil

	case action.EquipItem:
		item, err := s.storage.GetItem(ctx, pe.ItemID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, nil, &ValidationError{Reason: fmt.Sprintf("unknown item %q", pe.ItemID)}
			}
			return nil, nil, fmt.Errorf("failed to load item: %w", err)
		}
		if !item.IsEquippable() {
			return nil, nil, &ValidationError{Reason: fmt.Sprintf("%s cannot be equipped", item.Name)}
		}

		old, err := s.equippedInSlot(ctx, cs, item.Slot())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load equipped item: %w", err)
		}
		prev, err := cs.Character.Equip(item, old)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to equip item: %w", err)
		}
		if prev != "" && prev != item.ID {
			cs.AddItem(prev)
		}

		cs.PendingEvent = nil
		cs.Phase = state.PhaseExploration
		message := fmt.Sprintf("You equip the %s.", item.Name)
		resp := &state.GameResponse{
			Success: true,
			Type:    state.ResponseEquipment,
			Message: message,
		}
		return resp, newEvent(cs, state.EventItemDrop, message, nil), nil

	default:
		return nil, nil, &ValidationError{Reason: fmt.Sprintf("action %q is not valid for an item choice", pa.Type)}
	}
}
