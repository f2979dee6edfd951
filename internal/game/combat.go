package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/calebmoran/questforge/internal/storage"
	"github.com/calebmoran/questforge/pkg/action"
	"github.com/calebmoran/questforge/pkg/actor"
	"github.com/calebmoran/questforge/pkg/catalog"
	"github.com/calebmoran/questforge/pkg/state"
)

// resolveCombat settles one round. Damage is deterministic: the dice
// only decide flee attempts. The enemy acts every round it survives,
// except after a successful flee.
func (s *Service) resolveCombat(ctx context.Context, cs *state.CampaignState, pa *action.PlayerAction) (*state.GameResponse, *state.GameEvent, error) {
	enemy := cs.CurrentEnemy
	if enemy == nil {
		return nil, nil, &ValidationError{Reason: "no enemy to fight"}
	}

	switch pa.Type {
	case action.Attack:
		return s.combatAttack(ctx, cs, enemy)
	case action.UseItem:
		return s.combatUseItem(ctx, cs, enemy, pa)
	case action.Flee:
		return s.combatFlee(ctx, cs, enemy, pa)
	default:
		return nil, nil, &ValidationError{Reason: fmt.Sprintf("action %q is not valid in combat", pa.Type)}
	}
}

func (s *Service) combatAttack(ctx context.Context, cs *state.CampaignState, enemy *actor.Enemy) (*state.GameResponse, *state.GameEvent, error) {
	dealt := actor.Damage(cs.Character.Spec.Attack, enemy.Defense)
	enemy.TakeDamage(dealt)

	if enemy.IsDefeated() {
		return s.combatVictory(ctx, cs, enemy, dealt)
	}

	taken, err := cs.Character.ApplyDamage(enemy.Attack, cs.Character.Spec.Defense)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to apply enemy damage: %w", err)
	}
	if cs.Character.IsDown() {
		return s.combatDefeat(cs, enemy, dealt, taken)
	}

	result := &state.CombatResult{
		CharacterDamage: taken,
		EnemyDamage:     dealt,
		CharacterHP:     cs.Character.Spec.HP,
		EnemyHP:         enemy.Health,
		Outcome:         state.OutcomeOngoing,
	}
	message := fmt.Sprintf("You strike the %s for %d damage and take %d in return.", enemy.Name, dealt, taken)
	resp := &state.GameResponse{
		Success:      true,
		Type:         state.ResponseCombat,
		Message:      message,
		CombatResult: result,
	}
	return resp, newEvent(cs, state.EventCombat, message, nil), nil
}

func (s *Service) combatUseItem(ctx context.Context, cs *state.CampaignState, enemy *actor.Enemy, pa *action.PlayerAction) (*state.GameResponse, *state.GameEvent, error) {
	if pa.Data.ItemID == "" {
		return nil, nil, &ValidationError{Reason: "use_item requires an item_id"}
	}
	if !cs.HasItem(pa.Data.ItemID) {
		return nil, nil, &ValidationError{Reason: fmt.Sprintf("item %q is not in the inventory", pa.Data.ItemID)}
	}

	item, err := s.storage.GetItem(ctx, pa.Data.ItemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, &ValidationError{Reason: fmt.Sprintf("unknown item %q", pa.Data.ItemID)}
		}
		return nil, nil, fmt.Errorf("failed to load item: %w", err)
	}

	var used string
	switch {
	case item.Type == catalog.ItemPotion:
		if err := cs.Character.Heal(item.Heal); err != nil {
			return nil, nil, fmt.Errorf("failed to heal: %w", err)
		}
		cs.RemoveItem(item.ID)
		used = fmt.Sprintf("You drink the %s and recover %d health.", item.Name, item.Heal)

	case item.IsEquippable():
		old, err := s.equippedInSlot(ctx, cs, item.Slot())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load equipped item: %w", err)
		}
		prev, err := cs.Character.Equip(item, old)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to equip item: %w", err)
		}
		cs.RemoveItem(item.ID)
		if prev != "" && prev != item.ID {
			cs.AddItem(prev)
		}
		used = fmt.Sprintf("You ready the %s mid-fight.", item.Name)

	default:
		return nil, nil, &ValidationError{Reason: fmt.Sprintf("%s cannot be used in combat", item.Name)}
	}

	// Using an item costs the round; the enemy still acts.
	taken, err := cs.Character.ApplyDamage(enemy.Attack, cs.Character.Spec.Defense)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to apply enemy damage: %w", err)
	}
	if cs.Character.IsDown() {
		return s.combatDefeat(cs, enemy, 0, taken)
	}

	result := &state.CombatResult{
		CharacterDamage: taken,
		CharacterHP:     cs.Character.Spec.HP,
		EnemyHP:         enemy.Health,
		Outcome:         state.OutcomeOngoing,
	}
	message := fmt.Sprintf("%s The %s strikes you for %d.", used, enemy.Name, taken)
	resp := &state.GameResponse{
		Success:      true,
		Type:         state.ResponseCombat,
		Message:      message,
		CombatResult: result,
	}
	return resp, newEvent(cs, state.EventCombat, message, nil), nil
}

func (s *Service) combatFlee(ctx context.Context, cs *state.CampaignState, enemy *actor.Enemy, pa *action.PlayerAction) (*state.GameResponse, *state.GameEvent, error) {
	roll := s.rollD20(pa)
	if roll >= s.policy.FleeDC {
		cs.CurrentEnemy = nil
		cs.Phase = state.PhaseExploration

		result := &state.CombatResult{
			CharacterHP: cs.Character.Spec.HP,
			EnemyHP:     enemy.Health,
			Ended:       true,
			Outcome:     state.OutcomeFled,
		}
		message := fmt.Sprintf("You slip away from the %s. (Rolled %d.)", enemy.Name, roll)
		resp := &state.GameResponse{
			Success:      true,
			Type:         state.ResponseCombat,
			Message:      message,
			CombatResult: result,
		}
		return resp, newEvent(cs, state.EventCombat, message, nil), nil
	}

	// Failed escape gives the enemy a free attack.
	taken, err := cs.Character.ApplyDamage(enemy.Attack, cs.Character.Spec.Defense)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to apply enemy damage: %w", err)
	}
	if cs.Character.IsDown() {
		return s.combatDefeat(cs, enemy, 0, taken)
	}

	result := &state.CombatResult{
		CharacterDamage: taken,
		CharacterHP:     cs.Character.Spec.HP,
		EnemyHP:         enemy.Health,
		Outcome:         state.OutcomeOngoing,
	}
	message := fmt.Sprintf("You fail to escape (rolled %d) and the %s catches you for %d.", roll, enemy.Name, taken)
	resp := &state.GameResponse{
		Success:      true,
		Type:         state.ResponseCombat,
		Message:      message,
		CombatResult: result,
	}
	return resp, newEvent(cs, state.EventCombat, message, nil), nil
}

// combatVictory ends the fight: loot drops into the inventory, the
// enemy slot clears, and the campaign returns to exploration. A battered
// character holding a potion gets prompted to drink it.
func (s *Service) combatVictory(ctx context.Context, cs *state.CampaignState, enemy *actor.Enemy, dealt int) (*state.GameResponse, *state.GameEvent, error) {
	for _, lootID := range enemy.Loot {
		cs.AddItem(lootID)
	}
	cs.CurrentEnemy = nil
	cs.Phase = state.PhaseExploration

	message := fmt.Sprintf("The %s falls. Victory!", enemy.Name)
	if len(enemy.Loot) > 0 {
		names := make([]string, len(enemy.Loot))
		for i, id := range enemy.Loot {
			names[i] = catalog.DisplayName(id)
		}
		message = fmt.Sprintf("%s It dropped: %s.", message, joinNames(names))
	}

	respType := state.ResponseCombat
	if s.shouldPromptPotion(ctx, cs) {
		respType = state.ResponsePotionPrompt
		message += " You are badly hurt. Perhaps a potion?"
	}

	result := &state.CombatResult{
		EnemyDamage: dealt,
		CharacterHP: cs.Character.Spec.HP,
		EnemyHP:     0,
		Ended:       true,
		Outcome:     state.OutcomeVictory,
	}
	resp := &state.GameResponse{
		Success:      true,
		Type:         respType,
		Message:      message,
		CombatResult: result,
	}
	return resp, newEvent(cs, state.EventCombat, message, nil), nil
}

// combatDefeat ends the campaign. HP is already clamped at zero by the
// stat layer.
func (s *Service) combatDefeat(cs *state.CampaignState, enemy *actor.Enemy, dealt, taken int) (*state.GameResponse, *state.GameEvent, error) {
	cs.IsEnded = true
	cs.CurrentEnemy = nil
	cs.Phase = state.PhaseExploration

	result := &state.CombatResult{
		CharacterDamage: taken,
		EnemyDamage:     dealt,
		CharacterHP:     0,
		EnemyHP:         enemy.Health,
		Ended:           true,
		Outcome:         state.OutcomeDefeat,
	}
	message := fmt.Sprintf("The %s strikes you down. Your journey ends here.", enemy.Name)
	resp := &state.GameResponse{
		Success:      true,
		Type:         state.ResponseCombat,
		Message:      message,
		CombatResult: result,
	}
	return resp, newEvent(cs, state.EventCombat, message, nil), nil
}

// shouldPromptPotion reports whether the character is at or below half
// health while holding at least one potion.
func (s *Service) shouldPromptPotion(ctx context.Context, cs *state.CampaignState) bool {
	spec := cs.Character.Spec
	if spec.HP*2 > spec.MaxHP {
		return false
	}
	for _, id := range cs.Inventory {
		item, err := s.storage.GetItem(ctx, id)
		if err != nil {
			continue
		}
		if item.Type == catalog.ItemPotion {
			return true
		}
	}
	return false
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		out := names[0]
		for _, n := range names[1:] {
			out += ", " + n
		}
		return out
	}
}
