package state

import (
	"github.com/calebmoran/questforge/pkg/action"
	"github.com/calebmoran/questforge/pkg/actor"
)

// ResponseType tags the response variant. The state machine decides it
// once; clients branch on the tag instead of probing optional fields.
type ResponseType string

const (
	ResponseStory        ResponseType = "story"
	ResponseCombat       ResponseType = "combat"
	ResponseItem         ResponseType = "item"
	ResponseEquipment    ResponseType = "equipment"
	ResponsePotionPrompt ResponseType = "potion_prompt"
)

// CombatResult reports one resolved combat round.
type CombatResult struct {
	CharacterDamage int    `json:"character_damage"`
	EnemyDamage     int    `json:"enemy_damage"`
	CharacterHP     int    `json:"character_hp"`
	EnemyHP         int    `json:"enemy_hp"`
	Ended           bool   `json:"ended"`
	Outcome         string `json:"outcome,omitempty"` // victory, defeat, fled, ongoing
}

// Combat round outcomes.
const (
	OutcomeVictory = "victory"
	OutcomeDefeat  = "defeat"
	OutcomeFled    = "fled"
	OutcomeOngoing = "ongoing"
)

// FinalOutcome is the uniform result of resolving a pending event,
// produced on both the accept and decline paths.
type FinalOutcome struct {
	ResultingStats actor.CharacterSpec `json:"resulting_stats"`
	DiceRoll       int                 `json:"dice_roll"`
	ItemEquippedID string              `json:"item_equipped_id,omitempty"`
	Notes          string              `json:"notes"`
}

// GameResponse is the uniform contract returned for every player action.
type GameResponse struct {
	Success      bool                 `json:"success"`
	Type         ResponseType         `json:"type"`
	Phase        Phase                `json:"phase"`
	Message      string               `json:"message"`
	Choices      []string             `json:"choices"`
	Character    *actor.CharacterSpec `json:"character,omitempty"`
	Enemy        *actor.Enemy         `json:"enemy,omitempty"`
	CombatResult *CombatResult        `json:"combat_result,omitempty"`
	Outcome      *FinalOutcome        `json:"outcome,omitempty"`
}

// ChoicesFor returns the user-facing choice strings for a phase.
func ChoicesFor(p Phase) []string {
	switch p {
	case PhaseEventChoice:
		return []string{action.ChoiceAccept, action.ChoiceDecline}
	case PhaseItemChoice:
		return []string{action.ChoiceTakeItem, action.ChoiceEquip, action.ChoiceLeave}
	case PhaseCombat:
		return []string{action.ChoiceAttack, action.ChoiceUseItem, action.ChoiceFlee}
	default:
		return []string{action.ChoiceContinue, action.ChoiceSearch}
	}
}
