package action

// User-facing choice labels. These are presentation glue: the engine only
// ever sees Type values, and clients render these strings verbatim.
const (
	ChoiceContinue = "Continue Forward"
	ChoiceSearch   = "Search the Area"
	ChoiceAttack   = "Attack"
	ChoiceUseItem  = "Use Item"
	ChoiceFlee     = "Flee"
	ChoiceAccept   = "Accept"
	ChoiceDecline  = "Decline"
	ChoiceTakeItem = "Take It"
	ChoiceLeave    = "Leave It"
	ChoiceEquip    = "Equip"
)

var choiceToAction = map[string]Type{
	ChoiceContinue: Continue,
	ChoiceSearch:   Search,
	ChoiceAttack:   Attack,
	ChoiceUseItem:  UseItem,
	ChoiceFlee:     Flee,
	ChoiceAccept:   AcceptEvent,
	ChoiceDecline:  RejectEvent,
	ChoiceTakeItem: PickupItem,
	ChoiceLeave:    RejectItem,
	ChoiceEquip:    EquipItem,
}

// FromChoice maps a user-facing choice string to an action type.
// Unmapped strings default to Continue.
func FromChoice(s string) Type {
	if t, ok := choiceToAction[s]; ok {
		return t
	}
	return Continue
}
