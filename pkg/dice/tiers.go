package dice

// Tier grades a d20 outcome check.
type Tier string

const (
	TierCriticalFailure Tier = "critical_failure"
	TierSetback         Tier = "setback"
	TierSuccess         Tier = "success"
	TierCriticalSuccess Tier = "critical_success"
)

// Tiers holds the thresholds and effect multipliers for outcome checks.
// Thresholds are inclusive: a roll <= CriticalFailureMax is a critical
// failure, a roll >= CriticalSuccessMin is a critical success.
type Tiers struct {
	CriticalFailureMax int `json:"critical_failure_max"`
	SetbackMax         int `json:"setback_max"`
	CriticalSuccessMin int `json:"critical_success_min"`
}

// DefaultTiers returns the standard d20 outcome policy:
// 1-5 critical failure, 6-9 setback, 10-17 success, 18-20 critical success.
func DefaultTiers() Tiers {
	return Tiers{
		CriticalFailureMax: 5,
		SetbackMax:         9,
		CriticalSuccessMin: 18,
	}
}

// Classify maps a roll onto its outcome tier.
func (t Tiers) Classify(roll int) Tier {
	switch {
	case roll <= t.CriticalFailureMax:
		return TierCriticalFailure
	case roll <= t.SetbackMax:
		return TierSetback
	case roll >= t.CriticalSuccessMin:
		return TierCriticalSuccess
	default:
		return TierSuccess
	}
}

// Scale applies the tier's effect multiplier to a raw effect value.
// Critical failure negates, setback halves (truncating toward zero),
// success passes through, critical success doubles.
func (t Tiers) Scale(tier Tier, n int) int {
	switch tier {
	case TierCriticalFailure:
		return -n
	case TierSetback:
		return n / 2
	case TierCriticalSuccess:
		return n * 2
	default:
		return n
	}
}
