package dice

import "math/rand/v2"

// Standard bounds for outcome checks.
const (
	D20Min = 1
	D20Max = 20
)

// Roller produces a random integer in an inclusive range.
// Implementations must be safe for use from a single request goroutine;
// inject a Fixed roller for deterministic tests.
type Roller interface {
	Roll(min, max int) int
}

type randRoller struct{}

// New returns a Roller backed by math/rand/v2.
func New() Roller {
	return randRoller{}
}

func (randRoller) Roll(min, max int) int {
	if max < min {
		min, max = max, min
	}
	return rand.IntN(max-min+1) + min
}

// Fixed replays a scripted sequence of rolls. When the sequence is
// exhausted it keeps returning the last value. Zero-value Fixed rolls min.
type Fixed struct {
	Rolls []int
	next  int
}

// NewFixed creates a Fixed roller from a scripted sequence.
func NewFixed(rolls ...int) *Fixed {
	return &Fixed{Rolls: rolls}
}

func (f *Fixed) Roll(min, max int) int {
	if max < min {
		min, max = max, min
	}
	if len(f.Rolls) == 0 {
		return min
	}
	v := f.Rolls[f.next]
	if f.next < len(f.Rolls)-1 {
		f.next++
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
