package runner

import (
	"time"

	"github.com/google/uuid"

	"github.com/calebmoran/questforge/pkg/action"
)

// TestSuite defines a complete integration test scenario.
// Can either be a regular test with Steps, or a sequence that references other Cases
type TestSuite struct {
	Name          string     `json:"name"`
	CampaignName  string     `json:"campaign_name,omitempty"`  // Defaults to Name
	CharacterName string     `json:"character_name,omitempty"` // Defaults to server-side default
	Steps         []TestStep `json:"steps,omitempty"`          // Used for regular tests
	Cases         []string   `json:"cases,omitempty"`          // Used for sequence tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep defines a single player action and its expected outcomes.
// DiceRoll scripts the action die so encounter and outcome branches stay
// deterministic; steps without it take whatever the server rolls.
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	Action       action.Type  `json:"action,omitempty"`
	Choice       string       `json:"choice,omitempty"` // Literal choice string; translated server-side when Action is empty
	ItemID       string       `json:"item_id,omitempty"`
	DiceRoll     *int         `json:"dice_roll,omitempty"`
	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	// HTTP status; defaults to 200. Steps expecting a rejection set 400
	// and check that campaign state did not move.
	Status *int `json:"status,omitempty"`

	// Campaign state properties - aligned with pkg/state/campaign.go
	Phase        *string  `json:"phase,omitempty"`
	HP           *int     `json:"hp,omitempty"`
	MaxHP        *int     `json:"max_hp,omitempty"`
	Attack       *int     `json:"attack,omitempty"`
	Defense      *int     `json:"defense,omitempty"`
	Inventory    []string `json:"inventory,omitempty"` // Full inventory contents (order independent)
	IsEnded      *bool    `json:"is_ended,omitempty"`
	EventCounter *int     `json:"event_counter,omitempty"`
	EnemyPresent *bool    `json:"enemy_present,omitempty"`

	// Response analysis
	MessageContains    []string `json:"message_contains,omitempty"`
	MessageNotContains []string `json:"message_not_contains,omitempty"`
	ChoiceCount        *int     `json:"choice_count,omitempty"`
	MessageMinLength   *int     `json:"message_min_length,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName     string
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	ResponseText string
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	Campaign uuid.UUID // ID of the campaign used for this test
}
