package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calebmoran/questforge/pkg/action"
	"github.com/calebmoran/questforge/pkg/state"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running questforge API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	// If this is not a sequence, return it as-is
	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	// This is a sequence - load all referenced cases
	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite executes a complete test suite against a fresh campaign
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	campaignName := suite.CampaignName
	if campaignName == "" {
		campaignName = suite.Name
	}

	cs, err := CreateCampaign(ctx, r.Client, r.BaseURL, campaignName, suite.CharacterName)
	if err != nil {
		result.Error = fmt.Errorf("failed to create campaign: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.Campaign = cs.ID

	// Execute each test step
	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, cs.ID, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			// Break only if error handling mode is "exit"
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// runStep executes a single test step and checks expectations
func (r *Runner) runStep(ctx context.Context, campaignID uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{
		StepName: step.Name,
	}

	stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	ar := actionRequest{
		CampaignID: campaignID,
		Action:     step.Action,
		Choice:     step.Choice,
		Data: action.Data{
			ItemID:   step.ItemID,
			DiceRoll: step.DiceRoll,
		},
	}

	outcome, err := PostAction(stepCtx, r.Client, r.BaseURL, ar)
	if err != nil {
		result.Error = fmt.Errorf("failed to post action: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	if outcome.Response != nil {
		result.ResponseText = outcome.Response.Message
	} else {
		result.ResponseText = outcome.ErrorMsg
	}

	// Fetch the post-action campaign for state expectations
	postState, err := GetCampaign(stepCtx, r.Client, r.BaseURL, campaignID)
	if err != nil {
		result.Error = fmt.Errorf("failed to get campaign after action: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	if err := r.checkExpectations(step.Expectations, outcome, postState); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// checkExpectations validates the test expectations against the action
// outcome and the post-action campaign state
func (r *Runner) checkExpectations(exp Expectations, outcome *ActionOutcome, postState *state.CampaignState) error {
	wantStatus := http.StatusOK
	if exp.Status != nil {
		wantStatus = *exp.Status
	}
	if outcome.Status != wantStatus {
		return fmt.Errorf("expected status %d, got %d: %s", wantStatus, outcome.Status, outcome.ErrorMsg)
	}

	// Campaign state checks
	if exp.Phase != nil {
		if string(postState.Phase) != *exp.Phase {
			return fmt.Errorf("expected phase %s, got %s", *exp.Phase, postState.Phase)
		}
	}

	spec := postState.Character.Spec
	if exp.HP != nil && spec.HP != *exp.HP {
		return fmt.Errorf("expected hp %d, got %d", *exp.HP, spec.HP)
	}
	if exp.MaxHP != nil && spec.MaxHP != *exp.MaxHP {
		return fmt.Errorf("expected max_hp %d, got %d", *exp.MaxHP, spec.MaxHP)
	}
	if exp.Attack != nil && spec.Attack != *exp.Attack {
		return fmt.Errorf("expected attack %d, got %d", *exp.Attack, spec.Attack)
	}
	if exp.Defense != nil && spec.Defense != *exp.Defense {
		return fmt.Errorf("expected defense %d, got %d", *exp.Defense, spec.Defense)
	}

	// Full inventory check (order independent)
	if len(exp.Inventory) > 0 {
		expected := make(map[string]bool)
		for _, item := range exp.Inventory {
			expected[item] = true
		}

		actual := make(map[string]bool)
		for _, item := range postState.Inventory {
			actual[item] = true
		}

		for expectedItem := range expected {
			if !actual[expectedItem] {
				return fmt.Errorf("expected inventory to contain '%s', but it's missing. Actual inventory: %v", expectedItem, postState.Inventory)
			}
		}

		for actualItem := range actual {
			if !expected[actualItem] {
				return fmt.Errorf("inventory contains unexpected item '%s'. Expected inventory: %v, Actual: %v", actualItem, exp.Inventory, postState.Inventory)
			}
		}
	}

	if exp.IsEnded != nil {
		if postState.IsEnded != *exp.IsEnded {
			return fmt.Errorf("expected is_ended to be %t, got %t", *exp.IsEnded, postState.IsEnded)
		}
	}

	if exp.EventCounter != nil {
		if postState.EventCounter != *exp.EventCounter {
			return fmt.Errorf("expected event_counter to be %d, got %d", *exp.EventCounter, postState.EventCounter)
		}
	}

	if exp.EnemyPresent != nil {
		present := postState.CurrentEnemy != nil
		if present != *exp.EnemyPresent {
			return fmt.Errorf("expected enemy_present to be %t, got %t", *exp.EnemyPresent, present)
		}
	}

	// Response content checks
	responseText := ""
	if outcome.Response != nil {
		responseText = outcome.Response.Message
	} else {
		responseText = outcome.ErrorMsg
	}

	if len(exp.MessageContains) > 0 {
		lowerResponse := strings.ToLower(responseText)
		for _, expectedText := range exp.MessageContains {
			if !strings.Contains(lowerResponse, strings.ToLower(expectedText)) {
				return fmt.Errorf("expected message to contain '%s', but it didn't: %s", expectedText, responseText)
			}
		}
	}

	if len(exp.MessageNotContains) > 0 {
		lowerResponse := strings.ToLower(responseText)
		for _, unexpectedText := range exp.MessageNotContains {
			if strings.Contains(lowerResponse, strings.ToLower(unexpectedText)) {
				return fmt.Errorf("expected message to NOT contain '%s', but it did", unexpectedText)
			}
		}
	}

	if exp.ChoiceCount != nil {
		if outcome.Response == nil {
			return fmt.Errorf("expected %d choices, but the action was rejected", *exp.ChoiceCount)
		}
		if len(outcome.Response.Choices) != *exp.ChoiceCount {
			return fmt.Errorf("expected %d choices, got %d: %v", *exp.ChoiceCount, len(outcome.Response.Choices), outcome.Response.Choices)
		}
	}

	if exp.MessageMinLength != nil {
		if len(responseText) < *exp.MessageMinLength {
			return fmt.Errorf("expected message length >= %d, got %d", *exp.MessageMinLength, len(responseText))
		}
	}

	return nil
}
