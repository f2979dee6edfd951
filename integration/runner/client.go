package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/calebmoran/questforge/pkg/action"
	"github.com/calebmoran/questforge/pkg/state"
)

// actionRequest mirrors the POST /v1/action request body.
type actionRequest struct {
	CampaignID uuid.UUID   `json:"campaign_id"`
	Action     action.Type `json:"action,omitempty"`
	Choice     string      `json:"choice,omitempty"`
	Data       action.Data `json:"data,omitempty"`
}

// createCampaignRequest mirrors the POST /v1/campaigns request body.
type createCampaignRequest struct {
	Name          string `json:"name"`
	CharacterName string `json:"character_name,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ActionOutcome is the raw result of posting one action: the HTTP status
// plus whichever body variant came back.
type ActionOutcome struct {
	Status   int
	Response *state.GameResponse // Set on 200
	ErrorMsg string              // Set on non-200
}

// CreateCampaign creates a fresh campaign and returns its initial state
func CreateCampaign(ctx context.Context, client *http.Client, baseURL, name, characterName string) (*state.CampaignState, error) {
	reqBody, err := json.Marshal(createCampaignRequest{Name: name, CharacterName: characterName})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal create request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/campaigns", baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send campaign request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create campaign returned %d (expected 201): %s", resp.StatusCode, string(body))
	}

	var cs state.CampaignState
	if err := json.NewDecoder(resp.Body).Decode(&cs); err != nil {
		return nil, fmt.Errorf("failed to decode created campaign: %w", err)
	}
	return &cs, nil
}

// GetCampaign retrieves the current campaign state
func GetCampaign(ctx context.Context, client *http.Client, baseURL string, campaignID uuid.UUID) (*state.CampaignState, error) {
	url := fmt.Sprintf("%s/v1/campaigns/%s", baseURL, campaignID.String())
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send campaign request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("campaign endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var cs state.CampaignState
	if err := json.NewDecoder(resp.Body).Decode(&cs); err != nil {
		return nil, fmt.Errorf("failed to decode campaign: %w", err)
	}
	return &cs, nil
}

// PostAction sends one player action and returns the outcome without
// judging it. The caller decides whether the status matched expectations.
func PostAction(ctx context.Context, client *http.Client, baseURL string, ar actionRequest) (*ActionOutcome, error) {
	reqBody, err := json.Marshal(ar)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal action request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/action", baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create action request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send action request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	outcome := &ActionOutcome{Status: resp.StatusCode}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read action response: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		var gr state.GameResponse
		if err := json.Unmarshal(body, &gr); err != nil {
			return nil, fmt.Errorf("failed to decode action response: %w", err)
		}
		outcome.Response = &gr
		return outcome, nil
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		outcome.ErrorMsg = errResp.Error
	} else {
		outcome.ErrorMsg = string(body)
	}
	return outcome, nil
}
