package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/calebmoran/questforge/pkg/state"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return resp.StatusCode == http.StatusOK
}

// CreateCampaignRequest matches the API request structure.
type CreateCampaignRequest struct {
	Name          string `json:"name"`
	CharacterName string `json:"character_name,omitempty"`
}

func createCampaign(client *http.Client, baseURL, name, characterName string) (*state.CampaignState, error) {
	req := CreateCampaignRequest{
		Name:          name,
		CharacterName: characterName,
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/campaigns",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to create campaign: %s", errorResp.Error)
	}

	var cs state.CampaignState
	if err := json.Unmarshal(body, &cs); err != nil {
		return nil, fmt.Errorf("failed to parse campaign response: %w", err)
	}
	return &cs, nil
}

func getCampaign(client *http.Client, baseURL string, id uuid.UUID) (*state.CampaignState, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/campaigns/%s", baseURL, id))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to get campaign: %s", errorResp.Error)
	}

	var cs state.CampaignState
	if err := json.Unmarshal(body, &cs); err != nil {
		return nil, fmt.Errorf("failed to parse campaign response: %w", err)
	}
	return &cs, nil
}

// sendChoice submits the player's selected choice string for resolution.
func sendChoice(client *http.Client, baseURL string, campaignID uuid.UUID, choice string) (*state.GameResponse, error) {
	reqBody := map[string]any{
		"campaign_id": campaignID.String(),
		"choice":      choice,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/action",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("action rejected: %s", errorResp.Error)
	}

	var gr state.GameResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("failed to parse game response: %w", err)
	}
	return &gr, nil
}

func getEvents(client *http.Client, baseURL string, campaignID uuid.UUID, limit int) ([]state.GameEvent, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/campaigns/%s/events?limit=%d", baseURL, campaignID, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to get events: %s", errorResp.Error)
	}

	var events []state.GameEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("failed to parse events response: %w", err)
	}
	return events, nil
}
