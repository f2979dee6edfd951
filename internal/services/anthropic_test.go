package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/calebmoran/questforge/pkg/state"
)

func TestNewAnthropicOracle(t *testing.T) {
	apiKey := "test-api-key"
	modelName := "claude-3-5-haiku-latest"
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	oracle := NewAnthropicOracle(apiKey, modelName, 30*time.Second, log)

	if oracle.apiKey != apiKey {
		t.Errorf("Expected API key %s, got %s", apiKey, oracle.apiKey)
	}

	if oracle.modelName != modelName {
		t.Errorf("Expected model name %s, got %s", modelName, oracle.modelName)
	}

	if oracle.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if oracle.httpClient.Timeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %v", oracle.httpClient.Timeout)
	}
}

func TestAnthropicOracle_InitModel(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	oracle := NewAnthropicOracle("test-key", "claude-3-5-haiku-latest", 30*time.Second, log)

	if err := oracle.InitModel(context.Background(), "test-model"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestParseEventResponse(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantErr     bool
		wantType    state.EventType
		wantHealth  int
		wantItemID  string
		wantMessage string
	}{
		{
			name:       "clean JSON object",
			content:    `{"event":"A cold wind rises.","type":"Environmental","effects":{"health":-3}}`,
			wantType:   state.EventEnvironmental,
			wantHealth: -3,
		},
		{
			name:       "JSON wrapped in prose",
			content:    "Here is the event:\n```json\n{\"event\":\"You find a sword.\",\"type\":\"Item_Drop\",\"item_id\":\"iron_sword\"}\n```",
			wantType:   state.EventItemDrop,
			wantItemID: "iron_sword",
		},
		{
			name:     "unknown type falls back to Descriptive",
			content:  `{"event":"Something odd happens.","type":"Mysterious"}`,
			wantType: state.EventDescriptive,
		},
		{
			name:    "no JSON at all",
			content: "The cave is dark and full of terrors.",
			wantErr: true,
		},
		{
			name:    "empty narration",
			content: `{"event":"","type":"Descriptive"}`,
			wantErr: true,
		},
		{
			name:    "malformed JSON",
			content: `{"event":"broken`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe, err := parseEventResponse(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseEventResponse() expected error, got %+v", pe)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseEventResponse() error = %v", err)
			}
			if pe.Type != tt.wantType {
				t.Errorf("type = %q, want %q", pe.Type, tt.wantType)
			}
			if pe.Effects.Health != tt.wantHealth {
				t.Errorf("health effect = %d, want %d", pe.Effects.Health, tt.wantHealth)
			}
			if pe.ItemID != tt.wantItemID {
				t.Errorf("item_id = %q, want %q", pe.ItemID, tt.wantItemID)
			}
		})
	}
}

func TestBuildEventPrompt(t *testing.T) {
	ec := EventContext{
		CharacterName: "Aria",
		HP:            32,
		MaxHP:         50,
		Attack:        10,
		Defense:       5,
		Scenario:      "a flooded mine",
		ForcedType:    state.EventCombat,
		Trigger:       "search the area",
	}

	prompt := buildEventPrompt(ec)

	for _, want := range []string{"Aria", "HP 32/50", "flooded mine", "search the area", `"Combat"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q: %s", want, prompt)
		}
	}
}
