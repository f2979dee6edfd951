package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/calebmoran/questforge/pkg/state"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"

	DefaultAnthropicTemperature = 0.7
	DefaultAnthropicMaxTokens   = 1024
)

// AnthropicOracle implements NarrativeOracle against the Anthropic
// Messages API.
type AnthropicOracle struct {
	apiKey     string
	modelName  string
	httpClient *http.Client
	logger     *slog.Logger
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AnthropicChatRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Stream      bool               `json:"stream,omitempty"`
}

type AnthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type AnthropicChatResponse struct {
	ID         string                  `json:"id"`
	Type       string                  `json:"type"`
	Role       string                  `json:"role"`
	Content    []AnthropicContentBlock `json:"content"`
	Model      string                  `json:"model"`
	StopReason string                  `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewAnthropicOracle(apiKey string, modelName string, timeout time.Duration, logger *slog.Logger) *AnthropicOracle {
	return &AnthropicOracle{
		apiKey:    apiKey,
		modelName: modelName,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (a *AnthropicOracle) InitModel(ctx context.Context, modelName string) error {
	return nil
}

// Ping issues a minimal request to verify the API key and model.
func (a *AnthropicOracle) Ping(ctx context.Context) error {
	_, err := a.chatCompletion(ctx, "", "ping")
	return err
}

const eventSystemPrompt = `You are the narrator of a dungeon-crawl roleplaying game. ` +
	`Given the character's situation, invent the next story beat. ` +
	`Respond with a single JSON object and nothing else, matching this shape: ` +
	`{"event": "one or two sentences of narration", ` +
	`"type": "Descriptive|Environmental|Combat|Item_Drop", ` +
	`"effects": {"health": 0, "attack": 0, "defense": 0}, ` +
	`"item_id": ""}. ` +
	`Effects are small integers in [-10, 10]. Use item_id only for Item_Drop events.`

const narrateSystemPrompt = `You are the narrator of a dungeon-crawl roleplaying game. ` +
	`Write one or two sentences of vivid second-person narration for the situation described. ` +
	`Respond with the narration only, no preamble and no JSON.`

// GenerateEvent asks the model for a structured event and parses the
// JSON object out of its reply.
func (a *AnthropicOracle) GenerateEvent(ctx context.Context, ec EventContext) (*state.PendingEvent, error) {
	content, err := a.chatCompletion(ctx, eventSystemPrompt, buildEventPrompt(ec))
	if err != nil {
		return nil, err
	}

	pe, err := parseEventResponse(content)
	if err != nil {
		a.logger.Warn("Unparseable oracle event", "error", err, "content", content)
		return nil, err
	}
	if ec.ForcedType != "" {
		pe.Type = ec.ForcedType
	}
	return pe, nil
}

// Narrate returns plain flavor text.
func (a *AnthropicOracle) Narrate(ctx context.Context, ec EventContext) (string, error) {
	content, err := a.chatCompletion(ctx, narrateSystemPrompt, buildEventPrompt(ec))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func buildEventPrompt(ec EventContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Character: %s (HP %d/%d, ATK %d, DEF %d).",
		ec.CharacterName, ec.HP, ec.MaxHP, ec.Attack, ec.Defense)
	if ec.Scenario != "" {
		fmt.Fprintf(&b, " Setting: %s.", ec.Scenario)
	}
	if ec.Trigger != "" {
		fmt.Fprintf(&b, " The character just chose to: %s.", ec.Trigger)
	}
	if ec.ForcedType != "" {
		fmt.Fprintf(&b, " The event type must be %q.", ec.ForcedType)
	}
	return b.String()
}

// parseEventResponse extracts the first JSON object from the model's
// reply. Models sometimes wrap the object in prose or code fences.
func parseEventResponse(content string) (*state.PendingEvent, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object in oracle response")
	}

	var pe state.PendingEvent
	if err := json.Unmarshal([]byte(content[start:end+1]), &pe); err != nil {
		return nil, fmt.Errorf("failed to parse oracle event: %w", err)
	}
	if pe.Event == "" {
		return nil, fmt.Errorf("oracle event missing narration")
	}
	if !state.KnownEventType(pe.Type) {
		pe.Type = state.EventDescriptive
	}
	return &pe, nil
}

func (a *AnthropicOracle) chatCompletion(ctx context.Context, system string, user string) (string, error) {
	temperature := DefaultAnthropicTemperature
	anthropicReq := AnthropicChatRequest{
		Model:       a.modelName,
		MaxTokens:   DefaultAnthropicMaxTokens,
		Temperature: &temperature,
		Messages: []anthropicMessage{
			{Role: "user", Content: user},
		},
		System: system,
		Stream: false,
	}

	reqBody, err := json.Marshal(anthropicReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", anthropicBaseURL+"/messages", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var anthropicResp AnthropicChatResponse
	if err := json.Unmarshal(body, &anthropicResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if anthropicResp.Error != nil {
		return "", fmt.Errorf("API error: %s", anthropicResp.Error.Message)
	}

	var responseText string
	for _, content := range anthropicResp.Content {
		if content.Type == "text" {
			responseText += content.Text
		}
	}

	if responseText == "" {
		return "", fmt.Errorf("empty oracle response")
	}

	return responseText, nil
}
