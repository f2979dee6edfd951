package services

import (
	"context"
	"sync"

	"github.com/calebmoran/questforge/pkg/state"
)

// MockOracle is a mock implementation of NarrativeOracle for testing
// and for running the API without an LLM provider.
type MockOracle struct {
	GenerateEventFunc func(ctx context.Context, ec EventContext) (*state.PendingEvent, error)
	NarrateFunc       func(ctx context.Context, ec EventContext) (string, error)
	PingFunc          func(ctx context.Context) error

	// Track calls for testing
	GenerateEventCalls []EventContext
	NarrateCalls       []EventContext

	mu sync.Mutex // protects all fields above
}

func NewMockOracle() *MockOracle {
	return &MockOracle{
		GenerateEventCalls: make([]EventContext, 0),
		NarrateCalls:       make([]EventContext, 0),
	}
}

func (m *MockOracle) InitModel(ctx context.Context, modelName string) error {
	return nil
}

// GenerateEvent records the call and returns a canned event matching the
// forced type if one was requested.
func (m *MockOracle) GenerateEvent(ctx context.Context, ec EventContext) (*state.PendingEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateEventCalls = append(m.GenerateEventCalls, ec)

	if m.GenerateEventFunc != nil {
		return m.GenerateEventFunc(ctx, ec)
	}

	pe := &state.PendingEvent{
		Event: "A strange glow seeps from a crack in the wall.",
		Type:  state.EventDescriptive,
	}
	switch ec.ForcedType {
	case state.EventEnvironmental:
		pe.Type = state.EventEnvironmental
		pe.Event = "A shimmering spring bubbles up through the floor."
		pe.Effects = state.EventEffects{Health: 5}
	case state.EventItemDrop:
		pe.Type = state.EventItemDrop
		pe.Event = "Something metallic glints beneath the rubble."
	case state.EventCombat:
		pe.Type = state.EventCombat
		pe.Event = "A snarl echoes from the dark."
	}
	return pe, nil
}

// Narrate records the call and returns canned flavor text.
func (m *MockOracle) Narrate(ctx context.Context, ec EventContext) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.NarrateCalls = append(m.NarrateCalls, ec)

	if m.NarrateFunc != nil {
		return m.NarrateFunc(ctx, ec)
	}
	return "You press on through the silent corridor.", nil
}

func (m *MockOracle) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// SetGenerateEventError configures GenerateEvent to fail.
func (m *MockOracle) SetGenerateEventError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateEventFunc = func(ctx context.Context, ec EventContext) (*state.PendingEvent, error) {
		return nil, err
	}
}

// SetNarrateError configures Narrate to fail.
func (m *MockOracle) SetNarrateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NarrateFunc = func(ctx context.Context, ec EventContext) (string, error) {
		return "", err
	}
}
