package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebmoran/questforge/internal/game"
	"github.com/calebmoran/questforge/internal/services"
	"github.com/calebmoran/questforge/internal/storage"
	"github.com/calebmoran/questforge/pkg/actor"
	"github.com/calebmoran/questforge/pkg/catalog"
	"github.com/calebmoran/questforge/pkg/dice"
	"github.com/calebmoran/questforge/pkg/state"
)

func setupActionHandler(t *testing.T, rolls ...int) (*ActionHandler, *storage.MockStorage) {
	t.Helper()

	st := storage.NewMockStorage()
	st.RegisterItem(catalog.Item{ID: "healing_potion", Name: "Healing Potion", Type: catalog.ItemPotion, Heal: 10})
	st.RegisterEnemy(catalog.Enemy{ID: "giant_rat", Name: "Giant Rat", Health: 8, Attack: 3, Defense: 1, Tier: catalog.TierEasy})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var roller dice.Roller = dice.New()
	if len(rolls) > 0 {
		roller = dice.NewFixed(rolls...)
	}
	engine := game.NewService(st, services.NewMockOracle(), roller, game.DefaultPolicy(), logger)

	return NewActionHandler(engine, logger), st
}

func seedHandlerCampaign(t *testing.T, st *storage.MockStorage) *state.CampaignState {
	t.Helper()

	c, err := actor.NewCharacterFromSpec(&actor.CharacterSpec{
		ID: "player", Name: "Hero", HP: 50, MaxHP: 50, Attack: 10, Defense: 5,
	})
	require.NoError(t, err)

	cs := state.NewCampaign("handler test", c)
	require.NoError(t, st.SaveCampaign(context.Background(), cs.ID, cs))
	return cs
}

func postAction(t *testing.T, h *ActionHandler, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/action", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestActionHandler_StructuredAction(t *testing.T) {
	h, st := setupActionHandler(t, 5)
	cs := seedHandlerCampaign(t, st)

	w := postAction(t, h, map[string]any{
		"campaign_id": cs.ID,
		"action":      "continue",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp state.GameResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, state.ResponseStory, resp.Type)
	assert.Equal(t, state.PhaseExploration, resp.Phase)
	assert.NotEmpty(t, resp.Choices)
}

func TestActionHandler_ChoiceStringTranslated(t *testing.T) {
	h, st := setupActionHandler(t, 5)
	cs := seedHandlerCampaign(t, st)

	w := postAction(t, h, map[string]any{
		"campaign_id": cs.ID,
		"choice":      "Search the Area",
	})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestActionHandler_UnrecognizedChoiceDefaultsToContinue(t *testing.T) {
	h, st := setupActionHandler(t, 5)
	cs := seedHandlerCampaign(t, st)

	w := postAction(t, h, map[string]any{
		"campaign_id": cs.ID,
		"choice":      "Do a backflip",
	})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestActionHandler_UnknownActionRejected(t *testing.T) {
	h, st := setupActionHandler(t)
	cs := seedHandlerCampaign(t, st)

	w := postAction(t, h, map[string]any{
		"campaign_id": cs.ID,
		"action":      "teleport",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Contains(t, errResp.Error, "teleport")
}

func TestActionHandler_MissingCampaign(t *testing.T) {
	h, _ := setupActionHandler(t)

	w := postAction(t, h, map[string]any{
		"campaign_id": uuid.New(),
		"action":      "continue",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActionHandler_BusyCampaign(t *testing.T) {
	h, st := setupActionHandler(t)
	cs := seedHandlerCampaign(t, st)

	locked, err := st.AcquireLock(context.Background(), cs.ID, "other", 30*time.Second)
	require.NoError(t, err)
	require.True(t, locked)

	w := postAction(t, h, map[string]any{
		"campaign_id": cs.ID,
		"action":      "continue",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestActionHandler_InvalidJSON(t *testing.T) {
	h, _ := setupActionHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/action", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActionHandler_MethodNotAllowed(t *testing.T) {
	h, _ := setupActionHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/action", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
