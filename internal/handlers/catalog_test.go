package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebmoran/questforge/internal/storage"
	"github.com/calebmoran/questforge/pkg/catalog"
)

func seededCatalogStorage() *storage.MockStorage {
	st := storage.NewMockStorage()
	st.RegisterItem(catalog.Item{ID: "healing_potion", Name: "Healing Potion", Type: catalog.ItemPotion, Heal: 10})
	st.RegisterItem(catalog.Item{ID: "iron_sword", Name: "Iron Sword", Type: catalog.ItemWeapon, Attack: 3})
	st.RegisterEnemy(catalog.Enemy{ID: "giant_rat", Name: "Giant Rat", Health: 8, Attack: 3, Defense: 1, Tier: catalog.TierEasy})
	return st
}

func TestItemsHandler_List(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewItemsHandler(seededCatalogStorage(), logger)

	req := httptest.NewRequest(http.MethodGet, "/v1/items", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var items []catalog.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "healing_potion", items[0].ID)
}

func TestItemsHandler_GetAndMiss(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewItemsHandler(seededCatalogStorage(), logger)

	req := httptest.NewRequest(http.MethodGet, "/v1/items/iron_sword", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var item catalog.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	assert.Equal(t, 3, item.Attack)

	req = httptest.NewRequest(http.MethodGet, "/v1/items/excalibur", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEnemiesHandler_ListAndGet(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewEnemiesHandler(seededCatalogStorage(), logger)

	req := httptest.NewRequest(http.MethodGet, "/v1/enemies", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var enemies []catalog.Enemy
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &enemies))
	require.Len(t, enemies, 1)

	req = httptest.NewRequest(http.MethodGet, "/v1/enemies/giant_rat", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/enemies", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
