package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/calebmoran/questforge/internal/storage"
)

// ItemsHandler serves the item catalog.
// Routes:
// GET /v1/items       - List all items
// GET /v1/items/{id}  - Read one item
type ItemsHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewItemsHandler(storage storage.Storage, logger *slog.Logger) *ItemsHandler {
	return &ItemsHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *ItemsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET", h.logger)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/items"), "/")
	if id == "" {
		items, err := h.storage.ListItems(r.Context())
		if err != nil {
			h.logger.Error("Failed to list items", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list items", h.logger)
			return
		}
		writeJSON(w, http.StatusOK, items, h.logger)
		return
	}

	item, err := h.storage.GetItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Item not found", h.logger)
			return
		}
		h.logger.Error("Failed to load item", "error", err, "item_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load item", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, item, h.logger)
}

// EnemiesHandler serves the enemy catalog.
// Routes:
// GET /v1/enemies       - List all enemy templates
// GET /v1/enemies/{id}  - Read one enemy template
type EnemiesHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewEnemiesHandler(storage storage.Storage, logger *slog.Logger) *EnemiesHandler {
	return &EnemiesHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *EnemiesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET", h.logger)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/enemies"), "/")
	if id == "" {
		enemies, err := h.storage.ListEnemies(r.Context())
		if err != nil {
			h.logger.Error("Failed to list enemies", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list enemies", h.logger)
			return
		}
		writeJSON(w, http.StatusOK, enemies, h.logger)
		return
	}

	enemy, err := h.storage.GetEnemy(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Enemy not found", h.logger)
			return
		}
		h.logger.Error("Failed to load enemy", "error", err, "enemy_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load enemy", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, enemy, h.logger)
}
