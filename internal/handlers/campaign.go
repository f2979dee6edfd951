package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/calebmoran/questforge/internal/game"
	"github.com/calebmoran/questforge/internal/storage"
)

const defaultEventLimit = 20

// CreateCampaignRequest defines the request body for creating a campaign.
// CharacterName is a shorthand for Character.Name; the full Character
// block overrides individual starting stats, defaults filling the rest.
type CreateCampaignRequest struct {
	Name          string            `json:"name"`
	CharacterName string            `json:"character_name,omitempty"`
	Character     *CharacterRequest `json:"character,omitempty"`
}

// CharacterRequest optionally overrides the starting stat block.
// Zero fields keep their defaults. HP sets both starting and max HP.
type CharacterRequest struct {
	Name    string `json:"name,omitempty"`
	HP      int    `json:"hp,omitempty"`
	Attack  int    `json:"attack,omitempty"`
	Defense int    `json:"defense,omitempty"`
}

type CampaignHandler struct {
	engine  *game.Service
	storage storage.Storage
	logger  *slog.Logger
}

func NewCampaignHandler(engine *game.Service, storage storage.Storage, logger *slog.Logger) *CampaignHandler {
	return &CampaignHandler{
		engine:  engine,
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles campaign CRUD and the event log.
// Routes:
// POST /v1/campaigns               - Create a campaign
// GET /v1/campaigns/{id}           - Read a campaign
// DELETE /v1/campaigns/{id}        - Delete a campaign
// GET /v1/campaigns/{id}/events    - Recent event log entries
func (h *CampaignHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/campaigns"), "/")
	var campaignID uuid.UUID
	var subresource string

	if path != "" {
		parts := strings.SplitN(path, "/", 2)
		id, err := uuid.Parse(parts[0])
		if err != nil {
			h.logger.Warn("Invalid campaign ID", "id", parts[0], "error", err)
			writeError(w, http.StatusBadRequest, "Invalid campaign ID format", h.logger)
			return
		}
		campaignID = id
		if len(parts) == 2 {
			subresource = parts[1]
		}
	}

	switch {
	case r.Method == http.MethodPost && campaignID == uuid.Nil:
		h.handleCreate(w, r)

	case r.Method == http.MethodGet && subresource == "events":
		h.handleEvents(w, r, campaignID)

	case r.Method == http.MethodGet && campaignID != uuid.Nil && subresource == "":
		h.handleRead(w, r, campaignID)

	case r.Method == http.MethodDelete && campaignID != uuid.Nil && subresource == "":
		h.handleDelete(w, r, campaignID)

	default:
		h.logger.Warn("Unsupported campaign route", "method", r.Method, "path", r.URL.Path)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", h.logger)
	}
}

func (h *CampaignHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Creating new campaign")

	var req CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body", h.logger)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Campaign name is required", h.logger)
		return
	}

	spec := game.DefaultCharacterSpec(req.CharacterName)
	if req.Character != nil {
		if req.Character.Name != "" {
			spec.Name = req.Character.Name
		}
		if req.Character.HP > 0 {
			spec.HP = req.Character.HP
			spec.MaxHP = req.Character.HP
		}
		if req.Character.Attack > 0 {
			spec.Attack = req.Character.Attack
		}
		if req.Character.Defense > 0 {
			spec.Defense = req.Character.Defense
		}
	}

	cs, err := h.engine.CreateCampaign(r.Context(), req.Name, spec)
	if err != nil {
		h.logger.Error("Failed to create campaign", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create campaign", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, cs, h.logger)
}

func (h *CampaignHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	cs, err := h.storage.LoadCampaign(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load campaign", "error", err, "campaign_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load campaign", h.logger)
		return
	}
	if cs == nil {
		writeError(w, http.StatusNotFound, "Campaign not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cs, h.logger)
}

func (h *CampaignHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	cs, err := h.storage.LoadCampaign(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load campaign", "error", err, "campaign_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to delete campaign", h.logger)
		return
	}
	if cs == nil {
		writeError(w, http.StatusNotFound, "Campaign not found", h.logger)
		return
	}

	if err := h.storage.DeleteCampaign(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete campaign", "error", err, "campaign_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to delete campaign", h.logger)
		return
	}

	h.logger.Info("Campaign deleted", "campaign_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CampaignHandler) handleEvents(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", h.logger)
			return
		}
		limit = n
	}

	cs, err := h.storage.LoadCampaign(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load campaign", "error", err, "campaign_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load events", h.logger)
		return
	}
	if cs == nil {
		writeError(w, http.StatusNotFound, "Campaign not found", h.logger)
		return
	}

	events, err := h.storage.RecentEvents(r.Context(), id, limit)
	if err != nil {
		h.logger.Error("Failed to load events", "error", err, "campaign_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load events", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, events, h.logger)
}
