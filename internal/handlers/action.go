package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/calebmoran/questforge/internal/game"
	"github.com/calebmoran/questforge/pkg/action"
)

// ActionRequest is the request body for POST /v1/action. Clients send
// either a structured action type or the literal choice string shown to
// the player; the choice is translated when no action is given.
type ActionRequest struct {
	CampaignID uuid.UUID   `json:"campaign_id"`
	Action     action.Type `json:"action,omitempty"`
	Choice     string      `json:"choice,omitempty"`
	Data       action.Data `json:"data,omitempty"`
}

type ActionHandler struct {
	engine *game.Service
	logger *slog.Logger
}

func NewActionHandler(engine *game.Service, logger *slog.Logger) *ActionHandler {
	return &ActionHandler{
		engine: engine,
		logger: logger,
	}
}

// ServeHTTP handles POST /v1/action: one player action in, one
// GameResponse out.
func (h *ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for action endpoint", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST", h.logger)
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body", h.logger)
		return
	}

	pa := &action.PlayerAction{
		CampaignID: req.CampaignID,
		Type:       req.Action,
		Data:       req.Data,
	}
	if pa.Type == "" && req.Choice != "" {
		pa.Type = action.FromChoice(req.Choice)
	}

	resp, err := h.engine.ProcessAction(r.Context(), pa)
	if err != nil {
		var verr *game.ValidationError
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, verr.Reason, h.logger)
		case errors.Is(err, game.ErrCampaignNotFound):
			writeError(w, http.StatusNotFound, "Campaign not found", h.logger)
		case errors.Is(err, game.ErrCampaignBusy):
			writeError(w, http.StatusConflict, "Campaign is processing another action", h.logger)
		default:
			h.logger.Error("Failed to process action", "error", err, "campaign_id", req.CampaignID)
			writeError(w, http.StatusInternalServerError, "Failed to process action", h.logger)
		}
		return
	}

	writeJSON(w, http.StatusOK, resp, h.logger)
}
