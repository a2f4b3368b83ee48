package handler

import (
	"net/http"

	"github.com/freeeve/gridwar/internal/auth"
	"github.com/freeeve/gridwar/internal/service"
)

// MatchHandler handles match lifecycle and in-game action endpoints.
type MatchHandler struct {
	matchSvc  *service.MatchService
	actionSvc *service.ActionService
}

// NewMatchHandler creates a MatchHandler.
func NewMatchHandler(matchSvc *service.MatchService, actionSvc *service.ActionService) *MatchHandler {
	return &MatchHandler{matchSvc: matchSvc, actionSvc: actionSvc}
}

// CreateMatch handles POST /api/v1/matches
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		OpponentID string                   `json:"opponent_id"`
		Board      service.BoardPreset      `json:"board"`
		Placements []service.GroupPlacement `json:"placements"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OpponentID == "" {
		writeError(w, http.StatusBadRequest, "opponent_id is required")
		return
	}

	match, err := h.matchSvc.CreateMatch(r.Context(), userID, req.OpponentID, req.Board, req.Placements)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, match)
}

// ListMatches handles GET /api/v1/matches
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	matches, err := h.matchSvc.ListMatches(r.Context(), userID, r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if matches == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// GetMatch handles GET /api/v1/matches/{id}
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	detail, err := h.matchSvc.GetMatch(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// AcceptMatch handles POST /api/v1/matches/{id}/accept
func (h *MatchHandler) AcceptMatch(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	match, err := h.matchSvc.AcceptMatch(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

// DeclineMatch handles DELETE /api/v1/matches/{id}
func (h *MatchHandler) DeclineMatch(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if err := h.matchSvc.DeclineMatch(r.Context(), r.PathValue("id"), userID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "declined"})
}

// Move handles POST /api/v1/matches/{id}/move
func (h *MatchHandler) Move(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		GroupID string `json:"group_id"`
		X       int    `json:"x"`
		Y       int    `json:"y"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.actionSvc.Move(r.Context(), r.PathValue("id"), userID, req.GroupID, req.X, req.Y)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Attack handles POST /api/v1/matches/{id}/attack
func (h *MatchHandler) Attack(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		GroupID  string `json:"group_id"`
		TargetID string `json:"target_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.actionSvc.Attack(r.Context(), r.PathValue("id"), userID, req.GroupID, req.TargetID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Skip handles POST /api/v1/matches/{id}/skip
func (h *MatchHandler) Skip(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		GroupID string `json:"group_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.actionSvc.Skip(r.Context(), r.PathValue("id"), userID, req.GroupID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Surrender handles POST /api/v1/matches/{id}/surrender
func (h *MatchHandler) Surrender(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	result, err := h.actionSvc.Surrender(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Actions handles GET /api/v1/matches/{id}/actions
func (h *MatchHandler) Actions(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	actions, err := h.matchSvc.AvailableActions(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, actions)
}

// Board handles GET /api/v1/matches/{id}/board
func (h *MatchHandler) Board(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.matchSvc.GetBoardSnapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// Log handles GET /api/v1/matches/{id}/log
func (h *MatchHandler) Log(w http.ResponseWriter, r *http.Request) {
	entries, err := h.matchSvc.MatchLog(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if entries == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
