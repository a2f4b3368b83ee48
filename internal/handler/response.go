package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/gridwar/internal/service"
	"github.com/freeeve/gridwar/pkg/tactics"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads and decodes JSON from a request body.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// writeServiceError maps service and rule errors to HTTP statuses. Rule
// violations are well-formed requests the battle rules reject, so they get
// 422 rather than 400.
func writeServiceError(w http.ResponseWriter, err error) {
	var rerr *tactics.RuleError
	switch {
	case errors.As(err, &rerr):
		writeError(w, http.StatusUnprocessableEntity, rerr.Error())
	case errors.Is(err, service.ErrMatchNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotParticipant):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrMatchBusy):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrMatchNotWaiting),
		errors.Is(err, service.ErrSamePlayer),
		errors.Is(err, service.ErrOpponentMissing),
		errors.Is(err, service.ErrEmptyArmy):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
