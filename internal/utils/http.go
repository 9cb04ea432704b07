package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
)

// WriteJSON encodes data with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}, log zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteError maps domain errors onto HTTP statuses:
// validation -> 422 with field messages, not found -> 404,
// partial analysis -> 409, anything else -> 500 with fallback as the message.
func WriteError(w http.ResponseWriter, err error, fallback string, log zerolog.Logger) {
	if v, ok := domain.AsValidationError(err); ok {
		WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"fields": v.Errors,
		}, log)
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrPartialAnalysis):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Error().Err(err).Msg(fallback)
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

// DecodeJSON decodes a request body, reporting malformed JSON as a validation error on "body".
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return nil
}
