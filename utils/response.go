package utils

import (
	"encoding/json"
	"net/http"
)

// Stable error kinds returned alongside human-readable messages so clients
// do not have to pattern-match on message strings.
const (
	ErrNotFound     = "not_found"
	ErrValidation   = "validation_error"
	ErrConflict     = "state_conflict"
	ErrExternal     = "external_error"
	ErrUnauthorized = "unauthorized"
	ErrInternal     = "internal_error"
)

type M map[string]interface{}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func RespondWithError(w http.ResponseWriter, statusCode int, kind, msg string) {
	RespondWithJSON(w, statusCode, M{"error": msg, "code": kind})
}

func SendResponse(w http.ResponseWriter, status int, data any, message string, err error) {
	resp := M{
		"status":  status,
		"message": message,
		"data":    data,
	}
	if err != nil {
		resp["error"] = err.Error()
	}
	RespondWithJSON(w, status, resp)
}
