package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tagirkamaev/to-do-v2/logging"
	"github.com/tagirkamaev/to-do-v2/services"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeFieldErrors(w http.ResponseWriter, fieldErrors []FieldError) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": fieldErrors})
}

// handleServiceError maps service errors to the HTTP taxonomy. Ownership
// mismatches and missing documents share one 404 so existence never leaks.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrEmailTaken):
		writeMessage(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrWrongPassword):
		writeMessage(w, http.StatusUnauthorized, "Wrong password")
	default:
		logging.Logger.Errorf("Event ID: INTERNAL_ERROR, Description: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}
