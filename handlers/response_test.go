package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tagirkamaev/to-do-v2/services"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"not found", services.ErrNotFound, http.StatusNotFound, "Not found"},
		{"email taken", services.ErrEmailTaken, http.StatusBadRequest, "User already exists"},
		{"invalid credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"wrong password", services.ErrWrongPassword, http.StatusUnauthorized, "Wrong password"},
		{"anything else is internal", errors.New("mongo went away"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handleServiceError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
			assert.JSONEq(t, `{"message":"`+tt.wantMessage+`"}`, w.Body.String())
		})
	}
}

func TestWriteFieldErrors(t *testing.T) {
	w := httptest.NewRecorder()
	writeFieldErrors(w, []FieldError{{Field: "title", Message: "title is required"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"errors":[{"field":"title","message":"title is required"}]}`, w.Body.String())
}
