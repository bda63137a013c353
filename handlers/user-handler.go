package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tagirkamaev/to-do-v2/models"
	"github.com/tagirkamaev/to-do-v2/services"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type authResponse struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if fieldErrors := validateStruct(req); len(fieldErrors) > 0 {
		writeFieldErrors(w, fieldErrors)
		return
	}

	user, token, err := h.service.RegisterUser(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user.Summary()})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if fieldErrors := validateStruct(req); len(fieldErrors) > 0 {
		writeFieldErrors(w, fieldErrors)
		return
	}

	user, token, err := h.service.LoginUser(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user.Summary()})
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), owner)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user.Summary())
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if fieldErrors := validateStruct(req); len(fieldErrors) > 0 {
		writeFieldErrors(w, fieldErrors)
		return
	}

	user, err := h.service.UpdateName(r.Context(), owner, req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user.Summary())
}
