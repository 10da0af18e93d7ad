package handlers

import (
	"context"
	"net/http"

	"caregame/internal/models"
)

// AccountService registers and signs in caregivers
type AccountService interface {
	Register(ctx context.Context, email, password, name string) (*models.Caregiver, error)
	Login(ctx context.Context, email, password string) (string, *models.Caregiver, error)
}

// CaregiverHandler handles caregiver account requests
type CaregiverHandler struct {
	accounts AccountService
}

// NewCaregiverHandler creates a new caregiver handler
func NewCaregiverHandler(accounts AccountService) *CaregiverHandler {
	return &CaregiverHandler{accounts: accounts}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string            `json:"token"`
	Caregiver *models.Caregiver `json:"caregiver"`
}

// Register creates an account and signs the caregiver in
func (h *CaregiverHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.accounts.Register(r.Context(), req.Email, req.Password, req.Name); err != nil {
		respondWithServiceError(w, "Failed to register caregiver", err)
		return
	}

	token, caregiver, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, "Failed to sign in new caregiver", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, tokenResponse{Token: token, Caregiver: caregiver})
}

// Login exchanges credentials for a token
func (h *CaregiverHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, caregiver, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, "Failed to sign in caregiver", err)
		return
	}

	respondWithJSON(w, http.StatusOK, tokenResponse{Token: token, Caregiver: caregiver})
}
