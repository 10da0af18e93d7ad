package handlers

import (
	"context"
	"net/http"

	"caregame/internal/models"
	"caregame/internal/validation"
)

// ChildStore creates child profiles
type ChildStore interface {
	Create(ctx context.Context, name string, age int) (*models.ChildProfile, error)
}

// SessionRecorder stores a finished game session
type SessionRecorder interface {
	Record(ctx context.Context, childID string, rec models.SessionRecord) (models.SessionRecord, error)
}

// ChildHandler handles child profile and session ingest requests
type ChildHandler struct {
	children ChildStore
	sessions SessionRecorder
}

// NewChildHandler creates a new child handler
func NewChildHandler(children ChildStore, sessions SessionRecorder) *ChildHandler {
	return &ChildHandler{children: children, sessions: sessions}
}

type createChildRequest struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// CreateChild stores a profile. Creating an existing name returns the stored profile.
func (h *ChildHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	var req createChildRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	name := models.NormalizeChildID(req.Name)
	if err := validation.ValidateChildName(name); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if err := validation.ValidateAge(req.Age); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	child, err := h.children.Create(r.Context(), name, req.Age)
	if err != nil {
		respondWithServiceError(w, "Failed to create child", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, child)
}

// RecordSession stores a session posted by a game at the end of play
func (h *ChildHandler) RecordSession(w http.ResponseWriter, r *http.Request) {
	var rec models.SessionRecord
	if !decodeJSON(w, r, &rec) {
		return
	}

	stored, err := h.sessions.Record(r.Context(), r.PathValue("childId"), rec)
	if err != nil {
		respondWithServiceError(w, "Failed to record session", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, stored)
}
