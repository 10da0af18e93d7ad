package handlers

import (
	"context"
	"net/http"
	"strings"

	"caregame/internal/service"
	"caregame/internal/validation"
)

// ReportBuilder builds a child's report from all session stores
type ReportBuilder interface {
	Build(ctx context.Context, childID string) (*service.Report, error)
}

// ReportMailer sends a report summary by email
type ReportMailer interface {
	IsEnabled() bool
	SendReport(ctx context.Context, toEmail string, report *service.Report) error
}

// ReportHandler serves caregiver reports
type ReportHandler struct {
	reports ReportBuilder
	mailer  ReportMailer
}

// NewReportHandler creates a new report handler. mailer may be nil.
func NewReportHandler(reports ReportBuilder, mailer ReportMailer) *ReportHandler {
	return &ReportHandler{reports: reports, mailer: mailer}
}

type emailReportRequest struct {
	To string `json:"to"`
}

// GetReport returns the aggregated report for a child
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Build(r.Context(), r.PathValue("childId"))
	if err != nil {
		respondWithServiceError(w, "Failed to build report", err)
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}

// EmailReport sends the report summary to the signed-in caregiver. A "to"
// field is accepted only when it names the caregiver's own address.
func (h *ReportHandler) EmailReport(w http.ResponseWriter, r *http.Request) {
	caregiver := GetCaregiverFromContext(r.Context())
	if caregiver == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}
	if h.mailer == nil || !h.mailer.IsEnabled() {
		respondWithError(w, http.StatusServiceUnavailable, "Email is not configured", "", nil)
		return
	}

	var req emailReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	to := strings.TrimSpace(req.To)
	if to == "" {
		to = caregiver.Email
	}
	if !strings.EqualFold(to, caregiver.Email) {
		respondWithError(w, http.StatusForbidden, ErrForbiddenRecipient, "", nil)
		return
	}
	if err := validation.ValidateEmail(caregiver.Email); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	report, err := h.reports.Build(r.Context(), r.PathValue("childId"))
	if err != nil {
		respondWithServiceError(w, "Failed to build report", err)
		return
	}

	if err := h.mailer.SendReport(r.Context(), caregiver.Email, report); err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to send email", "Failed to send report email", err)
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}
