package handlers

import (
	"net/http"

	"civicreport/internal/auth"
	"civicreport/internal/middleware"
	"civicreport/internal/models"
	"civicreport/internal/service"
)

// ReportHandler handles report creation, queries, review, assignment and
// status updates.
type ReportHandler struct {
	reports    *service.ReportService
	lifecycle  *service.LifecycleService
	assignment *service.AssignmentService
}

func NewReportHandler(reports *service.ReportService, lifecycle *service.LifecycleService, assignment *service.AssignmentService) *ReportHandler {
	return &ReportHandler{reports: reports, lifecycle: lifecycle, assignment: assignment}
}

// Create submits a new report. The author comes from the session.
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req service.CreateReportInput
	if !decodeJSON(w, r, &req) {
		return
	}

	report, err := h.reports.Create(userID, req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, report)
}

// Get returns a single report.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid report id")
		return
	}

	report, err := h.reports.Get(id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

// List returns the published reports, optionally filtered by category.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		reports, err := h.reports.ListByCategory(models.OfficeType(category))
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, reports)
		return
	}

	reports, err := h.reports.ListPublished()
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reports)
}

// ListPending returns reports awaiting review.
func (h *ReportHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.ListPending()
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reports)
}

// ListMine returns the authenticated citizen's own reports.
func (h *ReportHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	reports, err := h.reports.ListMine(userID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reports)
}

// ListAssigned returns the reports bound to the authenticated officer or
// maintainer.
func (h *ReportHandler) ListAssigned(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var reports []models.Report
	var err error
	switch claims.Actor {
	case auth.ActorOfficer:
		reports, err = h.reports.ListAssignedToOfficer(claims.UserID)
	case auth.ActorMaintainer:
		reports, err = h.reports.ListAssignedToMaintainer(claims.UserID)
	default:
		respondWithError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reports)
}

// Review approves or declines a pending report. An approval may bind a
// technical officer in the same call.
func (h *ReportHandler) Review(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid report id")
		return
	}

	var req struct {
		Decision        models.ReportState `json:"decision"`
		Reason          *string            `json:"reason,omitempty"`
		AssignOfficerID *uint              `json:"assign_officer_id,omitempty"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	report, err := h.lifecycle.ReviewReport(reviewerID, id, req.Decision, req.Reason, req.AssignOfficerID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

// AssignOfficer binds a technical officer to an approved report.
func (h *ReportHandler) AssignOfficer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid report id")
		return
	}

	var req struct {
		OfficerID uint `json:"officer_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.assignment.AssignToOfficer(id, req.OfficerID); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

// AssignMaintainer binds a maintainer to a report. The acting officer comes
// from the session; the service checks it against the report's assignment.
func (h *ReportHandler) AssignMaintainer(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid report id")
		return
	}

	var req struct {
		MaintainerID uint `json:"maintainer_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.assignment.AssignToMaintainer(claims.UserID, id, req.MaintainerID); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

// UpdateStatus moves a report between the operational states. The acting
// party comes from the session.
func (h *ReportHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid report id")
		return
	}

	var req struct {
		State  models.ReportState `json:"state"`
		Reason *string            `json:"reason,omitempty"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var actor models.ParticipantRef
	switch claims.Actor {
	case auth.ActorOfficer:
		actor = models.ParticipantRef{Type: models.ParticipantOfficer, ID: claims.UserID}
	case auth.ActorMaintainer:
		actor = models.ParticipantRef{Type: models.ParticipantMaintainer, ID: claims.UserID}
	default:
		respondWithError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	report, err := h.lifecycle.UpdateStatus(actor, id, req.State, req.Reason)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"id": report.ID, "state": report.State})
}

// Follow subscribes the authenticated citizen to a report.
func (h *ReportHandler) Follow(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid report id")
		return
	}

	if err := h.reports.Follow(userID, id); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "following"})
}

// Unfollow removes the subscription.
func (h *ReportHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid report id")
		return
	}

	if err := h.reports.Unfollow(userID, id); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "unfollowed"})
}
