package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glowdesk/scheduling/internal/appointments"
	"github.com/glowdesk/scheduling/pkg/logging"
)

// AdminAppointmentsHandler serves staff-side appointment management.
type AdminAppointmentsHandler struct {
	store  appointments.Store
	logger *logging.Logger
}

// NewAdminAppointmentsHandler creates the admin appointments handler.
func NewAdminAppointmentsHandler(store appointments.Store, logger *logging.Logger) *AdminAppointmentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminAppointmentsHandler{store: store, logger: logger}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves a confirmed appointment into a terminal status.
// Terminal statuses are immutable; cancel is a status change, never a
// delete.
// POST /admin/tenants/{tenantID}/appointments/{appointmentID}/status
func (h *AdminAppointmentsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		http.Error(w, `{"error": "invalid tenant id"}`, http.StatusBadRequest)
		return
	}
	appointmentID, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		http.Error(w, `{"error": "invalid appointmentID"}`, http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	to := appointments.Status(req.Status)
	if !to.Valid() || to == appointments.StatusConfirmed {
		respondValidation(w, "status", "must be one of completed, cancelled, no_show")
		return
	}

	appt, err := h.store.UpdateStatus(r.Context(), tenantID, appointmentID, to)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	h.logger.Info("appointment status updated",
		"tenant_id", tenantID,
		"appointment_id", appointmentID,
		"status", to,
	)
	respondJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

// GetAppointment returns a single appointment scoped to the tenant.
// GET /admin/tenants/{tenantID}/appointments/{appointmentID}
func (h *AdminAppointmentsHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		http.Error(w, `{"error": "invalid tenant id"}`, http.StatusBadRequest)
		return
	}
	appointmentID, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		http.Error(w, `{"error": "invalid appointmentID"}`, http.StatusBadRequest)
		return
	}

	appt, err := h.store.GetForTenant(r.Context(), tenantID, appointmentID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toAppointmentResponse(appt))
}
