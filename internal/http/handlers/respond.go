package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/glowdesk/scheduling/internal/appointments"
	"github.com/glowdesk/scheduling/internal/availability"
	"github.com/glowdesk/scheduling/internal/bookingflow"
	"github.com/glowdesk/scheduling/internal/catalog"
	"github.com/glowdesk/scheduling/internal/staff"
	"github.com/glowdesk/scheduling/pkg/logging"
)

type errorResponse struct {
	Error   string                   `json:"error"`
	Message string                   `json:"message"`
	Fields  []bookingflow.FieldError `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondDomainError maps domain errors onto the HTTP taxonomy:
// 422 validation, 409 conflict, 404 not found, 503 store unavailable.
// Messages are derived from the error kind only; storage details never
// reach the wire.
func respondDomainError(w http.ResponseWriter, logger *logging.Logger, err error) {
	if ve, ok := bookingflow.AsValidation(err); ok {
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation",
			Message: "invalid request",
			Fields:  ve.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, bookingflow.ErrNoAvailability):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   "no_availability",
			Message: "no bookable slots for the requested staff, date, and duration",
		})
	case errors.Is(err, availability.ErrInvalidDate):
		respondValidation(w, "date", "must be formatted YYYY-MM-DD")
	case errors.Is(err, availability.ErrInvalidDuration):
		respondValidation(w, "duration", "must be a positive number of minutes")
	case errors.Is(err, catalog.ErrServiceNotFound):
		respondValidation(w, "service_ids", "unknown or inactive service")
	case errors.Is(err, appointments.ErrStaffNotBookable):
		respondValidation(w, "staff_id", "staff member is not accepting bookings")
	case errors.Is(err, appointments.ErrOutsideWorkingHours):
		respondValidation(w, "start", "outside the staff member's working hours")
	case errors.Is(err, appointments.ErrLeadTimeViolated):
		respondValidation(w, "start", "too soon; minimum lead time not met")
	case errors.Is(err, appointments.ErrInvalidTransition):
		respondValidation(w, "status", "transition not permitted from the current status")
	case errors.Is(err, appointments.ErrConflict):
		respondJSON(w, http.StatusConflict, errorResponse{
			Error:   "conflict",
			Message: "the selected time was just taken; refresh the slot list and pick again",
		})
	case errors.Is(err, staff.ErrMemberNotFound), errors.Is(err, appointments.ErrAppointmentNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: "resource not found",
		})
	case errors.Is(err, appointments.ErrStoreUnavailable):
		logger.Error("store unavailable", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:   "store_unavailable",
			Message: "the booking store is temporarily unreachable; retry the request",
		})
	default:
		logger.Error("unhandled error", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "internal",
			Message: "internal server error",
		})
	}
}

func respondValidation(w http.ResponseWriter, field, reason string) {
	respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Error:   "validation",
		Message: "invalid request",
		Fields:  []bookingflow.FieldError{{Field: field, Reason: reason}},
	})
}
