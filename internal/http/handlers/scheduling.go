package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glowdesk/scheduling/internal/appointments"
	"github.com/glowdesk/scheduling/internal/availability"
	"github.com/glowdesk/scheduling/internal/bookingflow"
	"github.com/glowdesk/scheduling/internal/catalog"
	"github.com/glowdesk/scheduling/internal/schedule"
	"github.com/glowdesk/scheduling/pkg/logging"
)

// SchedulingHandler serves the public booking endpoints: slot queries,
// booking creation, and reschedules.
type SchedulingHandler struct {
	catalog      catalog.Repository
	availability *availability.Service
	guard        *appointments.Guard
	flows        *bookingflow.Engine
	logger       *logging.Logger
}

// NewSchedulingHandler creates the public scheduling HTTP handler.
func NewSchedulingHandler(catalogRepo catalog.Repository, avail *availability.Service, guard *appointments.Guard, flows *bookingflow.Engine, logger *logging.Logger) *SchedulingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SchedulingHandler{
		catalog:      catalogRepo,
		availability: avail,
		guard:        guard,
		flows:        flows,
		logger:       logger,
	}
}

type slotResponse struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

type slotsResponse struct {
	StaffID string         `json:"staff_id"`
	Date    string         `json:"date"`
	Slots   []slotResponse `json:"slots"`
}

// GetSlots returns every candidate slot for a staff member and date.
// GET /tenants/{tenantID}/staff/{staffID}/slots?date=YYYY-MM-DD&duration=45
func (h *SchedulingHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	tenantID, staffID, ok := h.pathIDs(w, r, "staffID")
	if !ok {
		return
	}
	date := r.URL.Query().Get("date")
	durationMinutes, err := positiveIntQuery(r, "duration")
	if err != nil {
		respondValidation(w, "duration", "must be a positive number of minutes")
		return
	}

	slots, err := h.availability.GetSlots(r.Context(), tenantID, staffID, date, time.Duration(durationMinutes)*time.Minute)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	resp := slotsResponse{StaffID: staffID.String(), Date: date, Slots: make([]slotResponse, 0, len(slots))}
	for _, s := range slots {
		resp.Slots = append(resp.Slots, slotResponse{Start: s.Start, End: s.End, Available: s.Available})
	}
	respondJSON(w, http.StatusOK, resp)
}

type serviceResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Category        string `json:"category,omitempty"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int64  `json:"price_cents"`
}

// ListServices returns the tenant's active service catalog.
// GET /tenants/{tenantID}/services
func (h *SchedulingHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	services, err := h.catalog.ListActive(r.Context(), tenantID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	out := make([]serviceResponse, 0, len(services))
	for _, s := range services {
		out = append(out, serviceResponse{
			ID:              s.ID.String(),
			Name:            s.Name,
			Category:        s.Category,
			DurationMinutes: s.DurationMinutes,
			PriceCents:      s.PriceCents,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"services": out})
}

type customerPayload struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	TermsAccepted bool   `json:"terms_accepted"`
}

type createBookingRequest struct {
	StaffID    uuid.UUID       `json:"staff_id"`
	Start      time.Time       `json:"start"`
	ServiceIDs []uuid.UUID     `json:"service_ids"`
	Customer   customerPayload `json:"customer"`
}

type appointmentResponse struct {
	AppointmentID   string    `json:"appointment_id"`
	StaffID         string    `json:"staff_id"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	Status          string    `json:"status"`
	TotalPriceCents int64     `json:"total_price_cents"`
}

func toAppointmentResponse(appt *appointments.Appointment) appointmentResponse {
	return appointmentResponse{
		AppointmentID:   appt.ID.String(),
		StaffID:         appt.StaffID.String(),
		Start:           appt.Range.Start,
		End:             appt.Range.End,
		Status:          string(appt.Status),
		TotalPriceCents: appt.TotalPriceCents,
	}
}

// CreateBooking validates the request and commits the appointment in a
// single call. The commit is the only exclusivity enforcement point;
// nothing is reserved before it.
// POST /tenants/{tenantID}/bookings
func (h *SchedulingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if len(req.ServiceIDs) == 0 {
		respondValidation(w, "service_ids", "at least one service required")
		return
	}
	if req.Start.IsZero() {
		respondValidation(w, "start", "required, RFC3339 with offset")
		return
	}
	customer := bookingflow.CustomerInfo{
		Name:          req.Customer.Name,
		Email:         req.Customer.Email,
		Phone:         req.Customer.Phone,
		TermsAccepted: req.Customer.TermsAccepted,
	}
	if ve := customer.Validate(); ve != nil {
		respondDomainError(w, h.logger, ve)
		return
	}

	services, err := h.catalog.GetByIDs(r.Context(), tenantID, req.ServiceIDs)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	rng, err := schedule.NewTimeRange(req.Start, req.Start.Add(catalog.TotalDuration(services)))
	if err != nil {
		respondValidation(w, "start", "produces an invalid time range")
		return
	}

	appt, err := h.guard.Commit(r.Context(), appointments.CreateParams{
		TenantID:        tenantID,
		StaffID:         req.StaffID,
		Range:           rng,
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		CustomerPhone:   customer.Phone,
		ServiceIDs:      req.ServiceIDs,
		TotalPriceCents: catalog.TotalPriceCents(services),
	})
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAppointmentResponse(appt))
}

type rescheduleRequest struct {
	NewStart time.Time `json:"new_start"`
}

// Reschedule moves a confirmed appointment to a new start, preserving
// its duration. Conflicts leave the appointment untouched.
// POST /tenants/{tenantID}/appointments/{appointmentID}/reschedule
func (h *SchedulingHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	tenantID, appointmentID, ok := h.pathIDs(w, r, "appointmentID")
	if !ok {
		return
	}
	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if req.NewStart.IsZero() {
		respondValidation(w, "new_start", "required, RFC3339 with offset")
		return
	}

	appt, err := h.flows.Reschedule(r.Context(), tenantID, appointmentID, req.NewStart, nil)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

// tenantID reads the tenant from the URL. The tenant middleware has
// already validated the format.
func (h *SchedulingHandler) tenantID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		http.Error(w, `{"error": "invalid tenant id"}`, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *SchedulingHandler) pathIDs(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, uuid.UUID, bool) {
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		http.Error(w, `{"error": "invalid `+param+`"}`, http.StatusBadRequest)
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, id, true
}

func positiveIntQuery(r *http.Request, key string) (int, error) {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
