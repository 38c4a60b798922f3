package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glowdesk/scheduling/internal/settings"
	"github.com/glowdesk/scheduling/pkg/logging"
)

// AdminSettingsHandler manages per-tenant scheduling settings.
type AdminSettingsHandler struct {
	store  *settings.Store
	logger *logging.Logger
}

// NewAdminSettingsHandler creates the settings handler.
func NewAdminSettingsHandler(store *settings.Store, logger *logging.Logger) *AdminSettingsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminSettingsHandler{store: store, logger: logger}
}

// GetSettings returns the tenant settings, defaults when unset.
// GET /admin/tenants/{tenantID}/settings
func (h *AdminSettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		http.Error(w, `{"error": "invalid tenant id"}`, http.StatusBadRequest)
		return
	}
	cfg, err := h.store.Get(r.Context(), tenantID.String())
	if err != nil {
		h.logger.Error("failed to get tenant settings", "tenant_id", tenantID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

type updateSettingsRequest struct {
	BusinessName           string `json:"business_name,omitempty"`
	Timezone               string `json:"timezone,omitempty"`
	SlotGranularityMinutes *int   `json:"slot_granularity_minutes,omitempty"`
	MinimumLeadTimeMinutes *int   `json:"minimum_lead_time_minutes,omitempty"`
}

// UpdateSettings merges the request into the stored settings.
// PUT /admin/tenants/{tenantID}/settings
func (h *AdminSettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		http.Error(w, `{"error": "invalid tenant id"}`, http.StatusBadRequest)
		return
	}
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			respondValidation(w, "timezone", "unknown IANA timezone")
			return
		}
	}
	if req.SlotGranularityMinutes != nil && *req.SlotGranularityMinutes <= 0 {
		respondValidation(w, "slot_granularity_minutes", "must be positive")
		return
	}
	if req.MinimumLeadTimeMinutes != nil && *req.MinimumLeadTimeMinutes < 0 {
		respondValidation(w, "minimum_lead_time_minutes", "must not be negative")
		return
	}

	cfg, err := h.store.Get(r.Context(), tenantID.String())
	if err != nil {
		h.logger.Error("failed to get tenant settings", "tenant_id", tenantID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if req.BusinessName != "" {
		cfg.BusinessName = req.BusinessName
	}
	if req.Timezone != "" {
		cfg.Timezone = req.Timezone
	}
	if req.SlotGranularityMinutes != nil {
		cfg.SlotGranularityMinutes = *req.SlotGranularityMinutes
	}
	if req.MinimumLeadTimeMinutes != nil {
		cfg.MinimumLeadTime = time.Duration(*req.MinimumLeadTimeMinutes) * time.Minute
	}

	if err := h.store.Set(r.Context(), cfg); err != nil {
		h.logger.Error("failed to save tenant settings", "tenant_id", tenantID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	h.logger.Info("tenant settings updated", "tenant_id", tenantID)
	respondJSON(w, http.StatusOK, cfg)
}
