package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glowdesk/scheduling/internal/tenancy"
)

// TenantID validates the tenantID URL parameter and stores it in the
// request context. Mount inside a route carrying {tenantID}.
func TenantID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "tenantID")
		if _, err := uuid.Parse(raw); err != nil {
			http.Error(w, `{"error": "invalid tenant id"}`, http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(tenancy.WithTenantID(r.Context(), raw)))
	})
}
