package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const adminClaimsKey contextKey = "glowdesk.admin_claims"

// AdminClaims carries the staff identity inside admin tokens. An empty
// TenantIDs list grants access to every tenant (platform operators);
// otherwise the token only opens the tenants it names.
type AdminClaims struct {
	jwt.RegisteredClaims
	TenantIDs []string `json:"tenant_ids,omitempty"`
}

func (c *AdminClaims) allowsTenant(tenantID string) bool {
	if len(c.TenantIDs) == 0 {
		return true
	}
	for _, id := range c.TenantIDs {
		if id == tenantID {
			return true
		}
	}
	return false
}

// AdminJWT authenticates staff-side requests with an HMAC-signed JWT
// and checks the token's tenant scope against the {tenantID} route
// parameter.
func AdminJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				respondUnauthorized(w, "admin auth disabled")
				return
			}
			token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !found || token == "" {
				respondUnauthorized(w, "missing bearer token")
				return
			}
			claims := &AdminClaims{}
			parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !parsed.Valid {
				respondUnauthorized(w, "invalid token")
				return
			}
			if tenant := chi.URLParam(r, "tenantID"); tenant != "" && !claims.allowsTenant(tenant) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error": "forbidden", "message": "token not scoped to this tenant"}`))
				return
			}
			ctx := context.WithValue(r.Context(), adminClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error": "unauthorized", "message": "` + msg + `"}`))
}

// AdminClaimsFromContext returns the authenticated staff claims.
func AdminClaimsFromContext(ctx context.Context) (*AdminClaims, bool) {
	claims, ok := ctx.Value(adminClaimsKey).(*AdminClaims)
	return claims, ok
}
