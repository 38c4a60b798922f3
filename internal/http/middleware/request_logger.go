package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/glowdesk/scheduling/pkg/logging"
)

// RequestLogger emits one structured line per request after it
// completes, carrying the status, the request id issued upstream by
// chi, and the resolved tenant when the route has one.
func RequestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimiddleware.GetReqID(r.Context()),
				"remote_ip", r.RemoteAddr,
			}
			// Route params are filled into the shared route context
			// during routing, so the tenant is visible here afterwards.
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if tenant := rctx.URLParam("tenantID"); tenant != "" {
					fields = append(fields, "tenant_id", tenant)
				}
			}
			logger.Info("request completed", fields...)
		})
	}
}
