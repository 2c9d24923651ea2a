package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/M-uzair-abbasi/YaarFetch/pkg/api"
	"github.com/M-uzair-abbasi/YaarFetch/pkg/cors"
)

// NewCORS enforces the origin policy on every request it wraps: simple
// requests and preflights alike. A denied origin is answered with a
// structured 403 and the wrapped handler is never invoked. Allowed
// cross-origin requests get the standard response headers; preflights are
// answered 204 here and also never reach a handler.
func NewCORS(logger *slog.Logger, policy *cors.Policy) Middleware {
	allowedMethods := strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := policy.Decide(r.Header.Get("Origin"))
			if !decision.Allowed {
				logger.Warn("Blocked request from disallowed origin",
					slog.String("origin", decision.Origin),
					slog.String("uri", r.RequestURI),
				)
				api.WriteJSON(w, http.StatusForbidden, api.OriginDenied{
					Error:          "origin not allowed",
					YourOrigin:     decision.Origin,
					AllowedOrigins: policy.AllowList(),
				})
				return
			}

			if decision.Origin != "" {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", decision.Origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				h := w.Header()
				h.Set("Access-Control-Allow-Methods", allowedMethods)
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				h.Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
