package middleware

import (
	"log/slog"
	"net/http"

	"github.com/M-uzair-abbasi/YaarFetch/pkg/api"
)

// NewRecover converts handler panics into a generic JSON 500 so every
// request gets exactly one response even when a handler group fails
// unexpectedly.
func NewRecover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("Handler panicked",
						slog.String("uri", r.RequestURI),
						slog.Any("panic", rec),
					)
					api.WriteJSON(w, http.StatusInternalServerError, api.ErrorBody{
						Error: "internal server error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
