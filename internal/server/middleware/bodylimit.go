package middleware

import (
	"net/http"
)

// NewBodyLimit caps the readable request body at maxBytes. Handlers that
// read past the cap get an error from the body reader; the gateway's
// request parser turns that into a 413 with no partial processing.
func NewBodyLimit(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
