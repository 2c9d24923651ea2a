package api

import (
	"encoding/json"
	"net/http"
)

// OriginDenied is the structured 403 body returned when a declared origin
// is not on the allow-list. It names the rejected origin and the active
// list on purpose: operators debug CORS from the client side, and this
// system prefers diagnosability over hiding its configuration.
type OriginDenied struct {
	Error          string   `json:"error"`
	YourOrigin     string   `json:"yourOrigin"`
	AllowedOrigins []string `json:"allowedOrigins"`
}

// ErrorBody is the generic structured error envelope. Every gateway error
// response is JSON, never bare text.
type ErrorBody struct {
	Error string `json:"error"`
}

// WriteJSON writes v as the complete JSON response. Marshal failures fall
// back to a plain 500 envelope so exactly one response is always produced.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(`{"error":"internal server error"}`)
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
