package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/M-uzair-abbasi/YaarFetch/internal/server/middleware"
	"github.com/M-uzair-abbasi/YaarFetch/pkg/api"
)

type corsReport struct {
	AllowedOrigins []string `json:"allowedOrigins"`
	FrontendURL    string   `json:"frontendUrl"`
}

type healthResponse struct {
	Status      string     `json:"status"`
	Message     string     `json:"message"`
	Timestamp   string     `json:"timestamp"`
	Environment string     `json:"environment"`
	CORS        corsReport `json:"cors"`
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Message:     "YaarFetch gateway is running",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Environment: a.config.Server.Environment,
		CORS: corsReport{
			AllowedOrigins: a.policy.AllowList(),
			FrontendURL:    a.config.CORS.FrontendURL,
		},
	})
}

type corsTestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Origin  string `json:"origin"`
	Allowed bool   `json:"allowed"`
}

// handleCORSTest reruns the origin decision for the caller and echoes the
// outcome, so allow-list configuration can be verified without touching a
// real resource endpoint.
func (a *App) handleCORSTest(w http.ResponseWriter, r *http.Request) {
	decision := a.policy.Decide(r.Header.Get("Origin"))
	api.WriteJSON(w, http.StatusOK, corsTestResponse{
		Success: true,
		Message: "CORS check complete",
		Origin:  decision.Origin,
		Allowed: decision.Allowed,
	})
}

// handleUploads streams a previously stored asset. Filenames are flattened
// with filepath.Base so the request path cannot escape the uploads
// directory.
func (a *App) handleUploads(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/uploads/")
	if name == "" || name != filepath.Base(name) {
		api.WriteJSON(w, http.StatusNotFound, api.ErrorBody{Error: "file not found"})
		return
	}

	path := filepath.Join(a.config.Uploads.Dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		api.WriteJSON(w, http.StatusNotFound, api.ErrorBody{Error: "file not found"})
		return
	}
	http.ServeFile(w, r, path)
}

// handleAPI dispatches /api/<group>/... to the handler group owning the
// resource domain. The gateway parses the request and shapes the response;
// it performs no business validation of its own.
func (a *App) handleAPI(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/")
	group := rest
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		group, rest = rest[:i], rest[i:]
	} else {
		rest = ""
	}

	handler, ok := a.groups[group]
	if !ok {
		api.WriteJSON(w, http.StatusNotFound, api.ErrorBody{Error: "not found"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.WriteJSON(w, http.StatusRequestEntityTooLarge, api.ErrorBody{Error: "request body too large"})
			return
		}
		api.WriteJSON(w, http.StatusBadRequest, api.ErrorBody{Error: "failed to read request body"})
		return
	}

	var subject string
	if reqMeta, ok := middleware.ReqMetadataFrom(r.Context()); ok {
		subject = reqMeta.Subject
	}

	req := &api.Request{
		Method:  r.Method,
		Path:    r.URL.Path,
		Rest:    rest,
		Header:  r.Header,
		Query:   r.URL.Query(),
		Body:    body,
		Subject: subject,
	}

	resp, err := handler.Serve(r.Context(), req)
	if err != nil {
		var domainErr *api.Error
		if errors.As(err, &domainErr) {
			api.WriteJSON(w, domainErr.Status, api.ErrorBody{Error: domainErr.Message})
			return
		}
		a.logger.Error("Handler group failed",
			slog.String("group", group),
			slog.String("uri", r.RequestURI),
			slog.Any("error", err),
		)
		api.WriteJSON(w, http.StatusInternalServerError, api.ErrorBody{Error: "internal server error"})
		return
	}

	out := resp.Body
	if out == nil {
		out = struct{}{}
	}
	api.WriteJSON(w, resp.Status, out)
}
