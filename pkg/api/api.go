// Package api defines the contract between the gateway and the handler
// groups that own each resource domain (auth, users, orders, offers,
// matches, messages, reviews). The gateway parses the request, enforces
// origin and size policy, and hands a Request to the group responsible for
// the path prefix; the group returns a Response or a domain error.
package api

import (
	"context"
	"fmt"
	"net/http"
)

// Request is the parsed form of one HTTP request, built by the gateway
// after the origin and body-size checks have passed.
type Request struct {
	Method string
	// Path is the full request path, e.g. "/api/orders/42".
	Path string
	// Rest is the path remainder after the group prefix, e.g. "/42".
	Rest   string
	Header http.Header
	Query  map[string][]string
	// Body is the complete request body. Empty for bodyless methods.
	Body []byte
	// Subject is the authenticated user id when a valid session token was
	// presented, empty otherwise. Groups decide whether to require it.
	Subject string
}

// Response carries a handler group's reply. Body is JSON-marshaled by the
// gateway; a nil Body produces an empty JSON object.
type Response struct {
	Status int
	Body   any
}

// Handler is one resource domain's entry point.
type Handler interface {
	Serve(ctx context.Context, req *Request) (*Response, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

func (f HandlerFunc) Serve(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Error is a domain error with a caller-visible HTTP status. Handler groups
// return it to control the response; any other error becomes a generic 500.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewError(status int, format string, args ...any) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

// Unimplemented returns a placeholder group for composition roots that do
// not wire a real implementation for every domain.
func Unimplemented(name string) Handler {
	return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
		return nil, NewError(http.StatusNotImplemented, "%s handlers are not configured", name)
	})
}
