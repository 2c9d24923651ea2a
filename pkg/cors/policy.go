// Package cors holds the origin allow-list decision shared by the HTTP
// gateway, the preflight handler, and the websocket accept path. All three
// must agree, so the decision lives here and nowhere else.
package cors

// Decision is the outcome of checking one request's declared origin.
type Decision struct {
	// Origin is the declared origin as received, empty if none was sent.
	Origin string
	// Allowed reports whether the request may proceed.
	Allowed bool
}

// Policy is an immutable origin allow-list. Construct once at startup.
type Policy struct {
	origins []string
	allowed map[string]struct{}
}

func NewPolicy(allowList []string) *Policy {
	p := &Policy{
		origins: make([]string, len(allowList)),
		allowed: make(map[string]struct{}, len(allowList)),
	}
	copy(p.origins, allowList)
	for _, o := range allowList {
		p.allowed[o] = struct{}{}
	}
	return p
}

// Decide checks a declared origin against the allow-list. An empty origin
// (same-origin navigation, server-to-server call, curl) is allowed: there
// is nothing to check it against, and browsers only attach Origin to
// cross-origin requests. A present origin must match an allow-list entry
// verbatim.
func (p *Policy) Decide(origin string) Decision {
	if origin == "" {
		return Decision{Allowed: true}
	}
	_, ok := p.allowed[origin]
	return Decision{Origin: origin, Allowed: ok}
}

// AllowList returns the configured origins for diagnostics. Callers must
// not mutate the returned slice.
func (p *Policy) AllowList() []string {
	return p.origins
}
