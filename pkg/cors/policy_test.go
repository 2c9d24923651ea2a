package cors_test

import (
	"testing"

	"github.com/M-uzair-abbasi/YaarFetch/pkg/cors"
)

func newTestPolicy() *cors.Policy {
	return cors.NewPolicy([]string{
		"http://localhost:3000",
		"http://localhost:5173",
		"https://yaarfetch.vercel.app",
	})
}

func TestDecide(t *testing.T) {
	p := newTestPolicy()

	cases := []struct {
		name    string
		origin  string
		allowed bool
	}{
		{"absent origin is allowed", "", true},
		{"listed origin is allowed", "http://localhost:5173", true},
		{"production origin is allowed", "https://yaarfetch.vercel.app", true},
		{"unlisted origin is denied", "http://evil.example", false},
		{"scheme mismatch is denied", "https://localhost:5173", false},
		{"port mismatch is denied", "http://localhost:5174", false},
		{"trailing slash is not normalized", "http://localhost:5173/", false},
		{"case differences are not normalized", "HTTP://LOCALHOST:5173", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := p.Decide(tc.origin)
			if d.Allowed != tc.allowed {
				t.Errorf("Decide(%q).Allowed = %v, want %v", tc.origin, d.Allowed, tc.allowed)
			}
			if d.Origin != tc.origin {
				t.Errorf("Decide(%q).Origin = %q, want the input echoed back", tc.origin, d.Origin)
			}
		})
	}
}

func TestDecideIsPure(t *testing.T) {
	p := newTestPolicy()
	first := p.Decide("http://evil.example")
	for i := 0; i < 3; i++ {
		if got := p.Decide("http://evil.example"); got != first {
			t.Fatalf("Decide is not deterministic: got %+v then %+v", first, got)
		}
	}
}

func TestAllowListIsStable(t *testing.T) {
	input := []string{"http://localhost:3000"}
	p := cors.NewPolicy(input)
	input[0] = "http://mutated.example"

	if got := p.AllowList()[0]; got != "http://localhost:3000" {
		t.Errorf("policy shares backing array with caller input: %q", got)
	}
	if !p.Decide("http://localhost:3000").Allowed {
		t.Error("original entry no longer allowed after caller mutation")
	}
}
