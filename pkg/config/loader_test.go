package config_test

import (
	"log/slog"
	"os"
	"testing"

	"github.com/M-uzair-abbasi/YaarFetch/pkg/config"
)

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 1})
	return slog.New(handler)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(newTestLogger(), "no-such-config")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("default port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Server.Environment != "development" {
		t.Errorf("default environment = %q, want development", cfg.Server.Environment)
	}
	if cfg.Uploads.Dir != "uploads" {
		t.Errorf("default uploads dir = %q, want uploads", cfg.Uploads.Dir)
	}
	if cfg.Transport.SendBuffer != 256 {
		t.Errorf("default send buffer = %d, want 256", cfg.Transport.SendBuffer)
	}

	wantAllowed := map[string]bool{
		"http://localhost:3000":        true,
		"http://localhost:5173":        true,
		"https://yaarfetch.vercel.app": true,
	}
	for _, o := range cfg.CORS.AllowedOrigins {
		delete(wantAllowed, o)
	}
	for missing := range wantAllowed {
		t.Errorf("allow-list missing %q", missing)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "production")
	t.Setenv("FRONTEND_URL", "https://app.yaarfetch.com/")

	cfg, err := config.Load(newTestLogger(), "no-such-config")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Environment != "production" {
		t.Errorf("environment = %q, want production", cfg.Server.Environment)
	}

	var sawFrontend bool
	for _, o := range cfg.CORS.AllowedOrigins {
		if o == "https://app.yaarfetch.com" {
			sawFrontend = true
		}
		if o == "https://app.yaarfetch.com/" {
			t.Errorf("trailing slash survived into the allow-list: %q", o)
		}
	}
	if !sawFrontend {
		t.Error("FRONTEND_URL did not seed the allow-list")
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("PORT", "99999")

	if _, err := config.Load(newTestLogger(), "no-such-config"); err == nil {
		t.Error("expected error for out-of-range port")
	}
}

func TestAllowListDeduplicates(t *testing.T) {
	t.Setenv("FRONTEND_URL", "http://localhost:3000")

	cfg, err := config.Load(newTestLogger(), "no-such-config")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	count := 0
	for _, o := range cfg.CORS.AllowedOrigins {
		if o == "http://localhost:3000" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("origin appears %d times in the allow-list", count)
	}
}
