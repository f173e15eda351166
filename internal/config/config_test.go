package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8000" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Fatalf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.StubDB != "" {
		t.Fatalf("StubDB = %q, want empty (in-memory)", cfg.StubDB)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ACTIVITIES_BASE_URL", "http://example.test:9000")
	t.Setenv("ACTIVITIES_HTTP_TIMEOUT", "3s")
	t.Setenv("STUB_ADDR", ":9001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	if cfg.BaseURL != "http://example.test:9000" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Fatalf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.StubAddr != ":9001" {
		t.Fatalf("StubAddr = %q", cfg.StubAddr)
	}
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Setenv("ACTIVITIES_HTTP_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("Load with unparsable duration: expected error, got nil")
	}
}
