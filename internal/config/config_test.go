package config

import (
	"strings"
	"testing"
)

func TestBackendConfigured(t *testing.T) {
	goodKey := strings.Repeat("k", 40)

	tests := []struct {
		name    string
		backend Backend
		want    bool
	}{
		{"valid project URL and key", Backend{"https://abcdefgh.supabase.co", goodKey}, true},
		{"empty URL", Backend{"", goodKey}, false},
		{"empty key", Backend{"https://abcdefgh.supabase.co", ""}, false},
		{"key too short", Backend{"https://abcdefgh.supabase.co", "short"}, false},
		{"http scheme rejected", Backend{"http://abcdefgh.supabase.co", goodKey}, false},
		{"wrong domain", Backend{"https://abcdefgh.example.com", goodKey}, false},
		{"bare suffix without project ref", Backend{"https://.supabase.co", goodKey}, false},
		{"garbage URL", Backend{"://not a url", goodKey}, false},
		{"port allowed", Backend{"https://abcdefgh.supabase.co:443", goodKey}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.backend.Configured(); got != tt.want {
				t.Errorf("Configured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfiguredIsRepeatable(t *testing.T) {
	b := Backend{"https://abcdefgh.supabase.co", strings.Repeat("k", 40)}
	for i := 0; i < 3; i++ {
		if !b.Configured() {
			t.Fatal("Configured should be a pure check")
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Addr == "" {
		t.Error("expected default listen address")
	}
	if cfg.CacheTTL <= 0 {
		t.Errorf("CacheTTL = %v, want positive default", cfg.CacheTTL)
	}
	if cfg.Migration.ClearPolicy != ClearAlways {
		t.Errorf("ClearPolicy = %q, want %q", cfg.Migration.ClearPolicy, ClearAlways)
	}
	if cfg.Locale != "es" {
		t.Errorf("Locale = %q, want es", cfg.Locale)
	}
}
