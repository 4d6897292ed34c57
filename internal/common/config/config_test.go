package config

import (
	"path/filepath"
	"testing"
)

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Database.Driver != "mysql" {
		t.Fatalf("expected mysql default, got %q", cfg.Database.Driver)
	}
	if cfg.Reservation.LockTTLSeconds <= 0 {
		t.Fatalf("expected positive default lock TTL")
	}
	if got := GetConfig(); got != cfg {
		t.Fatalf("GetConfig must return the loaded config")
	}
}

func TestConsulConfigURLValidation(t *testing.T) {
	for _, bad := range []string{
		"consul://nohost",
		"consul://host:8500/",
		"consul://host:notaport/app/config",
	} {
		if _, err := loadConfigFromConsulURL(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
