package config

import (
	"testing"
	"time"
)

func TestLoadConfig_DefaultsFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AppPort != "8080" {
		t.Fatalf("AppPort = %q; want 8080", cfg.AppPort)
	}
	if cfg.StorageDriver != StorageMemory {
		t.Fatalf("StorageDriver = %q", cfg.StorageDriver)
	}
	if !cfg.QueueEnabled {
		t.Fatalf("QueueEnabled should default to true")
	}
	if cfg.MatchCacheTTL != 10*time.Minute {
		t.Fatalf("MatchCacheTTL = %v", cfg.MatchCacheTTL)
	}
	if AppConfig.JWTSecret != "s3cret" {
		t.Fatalf("AppConfig not populated")
	}
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{JWTSecret: "x", StorageDriver: StorageMongo, MaxRequestsPerMin: 10}, false},
		{"bad driver", Config{JWTSecret: "x", StorageDriver: "sqlite", MaxRequestsPerMin: 10}, true},
		{"zero rate", Config{JWTSecret: "x", StorageDriver: StorageMemory}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
