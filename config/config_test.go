package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.HTTPPort != 8080 {
		t.Errorf("expected HTTPPort=8080, got %d", cfg.HTTPPort)
	}
	if cfg.MaxNameLength != 64 {
		t.Errorf("expected MaxNameLength=64, got %d", cfg.MaxNameLength)
	}
	if cfg.OddPlayerPolicy != OddPolicyReject {
		t.Errorf("expected OddPlayerPolicy=%q, got %q", OddPolicyReject, cfg.OddPlayerPolicy)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("expected empty DatabaseURL, got %q", cfg.DatabaseURL)
	}
	if cfg.AuthBaseURL != "" {
		t.Errorf("expected empty AuthBaseURL, got %q", cfg.AuthBaseURL)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	os.Setenv("HTTP_PORT", "9090")
	os.Setenv("ODD_PLAYER_POLICY", OddPolicyLeaveUnpaired)
	os.Setenv("AUTH_BASE_URL", "https://auth.example.com/")
	defer func() {
		os.Unsetenv("HTTP_PORT")
		os.Unsetenv("ODD_PLAYER_POLICY")
		os.Unsetenv("AUTH_BASE_URL")
	}()

	cfg := LoadFile(filepath.Join(t.TempDir(), "missing.json"))

	if cfg.HTTPPort != 9090 {
		t.Errorf("expected HTTPPort=9090 after env override, got %d", cfg.HTTPPort)
	}
	if cfg.OddPlayerPolicy != OddPolicyLeaveUnpaired {
		t.Errorf("expected OddPlayerPolicy=%q, got %q", OddPolicyLeaveUnpaired, cfg.OddPlayerPolicy)
	}
	if cfg.AuthBaseURL != "https://auth.example.com" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.AuthBaseURL)
	}
	// Non-overridden fields should remain default
	if cfg.MaxNameLength != 64 {
		t.Errorf("expected MaxNameLength=64 (default), got %d", cfg.MaxNameLength)
	}
}

func TestLoadWithInvalidEnv(t *testing.T) {
	os.Setenv("HTTP_PORT", "invalid")
	os.Setenv("ODD_PLAYER_POLICY", "bye")
	defer func() {
		os.Unsetenv("HTTP_PORT")
		os.Unsetenv("ODD_PLAYER_POLICY")
	}()

	cfg := LoadFile(filepath.Join(t.TempDir(), "missing.json"))

	if cfg.HTTPPort != 8080 {
		t.Errorf("expected HTTPPort=8080 (default) with invalid env, got %d", cfg.HTTPPort)
	}
	if cfg.OddPlayerPolicy != OddPolicyReject {
		t.Errorf("expected unknown policy to fall back to %q, got %q", OddPolicyReject, cfg.OddPlayerPolicy)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"http_port": 7000, "max_name_length": 10, "log_level": "debug"}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := LoadFile(path)

	if cfg.HTTPPort != 7000 {
		t.Errorf("expected HTTPPort=7000 from file, got %d", cfg.HTTPPort)
	}
	if cfg.MaxNameLength != 10 {
		t.Errorf("expected MaxNameLength=10 from file, got %d", cfg.MaxNameLength)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.SlogLevel())
	}
}

func TestSlogLevelFallback(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "loud"
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("expected info for unknown level, got %v", cfg.SlogLevel())
	}
}
