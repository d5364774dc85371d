package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Odd player policies. With an odd field the pairing pass always leaves one
// player over; the policy decides whether that is an error or reported as-is.
const (
	OddPolicyReject        = "reject"
	OddPolicyLeaveUnpaired = "leave_unpaired"
)

// Config holds all server settings.
type Config struct {
	HTTPPort      int    `json:"http_port"`
	DatabaseURL   string `json:"database_url"`
	MaxNameLength int    `json:"max_name_length"`

	// OddPlayerPolicy is one of OddPolicyReject or OddPolicyLeaveUnpaired.
	OddPlayerPolicy string `json:"odd_player_policy"`

	// AuthBaseURL is the issuer whose /.well-known/jwks.json signs admin tokens.
	// Empty disables auth on write endpoints.
	AuthBaseURL string `json:"auth_base_url"`
	// AdminRole, when set, must match the token's "role" claim.
	AdminRole string `json:"admin_role"`

	LogLevel string `json:"log_level"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		HTTPPort:        8080,
		MaxNameLength:   64,
		OddPlayerPolicy: OddPolicyReject,
		AdminRole:       "admin",
		LogLevel:        "info",
	}
}

// Load reads config.json from the working directory, if present, then applies
// environment variable overrides.
func Load() *Config {
	return LoadFile("config.json")
}

// LoadFile is Load with an explicit path. A missing file is not an error.
func LoadFile(path string) *Config {
	cfg := Defaults()

	if f, err := os.Open(path); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			slog.Warn("failed to parse config file", "tag", "config", "path", path, "error", err)
		}
	}

	overrideInt(&cfg.HTTPPort, "HTTP_PORT")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideInt(&cfg.MaxNameLength, "MAX_NAME_LENGTH")
	overrideString(&cfg.OddPlayerPolicy, "ODD_PLAYER_POLICY")
	overrideString(&cfg.AuthBaseURL, "AUTH_BASE_URL")
	overrideString(&cfg.AdminRole, "ADMIN_ROLE")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")

	switch cfg.OddPlayerPolicy {
	case OddPolicyReject, OddPolicyLeaveUnpaired:
	default:
		slog.Warn("unknown odd player policy, using default", "tag", "config", "value", cfg.OddPlayerPolicy)
		cfg.OddPlayerPolicy = OddPolicyReject
	}
	if cfg.MaxNameLength < 1 {
		cfg.MaxNameLength = Defaults().MaxNameLength
	}
	cfg.AuthBaseURL = strings.TrimRight(cfg.AuthBaseURL, "/")

	return cfg
}

// SlogLevel parses LogLevel, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			slog.Warn("invalid integer in environment", "tag", "config", "key", envKey, "value", val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
