// Package config loads server configuration: defaults, then an
// optional TOML file, then WEBPARTS_* environment variables, each
// layer overriding the last.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

// Config is everything the server needs at startup.
type Config struct {
	Addr               string        `koanf:"addr"`
	DatabaseURL        string        `koanf:"database_url"`
	SiteName           string        `koanf:"site_name"`
	Theme              string        `koanf:"theme"`
	TurnstileSiteKey   string        `koanf:"turnstile_site_key"`
	TurnstileSecret    string        `koanf:"turnstile_secret"`
	SessionMaxAge      time.Duration `koanf:"session_max_age"`
	SessionIdleTimeout time.Duration `koanf:"session_idle_timeout"`
}

var defaults = map[string]any{
	"addr":                 ":8080",
	"database_url":         "file:webparts.db?_pragma=foreign_keys(1)",
	"site_name":            "webparts",
	"theme":                "light",
	"session_max_age":      24 * time.Hour,
	"session_idle_timeout": 2 * time.Hour,
}

// Load builds the configuration. path may be empty to skip the file
// layer.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return Config{}, fmt.Errorf("loading defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return Config{}, fmt.Errorf("loading %s: %w", path, err)
		}
	}
	err := k.Load(env.Provider("WEBPARTS_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "WEBPARTS_"))
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}
