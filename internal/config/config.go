package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Auth    AuthConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

type AuthConfig struct {
	// TokenTTL is a Go duration string for session token lifetime.
	TokenTTL string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4200,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Auth: AuthConfig{
			TokenTTL: "720h",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration in order of increasing precedence: defaults, the
// JSON config file at $XDG_CONFIG_HOME/flexhire/config.json, and FLEXHIRE_*
// environment variables.
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if _, err := time.ParseDuration(cfg.Auth.TokenTTL); err != nil {
		return Config{}, fmt.Errorf("invalid auth.token_ttl %q: %w", cfg.Auth.TokenTTL, err)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return Config{}, fmt.Errorf("invalid server.port %d", cfg.Server.Port)
	}

	return cfg, nil
}

// TokenTTL returns the parsed session token lifetime. Load validates the
// string, so this never fails on a loaded config.
func (c Config) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.Auth.TokenTTL)
	if err != nil {
		return 720 * time.Hour
	}
	return d
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		v := os.Getenv(s.env)
		if v == "" {
			continue
		}
		s.applyString(cfg, v)
	}
}
