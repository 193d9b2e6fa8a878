// Package config loads server settings from an optional TOML file and the
// environment. Defaults come from the embedded config.example.toml.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Auth    AuthConfig    `toml:"auth"`
	Gateway GatewayConfig `toml:"gateway"`
	Execute ExecuteConfig `toml:"execute"`
}

type ServerConfig struct {
	Port   int    `toml:"port"`
	DBPath string `toml:"db_path"`
}

// AuthConfig holds the session signing key and the identity provider's
// webhook secret.
type AuthConfig struct {
	JWTSecret     string `toml:"jwt_secret"`
	WebhookSecret string `toml:"webhook_secret"`
}

type GatewayConfig struct {
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout is TimeoutSeconds as a duration. Zero leaves the gateway call
// unbounded on our side.
func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// ExecuteConfig is the per-IP token bucket for POST /api/execute.
type ExecuteConfig struct {
	Rate  float64 `toml:"rate"`
	Burst int     `toml:"burst"`
}

// DefaultConfig returns the embedded example configuration.
func DefaultConfig() *Config {
	var cfg Config
	if err := toml.Unmarshal(exampleConf, &cfg); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &cfg
}

// LoadConfig reads a TOML file over the defaults. Keys the file omits keep
// their default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Load builds the effective configuration: defaults, then the file at path
// if path is non-empty, then environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from the environment. lookup has the signature
// of os.LookupEnv so tests can pass a map.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("DB_PATH", &c.Server.DBPath)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("CLERK_WEBHOOK_SECRET", &c.Auth.WebhookSecret)
	str("GATEWAY_URL", &c.Gateway.URL)
	str("GATEWAY_API_KEY", &c.Gateway.APIKey)

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("EXECUTE_RATE"); ok && v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid EXECUTE_RATE %q: %w", v, err)
		}
		c.Execute.Rate = r
	}
	if v, ok := lookup("EXECUTE_BURST"); ok && v != "" {
		b, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid EXECUTE_BURST %q: %w", v, err)
		}
		c.Execute.Burst = b
	}
	return nil
}

// Validate rejects settings the server cannot start with. An empty JWT
// secret is allowed here; the server refuses it later with a clearer
// message.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.DBPath == "" {
		errs = append(errs, errors.New("server.db_path is empty"))
	}
	if c.Gateway.URL == "" {
		errs = append(errs, errors.New("gateway.url is empty"))
	}
	if c.Gateway.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("gateway.timeout_seconds %d is negative", c.Gateway.TimeoutSeconds))
	}
	if c.Execute.Rate <= 0 || c.Execute.Burst < 1 {
		errs = append(errs, fmt.Errorf("execute rate %.2f/burst %d must be positive", c.Execute.Rate, c.Execute.Burst))
	}
	return errors.Join(errs...)
}

// CreateConfigFile writes the example configuration to path. It refuses to
// overwrite an existing file.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.WriteFile(path, exampleConf, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
