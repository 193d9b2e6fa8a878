package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		cfg := DefaultConfig()

		if cfg.Server.Port != 8080 {
			t.Errorf("expected port 8080, got %d", cfg.Server.Port)
		}
		if cfg.Gateway.URL != "https://emkc.org/api/v2/piston" {
			t.Errorf("expected default gateway URL, got %s", cfg.Gateway.URL)
		}
		if cfg.Gateway.Timeout() != 0 {
			t.Errorf("expected no gateway timeout by default, got %v", cfg.Gateway.Timeout())
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("LoadConfigKeepsDefaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := "[server]\nport = 9000\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if cfg.Server.Port != 9000 {
			t.Errorf("expected port 9000, got %d", cfg.Server.Port)
		}
		if cfg.Server.DBPath != "data/codecraft.db" {
			t.Errorf("db_path should keep its default, got %q", cfg.Server.DBPath)
		}
		if cfg.Execute.Burst != 5 {
			t.Errorf("execute.burst should keep its default, got %d", cfg.Execute.Burst)
		}
	})

	t.Run("LoadConfigInvalid", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("[server\nport ="), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}
		if _, err := LoadConfig(path); err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if err := CreateConfigFile(path); err == nil {
			t.Error("creating config file again should fail")
		}
	})
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PORT":                 "3000",
		"DB_PATH":              "/tmp/x.db",
		"JWT_SECRET":           "s3cret",
		"CLERK_WEBHOOK_SECRET": "whsec_abc",
		"GATEWAY_URL":          "http://localhost:2000/api/v2",
		"GATEWAY_API_KEY":      "key",
		"EXECUTE_RATE":         "0.5",
		"EXECUTE_BURST":        "2",
		"IGNORED":              "x",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.Server.Port != 3000 || cfg.Server.DBPath != "/tmp/x.db" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Auth.JWTSecret != "s3cret" || cfg.Auth.WebhookSecret != "whsec_abc" {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Gateway.URL != "http://localhost:2000/api/v2" || cfg.Gateway.APIKey != "key" {
		t.Errorf("gateway = %+v", cfg.Gateway)
	}
	if cfg.Execute.Rate != 0.5 || cfg.Execute.Burst != 2 {
		t.Errorf("execute = %+v", cfg.Execute)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	for _, key := range []string{"PORT", "EXECUTE_RATE", "EXECUTE_BURST"} {
		t.Run(key, func(t *testing.T) {
			lookup := func(k string) (string, bool) {
				if k == key {
					return "not-a-number", true
				}
				return "", false
			}
			if err := DefaultConfig().ApplyEnv(lookup); err == nil {
				t.Errorf("expected error for invalid %s", key)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = 0
	cfg.Execute.Burst = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error")
	}
}
