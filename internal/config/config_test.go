package config

import (
	"testing"
)

func TestGetDefaults(t *testing.T) {
	cfg := GetDefaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("unexpected default port %d", cfg.Server.Port)
	}
	if !cfg.Server.RateLimit.Enabled || cfg.Server.RateLimit.RequestsPerSecond != 50 {
		t.Errorf("unexpected rate limit defaults %+v", cfg.Server.RateLimit)
	}
	if cfg.Engine.MinScoreThreshold != 0.7 {
		t.Errorf("unexpected threshold %g", cfg.Engine.MinScoreThreshold)
	}
	if !cfg.Engine.EnableCaching || cfg.Engine.MaxCacheSize != 10000 {
		t.Errorf("unexpected cache defaults %+v", cfg.Engine)
	}
	if cfg.Engine.NER.Enabled {
		t.Error("model detection must be opt-in")
	}
	if cfg.Anonymizer.AgeBracketSize != 5 || !cfg.Anonymizer.KeepPostcode {
		t.Errorf("unexpected anonymizer defaults %+v", cfg.Anonymizer)
	}
	if cfg.Redis.Enabled || cfg.Audit.Enabled {
		t.Error("external services must be opt-in")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging defaults %+v", cfg.Logging)
	}
	if !cfg.WebSocket.Enabled || cfg.WebSocket.Path != "/ws" {
		t.Errorf("unexpected websocket defaults %+v", cfg.WebSocket)
	}

	if err := validateConfig(cfg); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"negative threshold", func(c *Config) { c.Engine.MinScoreThreshold = -0.1 }},
		{"threshold above one", func(c *Config) { c.Engine.MinScoreThreshold = 1.5 }},
		{"zero cache size", func(c *Config) { c.Engine.MaxCacheSize = 0 }},
		{"ner without model dir", func(c *Config) {
			c.Engine.NER.Enabled = true
			c.Engine.NER.ModelDir = ""
		}},
		{"audit without dsn", func(c *Config) {
			c.Audit.Enabled = true
			c.Audit.DSN = ""
		}},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "text" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaults()
			tt.mutate(cfg)
			if err := validateConfig(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	t.Run("valid variants accepted", func(t *testing.T) {
		cfg := GetDefaults()
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "console"
		cfg.Engine.NER.Enabled = true
		cfg.Engine.NER.ModelDir = "/models/ner"
		cfg.Audit.Enabled = true
		cfg.Audit.DSN = "postgres://localhost/allyanon"
		if err := validateConfig(cfg); err != nil {
			t.Errorf("unexpected validation error: %v", err)
		}
	})
}
