package config

import (
	"os"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Remove(tmpfile.Name()) })

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}
	return tmpfile.Name()
}

func TestLoadAndValidate(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":8080"
  metrics_addr: ":9090"
  daily_request_limit: 100

fetch:
  interval: 15m
  timeout: 15s
  newsapi:
    enabled: true
    api_key: "test-key"

scoring:
  half_life: 48h
  cutoff: 336h
  momentum_epsilon: 1.0

telegram:
  enabled: true
  bot_token: "test_token"
  chat_id: "12345"

storage:
  db_path: "./data/test.db"
  max_events_per_target: 5000

logging:
  level: "info"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Scoring.HalfLife != 48*time.Hour {
		t.Errorf("half life = %v, want 48h", cfg.Scoring.HalfLife)
	}
	if cfg.Scoring.Cutoff != 14*24*time.Hour {
		t.Errorf("cutoff = %v, want 336h", cfg.Scoring.Cutoff)
	}
	if cfg.Fetch.NewsAPI.APIKey != "test-key" {
		t.Errorf("api key not loaded")
	}

	// Table sections and targets fall back to built-in defaults
	if len(cfg.Sources.Tiers) == 0 {
		t.Error("sources defaults not applied")
	}
	if len(cfg.Severity.Categories) != 3 {
		t.Errorf("severity defaults not applied: %d categories", len(cfg.Severity.Categories))
	}
	if len(cfg.Baselines) != 4 {
		t.Errorf("baseline defaults not applied: %d targets", len(cfg.Baselines))
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidateErrors(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{
			Server:  ServerConfig{Addr: ":8080", MetricsAddr: ":9090", DailyRequestLimit: 100},
			Fetch:   FetchConfig{Interval: 15 * time.Minute, Timeout: 15 * time.Second, WindowDays: 7},
			Scoring: ScoringConfig{HalfLife: 48 * time.Hour, Cutoff: 336 * time.Hour, MomentumEpsilon: 1.0},
			Storage: StorageConfig{DBPath: "./data/test.db", MaxEventsPerTarget: 5000},
			Logging: LoggingConfig{Level: "info", Format: "json"},
		}
		applyTableDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"interval too short", func(c *Config) { c.Fetch.Interval = time.Second }},
		{"zero half life", func(c *Config) { c.Scoring.HalfLife = 0 }},
		{"cutoff below half life", func(c *Config) { c.Scoring.Cutoff = time.Hour }},
		{"zero momentum epsilon", func(c *Config) { c.Scoring.MomentumEpsilon = 0 }},
		{"telegram enabled without token", func(c *Config) { c.Telegram.Enabled = true; c.Telegram.ChatID = "1" }},
		{"alert score out of range", func(c *Config) { c.Telegram.AlertScore = 150 }},
		{"empty db path", func(c *Config) { c.Storage.DBPath = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"empty sources", func(c *Config) { c.Sources.Tiers = nil }},
		{"empty severity", func(c *Config) { c.Severity.Categories = nil }},
		{"empty baselines", func(c *Config) { c.Baselines = nil }},
		{
			"baseline without target keywords",
			func(c *Config) { c.Baselines["moldova"] = BaselineConfig{Min: 10, Max: 95, Offset: 20} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			if err := cfg.Validate(); err != nil {
				t.Fatalf("baseline config invalid before mutation: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestBuildTables(t *testing.T) {
	cfg := &Config{}
	applyTableDefaults(cfg)

	cred, err := cfg.BuildCredibilityTable()
	if err != nil {
		t.Fatalf("BuildCredibilityTable failed: %v", err)
	}
	if w := cred.WeightFor("Reuters"); w != 1.0 {
		t.Errorf("premium weight = %v, want 1.0", w)
	}

	lex, err := cfg.BuildLexicon()
	if err != nil {
		t.Fatalf("BuildLexicon failed: %v", err)
	}
	if matched := lex.Match("ceasefire announced"); len(matched) != 1 || !matched[0].Deescalation {
		t.Errorf("default lexicon did not match de-escalation phrase: %v", matched)
	}

	base, err := cfg.BuildBaselineTable()
	if err != nil {
		t.Fatalf("BuildBaselineTable failed: %v", err)
	}
	b, err := base.Lookup("ukraine")
	if err != nil {
		t.Fatalf("Lookup(ukraine) failed: %v", err)
	}
	if b.Offset != 40 {
		t.Errorf("ukraine offset = %v, want 40", b.Offset)
	}
}

func TestBuildTablesRejectMalformed(t *testing.T) {
	cfg := &Config{}
	applyTableDefaults(cfg)
	cfg.Sources.Tiers["premium"] = TierConfig{Weight: 2.0, Sources: []string{"Reuters"}}

	if _, err := cfg.BuildCredibilityTable(); err == nil {
		t.Error("expected error for weight above 1")
	}

	cfg2 := &Config{}
	applyTableDefaults(cfg2)
	cfg2.Severity.Deescalation.Weight = 3.0
	if _, err := cfg2.BuildLexicon(); err == nil {
		t.Error("expected error for positive de-escalation weight")
	}

	cfg3 := &Config{}
	applyTableDefaults(cfg3)
	cfg3.Baselines["ukraine"] = BaselineConfig{Min: 90, Max: 20, Offset: 40}
	if _, err := cfg3.BuildBaselineTable(); err == nil {
		t.Error("expected error for min above max")
	}
}
