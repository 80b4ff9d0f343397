// Package config loads and validates the complete application configuration,
// including the static scoring tables (source credibility, severity lexicon,
// target baselines). A missing or malformed table is a startup failure: the
// service refuses to serve rather than score with incomplete data.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/asifah/stormwatch/internal/baseline"
	"github.com/asifah/stormwatch/internal/credibility"
	"github.com/asifah/stormwatch/internal/lexicon"
)

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig              `mapstructure:"server"`
	Fetch     FetchConfig               `mapstructure:"fetch"`
	Scoring   ScoringConfig             `mapstructure:"scoring"`
	Telegram  TelegramConfig            `mapstructure:"telegram"`
	Storage   StorageConfig             `mapstructure:"storage"`
	Logging   LoggingConfig             `mapstructure:"logging"`
	Sources   SourcesConfig             `mapstructure:"sources"`
	Severity  SeverityConfig            `mapstructure:"severity"`
	Baselines map[string]BaselineConfig `mapstructure:"baselines"`
	Targets   map[string]TargetConfig   `mapstructure:"targets"`
}

// ServerConfig holds the HTTP API configuration.
type ServerConfig struct {
	Addr              string `mapstructure:"addr"`
	MetricsAddr       string `mapstructure:"metrics_addr"`
	DailyRequestLimit int    `mapstructure:"daily_request_limit"`
}

// FetchConfig holds upstream fetcher configuration.
type FetchConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
	WindowDays     int           `mapstructure:"window_days"`
	NewsAPI        NewsAPIConfig `mapstructure:"newsapi"`
	GDELT          GDELTConfig   `mapstructure:"gdelt"`
	Reddit         RedditConfig  `mapstructure:"reddit"`
	RSS            RSSConfig     `mapstructure:"rss"`
}

// NewsAPIConfig holds NewsAPI fetcher configuration.
type NewsAPIConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	PageSize int    `mapstructure:"page_size"`
}

// GDELTConfig holds GDELT doc API fetcher configuration.
type GDELTConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	BaseURL    string   `mapstructure:"base_url"`
	Languages  []string `mapstructure:"languages"`
	MaxRecords int      `mapstructure:"max_records"`
}

// RedditConfig holds Reddit search fetcher configuration.
type RedditConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
	Limit     int    `mapstructure:"limit"`
}

// RSSConfig holds RSS fetcher configuration.
type RSSConfig struct {
	Enabled bool            `mapstructure:"enabled"`
	Feeds   []RSSFeedConfig `mapstructure:"feeds"`
}

// RSSFeedConfig describes one RSS feed and the targets it informs.
type RSSFeedConfig struct {
	Name     string   `mapstructure:"name"`
	URL      string   `mapstructure:"url"`
	Targets  []string `mapstructure:"targets"`
	MaxItems int      `mapstructure:"max_items"`
}

// ScoringConfig tunes the scoring engine.
type ScoringConfig struct {
	HalfLife        time.Duration `mapstructure:"half_life"`
	Cutoff          time.Duration `mapstructure:"cutoff"`
	MomentumEpsilon float64       `mapstructure:"momentum_epsilon"`
}

// TelegramConfig holds Telegram alerting configuration.
type TelegramConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
	AlertScore     float64       `mapstructure:"alert_score"`
	Cooldown       time.Duration `mapstructure:"cooldown"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	DBPath             string        `mapstructure:"db_path"`
	MaxEventsPerTarget int           `mapstructure:"max_events_per_target"`
	PruneInterval      time.Duration `mapstructure:"prune_interval"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SourcesConfig holds the credibility tier definitions.
type SourcesConfig struct {
	Tiers map[string]TierConfig `mapstructure:"tiers"`
}

// TierConfig is one credibility tier: its weight and source names.
type TierConfig struct {
	Weight  float64  `mapstructure:"weight"`
	Sources []string `mapstructure:"sources"`
}

// SeverityConfig holds the severity lexicon definition.
type SeverityConfig struct {
	Cap           float64                  `mapstructure:"cap"`
	DefaultWeight float64                  `mapstructure:"default_weight"`
	Categories    []SeverityCategoryConfig `mapstructure:"categories"`
	Deescalation  DeescalationConfig       `mapstructure:"deescalation"`
}

// SeverityCategoryConfig groups escalation phrases sharing one weight.
type SeverityCategoryConfig struct {
	Name    string   `mapstructure:"name"`
	Weight  float64  `mapstructure:"weight"`
	Phrases []string `mapstructure:"phrases"`
}

// DeescalationConfig groups de-escalation phrases sharing one (negative) weight.
type DeescalationConfig struct {
	Weight  float64  `mapstructure:"weight"`
	Phrases []string `mapstructure:"phrases"`
}

// BaselineConfig is one target's structural constants.
type BaselineConfig struct {
	Min    float64 `mapstructure:"min"`
	Max    float64 `mapstructure:"max"`
	Offset float64 `mapstructure:"offset"`
}

// TargetConfig holds per-target fetch parameters.
type TargetConfig struct {
	Keywords       []string `mapstructure:"keywords"`
	RedditKeywords []string `mapstructure:"reddit_keywords"`
	Subreddits     []string `mapstructure:"subreddits"`
}

// Load reads configuration from file and environment variables. Table
// sections left empty in the file fall back to the built-in defaults, which
// mirror the documented tuning constants.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	v.SetEnvPrefix("STORMWATCH")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyTableDefaults(&cfg)
	return &cfg, nil
}

// setDefaults configures default values for all scalar configuration options.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_addr", ":9090")
	v.SetDefault("server.daily_request_limit", 100)

	v.SetDefault("fetch.interval", "15m")
	v.SetDefault("fetch.timeout", "15s")
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.retry_delay_base", "1s")
	v.SetDefault("fetch.window_days", 7)
	v.SetDefault("fetch.newsapi.enabled", true)
	v.SetDefault("fetch.newsapi.base_url", "https://newsapi.org/v2")
	v.SetDefault("fetch.newsapi.page_size", 100)
	v.SetDefault("fetch.gdelt.enabled", true)
	v.SetDefault("fetch.gdelt.base_url", "http://api.gdeltproject.org/api/v2/doc/doc")
	v.SetDefault("fetch.gdelt.languages", []string{"eng", "rus", "fra", "ukr"})
	v.SetDefault("fetch.gdelt.max_records", 75)
	v.SetDefault("fetch.reddit.enabled", true)
	v.SetDefault("fetch.reddit.base_url", "https://www.reddit.com")
	v.SetDefault("fetch.reddit.user_agent", "stormwatch/1.0 (OSINT monitoring tool)")
	v.SetDefault("fetch.reddit.limit", 25)
	v.SetDefault("fetch.rss.enabled", true)

	v.SetDefault("scoring.half_life", "48h")
	v.SetDefault("scoring.cutoff", "336h") // 14 days
	v.SetDefault("scoring.momentum_epsilon", 1.0)

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")
	v.SetDefault("telegram.alert_score", 60.0)
	v.SetDefault("telegram.cooldown", "6h")

	v.SetDefault("storage.db_path", "./data/stormwatch.db")
	v.SetDefault("storage.max_events_per_target", 5000)
	v.SetDefault("storage.prune_interval", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// applyTableDefaults fills empty table sections with the built-in data.
func applyTableDefaults(cfg *Config) {
	if len(cfg.Sources.Tiers) == 0 {
		cfg.Sources = DefaultSources()
	}
	if len(cfg.Severity.Categories) == 0 {
		cfg.Severity = DefaultSeverity()
	}
	if len(cfg.Baselines) == 0 {
		cfg.Baselines = DefaultBaselines()
	}
	if len(cfg.Targets) == 0 {
		cfg.Targets = DefaultTargets()
	}
	if cfg.Fetch.RSS.Enabled && len(cfg.Fetch.RSS.Feeds) == 0 {
		cfg.Fetch.RSS.Feeds = DefaultRSSFeeds()
	}
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.DailyRequestLimit < 1 {
		return fmt.Errorf("server.daily_request_limit must be at least 1")
	}

	if c.Fetch.Interval < time.Minute {
		return fmt.Errorf("fetch.interval must be at least 1 minute")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive")
	}
	if c.Fetch.WindowDays < 1 {
		return fmt.Errorf("fetch.window_days must be at least 1")
	}
	if c.Fetch.NewsAPI.Enabled && c.Fetch.NewsAPI.BaseURL == "" {
		return fmt.Errorf("fetch.newsapi.base_url is required when newsapi is enabled")
	}
	if c.Fetch.GDELT.Enabled && c.Fetch.GDELT.BaseURL == "" {
		return fmt.Errorf("fetch.gdelt.base_url is required when gdelt is enabled")
	}

	if c.Scoring.HalfLife <= 0 {
		return fmt.Errorf("scoring.half_life must be positive")
	}
	if c.Scoring.Cutoff < c.Scoring.HalfLife {
		return fmt.Errorf("scoring.cutoff must be at least one half-life")
	}
	if c.Scoring.MomentumEpsilon <= 0 {
		return fmt.Errorf("scoring.momentum_epsilon must be positive")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	if c.Telegram.AlertScore < 0 || c.Telegram.AlertScore > 100 {
		return fmt.Errorf("telegram.alert_score must be between 0 and 100")
	}

	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	if c.Storage.MaxEventsPerTarget < 100 {
		return fmt.Errorf("storage.max_events_per_target must be at least 100")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if len(c.Sources.Tiers) == 0 {
		return fmt.Errorf("sources.tiers must not be empty")
	}
	if len(c.Severity.Categories) == 0 {
		return fmt.Errorf("severity.categories must not be empty")
	}
	if len(c.Baselines) == 0 {
		return fmt.Errorf("baselines must not be empty")
	}
	for target := range c.Baselines {
		if _, ok := c.Targets[target]; !ok {
			return fmt.Errorf("target %s has a baseline but no fetch keywords", target)
		}
	}

	return nil
}

// BuildCredibilityTable constructs the immutable source credibility table.
func (c *Config) BuildCredibilityTable() (*credibility.Table, error) {
	profiles := make(map[credibility.Tier]credibility.Profile, len(c.Sources.Tiers))
	for name, tier := range c.Sources.Tiers {
		profiles[credibility.Tier(name)] = credibility.Profile{
			Weight:  tier.Weight,
			Sources: tier.Sources,
		}
	}
	table, err := credibility.New(profiles)
	if err != nil {
		return nil, fmt.Errorf("credibility table: %w", err)
	}
	return table, nil
}

// BuildLexicon constructs the immutable severity lexicon.
func (c *Config) BuildLexicon() (*lexicon.Lexicon, error) {
	var rules []lexicon.Rule
	for _, cat := range c.Severity.Categories {
		for _, phrase := range cat.Phrases {
			rules = append(rules, lexicon.Rule{
				Phrase:   phrase,
				Weight:   cat.Weight,
				Category: lexicon.Category(cat.Name),
			})
		}
	}
	for _, phrase := range c.Severity.Deescalation.Phrases {
		rules = append(rules, lexicon.Rule{
			Phrase:       phrase,
			Weight:       c.Severity.Deescalation.Weight,
			Deescalation: true,
		})
	}
	lex, err := lexicon.New(rules, c.Severity.Cap, c.Severity.DefaultWeight)
	if err != nil {
		return nil, fmt.Errorf("severity lexicon: %w", err)
	}
	return lex, nil
}

// BuildBaselineTable constructs the immutable target baseline table.
func (c *Config) BuildBaselineTable() (*baseline.Table, error) {
	baselines := make(map[string]baseline.Baseline, len(c.Baselines))
	for target, b := range c.Baselines {
		baselines[target] = baseline.Baseline{Min: b.Min, Max: b.Max, Offset: b.Offset}
	}
	table, err := baseline.New(baselines)
	if err != nil {
		return nil, fmt.Errorf("baseline table: %w", err)
	}
	return table, nil
}
