package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Jina      JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Hunter    HunterConfig    `yaml:"hunter" mapstructure:"hunter"`
	Browser   BrowserConfig   `yaml:"browser" mapstructure:"browser"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Email     EmailConfig     `yaml:"email" mapstructure:"email"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds inference service settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
	// Elevated marks a paid-tier key: enables the grounded search backend
	// and shortens the pacing interval.
	Elevated          bool `yaml:"elevated" mapstructure:"elevated"`
	PaceIntervalMS    int  `yaml:"pace_interval_ms" mapstructure:"pace_interval_ms"`
	PaceIntervalLowMS int  `yaml:"pace_interval_low_ms" mapstructure:"pace_interval_low_ms"`
	MaxTokens         int  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// PaceInterval returns the minimum interval between inference calls for
// the configured tier.
func (c AnthropicConfig) PaceInterval() time.Duration {
	ms := c.PaceIntervalLowMS
	if c.Elevated {
		ms = c.PaceIntervalMS
	}
	if ms <= 0 {
		ms = 4000
	}
	return time.Duration(ms) * time.Millisecond
}

// JinaConfig holds Jina Search API settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// HunterConfig holds mailbox verification settings.
type HunterConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	HourlyCap int    `yaml:"hourly_cap" mapstructure:"hourly_cap"`
}

// BrowserConfig configures the headless browser.
type BrowserConfig struct {
	ChromePath  string `yaml:"chrome_path" mapstructure:"chrome_path"`
	NavTimeoutS int    `yaml:"nav_timeout_secs" mapstructure:"nav_timeout_secs"`
	Headless    bool   `yaml:"headless" mapstructure:"headless"`
}

// SearchConfig configures the search orchestrator.
type SearchConfig struct {
	MaxResults    int `yaml:"max_results" mapstructure:"max_results"`
	RetryAttempts int `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryBaseMS   int `yaml:"retry_base_ms" mapstructure:"retry_base_ms"`
}

// ExtractConfig configures the structured extractor.
type ExtractConfig struct {
	MinConfidence      float64 `yaml:"min_confidence" mapstructure:"min_confidence"`
	EmailMinConfidence float64 `yaml:"email_min_confidence" mapstructure:"email_min_confidence"`
	FallbackConfidence float64 `yaml:"fallback_confidence" mapstructure:"fallback_confidence"`
	SchemaPath         string  `yaml:"schema_path" mapstructure:"schema_path"`
}

// EmailConfig configures founder email discovery.
type EmailConfig struct {
	MaxPatterns     int     `yaml:"max_patterns" mapstructure:"max_patterns"`
	ConfidenceScale float64 `yaml:"confidence_scale" mapstructure:"confidence_scale"`
}

// PipelineConfig configures the batch driver.
type PipelineConfig struct {
	EntityDelayMS    int `yaml:"entity_delay_ms" mapstructure:"entity_delay_ms"`
	MinJobsPrimary   int `yaml:"min_jobs_primary" mapstructure:"min_jobs_primary"`
	QueryConcurrency int `yaml:"query_concurrency" mapstructure:"query_concurrency"`
}

// ServerConfig configures the status server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "enrich.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("anthropic.pace_interval_ms", 1000)
	v.SetDefault("anthropic.pace_interval_low_ms", 4000)
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("hunter.base_url", "https://api.hunter.io/v2")
	v.SetDefault("hunter.hourly_cap", 200)
	v.SetDefault("browser.nav_timeout_secs", 20)
	v.SetDefault("browser.headless", true)
	v.SetDefault("search.max_results", 8)
	v.SetDefault("search.retry_attempts", 3)
	v.SetDefault("search.retry_base_ms", 2000)
	v.SetDefault("extract.min_confidence", 0.7)
	v.SetDefault("extract.email_min_confidence", 0.8)
	v.SetDefault("extract.fallback_confidence", 0.6)
	v.SetDefault("email.max_patterns", 6)
	v.SetDefault("email.confidence_scale", 0.85)
	v.SetDefault("pipeline.entity_delay_ms", 1500)
	v.SetDefault("pipeline.min_jobs_primary", 3)
	v.SetDefault("pipeline.query_concurrency", 4)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
