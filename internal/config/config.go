// Package config loads the bot configuration from defaults, an optional
// config file, and ONBOARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. ONBOARD_SERVER_ADDR.
const EnvPrefix = "ONBOARD"

// Dedup backends.
const (
	DedupMemory = "memory"
	DedupRedis  = "redis"
	DedupNone   = "none"
)

// Config is the full bot configuration.
type Config struct {
	Server            ServerConfig   `mapstructure:"server"`
	VerificationToken string         `mapstructure:"verification_token"`
	TemplatePath      string         `mapstructure:"template_path"`
	Log               LogConfig      `mapstructure:"log"`
	Dispatch          DispatchConfig `mapstructure:"dispatch"`
	Dedup             DedupConfig    `mapstructure:"dedup"`
	Redis             RedisConfig    `mapstructure:"redis"`
	Metrics           MetricsConfig  `mapstructure:"metrics"`
	Slack             SlackConfig    `mapstructure:"slack"`
	Install           TeamConfig     `mapstructure:"install"`
	Teams             []TeamConfig   `mapstructure:"teams"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DispatchConfig controls background handler runs.
type DispatchConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// DedupConfig controls redelivery detection.
type DedupConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// RedisConfig is used when dedup.backend is redis.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// MetricsConfig controls the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SlackConfig controls the outbound Web API client.
type SlackConfig struct {
	APIURL string `mapstructure:"api_url"`
	Debug  bool   `mapstructure:"debug"`
}

// TeamConfig provisions one installed team at startup.
// An empty BotUserID is resolved through the API.
type TeamConfig struct {
	ID        string `mapstructure:"id"`
	TeamID    string `mapstructure:"team_id"`
	BotToken  string `mapstructure:"bot_token"`
	BotUserID string `mapstructure:"bot_user_id"`
}

// Key returns the team ID, accepting both id and team_id.
func (t TeamConfig) Key() string {
	if t.ID != "" {
		return t.ID
	}
	return t.TeamID
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":3000",
			ShutdownTimeout: 15 * time.Second,
		},
		TemplatePath: "welcome.json",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Dispatch: DispatchConfig{Timeout: 10 * time.Second},
		Dedup: DedupConfig{
			Backend: DedupMemory,
			TTL:     10 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "onboard:event:",
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers every key so env vars and flags can override it.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("server.shutdown_timeout", defaults.Server.ShutdownTimeout)

	v.SetDefault("verification_token", defaults.VerificationToken)
	v.SetDefault("template_path", defaults.TemplatePath)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)

	v.SetDefault("dispatch.timeout", defaults.Dispatch.Timeout)

	v.SetDefault("dedup.backend", defaults.Dedup.Backend)
	v.SetDefault("dedup.ttl", defaults.Dedup.TTL)

	v.SetDefault("redis.addr", defaults.Redis.Addr)
	v.SetDefault("redis.password", defaults.Redis.Password)
	v.SetDefault("redis.db", defaults.Redis.DB)
	v.SetDefault("redis.prefix", defaults.Redis.Prefix)

	v.SetDefault("metrics.enabled", defaults.Metrics.Enabled)

	v.SetDefault("slack.api_url", defaults.Slack.APIURL)
	v.SetDefault("slack.debug", defaults.Slack.Debug)

	v.SetDefault("install.team_id", "")
	v.SetDefault("install.bot_token", "")
	v.SetDefault("install.bot_user_id", "")
}

// ReadFile merges a YAML or JSON config file into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return fmt.Errorf("config file %s not found", path)
		}
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from v into a Config struct and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// InstalledTeams returns the teams to provision, including the install shortcut.
func (c *Config) InstalledTeams() []TeamConfig {
	teams := make([]TeamConfig, 0, len(c.Teams)+1)
	if c.Install.Key() != "" {
		teams = append(teams, c.Install)
	}
	return append(teams, c.Teams...)
}
