package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`

	// RateLimitRPS and RateLimitBurst configure the per-client token
	// bucket. A zero RPS disables rate limiting.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" yaml:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst"`
}

// AuthConfig holds token issuance settings.
type AuthConfig struct {
	// Secret signs access tokens. Required outside of tests.
	Secret string `mapstructure:"secret" yaml:"secret"`

	// TokenTTLMinutes is how long issued tokens stay valid.
	TokenTTLMinutes int `mapstructure:"token_ttl_minutes" yaml:"token_ttl_minutes"`
}

// DeadlineConfig controls the deadline notification subsystem.
type DeadlineConfig struct {
	// CronExpr is a standard 5-field cron expression for the recurring
	// scan. The default fires once daily at midnight.
	CronExpr string `mapstructure:"cron_expr" yaml:"cron_expr"`

	// Timezone is the IANA zone the cron expression is evaluated in.
	Timezone string `mapstructure:"timezone" yaml:"timezone"`

	// Thresholds are "days before due date" trigger points, checked in
	// the configured order.
	Thresholds []int `mapstructure:"thresholds" yaml:"thresholds"`

	// ShutdownGraceSec bounds how long an in-flight scan may keep
	// running after Stop is called.
	ShutdownGraceSec int `mapstructure:"shutdown_grace_sec" yaml:"shutdown_grace_sec"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	DBPath   string         `mapstructure:"db_path" yaml:"db_path"`
	Auth     AuthConfig     `mapstructure:"auth" yaml:"auth"`
	Deadline DeadlineConfig `mapstructure:"deadline" yaml:"deadline"`
}

// Load reads configuration from a YAML file using Viper. A missing
// file is not an error; defaults apply, with TASKHUB_* environment
// variables taking precedence over file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate_limit_rps", 20)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("db_path", "taskhub.db")
	v.SetDefault("auth.token_ttl_minutes", 60*24)
	v.SetDefault("deadline.cron_expr", "0 0 * * *")
	v.SetDefault("deadline.timezone", "UTC")
	v.SetDefault("deadline.thresholds", []int{1, 3, 7})
	v.SetDefault("deadline.shutdown_grace_sec", 30)

	v.SetEnvPrefix("taskhub")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		_, missing := err.(*os.PathError)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !missing && !notFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	// Decode into a zero struct so configured slices replace the
	// defaults outright. Decoding over pre-filled values merges
	// element-wise: thresholds [2, 5] over [1, 3, 7] would come out
	// as [2, 5, 7].
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the scheduler or evaluator cannot
// work with.
func (c *Config) Validate() error {
	if len(c.Deadline.Thresholds) == 0 {
		return fmt.Errorf("deadline.thresholds must not be empty")
	}
	for _, d := range c.Deadline.Thresholds {
		if d < 0 {
			return fmt.Errorf("deadline.thresholds must be non-negative, got %d", d)
		}
	}
	if _, err := time.LoadLocation(c.Deadline.Timezone); err != nil {
		return fmt.Errorf("deadline.timezone: %w", err)
	}
	return nil
}

// TokenTTL returns the access token lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

// ShutdownGrace returns how long to wait for an in-flight scan on stop.
func (c *Config) ShutdownGrace() time.Duration {
	return time.Duration(c.Deadline.ShutdownGraceSec) * time.Second
}
