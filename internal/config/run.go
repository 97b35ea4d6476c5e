package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// RunConfig holds command settings merged from environment variables and flags.
// The operator file path itself is one of these settings.
type RunConfig struct {
	ConfigPath   string
	Endpoint     string
	Pool         string
	Factory      string
	Fee          uint32
	Interval     time.Duration
	Count        int
	Out          string
	PGDSN        string
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// LoadRun merges RBTR_* environment variables and flags into RunConfig.
func LoadRun(flags *pflag.FlagSet) (RunConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("RBTR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("config", "./rbtr.toml")
	v.SetDefault("endpoint", EndpointOne)
	v.SetDefault("factory", "0x1F98431c8aD98523631AE4a59f267346ea31F984")
	v.SetDefault("fee", 3000)
	v.SetDefault("interval", 12*time.Second)
	v.SetDefault("count", 0)
	v.SetDefault("out", "./data/snapshots.jsonl")
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return RunConfig{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	cfg := RunConfig{
		ConfigPath:   v.GetString("config"),
		Endpoint:     strings.ToLower(strings.TrimSpace(v.GetString("endpoint"))),
		Pool:         strings.TrimSpace(v.GetString("pool")),
		Factory:      strings.TrimSpace(v.GetString("factory")),
		Fee:          v.GetUint32("fee"),
		Interval:     v.GetDuration("interval"),
		Count:        v.GetInt("count"),
		Out:          v.GetString("out"),
		PGDSN:        v.GetString("pg-dsn"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}

	if cfg.Endpoint != EndpointOne && cfg.Endpoint != EndpointTwo {
		return RunConfig{}, fmt.Errorf("endpoint must be %s or %s, got %q", EndpointOne, EndpointTwo, cfg.Endpoint)
	}
	if cfg.Count < 0 {
		return RunConfig{}, fmt.Errorf("count must be >= 0")
	}

	return cfg, nil
}
