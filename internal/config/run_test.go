package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "./rbtr.toml", "")
	flags.String("endpoint", "one", "")
	flags.String("pool", "", "")
	flags.Duration("interval", 12*time.Second, "")
	flags.String("log-level", "info", "")
	return flags
}

func TestLoadRunDefaults(t *testing.T) {
	cfg, err := LoadRun(newRunFlags())
	require.NoError(t, err)

	assert.Equal(t, "./rbtr.toml", cfg.ConfigPath)
	assert.Equal(t, EndpointOne, cfg.Endpoint)
	assert.Equal(t, uint32(3000), cfg.Fee)
	assert.Equal(t, 12*time.Second, cfg.Interval)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadRunFlagsAndEnv(t *testing.T) {
	t.Setenv("RBTR_MAX_RETRIES", "2")
	t.Setenv("RBTR_POOL", "0x8ad599c3A0ff1De082011EFDDc58f1908eb6e6D8")

	flags := newRunFlags()
	require.NoError(t, flags.Parse([]string{"--endpoint", "TWO", "--interval", "1m"}))

	cfg, err := LoadRun(flags)
	require.NoError(t, err)
	assert.Equal(t, EndpointTwo, cfg.Endpoint)
	assert.Equal(t, time.Minute, cfg.Interval)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, "0x8ad599c3A0ff1De082011EFDDc58f1908eb6e6D8", cfg.Pool)
}

func TestLoadRunRejectsUnknownEndpoint(t *testing.T) {
	flags := newRunFlags()
	require.NoError(t, flags.Parse([]string{"--endpoint", "three"}))

	_, err := LoadRun(flags)
	assert.Error(t, err)
}
