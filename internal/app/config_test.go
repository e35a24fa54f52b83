package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Empty(t, cfg.Server.ServiceToken)
	require.True(t, cfg.Server.RateLimit.Enabled)
	require.Equal(t, 120, cfg.Server.RateLimit.Requests)
	require.Equal(t, time.Minute, cfg.Server.RateLimit.Window)

	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.False(t, cfg.Cache.Redis.Enabled)

	require.Equal(t, "https://api.water.noaa.gov/nwps/v1", cfg.Forecast.BaseURL)
	require.Equal(t, 15*time.Second, cfg.Forecast.Timeout)
	require.Equal(t, 30*time.Minute, cfg.Forecast.ForecastTTL)
	require.Equal(t, 168*time.Hour, cfg.Forecast.ThresholdTTL)
	require.Equal(t, 672*time.Hour, cfg.Forecast.ThresholdGrace)

	require.Equal(t, "log", cfg.Push.Provider)

	require.True(t, cfg.Monitor.Enabled)
	require.Equal(t, "@every 30m", cfg.Monitor.Schedule)
	require.Equal(t, 10*time.Minute, cfg.Monitor.RunTimeout)
	require.Equal(t, 8, cfg.Monitor.Concurrency)
	require.Equal(t, 24*time.Hour, cfg.Monitor.DedupWindow)

	require.True(t, cfg.Retention.Enabled)
	require.Equal(t, 90*24*time.Hour, cfg.Retention.AlertAge)

	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
	require.True(t, cfg.Monitoring.Health.Enabled)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	raw := `
server:
  port: 9090
  log_level: debug
  service_token: super-secret
  rate_limit:
    requests: 30
    window: 10s
database:
  driver: postgres
  postgres:
    enabled: true
    host: db.example.com
    port: 5433
    database: riverwatch
    username: rw
    password: pw
cache:
  redis:
    enabled: true
    address: redis.example.com:6379
forecast:
  base_url: https://forecast.example.com/v1
  api_key: key-123
  timeout: 5s
  forecast_ttl: 10m
push:
  provider: gateway
  gateway_url: https://push.example.com
  api_key: push-key
monitor:
  schedule: "@every 15m"
  concurrency: 4
  dedup_window: 12h
retention:
  alert_age: 720h
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(raw), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "super-secret", cfg.Server.ServiceToken)
	require.Equal(t, 30, cfg.Server.RateLimit.Requests)
	require.Equal(t, 10*time.Second, cfg.Server.RateLimit.Window)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.True(t, cfg.Database.Postgres.Enabled)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)

	require.True(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "redis.example.com:6379", cfg.Cache.Redis.Address)

	require.Equal(t, "https://forecast.example.com/v1", cfg.Forecast.BaseURL)
	require.Equal(t, "key-123", cfg.Forecast.APIKey)
	require.Equal(t, 5*time.Second, cfg.Forecast.Timeout)
	require.Equal(t, 10*time.Minute, cfg.Forecast.ForecastTTL)

	require.Equal(t, "gateway", cfg.Push.Provider)
	require.Equal(t, "https://push.example.com", cfg.Push.GatewayURL)

	require.Equal(t, "@every 15m", cfg.Monitor.Schedule)
	require.Equal(t, 4, cfg.Monitor.Concurrency)
	require.Equal(t, 12*time.Hour, cfg.Monitor.DedupWindow)

	require.Equal(t, 720*time.Hour, cfg.Retention.AlertAge)
}

func TestConfigAdapters(t *testing.T) {
	cfg := Config{
		Cache: CacheConfig{Redis: RedisCacheConfig{
			Address: " redis.example.com:6379 ",
			DB:      2,
			Timeout: 3 * time.Second,
		}},
		Forecast: ForecastConfig{
			BaseURL: " https://forecast.example.com/v1 ",
			APIKey:  " key ",
			Timeout: 5 * time.Second,
		},
		Push: PushConfig{
			GatewayURL: " https://push.example.com ",
			APIKey:     "push-key",
			Timeout:    2 * time.Second,
		},
	}

	redisCfg := cfg.Cache.RedisClientConfig()
	require.Equal(t, "redis.example.com:6379", redisCfg.Address)
	require.Equal(t, 2, redisCfg.DB)
	require.Equal(t, 3*time.Second, redisCfg.Timeout)

	clientCfg := cfg.Forecast.ClientConfig()
	require.Equal(t, "https://forecast.example.com/v1", clientCfg.BaseURL)
	require.Equal(t, "key", clientCfg.APIKey)

	gatewayCfg := cfg.Push.GatewayConfig()
	require.Equal(t, "https://push.example.com", gatewayCfg.GatewayURL)
	require.Equal(t, "push-key", gatewayCfg.APIKey)
	require.Equal(t, 2*time.Second, gatewayCfg.Timeout)
}
