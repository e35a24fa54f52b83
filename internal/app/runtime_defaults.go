package app

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultMonitorSchedule    = "@every 30m"
	defaultMonitorRunTimeout  = 10 * time.Minute
	defaultMonitorConcurrency = 8
	defaultDedupWindow        = 24 * time.Hour
	defaultForecastTTL        = 30 * time.Minute
	defaultThresholdTTL       = 7 * 24 * time.Hour
	defaultThresholdGrace     = 28 * 24 * time.Hour
	defaultAlertAge           = 90 * 24 * time.Hour
	defaultDeviceAge          = 180 * 24 * time.Hour
)

// ApplyRuntimeDefaults replaces missing or out-of-range settings with safe
// values. It returns a map naming the corrected keys so callers can log the
// event.
func ApplyRuntimeDefaults(cfg *Config) (map[string]bool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	corrected := make(map[string]bool)
	fix := func(key string) { corrected[key] = true }

	if strings.TrimSpace(cfg.Monitor.Schedule) == "" {
		cfg.Monitor.Schedule = defaultMonitorSchedule
		fix("monitor.schedule")
	}
	if cfg.Monitor.RunTimeout <= 0 {
		cfg.Monitor.RunTimeout = defaultMonitorRunTimeout
		fix("monitor.run_timeout")
	}
	if cfg.Monitor.Concurrency <= 0 {
		cfg.Monitor.Concurrency = defaultMonitorConcurrency
		fix("monitor.concurrency")
	}
	if cfg.Monitor.DedupWindow <= 0 {
		cfg.Monitor.DedupWindow = defaultDedupWindow
		fix("monitor.dedup_window")
	}

	if cfg.Forecast.ForecastTTL <= 0 {
		cfg.Forecast.ForecastTTL = defaultForecastTTL
		fix("forecast.forecast_ttl")
	}
	if cfg.Forecast.ThresholdTTL <= 0 {
		cfg.Forecast.ThresholdTTL = defaultThresholdTTL
		fix("forecast.threshold_ttl")
	}
	if cfg.Forecast.ThresholdGrace < cfg.Forecast.ThresholdTTL {
		cfg.Forecast.ThresholdGrace = defaultThresholdGrace
		fix("forecast.threshold_grace")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Push.Provider)) {
	case "gateway":
		cfg.Push.Provider = "gateway"
		if strings.TrimSpace(cfg.Push.GatewayURL) == "" {
			return nil, fmt.Errorf("push.gateway_url must be configured when push.provider is gateway")
		}
	case "", "log":
		cfg.Push.Provider = "log"
	default:
		return nil, fmt.Errorf("unsupported push provider %q", cfg.Push.Provider)
	}

	if cfg.Retention.AlertAge <= 0 {
		cfg.Retention.AlertAge = defaultAlertAge
		fix("retention.alert_age")
	}
	if cfg.Retention.DeviceAge <= 0 {
		cfg.Retention.DeviceAge = defaultDeviceAge
		fix("retention.device_age")
	}

	if cfg.Server.RateLimit.Enabled {
		if cfg.Server.RateLimit.Requests <= 0 {
			cfg.Server.RateLimit.Requests = 120
			fix("server.rate_limit.requests")
		}
		if cfg.Server.RateLimit.Window <= 0 {
			cfg.Server.RateLimit.Window = time.Minute
			fix("server.rate_limit.window")
		}
	}

	return corrected, nil
}
