package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/riverwatchhq/riverwatch/internal/app"
	"github.com/riverwatchhq/riverwatch/internal/handlers"
	"github.com/riverwatchhq/riverwatch/internal/health"
	"github.com/riverwatchhq/riverwatch/internal/middleware"
	"github.com/riverwatchhq/riverwatch/internal/monitor"
)

// Dependencies carries the runtime collaborators the router wires into
// handlers. Health and RunState may be nil; the affected endpoints then
// degrade instead of failing router construction.
type Dependencies struct {
	Health    *health.Manager
	Runner    handlers.MonitorRunner
	RunState  *monitor.RunStateStore
	RateStore middleware.RateStore
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, cfg *app.Config, deps Dependencies) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.Runner == nil {
		return nil, fmt.Errorf("monitor runner must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	if cfg.Server.RateLimit.Enabled {
		r.Use(middleware.RateLimit(deps.RateStore, cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window))
	}

	// Health endpoints stay public so orchestrators can probe without credentials.
	registerHealthRoutes(r, cfg, deps.Health)

	api := r.Group("/api")
	api.Use(middleware.ServiceAuth(cfg.Server.ServiceToken))

	preferencesHandler, err := handlers.NewPreferencesHandler(db)
	if err != nil {
		return nil, err
	}
	registerPreferenceRoutes(api, preferencesHandler)

	devicesHandler, err := handlers.NewDevicesHandler(db)
	if err != nil {
		return nil, err
	}
	registerDeviceRoutes(api, devicesHandler)

	stationsHandler, err := handlers.NewStationsHandler(db)
	if err != nil {
		return nil, err
	}
	registerStationRoutes(api, stationsHandler)

	alertsHandler, err := handlers.NewAlertsHandler(db)
	if err != nil {
		return nil, err
	}
	registerAlertRoutes(api, alertsHandler)

	monitorHandler, err := handlers.NewMonitorHandler(deps.Runner, deps.RunState)
	if err != nil {
		return nil, err
	}
	registerMonitorRoutes(api, monitorHandler)

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
