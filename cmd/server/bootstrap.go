package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/riverwatchhq/riverwatch/internal/alerting"
	"github.com/riverwatchhq/riverwatch/internal/api"
	"github.com/riverwatchhq/riverwatch/internal/app"
	"github.com/riverwatchhq/riverwatch/internal/app/maintenance"
	"github.com/riverwatchhq/riverwatch/internal/cache"
	"github.com/riverwatchhq/riverwatch/internal/database"
	"github.com/riverwatchhq/riverwatch/internal/health"
	"github.com/riverwatchhq/riverwatch/internal/middleware"
	"github.com/riverwatchhq/riverwatch/internal/monitor"
	"github.com/riverwatchhq/riverwatch/internal/nwps"
	"github.com/riverwatchhq/riverwatch/internal/providers"
	"github.com/riverwatchhq/riverwatch/internal/push"
	"github.com/riverwatchhq/riverwatch/internal/services"
	"github.com/riverwatchhq/riverwatch/pkg/logger"
)

// runtimeStack bundles long-lived components used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Redis     cache.Store
	Scheduler *monitor.Scheduler
	Cleaner   *maintenance.Cleaner
	RateStore middleware.RateStore
	Health    *health.Manager
	Router    *gin.Engine
}

// bootstrapRuntime initialises the database, caches, providers, the monitoring
// pipeline and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = openDatabase(cfg)
	if err != nil {
		return nil, err
	}

	dbStore := cache.NewDatabaseStore(stack.DB)

	if cfg.Cache.Redis.Enabled {
		client, redisErr := cache.NewRedisClient(cfg.Cache.RedisClientConfig())
		if redisErr != nil {
			log.Warn("redis unavailable; falling back to database-backed cache", zap.Error(redisErr))
		} else {
			stack.Redis = client
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	cacheStore := cache.Store(dbStore)
	if stack.Redis != nil {
		cacheStore = stack.Redis
	}

	apiClient, err := nwps.NewClient(cfg.Forecast.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise forecast client: %w", err)
	}

	forecasts, err := providers.NewForecastProvider(cacheStore, apiClient,
		providers.WithForecastFreshness(cfg.Forecast.ForecastTTL))
	if err != nil {
		return nil, fmt.Errorf("initialise forecast provider: %w", err)
	}

	thresholds, err := providers.NewThresholdProvider(cacheStore, apiClient,
		providers.WithThresholdFreshness(cfg.Forecast.ThresholdTTL),
		providers.WithThresholdStaleGrace(cfg.Forecast.ThresholdGrace))
	if err != nil {
		return nil, fmt.Errorf("initialise threshold provider: %w", err)
	}

	preferenceSvc, err := services.NewPreferenceService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise preference service: %w", err)
	}

	alertSvc, err := services.NewAlertHistoryService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise alert history service: %w", err)
	}

	stationSvc, err := services.NewStationService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise station service: %w", err)
	}

	deviceSvc, err := services.NewDeviceTokenService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise device token service: %w", err)
	}

	sender, err := buildPushSender(cfg)
	if err != nil {
		return nil, err
	}

	dispatcher, err := alerting.NewDispatcher(alertSvc, deviceSvc, sender,
		alerting.WithDedupWindow(cfg.Monitor.DedupWindow))
	if err != nil {
		return nil, fmt.Errorf("initialise alert dispatcher: %w", err)
	}

	state, err := monitor.NewRunStateStore(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise run state store: %w", err)
	}

	orchestrator, err := monitor.NewOrchestrator(monitor.Dependencies{
		Preferences: preferenceSvc,
		Forecasts:   forecasts,
		Thresholds:  thresholds,
		Stations:    stationSvc,
		Dispatcher:  dispatcher,
		State:       state,
	}, monitor.WithConcurrency(cfg.Monitor.Concurrency))
	if err != nil {
		return nil, fmt.Errorf("initialise orchestrator: %w", err)
	}

	stack.Scheduler, err = monitor.NewScheduler(orchestrator,
		monitor.WithSchedule(cfg.Monitor.Schedule),
		monitor.WithRunTimeout(cfg.Monitor.RunTimeout))
	if err != nil {
		return nil, fmt.Errorf("initialise scheduler: %w", err)
	}

	if cfg.Retention.Enabled {
		stack.Cleaner = maintenance.NewCleaner(stack.DB, alertSvc, deviceSvc,
			maintenance.WithAlertRetention(cfg.Retention.AlertAge),
			maintenance.WithDeviceRetention(cfg.Retention.DeviceAge))
		if err := stack.Cleaner.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	stack.RateStore = middleware.NewCacheRateStore(cacheStore)
	stack.Health = buildHealthManager(stack.DB, cacheStore, cfg, state)

	stack.Router, err = api.NewRouter(stack.DB, cfg, api.Dependencies{
		Health:    stack.Health,
		Runner:    stack.Scheduler,
		RunState:  state,
		RateStore: stack.RateStore,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Scheduler != nil {
		<-s.Scheduler.Stop().Done()
	}

	if s.Cleaner != nil {
		<-s.Cleaner.Stop().Done()
		if err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	if rc, ok := s.Redis.(*cache.RedisClient); ok && rc != nil {
		if err := rc.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		sqlDB, err := s.DB.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}
}

func buildPushSender(cfg *app.Config) (push.Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Push.Provider)) {
	case "", "log":
		return push.NewLogSender(), nil
	case "gateway":
		sender, err := push.NewHTTPSender(cfg.Push.GatewayConfig())
		if err != nil {
			return nil, fmt.Errorf("initialise push gateway client: %w", err)
		}
		return sender, nil
	default:
		return nil, fmt.Errorf("unsupported push provider %q", cfg.Push.Provider)
	}
}

func buildHealthManager(db *gorm.DB, store cache.Store, cfg *app.Config, state *monitor.RunStateStore) *health.Manager {
	manager := health.NewManager()

	manager.RegisterReadiness(health.Database(db, 0))
	manager.RegisterReadiness(health.Cache(store, 0))
	manager.RegisterReadiness(health.ForecastAPI(cfg.Forecast.BaseURL))
	manager.RegisterReadiness(health.SchedulerState(state, 0))

	return manager
}

func openDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := databaseConfig(cfg.Database)

	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	logger.WithModule("database").Info("database connected", zap.String("driver", dbCfg.Driver))
	return db, nil
}

// databaseConfig normalises the configured driver name and copies the
// matching credential block. Unknown drivers pass through so Open can report
// them.
func databaseConfig(src app.DatabaseConfig) database.Config {
	cfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(src.Driver)),
		Path:   strings.TrimSpace(src.Path),
		DSN:    strings.TrimSpace(src.DSN),
	}

	switch cfg.Driver {
	case "", "sqlite":
		cfg.Driver = "sqlite"
	case "postgres", "postgresql":
		cfg.Driver = "postgres"
		applyDBAuth(&cfg, src.Postgres)
	case "mysql":
		applyDBAuth(&cfg, src.MySQL)
	}

	return cfg
}

func applyDBAuth(cfg *database.Config, auth app.DBAuthConfig) {
	cfg.Host = strings.TrimSpace(auth.Host)
	cfg.Port = auth.Port
	cfg.Name = strings.TrimSpace(auth.Database)
	cfg.User = strings.TrimSpace(auth.Username)
	cfg.Password = strings.TrimSpace(auth.Password)
}
