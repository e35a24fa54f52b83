package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riverwatchhq/riverwatch/internal/app"
	"github.com/riverwatchhq/riverwatch/internal/push"
)

func TestBuildPushSender(t *testing.T) {
	cfg := &app.Config{Push: app.PushConfig{Provider: "log"}}
	sender, err := buildPushSender(cfg)
	require.NoError(t, err)
	require.IsType(t, &push.LogSender{}, sender)

	cfg = &app.Config{Push: app.PushConfig{Provider: ""}}
	sender, err = buildPushSender(cfg)
	require.NoError(t, err)
	require.IsType(t, &push.LogSender{}, sender)

	cfg = &app.Config{Push: app.PushConfig{
		Provider:   "Gateway",
		GatewayURL: "https://push.example.com",
		APIKey:     "key",
		Timeout:    5 * time.Second,
	}}
	sender, err = buildPushSender(cfg)
	require.NoError(t, err)
	require.IsType(t, &push.HTTPSender{}, sender)

	cfg = &app.Config{Push: app.PushConfig{Provider: "carrier-pigeon"}}
	_, err = buildPushSender(cfg)
	require.ErrorContains(t, err, "unsupported push provider")
}

func TestDatabaseConfig(t *testing.T) {
	dbCfg := databaseConfig(app.DatabaseConfig{})
	require.Equal(t, "sqlite", dbCfg.Driver)

	dbCfg = databaseConfig(app.DatabaseConfig{
		Driver: " POSTGRESQL ",
		Postgres: app.DBAuthConfig{
			Host:     " db.example.com ",
			Port:     5433,
			Database: "riverwatch",
			Username: "rw",
			Password: "secret",
		},
	})
	require.Equal(t, "postgres", dbCfg.Driver)
	require.Equal(t, "db.example.com", dbCfg.Host)
	require.Equal(t, 5433, dbCfg.Port)
	require.Equal(t, "riverwatch", dbCfg.Name)
	require.Equal(t, "rw", dbCfg.User)
	require.Equal(t, "secret", dbCfg.Password)

	dbCfg = databaseConfig(app.DatabaseConfig{
		Driver: "mysql",
		MySQL: app.DBAuthConfig{
			Host:     "mysql.internal",
			Port:     3306,
			Database: "riverwatch",
			Username: "rw",
			Password: "secret",
		},
	})
	require.Equal(t, "mysql", dbCfg.Driver)
	require.Equal(t, "mysql.internal", dbCfg.Host)

	// Unknown drivers pass through so Open can report them.
	dbCfg = databaseConfig(app.DatabaseConfig{Driver: "oracle"})
	require.Equal(t, "oracle", dbCfg.Driver)
}
