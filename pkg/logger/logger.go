package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// moduleKey is the structured field identifying which component wrote an entry.
const moduleKey = "module"

var (
	mu     sync.RWMutex
	global = zap.NewNop()
)

// Init replaces the process-wide logger with a production logger at the given
// level. Unknown level strings fall back to info rather than failing startup.
func Init(level string) error {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		parsed = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	built, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	global = built
	mu.Unlock()
	return nil
}

// Logger returns the process-wide logger. Before Init it is a nop logger, so
// packages may log during early startup without guarding.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// WithModule returns a child logger tagged with the owning component's name.
func WithModule(name string) *zap.Logger {
	return Logger().With(zap.String(moduleKey, name))
}

// Sync flushes buffered entries. Called once on shutdown.
func Sync() error {
	return Logger().Sync()
}
