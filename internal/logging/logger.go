// Package logging sets up the process-wide zap logger and turns sensor events into
// log lines.
package logging

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	shared *zap.SugaredLogger
)

// InitLogging builds the shared console logger. The level comes from LOG_LEVEL and
// defaults to info. Calling it again is a no-op.
func InitLogging() {
	mu.Lock()
	defer mu.Unlock()
	if shared != nil {
		return
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		MessageKey:     "M",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000000"),
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	level := zapcore.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if parsed, err := zapcore.ParseLevel(lvl); err == nil {
			level = parsed
		}
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), level)
	shared = zap.New(core).Sugar()
}

// Logger returns the shared logger, initialising it on first use.
func Logger() *zap.SugaredLogger {
	InitLogging()
	mu.Lock()
	defer mu.Unlock()
	return shared
}

// Sync flushes buffered log entries.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if shared != nil {
		_ = shared.Sync()
	}
}
