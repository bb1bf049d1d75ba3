// Package logger builds the structured zap loggers used across the service.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration
type Config struct {
	Level       string
	Format      string
	Development bool
	// ServiceName is attached to every entry as the "service" field.
	ServiceName string
	// Atomic, when set, receives Level and controls the logger so the level
	// can be changed while running.
	Atomic *zap.AtomicLevel
}

// ParseLevel parses a level name, falling back to info.
func ParseLevel(name string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// New creates a new logger instance
func New(cfg Config) (*zap.Logger, error) {
	var enabler zapcore.LevelEnabler = ParseLevel(cfg.Level)
	if cfg.Atomic != nil {
		cfg.Atomic.SetLevel(ParseLevel(cfg.Level))
		enabler = cfg.Atomic
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	if cfg.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), enabler)

	options := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		options = append(options, zap.Development(), zap.AddStacktrace(zapcore.ErrorLevel))
	}
	if cfg.ServiceName != "" {
		options = append(options, zap.Fields(zap.String("service", cfg.ServiceName)))
	}

	return zap.New(core, options...), nil
}
