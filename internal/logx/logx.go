// Package logx builds the engine's single zap logger, replacing the
// teacher's scattered log.Printf calls with one structured sink.
package logx

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls the logger's level and encoding.
type Config struct {
	Level     string // debug, info, warn, error
	JSON      bool
	Component string
}

// New builds a *zap.Logger per Config. JSON mode uses zap's production
// encoder (one JSON object per line, per spec.md's "one JSON sink for
// opportunities" requirement); non-JSON mode uses the console encoder for
// local development.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var encoderCfg zapcore.EncoderConfig
	var encoder zapcore.Encoder
	if cfg.JSON {
		encoderCfg = zap.NewProductionEncoderConfig()
		encoderCfg.TimeKey = "ts"
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stdout)), level)
	logger := zap.New(core, zap.AddCaller())
	if cfg.Component != "" {
		logger = logger.Named(cfg.Component)
	}
	return logger, nil
}
