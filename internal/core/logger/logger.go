package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a development logger unless production is requested.
// An unknown level falls back to info.
func NewLogger(level string, production bool) *zap.Logger {
	loggerConfig := zap.NewDevelopmentConfig()
	if production {
		loggerConfig = zap.NewProductionConfig()
	}
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		atomicLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	loggerConfig.Level = atomicLevel

	logger, err := loggerConfig.Build()
	if nil != err {
		panic(err)
	}

	return logger
}
