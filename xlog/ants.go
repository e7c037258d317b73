package xlog

import (
	"go.uber.org/zap/zapcore"
)

// AntsXLogger serves the ants pool, which only prints the worker panics.
type AntsXLogger struct {
	logger XLogger
}

func (l *AntsXLogger) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Logf(zapcore.ErrorLevel, format, args...)
}

func NewAntsXLogger(logger XLogger) *AntsXLogger {
	xl, ok := logger.(*xLogger)
	if !ok || xl == nil {
		return &AntsXLogger{logger: logger}
	}
	return &AntsXLogger{
		logger: xl.named("Ants"),
	}
}
