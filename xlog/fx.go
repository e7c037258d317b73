package xlog

import (
	"time"

	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var _ fxevent.Logger = (*FxXLogger)(nil)

// FxXLogger prints the fx application events. The dependency graph events
// are debug, the lifecycle events are info and the failures are errors.
type FxXLogger struct {
	logger XLogger
}

func (l *FxXLogger) hook(kind string, function, caller string, runtime time.Duration, err error) {
	fields := []zap.Field{
		zap.String("function", function),
		zap.String("caller", caller),
	}
	if runtime > 0 {
		fields = append(fields, zap.Duration("in", runtime))
	}
	if err != nil {
		l.logger.Error(err, "HOOK "+kind+" failed", fields...)
		return
	}
	l.logger.Info("HOOK "+kind, fields...)
}

func (l *FxXLogger) types(kind string, typeNames []string, module string, err error, fields ...zap.Field) {
	for _, typ := range typeNames {
		newFields := append([]zap.Field{zap.String("type", typ)}, fields...)
		if module != "" {
			newFields = append(newFields, zap.String("module", module))
		}
		l.logger.Debug(kind, newFields...)
	}
	if err != nil {
		l.logger.Error(err, kind+" failed")
	}
}

func (l *FxXLogger) LogEvent(event fxevent.Event) {
	if l == nil || l.logger == nil {
		return
	}

	switch e := event.(type) {
	case *fxevent.OnStartExecuting:
		l.hook("OnStart executing", e.FunctionName, e.CallerName, 0, nil)
	case *fxevent.OnStartExecuted:
		l.hook("OnStart executed", e.FunctionName, e.CallerName, e.Runtime, e.Err)
	case *fxevent.OnStopExecuting:
		l.hook("OnStop executing", e.FunctionName, e.CallerName, 0, nil)
	case *fxevent.OnStopExecuted:
		l.hook("OnStop executed", e.FunctionName, e.CallerName, e.Runtime, e.Err)
	case *fxevent.Supplied:
		l.types("SUPPLY", []string{e.TypeName}, e.ModuleName, e.Err)
	case *fxevent.Provided:
		l.types("PROVIDE", e.OutputTypeNames, e.ModuleName, e.Err,
			zap.String("constructor", e.ConstructorName),
			zap.Bool("private", e.Private),
		)
	case *fxevent.Replaced:
		l.types("REPLACE", e.OutputTypeNames, e.ModuleName, e.Err)
	case *fxevent.Decorated:
		l.types("DECORATE", e.OutputTypeNames, e.ModuleName, e.Err,
			zap.String("decorator", e.DecoratorName),
		)
	case *fxevent.Invoking:
		l.logger.Debug("INVOKING", zap.String("function", e.FunctionName), zap.String("module", e.ModuleName))
	case *fxevent.Invoked:
		if e.Err != nil {
			l.logger.Error(e.Err, "INVOKE failed",
				zap.String("function", e.FunctionName),
				zap.String("trace", e.Trace),
			)
		}
	case *fxevent.Stopping:
		l.logger.Info("STOPPING", zap.String("signal", e.Signal.String()))
	case *fxevent.Stopped:
		if e.Err != nil {
			l.logger.Error(e.Err, "STOP failed")
		}
	case *fxevent.RollingBack:
		l.logger.Error(e.StartErr, "START failed, rolling back")
	case *fxevent.RolledBack:
		if e.Err != nil {
			l.logger.Error(e.Err, "ROLLBACK failed")
		}
	case *fxevent.Started:
		if e.Err != nil {
			l.logger.Error(e.Err, "START failed")
		} else {
			l.logger.Info("RUNNING")
		}
	case *fxevent.LoggerInitialized:
		if e.Err != nil {
			l.logger.Error(e.Err, "LOGGER initialize failed")
		} else {
			l.logger.Debug("LOGGER initialized", zap.String("constructor", e.ConstructorName))
		}
	default:
	}
}

func NewFxXLogger(logger XLogger) *FxXLogger {
	xl, ok := logger.(*xLogger)
	if !ok || xl == nil {
		return &FxXLogger{logger: logger}
	}
	return &FxXLogger{logger: xl.named("Fx")}
}
