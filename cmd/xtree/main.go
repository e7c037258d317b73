package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/xlog"
)

type banner struct{}

func (banner) JSON() string {
	return `{"app":"xtree","desc":"red-black tree set stress"}`
}

func (banner) PlainText() string {
	return "xtree :: red-black tree set stress"
}

func newLogger(cfg *config, opts ...xlog.XLoggerOption) xlog.XLogger {
	enc := xlog.JSON
	if strings.EqualFold(cfg.LogEncoder, "text") {
		enc = xlog.PlainText
	}
	opts = append([]xlog.XLoggerOption{
		xlog.WithXLoggerEncoder(enc),
		xlog.WithXLoggerLevel(xlog.ParseLogLevel(cfg.LogLevel)),
		xlog.WithXLoggerLevelEncoder(zapcore.CapitalLevelEncoder),
		xlog.WithXLoggerTimeEncoder(zapcore.ISO8601TimeEncoder),
	}, opts...)
	return xlog.NewXLogger(opts...)
}

func newPool(lc fx.Lifecycle, cfg *config, logger xlog.XLogger) (*ants.Pool, error) {
	pool, err := ants.NewPool(cfg.Sets,
		ants.WithLogger(xlog.NewAntsXLogger(logger)),
		ants.WithPanicHandler(func(p any) {
			logger.Error(fmt.Errorf("%v", p), "[xtree] stress worker panic")
		}),
	)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[xtree] ants pool")
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return pool.ReleaseTimeout(time.Second)
		},
	})
	return pool, nil
}

type metrics struct {
	shutdown observability.ShutdownFunc
	server   *http.Server
}

func newMetrics(lc fx.Lifecycle, cfg *config, logger xlog.XLogger) (*metrics, error) {
	shutdown, err := observability.InitMetricsExporter(cfg.Metrics, os.Stdout, cfg.MetricsInterval, cfg.MetricsInterval)
	if err != nil {
		return nil, err
	}
	m := &metrics{shutdown: shutdown}
	if cfg.Metrics != observability.NoneMetricsExporter {
		observability.InitAppStats(context.Background(), "xtree", nil)
	}
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		m.server = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if m.server == nil {
				return nil
			}
			ln, err := net.Listen("tcp", m.server.Addr)
			if err != nil {
				return infra.WrapErrorStackWithMessage(err, "[xtree] metrics listen")
			}
			logger.Info("[xtree] metrics serving", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.ErrorStack(err, "[xtree] metrics server")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if m.server != nil {
				_ = m.server.Shutdown(ctx)
			}
			return m.shutdown(ctx)
		},
	})
	return m, nil
}

// registerStress runs the stress once the app is started, then shuts the
// app down with the exit code of the run.
func registerStress(lc fx.Lifecycle, shutdowner fx.Shutdowner, st *stresser, logger xlog.XLogger, _ *metrics) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				code := 0
				if err := st.Run(ctx); err != nil {
					logger.ErrorStack(err, "[xtree] stress failed")
					code = 1
				}
				_ = shutdowner.Shutdown(fx.ExitCode(code))
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
			_ = logger.Sync()
			return nil
		},
	})
}

func appOptions(cfg *config, logger xlog.XLogger) fx.Option {
	return fx.Options(
		fx.WithLogger(func() fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Supply(cfg),
		fx.Provide(
			func() xlog.XLogger { return logger },
			newPool,
			newMetrics,
			newStresser,
		),
		fx.Invoke(registerStress),
	)
}

func main() {
	cfg, err := loadConfig(os.Args[1:], os.LookupEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(2)
	}
	logger := newLogger(cfg, xlog.WithXLoggerStdOutWriter())
	logger.Banner(banner{})
	if _, err = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Logf(zapcore.InfoLevel, format, args...)
	})); err != nil {
		logger.Warn("[xtree] automaxprocs", zap.Error(err))
	}
	fx.New(appOptions(cfg, logger)).Run()
}
