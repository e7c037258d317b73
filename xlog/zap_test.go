package xlog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/infra"
)

func TestLogLevelString(t *testing.T) {
	require.Equal(t, "DEBUG", LogLevelDebug.String())
	require.Equal(t, "INFO", LogLevelInfo.String())
	require.Equal(t, "WARN", LogLevelWarn.String())
	require.Equal(t, "ERROR", LogLevelError.String())
	require.Equal(t, zapcore.DebugLevel, LogLevelDebug.zapLevel())
	require.Equal(t, zapcore.InfoLevel, LogLevelInfo.zapLevel())
	require.Equal(t, zapcore.WarnLevel, LogLevelWarn.zapLevel())
	require.Equal(t, zapcore.ErrorLevel, LogLevelError.zapLevel())
}

func TestParseLogLevel(t *testing.T) {
	testcases := []struct {
		level    string
		expected logLevel
	}{
		{"", LogLevelDebug},
		{"debug", LogLevelDebug},
		{" info ", LogLevelInfo},
		{"Warn", LogLevelWarn},
		{"ERROR", LogLevelError},
		{"fatal", LogLevelDebug},
	}
	for _, tc := range testcases {
		t.Run(tc.level, func(tt *testing.T) {
			require.Equal(tt, tc.expected, ParseLogLevel(tc.level))
			require.Equal(tt, tc.expected.zapLevel(), getLogLevelOrDefault(tc.level))
		})
	}
}

type testBanner struct{}

func (b testBanner) JSON() string {
	return "{\"app\":\"xtree\"}"
}

func (b testBanner) PlainText() string {
	return `
██╗  ██╗████████╗██████╗ ███████╗███████╗
╚██╗██╔╝╚══██╔══╝██╔══██╗██╔════╝██╔════╝
 ╚███╔╝    ██║   ██████╔╝█████╗  █████╗
 ██╔██╗    ██║   ██╔══██╗██╔══╝  ██╔══╝
██╔╝ ██╗   ██║   ██║  ██║███████╗███████╗
╚═╝  ╚═╝   ╚═╝   ╚═╝  ╚═╝╚══════╝╚══════╝
`
}

type testMemOutWriter struct {
	lock sync.Mutex
	data []byte
}

func (w *testMemOutWriter) Write(p []byte) (n int, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *testMemOutWriter) String() string {
	w.lock.Lock()
	defer w.lock.Unlock()
	return string(w.data)
}

func (w *testMemOutWriter) Reset() {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.data = make([]byte, 0, 4096)
}

func newTestLogger(t *testing.T, opts ...XLoggerOption) (XLogger, *testMemOutWriter) {
	w := &testMemOutWriter{data: make([]byte, 0, 4096)}
	opts = append([]XLoggerOption{
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerEncoder(JSON),
		WithXLoggerWriter(zapcore.AddSync(w)),
	}, opts...)
	logger := NewXLogger(opts...)
	require.NotNil(t, logger)
	return logger, w
}

func TestLoggerPrintBanner(t *testing.T) {
	logger, w := newTestLogger(t)
	logger.Banner(testBanner{})
	require.Contains(t, w.String(), `"banner":"{\"app\":\"xtree\"}"`)

	// Printed once.
	w.Reset()
	logger.Banner(testBanner{})
	require.Empty(t, w.String())
}

func TestXLogger_Levels(t *testing.T) {
	logger, w := newTestLogger(t)
	require.Equal(t, "debug", logger.Level())

	logger.Debug("debug msg", zap.Int("k", 1))
	logger.Info("info msg")
	logger.Warn("warn msg")
	logger.Error(errors.New("boom"), "error msg")
	logger.Logf(zapcore.InfoLevel, "logf %d", 123)
	out := w.String()
	for _, expected := range []string{
		`"msg":"debug msg"`, `"k":1`, `"lvl":"DEBUG"`,
		`"msg":"info msg"`, `"msg":"warn msg"`,
		`"msg":"error msg"`, `"error":"boom"`,
		`"msg":"logf 123"`,
	} {
		require.Contains(t, out, expected)
	}

	w.Reset()
	logger.IncreaseLogLevel(zapcore.WarnLevel)
	require.Equal(t, "warn", logger.Level())
	logger.Debug("hidden")
	logger.Info("hidden")
	require.Empty(t, w.String())
	logger.Warn("shown")
	require.Contains(t, w.String(), "shown")
	require.NoError(t, logger.Sync())
}

var errLogTest = errors.New("log test error")

func TestXLogger_ErrorStack(t *testing.T) {
	logger, w := newTestLogger(t)
	err := infra.WrapErrorStackWithMessage(errLogTest, "wrapped")
	logger.ErrorStack(err, "error stack")
	out := w.String()
	require.Contains(t, out, `"error":"wrapped: log test error"`)
	require.Contains(t, out, `"errorStack":[`)
	require.Contains(t, out, "TestXLogger_ErrorStack")

	w.Reset()
	logger.ErrorStackf(err, "error stack %s", "format")
	require.Contains(t, w.String(), `"msg":"error stack format"`)
	require.Contains(t, w.String(), `"errorStack":[`)

	// A plain error is kept as a string field.
	w.Reset()
	logger.ErrorStack(errLogTest, "plain")
	require.Contains(t, w.String(), `"error":"log test error"`)
	require.NotContains(t, w.String(), "errorStack")
}

func TestXLogger_ContextFields(t *testing.T) {
	logger, w := newTestLogger(t,
		WithXLoggerContextFieldExtract("traceId"),
		WithXLoggerContextFieldExtract("svc", "service"),
		WithXLoggerContextFieldExtract("secret", ContextKeyMapToOmitempty),
		WithXLoggerContextFieldExtract(""),
	)
	ctx := ContextWithField(context.Background(), "traceId", "abc")
	ctx = ContextWithField(ctx, "secret", "xyz")
	logger.InfoContext(ctx, "ctx info")
	out := w.String()
	require.Contains(t, out, `"traceId":"abc"`)
	require.Contains(t, out, `"service":"nil"`)
	require.NotContains(t, out, "xyz")

	w.Reset()
	logger.DebugContext(ctx, "ctx debug")
	logger.WarnContext(ctx, "ctx warn")
	logger.ErrorContext(ctx, errLogTest, "ctx error")
	logger.ErrorStackContext(ctx, infra.WrapErrorStack(errLogTest), "ctx error stack")
	out = w.String()
	require.Equal(t, 4, strings.Count(out, `"traceId":"abc"`))
	require.Contains(t, out, `"errorStack":[`)
}

func TestXLogger_PlainText(t *testing.T) {
	logger, w := newTestLogger(t, WithXLoggerEncoder(PlainText))
	logger.Info("plain text")
	out := w.String()
	require.Contains(t, out, "plain text")
	require.Contains(t, out, "INFO")
	require.False(t, strings.HasPrefix(out, "{"))
}

func TestXLogger_InvalidOptions(t *testing.T) {
	require.Panics(t, func() {
		NewXLogger(WithXLoggerEncoder(_encMax))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerWriter(nil))
	})
	// nil options are skipped, the default stdout core is used.
	logger := NewXLogger(nil, WithXLoggerLevelEncoder(nil), WithXLoggerTimeEncoder(nil))
	require.NotNil(t, logger)
}
