package xlog

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestMultiCores_DataRace(t *testing.T) {
	tee := make(xLogMultiCore, 0, 2)
	require.Equal(t, zapcore.InvalidLevel, tee.Level())
	require.False(t, tee.Enabled(zapcore.FatalLevel))
	require.NoError(t, tee.Sync())
	require.Nil(t, tee.writeSyncer())
	require.Nil(t, tee.levelEncoder())
	require.Nil(t, tee.timeEncoder())
	require.Nil(t, tee.outEncoder())

	w1 := &testMemOutWriter{data: make([]byte, 0, 4096)}
	w2 := &testMemOutWriter{data: make([]byte, 0, 4096)}
	lvlEnabler := zap.NewAtomicLevelAt(LogLevelDebug.zapLevel())
	errLvlEnabler := zap.NewAtomicLevelAt(LogLevelError.zapLevel())
	tee = append(tee,
		newConsoleCore(zapcore.AddSync(w1))(&lvlEnabler, JSON, zapcore.CapitalLevelEncoder, zapcore.ISO8601TimeEncoder),
		newConsoleCore(zapcore.AddSync(w2))(&errLvlEnabler, PlainText, zapcore.CapitalLevelEncoder, zapcore.ISO8601TimeEncoder),
	)
	require.Equal(t, zapcore.DebugLevel, tee.Level())
	// The encoders and the writer are taken from the first core.
	require.Equal(t, tee[0].writeSyncer(), tee.writeSyncer())
	require.NotNil(t, tee.levelEncoder())
	require.NotNil(t, tee.timeEncoder())
	require.NotNil(t, tee.outEncoder())
	require.True(t, tee.Enabled(zapcore.DebugLevel))

	var wg sync.WaitGroup
	wg.Add(2)
	for g := 0; g < 2; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				ce := tee.Check(zapcore.Entry{Level: zapcore.DebugLevel, Message: "tee"}, nil)
				ce.Write(zap.String("idx", strconv.Itoa(i)))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, tee.Sync())
	require.NotEmpty(t, w1.String())
	// The debug entries are filtered by the second core.
	require.Empty(t, w2.String())

	ce := tee.Check(zapcore.Entry{Level: zapcore.ErrorLevel, Message: "both"}, nil)
	ce.Write()
	require.Contains(t, w1.String(), "both")
	require.Contains(t, w2.String(), "both")

	wrapped, err := WrapCores(tee, componentCoreEncoderCfg)
	require.NoError(t, err)
	require.Len(t, wrapped.(xLogMultiCore), 2)
	require.NotNil(t, tee.With([]zap.Field{zap.String("k", "v")}))
}
