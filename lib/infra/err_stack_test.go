package infra

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

var initPC = caller()

func caller() Frame {
	var PCs [3]uintptr
	n := runtime.Callers(2, PCs[:])
	frames := runtime.CallersFrames(PCs[:n])
	frame, _ := frames.Next()
	return Frame(frame.PC)
}

func TestFrameFormat(t *testing.T) {
	testcases := []struct {
		Frame
		format   string
		contains string
	}{
		{initPC, "%s", "err_stack_test.go"},
		{initPC, "%+s", "github.com/benz9527/xtree/lib/infra.init"},
		{initPC, "%n", "init"},
		{initPC, "%d", "15"},
		{initPC, "%v", "err_stack_test.go:15"},
		{initPC, "%+v", "lib/infra/err_stack_test.go:15"},
		{Frame(0), "%s", "unknownFile"},
		{Frame(0), "%n", "unknownFunc"},
		{Frame(0), "%d", "0"},
	}

	for _, tc := range testcases {
		res := fmt.Sprintf(tc.format, tc.Frame)
		require.Truef(t, strings.Contains(res, tc.contains), "format %s: %q not in %q", tc.format, tc.contains, res)
	}
}

func TestFrameMarshalText(t *testing.T) {
	text, err := initPC.MarshalText()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(text), "github.com/benz9527/xtree/lib/infra.init "))
	require.True(t, strings.HasSuffix(string(text), "err_stack_test.go:15"))

	text, err = Frame(0).MarshalText()
	require.NoError(t, err)
	require.Equal(t, "unknownFrame", string(text))
}

var errTest = errors.New("test error")

func TestErrorStack_Wrap(t *testing.T) {
	require.Nil(t, WrapErrorStack(nil))
	require.Nil(t, WrapErrorStackWithMessage(nil, "abc"))

	err := WrapErrorStackWithMessage(errTest, "wrapped")
	require.ErrorIs(t, err, errTest)
	require.Equal(t, "wrapped: test error", err.Error())

	var es ErrorStack
	require.True(t, errors.As(err, &es))
	require.NotEmpty(t, es.Frames())
	found := false
	for _, frame := range es.Frames() {
		if fmt.Sprintf("%n", frame) == "TestErrorStack_Wrap" {
			found = true
			break
		}
	}
	require.True(t, found)

	// Wrapping again keeps the original frames.
	again := WrapErrorStack(err)
	require.Same(t, err, again)

	plain := WrapErrorStack(errTest)
	require.Equal(t, "test error", plain.Error())

	created := NewErrorStack("created")
	require.Equal(t, "created", created.Error())
	require.Nil(t, errors.Unwrap(created))
}

func TestErrorStack_Format(t *testing.T) {
	err := WrapErrorStackWithMessage(errTest, "fmt")
	require.Equal(t, "fmt: test error", fmt.Sprintf("%s", err))
	require.Equal(t, "fmt: test error", fmt.Sprintf("%v", err))
	require.Equal(t, `"fmt: test error"`, fmt.Sprintf("%q", err))
	verbose := fmt.Sprintf("%+v", err)
	require.True(t, strings.HasPrefix(verbose, "fmt: test error\n"))
	require.Contains(t, verbose, "err_stack_test.go")
}

func TestErrorStack_MarshalLogObject(t *testing.T) {
	merr := multierr.Combine(errors.New("e1"), errors.New("e2"))
	err := WrapErrorStackWithMessage(merr, "combined")

	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, err.(ErrorStack).MarshalLogObject(enc))
	require.Equal(t, "combined: e1; e2", enc.Fields["error"])
	require.Equal(t, []any{"e1", "e2"}, enc.Fields["errors"])
	stack, ok := enc.Fields["errorStack"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, stack)
}
