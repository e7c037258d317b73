package main

import (
	"bytes"
	"context"
	randv2 "math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/xlog"
)

type syncBuffer struct {
	bytes.Buffer
}

func (b *syncBuffer) Sync() error { return nil }

func newTestLogger(t *testing.T) (xlog.XLogger, *syncBuffer) {
	t.Helper()
	w := &syncBuffer{}
	cfg := defaultConfig()
	cfg.LogLevel = "DEBUG"
	return newLogger(cfg, xlog.WithXLoggerWriter(zapcore.Lock(w))), w
}

func TestOracle(t *testing.T) {
	o := newOracle()
	for _, v := range []int{5, 1, 9, 3, 7} {
		require.True(t, o.add(v))
	}
	require.False(t, o.add(5))
	require.Equal(t, []int{1, 3, 5, 7, 9}, o.sorted)

	testcases := []struct {
		name       string
		fn         func(int) (int, bool)
		v          int
		expected   int
		expectedOK bool
	}{
		{"floor hit", o.floor, 5, 5, true},
		{"floor gap", o.floor, 6, 5, true},
		{"floor below", o.floor, 0, 0, false},
		{"lower hit", o.lower, 5, 3, true},
		{"lower min", o.lower, 1, 0, false},
		{"ceiling hit", o.ceiling, 7, 7, true},
		{"ceiling gap", o.ceiling, 8, 9, true},
		{"ceiling above", o.ceiling, 10, 0, false},
		{"higher hit", o.higher, 7, 9, true},
		{"higher max", o.higher, 9, 0, false},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			res, ok := tc.fn(tc.v)
			require.Equal(tt, tc.expectedOK, ok)
			require.Equal(tt, tc.expected, res)
		})
	}

	v, ok := o.pollFirst()
	require.True(t, ok)
	require.Equal(t, 1, v)
	v, ok = o.pollLast()
	require.True(t, ok)
	require.Equal(t, 9, v)
	require.True(t, o.remove(5))
	require.False(t, o.remove(5))
	require.Equal(t, []int{3, 7}, o.sorted)
	require.Len(t, o.members, 2)
}

func TestStressOp_String(t *testing.T) {
	require.Equal(t, "add", opAdd.String())
	require.Equal(t, "pollLast", opPollLast.String())
	require.Equal(t, "unknown", _opMax.String())
}

func TestStressSet(t *testing.T) {
	logger, _ := newTestLogger(t)
	cfg := defaultConfig()
	cfg.Ops = 3000
	cfg.Range = 200
	cfg.ValidateEvery = 50

	res, err := stressSet(context.Background(), 0, cfg, []int{10, 20, 30, 10}, randv2.New(randv2.NewPCG(1, 2)), logger)
	require.NoError(t, err)
	require.Equal(t, cfg.Ops, res.ops)
	require.Equal(t, res.size, res.set.Len())
	total := 0
	for _, n := range res.counts {
		total += n
	}
	require.Equal(t, cfg.Ops, total)
	require.True(t, slices.IsSorted(res.set.ToSlice()))
}

func TestStressSet_Interrupted(t *testing.T) {
	logger, _ := newTestLogger(t)
	cfg := defaultConfig()
	cfg.Ops = 1000
	cfg.ValidateEvery = 10
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := stressSet(ctx, 3, cfg, nil, randv2.New(randv2.NewPCG(3, 3)), logger)
	require.ErrorIs(t, err, context.Canceled)
	require.Contains(t, err.Error(), "set 3 interrupted")
	require.Equal(t, 10, res.ops)
}

func TestStresser_Run(t *testing.T) {
	logger, w := newTestLogger(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seed.txt"), []byte("1\n2\n3\n"), 0o644))

	cfg := defaultConfig()
	cfg.Sets = 3
	cfg.Ops = 2000
	cfg.Range = 500
	cfg.RandSeed = 7
	cfg.SeedDir, cfg.SeedFile = dir, "seed.txt"
	cfg.DumpDir, cfg.DumpFile = dir, "dump.txt"

	pool, err := ants.NewPool(cfg.Sets, ants.WithLogger(xlog.NewAntsXLogger(logger)))
	require.NoError(t, err)
	defer pool.Release()

	require.NoError(t, newStresser(cfg, logger, pool).Run(context.Background()))
	out := w.String()
	require.Contains(t, out, "[xtree] stress started")
	require.Contains(t, out, `"randSeed":7`)
	require.Contains(t, out, "[xtree] set finished")
	require.Contains(t, out, "[xtree] first set dumped")
	require.Contains(t, out, "[xtree] stress finished")

	dumped, err := loadSeed(dir, "dump.txt")
	require.NoError(t, err)
	require.True(t, slices.IsSorted(dumped))
	require.Equal(t, len(dumped), len(slices.Compact(slices.Clone(dumped))))
}

func TestStresser_RunMissingSeed(t *testing.T) {
	logger, _ := newTestLogger(t)
	cfg := defaultConfig()
	cfg.SeedDir, cfg.SeedFile = t.TempDir(), "missing.txt"
	pool, err := ants.NewPool(1)
	require.NoError(t, err)
	defer pool.Release()
	require.Error(t, newStresser(cfg, logger, pool).Run(context.Background()))
}
