package xlog

import (
	"slices"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ xLogCore = (xLogMultiCore)(nil)

// xLogMultiCore duplicates the entries into every core. The encoders and
// the writer of the first core stand for the whole tee.
type xLogMultiCore []xLogCore

func (mc xLogMultiCore) primary() xLogCore {
	if len(mc) == 0 {
		return nil
	}
	return mc[0]
}

func (mc xLogMultiCore) levelEncoder() zapcore.LevelEncoder {
	if p := mc.primary(); p != nil {
		return p.levelEncoder()
	}
	return nil
}

func (mc xLogMultiCore) outEncoder() func(cfg zapcore.EncoderConfig) zapcore.Encoder {
	if p := mc.primary(); p != nil {
		return p.outEncoder()
	}
	return nil
}

func (mc xLogMultiCore) timeEncoder() zapcore.TimeEncoder {
	if p := mc.primary(); p != nil {
		return p.timeEncoder()
	}
	return nil
}

func (mc xLogMultiCore) writeSyncer() zapcore.WriteSyncer {
	if p := mc.primary(); p != nil {
		return p.writeSyncer()
	}
	return nil
}

// each runs fn on every core and keeps all the failures.
func (mc xLogMultiCore) each(fn func(core xLogCore) error) (err error) {
	for _, core := range mc {
		err = multierr.Append(err, fn(core))
	}
	return err
}

func (mc xLogMultiCore) With(fields []zap.Field) zapcore.Core {
	cores := make([]zapcore.Core, 0, len(mc))
	for _, core := range mc {
		cores = append(cores, core.With(fields))
	}
	return zapcore.NewTee(cores...)
}

// Level is the lowest level enabled by any core.
func (mc xLogMultiCore) Level() zapcore.Level {
	if len(mc) == 0 {
		return zapcore.InvalidLevel
	}
	return slices.Min(levelsOf(mc))
}

func levelsOf(mc xLogMultiCore) []zapcore.Level {
	lvls := make([]zapcore.Level, 0, len(mc))
	for _, core := range mc {
		lvls = append(lvls, zapcore.LevelOf(core))
	}
	return lvls
}

func (mc xLogMultiCore) Enabled(lvl zapcore.Level) bool {
	return slices.ContainsFunc(mc, func(core xLogCore) bool {
		return core.Enabled(lvl)
	})
}

func (mc xLogMultiCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	for _, core := range mc {
		ce = core.Check(ent, ce)
	}
	return ce
}

func (mc xLogMultiCore) Write(ent zapcore.Entry, fields []zap.Field) error {
	return mc.each(func(core xLogCore) error {
		return core.Write(ent, fields)
	})
}

func (mc xLogMultiCore) Sync() error {
	return mc.each(xLogCore.Sync)
}

func XLogTeeCore(cores ...xLogCore) xLogCore {
	return xLogMultiCore(cores)
}

// WrapCores re-encodes every core of the tee by the cfg.
func WrapCores(cores []xLogCore, cfg *zapcore.EncoderConfig) (xLogCore, error) {
	wrapped := make(xLogMultiCore, len(cores))
	for i, core := range cores {
		newCore, err := WrapCore(core, cfg)
		if err != nil {
			return nil, err
		}
		wrapped[i] = newCore
	}
	return wrapped, nil
}
