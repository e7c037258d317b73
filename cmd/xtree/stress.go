package main

import (
	"context"
	"fmt"
	randv2 "math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/set"
	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/xlog"
)

type stressOp uint8

const (
	opAdd stressOp = iota
	opRemove
	opContains
	opFloor
	opCeiling
	opHigher
	opLower
	opPollFirst
	opPollLast
	_opMax
)

var stressOpNames = [_opMax]string{
	opAdd:       "add",
	opRemove:    "remove",
	opContains:  "contains",
	opFloor:     "floor",
	opCeiling:   "ceiling",
	opHigher:    "higher",
	opLower:     "lower",
	opPollFirst: "pollFirst",
	opPollLast:  "pollLast",
}

func (op stressOp) String() string {
	if op >= _opMax {
		return "unknown"
	}
	return stressOpNames[op]
}

// oracle is the brute force model of the set, a membership map plus the
// ascending members.
type oracle struct {
	members map[int]struct{}
	sorted  []int
}

func newOracle() *oracle {
	return &oracle{members: make(map[int]struct{}, 1024)}
}

func (o *oracle) contains(v int) bool {
	_, ok := o.members[v]
	return ok
}

func (o *oracle) add(v int) bool {
	if o.contains(v) {
		return false
	}
	o.members[v] = struct{}{}
	i, _ := slices.BinarySearch(o.sorted, v)
	o.sorted = slices.Insert(o.sorted, i, v)
	return true
}

func (o *oracle) remove(v int) bool {
	if !o.contains(v) {
		return false
	}
	delete(o.members, v)
	i, _ := slices.BinarySearch(o.sorted, v)
	o.sorted = slices.Delete(o.sorted, i, i+1)
	return true
}

func (o *oracle) floor(v int) (int, bool) {
	i, found := slices.BinarySearch(o.sorted, v)
	if found {
		return v, true
	}
	return o.at(i - 1)
}

func (o *oracle) lower(v int) (int, bool) {
	i, _ := slices.BinarySearch(o.sorted, v)
	return o.at(i - 1)
}

func (o *oracle) ceiling(v int) (int, bool) {
	i, _ := slices.BinarySearch(o.sorted, v)
	return o.at(i)
}

func (o *oracle) higher(v int) (int, bool) {
	i, found := slices.BinarySearch(o.sorted, v)
	if found {
		i++
	}
	return o.at(i)
}

func (o *oracle) at(i int) (int, bool) {
	if i < 0 || i >= len(o.sorted) {
		return 0, false
	}
	return o.sorted[i], true
}

func (o *oracle) pollFirst() (int, bool) {
	v, ok := o.at(0)
	if ok {
		o.remove(v)
	}
	return v, ok
}

func (o *oracle) pollLast() (int, bool) {
	v, ok := o.at(len(o.sorted) - 1)
	if ok {
		o.remove(v)
	}
	return v, ok
}

type stressResult struct {
	id      int
	ops     int
	size    int64
	elapsed time.Duration
	counts  [_opMax]int
	set     set.TreeSet[int]
}

func (res stressResult) fields() []zap.Field {
	mix := make(map[string]int, len(res.counts))
	for op, n := range res.counts {
		mix[stressOp(op).String()] = n
	}
	return []zap.Field{
		zap.Int("set", res.id),
		zap.Int("ops", res.ops),
		zap.Int64("size", res.size),
		zap.Duration("elapsed", res.elapsed),
		zap.Int("throughput", lo.Ternary(res.elapsed > 0, int(float64(res.ops)/res.elapsed.Seconds()), 0)),
		zap.Any("mix", mix),
	}
}

func mismatch(id, step int, op stressOp, v int, got, expected any) error {
	return infra.NewErrorStack(fmt.Sprintf(
		"[xtree] set %d step %d %s(%d) got %v, expected %v",
		id, step, op, v, got, expected,
	))
}

type neighborFunc func(set.TreeSet[int], int) (int, bool, error)

func neighbor(op stressOp) (neighborFunc, func(*oracle, int) (int, bool)) {
	switch op {
	case opFloor:
		return set.TreeSet[int].Floor, (*oracle).floor
	case opCeiling:
		return set.TreeSet[int].Ceiling, (*oracle).ceiling
	case opHigher:
		return set.TreeSet[int].Higher, (*oracle).higher
	case opLower:
		return set.TreeSet[int].Lower, (*oracle).lower
	default:
	}
	return nil, nil
}

// stressSet runs the random operations on a fresh set and checks every
// result against the oracle.
func stressSet(ctx context.Context, id int, cfg *config, seed []int, rng *randv2.Rand, logger xlog.XLogger) (stressResult, error) {
	res := stressResult{id: id}
	s := set.NewOrderedTreeSet[int](
		set.WithTreeSetLogger[int](logger),
		set.WithTreeSetStats[int](fmt.Sprintf("stress-%d", id)),
	)
	o := newOracle()
	if len(seed) > 0 {
		if _, err := s.AddCollection(seed); err != nil {
			return res, err
		}
		for _, v := range seed {
			o.add(v)
		}
	}

	start := time.Now()
	for step := 1; step <= cfg.Ops; step++ {
		op, v := stressOp(rng.IntN(int(_opMax))), rng.IntN(cfg.Range)
		res.counts[op]++
		switch op {
		case opAdd:
			got, err := s.Add(v)
			if err != nil {
				return res, err
			}
			if expected := o.add(v); got != expected {
				return res, mismatch(id, step, op, v, got, expected)
			}
		case opRemove:
			got, err := s.Remove(v)
			if err != nil {
				return res, err
			}
			if expected := o.remove(v); got != expected {
				return res, mismatch(id, step, op, v, got, expected)
			}
		case opContains:
			got, err := s.Contains(v)
			if err != nil {
				return res, err
			}
			if expected := o.contains(v); got != expected {
				return res, mismatch(id, step, op, v, got, expected)
			}
		case opFloor, opCeiling, opHigher, opLower:
			query, model := neighbor(op)
			got, ok, err := query(s, v)
			if err != nil {
				return res, err
			}
			expected, expectedOK := model(o, v)
			if ok != expectedOK || (ok && got != expected) {
				return res, mismatch(id, step, op, v, got, expected)
			}
		case opPollFirst, opPollLast:
			poll, model := s.PollFirst, o.pollFirst
			if op == opPollLast {
				poll, model = s.PollLast, o.pollLast
			}
			got, ok := poll()
			expected, expectedOK := model()
			if ok != expectedOK || got != expected {
				return res, mismatch(id, step, op, v, got, expected)
			}
		default:
		}
		res.ops = step

		if s.Len() != int64(len(o.sorted)) {
			return res, mismatch(id, step, op, v, s.Len(), len(o.sorted))
		}
		checkpoint := cfg.ValidateEvery > 0 && step%cfg.ValidateEvery == 0
		if checkpoint {
			if err := set.Validate(s); err != nil {
				return res, infra.WrapErrorStackWithMessage(err, fmt.Sprintf("[xtree] set %d step %d", id, step))
			}
		}
		if checkpoint || step%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return res, infra.WrapErrorStackWithMessage(err, fmt.Sprintf("[xtree] set %d interrupted", id))
			}
		}
	}
	res.elapsed = time.Since(start)
	res.size = s.Len()
	res.set = s

	if err := set.Validate(s); err != nil {
		return res, infra.WrapErrorStackWithMessage(err, fmt.Sprintf("[xtree] set %d", id))
	}
	if got := s.ToSlice(); !slices.Equal(got, o.sorted) {
		return res, infra.NewErrorStack(fmt.Sprintf("[xtree] set %d final elements mismatch", id))
	}
	return res, nil
}

type stresser struct {
	cfg    *config
	logger xlog.XLogger
	pool   *ants.Pool
}

func newStresser(cfg *config, logger xlog.XLogger, pool *ants.Pool) *stresser {
	return &stresser{cfg: cfg, logger: logger, pool: pool}
}

// Run stresses the independent sets in parallel, one pool worker per set.
func (st *stresser) Run(ctx context.Context) error {
	seed, err := loadSeed(st.cfg.SeedDir, st.cfg.SeedFile)
	if err != nil {
		return err
	}
	randSeed := st.cfg.RandSeed
	if randSeed == 0 {
		randSeed = uint64(time.Now().UnixNano())
	}
	st.logger.Info("[xtree] stress started",
		zap.Int("sets", st.cfg.Sets),
		zap.Int("ops", st.cfg.Ops),
		zap.Int("range", st.cfg.Range),
		zap.Int("seeds", len(seed)),
		zap.Uint64("randSeed", randSeed),
	)

	var (
		wg      sync.WaitGroup
		lock    sync.Mutex
		merr    error
		results = make([]stressResult, st.cfg.Sets)
	)
	for id := 0; id < st.cfg.Sets; id++ {
		wg.Add(1)
		rng := randv2.New(randv2.NewPCG(randSeed, uint64(id)))
		if err := st.pool.Submit(func() {
			defer wg.Done()
			res, err := stressSet(ctx, id, st.cfg, seed, rng, st.logger)
			results[id] = res
			if err != nil {
				lock.Lock()
				merr = multierr.Append(merr, err)
				lock.Unlock()
			}
		}); err != nil {
			wg.Done()
			lock.Lock()
			merr = multierr.Append(merr, infra.WrapErrorStackWithMessage(err, "[xtree] submit set"))
			lock.Unlock()
		}
	}
	wg.Wait()
	if merr != nil {
		return merr
	}

	for _, res := range results {
		st.logger.Info("[xtree] set finished", res.fields()...)
	}
	if n, err := dumpSet(st.cfg.DumpDir, st.cfg.DumpFile, results[0].set.Iterator()); err != nil {
		return err
	} else if n > 0 {
		st.logger.Info("[xtree] first set dumped", zap.String("file", st.cfg.DumpFile), zap.Int("elements", n))
	}
	fields := []zap.Field{zap.Uint64("randSeed", randSeed)}
	if rss, err := observability.ProcessRSS(); err == nil {
		fields = append(fields, zap.Uint64("rss", rss))
	}
	st.logger.Info("[xtree] stress finished", fields...)
	return nil
}
