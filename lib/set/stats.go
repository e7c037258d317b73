package set

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	TreeSetStatsName = "xtree/treeset"
)

type treeSetStats struct {
	name          string
	size          metric.Int64UpDownCounter
	addedCount    metric.Int64Counter
	removedCount  metric.Int64Counter
	rejectedCount metric.Int64Counter
}

func (stats *treeSetStats) RecordSize(delta int64) {
	if stats == nil || delta == 0 {
		return
	}
	stats.size.Add(context.Background(), delta)
}

func (stats *treeSetStats) IncreaseAddedCount() {
	if stats == nil {
		return
	}
	stats.addedCount.Add(context.Background(), 1)
	stats.size.Add(context.Background(), 1)
}

func (stats *treeSetStats) IncreaseRemovedCount() {
	if stats == nil {
		return
	}
	stats.removedCount.Add(context.Background(), 1)
	stats.size.Add(context.Background(), -1)
}

func (stats *treeSetStats) IncreaseRejectedCount(err error) {
	if stats == nil || err == nil {
		return
	}
	as := attribute.NewSet(
		attribute.String("treeset.rejected.kind", rejectedKind(err)),
	)
	stats.rejectedCount.Add(context.Background(), 1, metric.WithAttributeSet(as))
}

func rejectedKind(err error) string {
	switch {
	case errors.Is(err, ErrNullValue):
		return "null"
	case errors.Is(err, ErrTypeMismatch):
		return "type"
	case errors.Is(err, ErrNotComparable):
		return "comparable"
	case errors.Is(err, ErrNotCollection):
		return "collection"
	default:
	}
	return "unknown"
}

// WithTreeSetStats enables the OpenTelemetry counters of the set.
// The meter is registered under "xtree/treeset/<name>".
func WithTreeSetStats[E any](name string) TreeSetOption[E] {
	return func(s *treeSet[E]) {
		s.stats = newTreeSetStats(name)
	}
}

func newTreeSetStats(name string) *treeSetStats {
	if name == "" {
		name = "default"
	}
	meterName := fmt.Sprintf("%s/%s", TreeSetStatsName, name)
	return &treeSetStats{
		name: name,
		size: lo.Must[metric.Int64UpDownCounter](otel.Meter(meterName).
			Int64UpDownCounter(
				"treeset.size",
				metric.WithDescription("The number of elements in the tree set."),
			),
		),
		addedCount: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"treeset.added.count",
				metric.WithDescription("The number of elements newly added into the tree set."),
			),
		),
		removedCount: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"treeset.removed.count",
				metric.WithDescription("The number of elements removed from the tree set."),
			),
		),
		rejectedCount: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"treeset.rejected.count",
				metric.WithDescription("The number of values rejected by the tree set validation."),
			),
		),
	}
}
