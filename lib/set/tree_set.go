package set

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/xlog"
)

var _ TreeSet[int] = (*treeSet[int])(nil)

type treeSet[E any] struct {
	tree     tree.RBTree[E]
	elemType reflect.Type
	ord      *ordering[E]
	cmp      infra.Comparator[E]
	initErr  error
	logger   xlog.XLogger
	stats    *treeSetStats
}

type TreeSetOption[E any] func(s *treeSet[E])

// WithTreeSetComparator replaces the ordering resolved from the element type.
func WithTreeSetComparator[E any](cmp infra.Comparator[E]) TreeSetOption[E] {
	return func(s *treeSet[E]) {
		s.cmp = cmp
	}
}

// WithTreeSetElementType binds an interface typed set to a concrete
// element type up front. The type has to implement E.
func WithTreeSetElementType[E any](typ reflect.Type) TreeSetOption[E] {
	return func(s *treeSet[E]) {
		if typ == nil {
			return
		}
		if !typ.AssignableTo(reflect.TypeFor[E]()) {
			s.initErr = fmt.Errorf("%w: %s is not assignable to %s", ErrTypeMismatch, typ, reflect.TypeFor[E]())
			return
		}
		s.elemType = typ
	}
}

// WithTreeSetLogger logs the rejected values with their error stacks.
func WithTreeSetLogger[E any](logger xlog.XLogger) TreeSetOption[E] {
	return func(s *treeSet[E]) {
		s.logger = logger
	}
}

func newTreeSet[E any](ord *ordering[E], opts ...TreeSetOption[E]) *treeSet[E] {
	s := &treeSet[E]{}
	for _, o := range opts {
		o(s)
	}
	if typ := reflect.TypeFor[E](); s.elemType == nil && typ.Kind() != reflect.Interface {
		s.elemType = typ
	}

	switch {
	case s.cmp != nil:
		s.ord = comparatorOrdering[E](s.cmp)
	case ord != nil:
		s.ord = ord
	case s.elemType != nil:
		s.ord = resolveOrdering[E](s.elemType)
	default:
		// Interface typed set, resolved on the first value.
	}
	s.tree = tree.NewRBTree[E](s.compare)
	return s
}

func NewTreeSet[E any](opts ...TreeSetOption[E]) TreeSet[E] {
	return newTreeSet[E](nil, opts...)
}

// NewOrderedTreeSet orders the builtin ordered types by ==, < and >.
func NewOrderedTreeSet[K infra.OrderedKey](opts ...TreeSetOption[K]) TreeSet[K] {
	return newTreeSet[K](orderedKeyOrdering[K](), opts...)
}

// NewTreeSetFrom creates a set seeded by the collection, see AddCollection.
func NewTreeSetFrom[E any](src any, opts ...TreeSetOption[E]) (TreeSet[E], error) {
	s := newTreeSet[E](nil, opts...)
	if _, err := s.AddCollection(src); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *treeSet[E]) compare(a, b E) int64 {
	return s.ord.compare(a, b)
}

func (s *treeSet[E]) bind(typ reflect.Type) {
	s.elemType = typ
	if s.ord == nil {
		s.ord = resolveOrdering[E](typ)
	}
}

// validate binds an unbound set to the type of val, the binding is undone
// if val is rejected.
func (s *treeSet[E]) validate(val E) (err error) {
	if s.initErr != nil {
		return s.initErr
	}
	v := any(val)
	if isNull(v) {
		return ErrNullValue
	}
	typ := reflect.TypeOf(v)
	if s.elemType == nil {
		elemType, ord := s.elemType, s.ord
		s.bind(typ)
		defer func() {
			if err != nil {
				s.elemType, s.ord = elemType, ord
			}
		}()
	}
	if typ != s.elemType {
		return fmt.Errorf("%w: got %s, want %s", ErrTypeMismatch, typ, s.elemType)
	}
	if s.ord.err != nil {
		return s.ord.err
	}
	if !s.ord.sane(val) {
		return fmt.Errorf("%w: %v is not consistent with itself", ErrNotComparable, v)
	}
	return nil
}

func (s *treeSet[E]) reject(err error, op string) error {
	err = infra.WrapErrorStackWithMessage(err, "[treeset] "+op)
	s.stats.IncreaseRejectedCount(err)
	if s.logger != nil {
		var es infra.ErrorStack
		if errors.As(err, &es) {
			s.logger.Warn("[treeset] value rejected", zap.String("op", op), zap.Inline(es))
		}
	}
	return err
}

func (s *treeSet[E]) Add(val E) (bool, error) {
	if err := s.validate(val); err != nil {
		return false, s.reject(err, "add")
	}
	if !s.tree.Insert(val) {
		return false, nil
	}
	s.stats.IncreaseAddedCount()
	return true, nil
}

func (s *treeSet[E]) Remove(val E) (bool, error) {
	if err := s.validate(val); err != nil {
		return false, s.reject(err, "remove")
	}
	if !s.tree.Delete(val) {
		return false, nil
	}
	s.stats.IncreaseRemovedCount()
	return true, nil
}

func (s *treeSet[E]) Contains(val E) (bool, error) {
	if err := s.validate(val); err != nil {
		return false, s.reject(err, "contains")
	}
	return s.tree.Contains(val), nil
}

func (s *treeSet[E]) addAll(op string, vals []E) (bool, error) {
	elemType, ord := s.elemType, s.ord
	var merr error
	for i, v := range vals {
		if err := s.validate(v); err != nil {
			merr = multierr.Append(merr, fmt.Errorf("element %d: %w", i, err))
		}
	}
	if merr != nil {
		// The binding of an interface typed set is only kept for valid input.
		s.elemType, s.ord = elemType, ord
		return false, s.reject(merr, op)
	}

	inserted := 0
	for _, v := range vals {
		if s.tree.Insert(v) {
			inserted++
			s.stats.IncreaseAddedCount()
		}
	}
	return inserted == len(vals), nil
}

func (s *treeSet[E]) AddAll(vals ...E) (bool, error) {
	return s.addAll("add all", vals)
}

func (s *treeSet[E]) AddCollection(src any) (bool, error) {
	vals, err := collect[E](src)
	if err != nil {
		return false, s.reject(err, "add collection")
	}
	return s.addAll("add collection", vals)
}

func collect[E any](src any) ([]E, error) {
	switch c := src.(type) {
	case []E:
		return c, nil
	case iter.Seq[E]:
		return slices.Collect(c), nil
	case func(yield func(E) bool):
		return slices.Collect(iter.Seq[E](c)), nil
	case interface{ Iterator() iter.Seq[E] }:
		return slices.Collect(c.Iterator()), nil
	default:
	}
	return nil, fmt.Errorf("%w: %T", ErrNotCollection, src)
}

func (s *treeSet[E]) Len() int64 {
	return s.tree.Len()
}

func (s *treeSet[E]) IsEmpty() bool {
	return s.tree.Len() == 0
}

func (s *treeSet[E]) Clear() {
	s.stats.RecordSize(-s.tree.Len())
	s.tree.Clear()
}

func (s *treeSet[E]) First() (E, error) {
	node := s.tree.Min()
	if node == nil {
		var zero E
		return zero, infra.WrapErrorStackWithMessage(ErrNoSuchElement, "[treeset] first")
	}
	return node.Val(), nil
}

func (s *treeSet[E]) Last() (E, error) {
	node := s.tree.Max()
	if node == nil {
		var zero E
		return zero, infra.WrapErrorStackWithMessage(ErrNoSuchElement, "[treeset] last")
	}
	return node.Val(), nil
}

func (s *treeSet[E]) PollFirst() (E, bool) {
	val, ok := s.tree.DeleteMin()
	if ok {
		s.stats.IncreaseRemovedCount()
	}
	return val, ok
}

func (s *treeSet[E]) PollLast() (E, bool) {
	val, ok := s.tree.DeleteMax()
	if ok {
		s.stats.IncreaseRemovedCount()
	}
	return val, ok
}

// lower descends once from the root. Every node less than val is a better
// candidate than the previous one, so the search turns right after it.
func (s *treeSet[E]) lower(val E, inclusive bool) (res E, ok bool) {
	for aux := s.tree.Root(); aux != nil; {
		switch c := s.compare(aux.Val(), val); {
		case c == 0 && inclusive:
			return aux.Val(), true
		case c < 0:
			res, ok = aux.Val(), true
			aux = aux.Right()
		default:
			aux = aux.Left()
		}
	}
	return res, ok
}

func (s *treeSet[E]) higher(val E, inclusive bool) (res E, ok bool) {
	for aux := s.tree.Root(); aux != nil; {
		switch c := s.compare(aux.Val(), val); {
		case c == 0 && inclusive:
			return aux.Val(), true
		case c > 0:
			res, ok = aux.Val(), true
			aux = aux.Left()
		default:
			aux = aux.Right()
		}
	}
	return res, ok
}

func (s *treeSet[E]) Lower(val E) (res E, ok bool, err error) {
	if err = s.validate(val); err != nil {
		return res, false, s.reject(err, "lower")
	}
	res, ok = s.lower(val, false)
	return res, ok, nil
}

func (s *treeSet[E]) Higher(val E) (res E, ok bool, err error) {
	if err = s.validate(val); err != nil {
		return res, false, s.reject(err, "higher")
	}
	res, ok = s.higher(val, false)
	return res, ok, nil
}

func (s *treeSet[E]) Floor(val E) (res E, ok bool, err error) {
	if err = s.validate(val); err != nil {
		return res, false, s.reject(err, "floor")
	}
	res, ok = s.lower(val, true)
	return res, ok, nil
}

func (s *treeSet[E]) Ceiling(val E) (res E, ok bool, err error) {
	if err = s.validate(val); err != nil {
		return res, false, s.reject(err, "ceiling")
	}
	res, ok = s.higher(val, true)
	return res, ok, nil
}

func (s *treeSet[E]) Iterator() iter.Seq[E] {
	return s.tree.All()
}

func (s *treeSet[E]) DescendingIterator() iter.Seq[E] {
	return s.tree.Backward()
}

// Clone replays the elements into a fresh tree. The resolved ordering and
// the options are shared, the nodes are not.
func (s *treeSet[E]) Clone() TreeSet[E] {
	c := &treeSet[E]{
		elemType: s.elemType,
		ord:      s.ord,
		cmp:      s.cmp,
		initErr:  s.initErr,
		logger:   s.logger,
		stats:    s.stats,
	}
	c.tree = tree.NewRBTree[E](c.compare)
	for v := range s.tree.All() {
		c.tree.Insert(v)
	}
	c.stats.RecordSize(c.tree.Len())
	return c
}

func (s *treeSet[E]) Equal(other TreeSet[E]) bool {
	if other == nil || s.Len() != other.Len() {
		return false
	}
	for v := range s.tree.All() {
		if ok, err := other.Contains(v); err != nil || !ok {
			return false
		}
	}
	return true
}

func (s *treeSet[E]) ElementType() reflect.Type {
	return s.elemType
}

func (s *treeSet[E]) ToSlice() []E {
	res := make([]E, 0, s.tree.Len())
	for v := range s.tree.All() {
		res = append(res, v)
	}
	return res
}

func (s *treeSet[E]) String() string {
	builder := &strings.Builder{}
	builder.WriteString("[")
	first := true
	for v := range s.tree.All() {
		if !first {
			builder.WriteString(", ")
		}
		first = false
		_, _ = fmt.Fprintf(builder, "%v", v)
	}
	builder.WriteString("]")
	return builder.String()
}

// Validate checks the red-black invariants of the tree backing the set.
// Sets not created by this package are reported as not a collection.
func Validate[E any](s TreeSet[E]) error {
	ts, ok := s.(*treeSet[E])
	if !ok || ts == nil {
		return infra.WrapErrorStackWithMessage(ErrNotCollection, "[treeset] validate unknown set")
	}
	return tree.Validate[E](ts.tree, ts.compare)
}
