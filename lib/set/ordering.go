package set

import (
	"fmt"
	"reflect"

	"github.com/benz9527/xtree/lib/infra"
)

// Equaler is implemented by element types carrying their own equality.
type Equaler[E any] interface {
	Equal(other E) bool
}

// Lesser is implemented by element types carrying a strict less-than.
type Lesser[E any] interface {
	Less(other E) bool
}

// Greater is implemented by element types carrying a strict greater-than.
type Greater[E any] interface {
	Greater(other E) bool
}

// ordering is the resolved comparison capability of one element type.
// A non-nil err means the type is not comparable; it is reported on the
// first validated operation instead of at construction.
type ordering[E any] struct {
	eq      func(a, b E) bool
	less    func(a, b E) bool
	greater func(a, b E) bool
	err     error
}

func (ord *ordering[E]) compare(a, b E) int64 {
	if ord.eq(a, b) {
		return 0
	} else if ord.less(a, b) {
		return -1
	}
	return 1
}

// sane rejects the values breaking the irreflexivity, like NaN.
func (ord *ordering[E]) sane(v E) bool {
	return ord.eq(v, v) && !ord.less(v, v) && !ord.greater(v, v)
}

func comparatorOrdering[E any](cmp infra.Comparator[E]) *ordering[E] {
	return &ordering[E]{
		eq:      func(a, b E) bool { return cmp(a, b) == 0 },
		less:    func(a, b E) bool { return cmp(a, b) < 0 },
		greater: func(a, b E) bool { return cmp(a, b) > 0 },
	}
}

func orderedKeyOrdering[K infra.OrderedKey]() *ordering[K] {
	return &ordering[K]{
		eq:      func(a, b K) bool { return a == b },
		less:    func(a, b K) bool { return a < b },
		greater: func(a, b K) bool { return a > b },
	}
}

// resolveOrdering inspects the method set of typ, which is E itself or
// the dynamic type bound to an interface E.
//
//  1. Equal(E) from Equaler, otherwise == for comparable kinds
//     which are not compared by identity only.
//  2. Less(E) and Greater(E). A missing side is synthesized from the other.
//  3. Without both, the builtin ordered kinds use their natural order.
func resolveOrdering[E any](typ reflect.Type) *ordering[E] {
	ord := &ordering[E]{}
	if typ == nil {
		ord.err = fmt.Errorf("%w: unknown element type", ErrNotComparable)
		return ord
	}

	switch {
	case typ.Implements(reflect.TypeFor[Equaler[E]]()):
		ord.eq = func(a, b E) bool { return any(a).(Equaler[E]).Equal(b) }
	case typ.Comparable() && !isIdentityKind(typ.Kind()):
		ord.eq = func(a, b E) bool { return any(a) == any(b) }
	default:
		ord.err = fmt.Errorf("%w: %s has no equality", ErrNotComparable, typ)
		return ord
	}

	if typ.Implements(reflect.TypeFor[Lesser[E]]()) {
		ord.less = func(a, b E) bool { return any(a).(Lesser[E]).Less(b) }
	}
	if typ.Implements(reflect.TypeFor[Greater[E]]()) {
		ord.greater = func(a, b E) bool { return any(a).(Greater[E]).Greater(b) }
	}

	switch {
	case ord.less != nil && ord.greater != nil:
	case ord.less != nil:
		less, eq := ord.less, ord.eq
		ord.greater = func(a, b E) bool { return !eq(a, b) && !less(a, b) }
	case ord.greater != nil:
		greater, eq := ord.greater, ord.eq
		ord.less = func(a, b E) bool { return !eq(a, b) && !greater(a, b) }
	default:
		if less := naturalLess[E](typ.Kind()); less != nil {
			ord.less = less
			ord.greater = func(a, b E) bool { return less(b, a) }
			return ord
		}
		ord.err = fmt.Errorf("%w: %s, %w", ErrNotComparable, typ, errOrderingAbsent)
	}
	return ord
}

func isIdentityKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Pointer, reflect.Interface, reflect.Chan, reflect.UnsafePointer:
		return true
	default:
	}
	return false
}

// naturalLess orders the values of the builtin ordered kinds, including
// the named types derived from them.
func naturalLess[E any](kind reflect.Kind) func(a, b E) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(a, b E) bool {
			return reflect.ValueOf(any(a)).Int() < reflect.ValueOf(any(b)).Int()
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(a, b E) bool {
			return reflect.ValueOf(any(a)).Uint() < reflect.ValueOf(any(b)).Uint()
		}
	case reflect.Float32, reflect.Float64:
		return func(a, b E) bool {
			return reflect.ValueOf(any(a)).Float() < reflect.ValueOf(any(b)).Float()
		}
	case reflect.String:
		return func(a, b E) bool {
			return reflect.ValueOf(any(a)).String() < reflect.ValueOf(any(b)).String()
		}
	default:
	}
	return nil
}

// isNull reports the absent values: nil interfaces and the nil values
// of the nilable kinds.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func,
		reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	default:
	}
	return false
}
