package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is a constraint that permits any integer type.
type Integer interface {
	Signed | Unsigned
}

// Float is a constraint that permits any floating-point type.
type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// Comparator
// Assume i is the new element.
//  1. i == j (i-j == 0, return 0)
//  2. i > j (i-j > 0, return 1), turn to right part.
//  3. i < j (i-j < 0, return -1), turn to left part.
type Comparator[E any] func(i, j E) int64

// OrderedKeyCompare is the natural Comparator of the builtin ordered types.
// NaN is neither less nor greater than anything, so it collapses to 1 here.
// Callers that accept floats are expected to reject NaN before comparing.
func OrderedKeyCompare[K OrderedKey](i, j K) int64 {
	if i == j {
		return 0
	} else if i < j {
		return -1
	}
	return 1
}

// Reverse flips the order of the comparator.
func (cmp Comparator[E]) Reverse() Comparator[E] {
	return func(i, j E) int64 {
		return cmp(j, i)
	}
}
