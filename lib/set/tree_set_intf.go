package set

import (
	"iter"
	"reflect"
)

// TreeSet is an ordered set of unique elements backed by a red-black tree.
// All the elements are bound to one element type.
//
// The value taking methods validate the value before touching the tree:
// ErrNullValue, then ErrTypeMismatch, then ErrNotComparable. A rejected value
// never mutates the set.
//
// It is not thread safe.
type TreeSet[E any] interface {
	Add(val E) (bool, error)
	Remove(val E) (bool, error)
	Contains(val E) (bool, error)
	// AddAll validates every value before inserting any of them.
	// It returns true if every value is newly inserted.
	AddAll(vals ...E) (bool, error)
	// AddCollection accepts []E, iter.Seq[E] or a source exposing
	// Iterator() iter.Seq[E]. Others are rejected by ErrNotCollection.
	AddCollection(src any) (bool, error)
	Len() int64
	IsEmpty() bool
	Clear()
	// First returns ErrNoSuchElement on an empty set.
	First() (E, error)
	// Last returns ErrNoSuchElement on an empty set.
	Last() (E, error)
	// PollFirst removes and returns the minimum. ok is false on an empty set.
	PollFirst() (E, bool)
	// PollLast removes and returns the maximum. ok is false on an empty set.
	PollLast() (E, bool)
	// Lower returns the greatest element strictly less than val.
	Lower(val E) (E, bool, error)
	// Higher returns the least element strictly greater than val.
	Higher(val E) (E, bool, error)
	// Floor returns the greatest element less than or equal to val.
	Floor(val E) (E, bool, error)
	// Ceiling returns the least element greater than or equal to val.
	Ceiling(val E) (E, bool, error)
	Iterator() iter.Seq[E]
	DescendingIterator() iter.Seq[E]
	Clone() TreeSet[E]
	Equal(other TreeSet[E]) bool
	// ElementType is nil until an interface typed set binds its first value.
	ElementType() reflect.Type
	ToSlice() []E
	String() string
}
