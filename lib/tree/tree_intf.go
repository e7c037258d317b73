package tree

import (
	"iter"
)

// go install golang.org/x/tools/cmd/stringer@latest

//go:generate stringer -type=RBColor
type RBColor uint8

const (
	Black RBColor = iota
	Red
)

//go:generate stringer -type=RBDirection
type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

// RBNode is the read-only view of a tree node.
// The nil leaf (sentinel) is reported as nil by Left, Right and Parent.
type RBNode[E any] interface {
	Val() E
	Color() RBColor
	Left() RBNode[E]
	Right() RBNode[E]
	Parent() RBNode[E]
}

// RBTree is a red-black tree holding unique elements.
// It is not thread safe.
type RBTree[E any] interface {
	Len() int64
	Root() RBNode[E]
	// Insert returns false if an equal element is already present.
	Insert(val E) bool
	// Delete returns false if no equal element is present.
	Delete(val E) bool
	DeleteMin() (E, bool)
	DeleteMax() (E, bool)
	// Search returns the node holding an element equal to val and true.
	// Otherwise, it returns the last node visited by the descent and false,
	// which is the parent a new node would be linked to.
	Search(val E) (RBNode[E], bool)
	Contains(val E) bool
	Min() RBNode[E]
	Max() RBNode[E]
	// All returns the elements in ascending order.
	// The tree must not be mutated while ranging over it.
	All() iter.Seq[E]
	// Backward returns the elements in descending order.
	Backward() iter.Seq[E]
	Foreach(action func(idx int64, color RBColor, val E) bool)
	// Equal reports set equality, regardless of the tree shapes.
	Equal(other RBTree[E]) bool
	Clear()
	Release()
}
