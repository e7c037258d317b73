package list

// NodeElement is the doubly linked traversal node.
// The stack links the elements from the top (next) to the bottom (prev is
// the element pushed right after it).
type NodeElement[T any] struct {
	prev, next *NodeElement[T]
	Value      T // The type of value may be a small size type.
	// It should be placed at the end of the struct to avoid taking too much padding.
}

func NewNodeElement[T any](v T) *NodeElement[T] {
	return &NodeElement[T]{
		Value: v,
	}
}

func (e *NodeElement[T]) HasNext() bool {
	if e == nil {
		return false
	}
	return e.next != nil
}

func (e *NodeElement[T]) HasPrev() bool {
	if e == nil {
		return false
	}
	return e.prev != nil
}

func (e *NodeElement[T]) Next() *NodeElement[T] {
	if e == nil {
		return nil
	}
	return e.next
}

func (e *NodeElement[T]) Prev() *NodeElement[T] {
	if e == nil {
		return nil
	}
	return e.prev
}

// unlink detaches e from its neighbours and relinks them together.
func (e *NodeElement[T]) unlink() {
	if e.prev != nil {
		e.prev.next = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	}
	e.prev, e.next = nil, nil
}
