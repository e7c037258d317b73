package list

// Stack is an explicit LIFO buffer.
// It is used to make the tree traversal iterative instead of
// being bound by the goroutine call stack.
// Note that the stack is not thread safe.
type Stack[T any] interface {
	Len() int64
	IsEmpty() bool
	// Push puts v on the top of the stack.
	Push(v T)
	// Pop removes and returns the top value. ok is false if the stack is empty.
	Pop() (v T, ok bool)
	// Peek returns the top value without removing it.
	Peek() (v T, ok bool)
	// Foreach iterates from the top to the bottom until fn returns false.
	Foreach(fn func(idx int64, v T) bool)
	// ReverseForeach iterates from the bottom to the top until fn returns false.
	ReverseForeach(fn func(idx int64, v T) bool)
	// Release drops all the elements.
	Release()
}
