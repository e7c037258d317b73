package list

var _ Stack[struct{}] = (*simpleStack[struct{}])(nil)

type simpleStack[T any] struct {
	top    *NodeElement[T]
	bottom *NodeElement[T]
	count  int64
}

func NewSimpleStack[T any](values ...T) Stack[T] {
	s := &simpleStack[T]{}
	for _, v := range values {
		s.Push(v)
	}
	return s
}

func (s *simpleStack[T]) Len() int64 {
	return s.count
}

func (s *simpleStack[T]) IsEmpty() bool {
	return s.count == 0
}

func (s *simpleStack[T]) Push(v T) {
	e := NewNodeElement[T](v)
	if s.top == nil {
		s.top, s.bottom = e, e
	} else {
		e.next = s.top
		s.top.prev = e
		s.top = e
	}
	s.count++
}

func (s *simpleStack[T]) Pop() (v T, ok bool) {
	if s.top == nil {
		return v, false
	}
	e := s.top
	s.top = e.next
	if s.top == nil {
		s.bottom = nil
	}
	e.unlink()
	s.count--
	return e.Value, true
}

func (s *simpleStack[T]) Peek() (v T, ok bool) {
	if s.top == nil {
		return v, false
	}
	return s.top.Value, true
}

func (s *simpleStack[T]) Foreach(fn func(idx int64, v T) bool) {
	idx := int64(0)
	for e := s.top; e != nil; e = e.Next() {
		if !fn(idx, e.Value) {
			return
		}
		idx++
	}
}

func (s *simpleStack[T]) ReverseForeach(fn func(idx int64, v T) bool) {
	idx := int64(0)
	for e := s.bottom; e != nil; e = e.Prev() {
		if !fn(idx, e.Value) {
			return
		}
		idx++
	}
}

func (s *simpleStack[T]) Release() {
	for e := s.top; e != nil; {
		next := e.next
		e.prev, e.next = nil, nil
		e = next
	}
	s.top, s.bottom = nil, nil
	s.count = 0
}
