package tabletop

// CardStack is a pile of elements sharing one anchor, such as a draw pile.
// The last element is the top of the stack.
type CardStack[T Elem] struct {
	Container[T]
}

// NewCardStack creates an empty CardStack.
func NewCardStack[T Elem](env *Env, name string) *CardStack[T] {
	s := &CardStack[T]{}
	s.initContainer(env, s, KindCardStack, name)
	s.place = func(int, T) Vec2 { return Vec2{} }
	return s
}

// Push puts e on top of the stack.
func (s *CardStack[T]) Push(e T) error {
	return s.Add(e)
}

// Peek returns the top element without removing it.
func (s *CardStack[T]) Peek() (T, bool) {
	elems := s.Elements()
	if len(elems) == 0 {
		var zero T
		return zero, false
	}
	return elems[len(elems)-1], true
}

// Pop removes and returns the top element.
func (s *CardStack[T]) Pop() (T, bool) {
	s.mu.Lock()
	var (
		top T
		ok  bool
	)
	s.elements.quiet(func(q sequence[T]) bool {
		if q.len() == 0 {
			return false
		}
		top, ok = q.removeAt(q.len()-1), true
		return true
	})
	if ok {
		top.AsComponent().setParent(nil)
	}
	s.mu.Unlock()

	if ok {
		s.elements.fire()
	}
	return top, ok
}

// PopN removes up to n elements from the top and returns them, topmost first.
func (s *CardStack[T]) PopN(n int) []T {
	var out []T
	for range n {
		e, ok := s.Pop()
		if !ok {
			break
		}
		out = append(out, e)
	}
	return out
}
