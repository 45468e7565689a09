package tabletop

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
)

// Container is the shared implementation of every component that holds an
// ordered list of children of type T. It enforces the tree invariants:
//
//  1. a child is contained at most once (ErrAlreadyContained);
//  2. a child has at most one parent; moving it between containers is an
//     explicit remove followed by an add (ErrHasParent);
//  3. insertion indices lie in [0, Len()] (ErrIndexOutOfRange);
//  4. a container never becomes its own descendant (ErrCycle).
//
// A rejected operation leaves both the child list and the child's parent
// untouched. Accepted mutations notify the child list once.
//
// Mutations are serialized by a mutex; listeners run after it is released.
type Container[T Elem] struct {
	ComponentBase

	mu       sync.Mutex
	owner    Parent
	elements *ObservableList[T]

	// place computes ChildPosition for member index i. nil means the
	// child's own X/Y.
	place func(i int, child T) Vec2
}

func (c *Container[T]) initContainer(env *Env, self Parent, kind Kind, name string) {
	c.init(env, self, kind, name)
	c.owner = self
	c.elements = NewObservableArrayList[T]()
}

// --- Queries ---

// Elements returns a snapshot of the children in order.
func (c *Container[T]) Elements() []T {
	return c.elements.ToList()
}

// Len returns the number of children.
func (c *Container[T]) Len() int {
	return c.elements.Len()
}

// IsEmpty reports whether the container has no children.
func (c *Container[T]) IsEmpty() bool {
	return c.elements.IsEmpty()
}

// At returns the child at index i. Panics if i is out of range.
func (c *Container[T]) At(i int) T {
	return c.elements.At(i)
}

// IndexOf returns the index of e, or -1.
func (c *Container[T]) IndexOf(e T) int {
	return c.elements.IndexOf(e)
}

// Contains reports whether e is a child of c.
func (c *Container[T]) Contains(e T) bool {
	return c.elements.Contains(e)
}

// Children returns the children as Components.
func (c *Container[T]) Children() []Component {
	elems := c.elements.ToList()
	out := make([]Component, len(elems))
	for i, e := range elems {
		out[i] = e
	}
	return out
}

// ChildPosition returns child's coordinate relative to c's anchor, or false
// if child is not a member.
func (c *Container[T]) ChildPosition(child Component) (Vec2, bool) {
	e, ok := child.(T)
	if !ok {
		return Vec2{}, false
	}
	i := c.elements.IndexOf(e)
	if i < 0 {
		return Vec2{}, false
	}
	if c.place != nil {
		return c.place(i, e), true
	}
	return e.AsComponent().Position(), true
}

// WatchChildren registers an external listener on the child list.
func (c *Container[T]) WatchChildren(fn func()) ListenerHandle {
	return c.elements.AddListener(fn)
}

// ChildrenGUI returns the GUI slot of the child list.
func (c *Container[T]) ChildrenGUI() GUIBindable {
	return c.elements
}

// --- Adding ---

// Add appends e.
func (c *Container[T]) Add(e T) error {
	return c.AddAt(e, c.elements.Len())
}

// AddAt inserts e at index, where 0 <= index <= Len().
func (c *Container[T]) AddAt(e T, index int) error {
	c.mu.Lock()
	if err := c.checkAdd(e, index, nil); err != nil {
		c.mu.Unlock()
		return err
	}
	e.AsComponent().setParent(c.owner)
	c.elements.quiet(func(q sequence[T]) bool {
		q.insert(index, e)
		return true
	})
	c.mu.Unlock()

	c.elements.fire()
	c.debugAfterAdd(e)
	return nil
}

// AddAll appends es as one transaction: every element is validated against
// the container and against the rest of the batch before any is added. On
// failure nothing is added and the error names the offending element.
// On success the child list notifies once.
func (c *Container[T]) AddAll(es ...T) error {
	if len(es) == 0 {
		return nil
	}
	c.mu.Lock()
	n := c.elements.Len()
	batch := make(map[T]struct{}, len(es))
	for _, e := range es {
		if err := c.checkAdd(e, n, batch); err != nil {
			c.mu.Unlock()
			return err
		}
		batch[e] = struct{}{}
	}
	for _, e := range es {
		e.AsComponent().setParent(c.owner)
	}
	c.elements.quiet(func(q sequence[T]) bool {
		for _, e := range es {
			q.insert(q.len(), e)
		}
		return true
	})
	c.mu.Unlock()

	c.elements.fire()
	for _, e := range es {
		c.debugAfterAdd(e)
	}
	return nil
}

// checkAdd validates the tree invariants for inserting e at index. batch
// holds elements already accepted in the same AddAll call.
func (c *Container[T]) checkAdd(e T, index int, batch map[T]struct{}) error {
	if any(e) == nil {
		panic("tabletop: cannot add nil component")
	}
	child := e.AsComponent()
	if c.elements.Contains(e) {
		return fmt.Errorf("%w: %s in %s", ErrAlreadyContained, child, &c.ComponentBase)
	}
	if _, dup := batch[e]; dup {
		return fmt.Errorf("%w: %s listed twice for %s", ErrAlreadyContained, child, &c.ComponentBase)
	}
	if child.parent != nil {
		return fmt.Errorf("%w: %s is owned by %s", ErrHasParent, child, child.parent.AsComponent())
	}
	if n := c.elements.Len(); index < 0 || index > n {
		return fmt.Errorf("%w: %d not in [0, %d] for %s", ErrIndexOutOfRange, index, n, &c.ComponentBase)
	}
	if isAncestor(child, &c.ComponentBase) {
		return fmt.Errorf("%w: %s is an ancestor of %s", ErrCycle, child, &c.ComponentBase)
	}
	return nil
}

// --- Removing ---

// Remove detaches e and reports whether it was a child. Removing a
// non-member is a silent no-op.
func (c *Container[T]) Remove(e T) bool {
	c.mu.Lock()
	removed := c.elements.quiet(func(q sequence[T]) bool {
		i := q.indexOf(e)
		if i < 0 {
			return false
		}
		q.removeAt(i)
		return true
	})
	child := e.AsComponent()
	if removed || child.parent == c.owner {
		child.setParent(nil)
	}
	c.mu.Unlock()

	if removed {
		c.elements.fire()
	}
	return removed
}

// RemoveChild removes child if present. It panics if child is not of the
// element type, which means the tree was built inconsistently.
func (c *Container[T]) RemoveChild(child Component) {
	e, ok := child.(T)
	if !ok {
		panic(fmt.Sprintf("tabletop: %s cannot hold a %T", &c.ComponentBase, child))
	}
	c.Remove(e)
}

// RemoveAll detaches every child and returns them in their prior order.
func (c *Container[T]) RemoveAll() []T {
	c.mu.Lock()
	var removed []T
	c.elements.quiet(func(q sequence[T]) bool {
		removed = q.values()
		q.reset(nil)
		return len(removed) > 0
	})
	for _, e := range removed {
		e.AsComponent().setParent(nil)
	}
	c.mu.Unlock()

	if len(removed) > 0 {
		c.elements.fire()
	}
	return removed
}

// Clear is RemoveAll.
func (c *Container[T]) Clear() []T {
	return c.RemoveAll()
}

// RemoveFunc detaches every child for which del returns true and returns
// them in their prior order.
func (c *Container[T]) RemoveFunc(del func(T) bool) []T {
	c.mu.Lock()
	var removed []T
	c.elements.quiet(func(q sequence[T]) bool {
		removed = removeFunc(q, del)
		return len(removed) > 0
	})
	for _, e := range removed {
		e.AsComponent().setParent(nil)
	}
	c.mu.Unlock()

	if len(removed) > 0 {
		c.elements.fire()
	}
	return removed
}

// --- Reordering ---

// Move moves the child at index from to index to.
func (c *Container[T]) Move(from, to int) error {
	var err error
	c.mu.Lock()
	changed := c.elements.quiet(func(q sequence[T]) bool {
		var moved bool
		moved, err = move(q, from, to)
		return moved
	})
	c.mu.Unlock()
	if changed {
		c.elements.fire()
	}
	return err
}

// Shuffle randomly permutes the children using r, or the global source when
// r is nil.
func (c *Container[T]) Shuffle(r *rand.Rand) {
	c.reorder(func(vs []T) { shuffle(r, vs) })
}

// Sort sorts the children stably with cmp.
func (c *Container[T]) Sort(cmp func(a, b T) int) {
	c.reorder(func(vs []T) { slices.SortStableFunc(vs, cmp) })
}

func (c *Container[T]) reorder(permute func([]T)) {
	c.mu.Lock()
	changed := c.elements.quiet(func(q sequence[T]) bool {
		return reorder(q, permute)
	})
	c.mu.Unlock()
	if changed {
		c.elements.fire()
	}
}
