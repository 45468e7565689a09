package tabletop

import (
	"container/list"
	"fmt"
	"iter"
	"math/rand/v2"
	"slices"
	"sync"
)

// sequence is the backing store of an ObservableList.
type sequence[T comparable] interface {
	len() int
	at(i int) T
	set(i int, v T)
	insert(i int, v T)
	removeAt(i int) T
	indexOf(v T) int
	values() []T
	reset(vs []T)
}

// sliceSequence stores elements contiguously.
type sliceSequence[T comparable] struct {
	s []T
}

func (q *sliceSequence[T]) len() int        { return len(q.s) }
func (q *sliceSequence[T]) at(i int) T      { return q.s[i] }
func (q *sliceSequence[T]) set(i int, v T)  { q.s[i] = v }
func (q *sliceSequence[T]) indexOf(v T) int { return slices.Index(q.s, v) }
func (q *sliceSequence[T]) values() []T     { return slices.Clone(q.s) }

func (q *sliceSequence[T]) insert(i int, v T) {
	q.s = slices.Insert(q.s, i, v)
}

// removeAt uses slices.Delete, which zeroes the vacated tail slot.
func (q *sliceSequence[T]) removeAt(i int) T {
	v := q.s[i]
	q.s = slices.Delete(q.s, i, i+1)
	return v
}

func (q *sliceSequence[T]) reset(vs []T) {
	clear(q.s)
	q.s = append(q.s[:0], vs...)
}

// linkedSequence stores elements in a doubly-linked list. Inserting or
// removing at either end does not move other elements.
type linkedSequence[T comparable] struct {
	l list.List
}

func (q *linkedSequence[T]) len() int { return q.l.Len() }

func (q *linkedSequence[T]) element(i int) *list.Element {
	if i < q.l.Len()/2 {
		e := q.l.Front()
		for ; i > 0; i-- {
			e = e.Next()
		}
		return e
	}
	e := q.l.Back()
	for j := q.l.Len() - 1; j > i; j-- {
		e = e.Prev()
	}
	return e
}

func (q *linkedSequence[T]) at(i int) T     { return q.element(i).Value.(T) }
func (q *linkedSequence[T]) set(i int, v T) { q.element(i).Value = v }

func (q *linkedSequence[T]) insert(i int, v T) {
	if i == q.l.Len() {
		q.l.PushBack(v)
		return
	}
	q.l.InsertBefore(v, q.element(i))
}

func (q *linkedSequence[T]) removeAt(i int) T {
	return q.l.Remove(q.element(i)).(T)
}

func (q *linkedSequence[T]) indexOf(v T) int {
	i := 0
	for e := q.l.Front(); e != nil; e = e.Next() {
		if e.Value.(T) == v {
			return i
		}
		i++
	}
	return -1
}

func (q *linkedSequence[T]) values() []T {
	out := make([]T, 0, q.l.Len())
	for e := q.l.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(T))
	}
	return out
}

func (q *linkedSequence[T]) reset(vs []T) {
	q.l.Init()
	for _, v := range vs {
		q.l.PushBack(v)
	}
}

// ObservableList is an ordered, index-addressable sequence that permits
// duplicates and is observable as a whole. Every mutation that changes the
// contents notifies the external listeners once, then the GUI listener once.
// Mutations that change nothing notify nobody. Notifications carry no
// payload; listeners re-read the list.
//
// The backing store is guarded by a mutex; listeners run after it is released.
type ObservableList[T comparable] struct {
	Observable

	mu  sync.Mutex
	seq sequence[T]
	gui func()
}

// NewObservableArrayList creates a slice-backed list holding initial.
func NewObservableArrayList[T comparable](initial ...T) *ObservableList[T] {
	return &ObservableList[T]{seq: &sliceSequence[T]{s: slices.Clone(initial)}}
}

// NewObservableLinkedList creates a linked-list-backed list holding initial.
func NewObservableLinkedList[T comparable](initial ...T) *ObservableList[T] {
	q := &linkedSequence[T]{}
	q.reset(initial)
	return &ObservableList[T]{seq: q}
}

// --- Queries ---

// Len returns the number of elements.
func (l *ObservableList[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq.len()
}

// IsEmpty reports whether the list has no elements.
func (l *ObservableList[T]) IsEmpty() bool {
	return l.Len() == 0
}

// At returns the element at index i. Panics if i is out of range.
func (l *ObservableList[T]) At(i int) T {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= l.seq.len() {
		panic(fmt.Sprintf("tabletop: list index %d out of range [0, %d)", i, l.seq.len()))
	}
	return l.seq.at(i)
}

// IndexOf returns the index of the first occurrence of v, or -1.
func (l *ObservableList[T]) IndexOf(v T) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq.indexOf(v)
}

// Contains reports whether v is in the list.
func (l *ObservableList[T]) Contains(v T) bool {
	return l.IndexOf(v) >= 0
}

// ToList returns a copy of the current contents. Mutating the copy never
// affects the list.
func (l *ObservableList[T]) ToList() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq.values()
}

// All iterates over a snapshot of the list taken when iteration starts.
func (l *ObservableList[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range l.ToList() {
			if !yield(i, v) {
				return
			}
		}
	}
}

// --- Mutations ---

// Add appends v.
func (l *ObservableList[T]) Add(v T) {
	l.update(func(q sequence[T]) bool {
		q.insert(q.len(), v)
		return true
	})
}

// Insert inserts v at index i, where 0 <= i <= Len().
func (l *ObservableList[T]) Insert(i int, v T) error {
	var err error
	l.update(func(q sequence[T]) bool {
		if i < 0 || i > q.len() {
			err = fmt.Errorf("%w: %d not in [0, %d]", ErrIndexOutOfRange, i, q.len())
			return false
		}
		q.insert(i, v)
		return true
	})
	return err
}

// AddAll appends vs with a single notification.
func (l *ObservableList[T]) AddAll(vs ...T) {
	l.update(func(q sequence[T]) bool {
		for _, v := range vs {
			q.insert(q.len(), v)
		}
		return len(vs) > 0
	})
}

// Set replaces the element at index i. Replacing an element with an equal
// one is a no-op.
func (l *ObservableList[T]) Set(i int, v T) error {
	var err error
	l.update(func(q sequence[T]) bool {
		if i < 0 || i >= q.len() {
			err = fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, q.len())
			return false
		}
		if q.at(i) == v {
			return false
		}
		q.set(i, v)
		return true
	})
	return err
}

// Remove removes the first occurrence of v and reports whether it was present.
func (l *ObservableList[T]) Remove(v T) bool {
	return l.update(func(q sequence[T]) bool {
		i := q.indexOf(v)
		if i < 0 {
			return false
		}
		q.removeAt(i)
		return true
	})
}

// RemoveAt removes and returns the element at index i.
func (l *ObservableList[T]) RemoveAt(i int) (T, error) {
	var (
		v   T
		err error
	)
	l.update(func(q sequence[T]) bool {
		if i < 0 || i >= q.len() {
			err = fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, q.len())
			return false
		}
		v = q.removeAt(i)
		return true
	})
	return v, err
}

// RemoveFunc removes every element for which del returns true and returns
// them in their prior order.
func (l *ObservableList[T]) RemoveFunc(del func(T) bool) []T {
	var removed []T
	l.update(func(q sequence[T]) bool {
		removed = removeFunc(q, del)
		return len(removed) > 0
	})
	return removed
}

// Clear removes all elements and returns them in their prior order.
func (l *ObservableList[T]) Clear() []T {
	var removed []T
	l.update(func(q sequence[T]) bool {
		removed = q.values()
		q.reset(nil)
		return len(removed) > 0
	})
	return removed
}

// Move moves the element at index from to index to.
func (l *ObservableList[T]) Move(from, to int) error {
	var err error
	l.update(func(q sequence[T]) bool {
		var moved bool
		moved, err = move(q, from, to)
		return moved
	})
	return err
}

// Sort sorts the list stably with cmp. Notifies only if the order changed.
func (l *ObservableList[T]) Sort(cmp func(a, b T) int) {
	l.update(func(q sequence[T]) bool {
		return reorder(q, func(vs []T) { slices.SortStableFunc(vs, cmp) })
	})
}

// Shuffle randomly permutes the list using r, or the global source when r
// is nil. Notifies only if the order changed.
func (l *ObservableList[T]) Shuffle(r *rand.Rand) {
	l.update(func(q sequence[T]) bool {
		return reorder(q, func(vs []T) { shuffle(r, vs) })
	})
}

// NotifyUnchanged fires external listeners and the GUI listener without a change.
func (l *ObservableList[T]) NotifyUnchanged() {
	l.fire()
}

// --- GUI slot ---

// SetGUIListener replaces the GUI listener. nil clears it.
func (l *ObservableList[T]) SetGUIListener(fn func()) {
	l.gui = fn
}

// BindGUI is SetGUIListener under the GUIBindable name.
func (l *ObservableList[T]) BindGUI(fn func()) {
	l.gui = fn
}

// UnbindGUI clears the GUI listener.
func (l *ObservableList[T]) UnbindGUI() {
	l.gui = nil
}

// --- Internals ---

// update applies fn under the lock and notifies after unlocking if fn
// reports a change.
func (l *ObservableList[T]) update(fn func(q sequence[T]) bool) bool {
	changed := l.quiet(fn)
	if changed {
		l.fire()
	}
	return changed
}

// quiet applies fn under the lock without notifying. Containers use it to
// commit several related changes before a single notification.
func (l *ObservableList[T]) quiet(fn func(q sequence[T]) bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.seq)
}

func (l *ObservableList[T]) fire() {
	l.NotifyChange()
	if l.gui != nil {
		l.gui()
	}
}

func move[T comparable](q sequence[T], from, to int) (bool, error) {
	n := q.len()
	if from < 0 || from >= n || to < 0 || to >= n {
		return false, fmt.Errorf("%w: move %d -> %d with length %d", ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		return false, nil
	}
	q.insert(to, q.removeAt(from))
	return true, nil
}

func removeFunc[T comparable](q sequence[T], del func(T) bool) []T {
	vs := q.values()
	var removed []T
	kept := vs[:0:0]
	for _, v := range vs {
		if del(v) {
			removed = append(removed, v)
		} else {
			kept = append(kept, v)
		}
	}
	if len(removed) > 0 {
		q.reset(kept)
	}
	return removed
}

// reorder applies a permutation to a copy of the values and writes it back
// if the order actually changed.
func reorder[T comparable](q sequence[T], permute func([]T)) bool {
	before := q.values()
	after := slices.Clone(before)
	permute(after)
	if slices.Equal(before, after) {
		return false
	}
	q.reset(after)
	return true
}

func shuffle[T any](r *rand.Rand, vs []T) {
	swap := func(i, j int) { vs[i], vs[j] = vs[j], vs[i] }
	if r == nil {
		rand.Shuffle(len(vs), swap)
		return
	}
	r.Shuffle(len(vs), swap)
}
