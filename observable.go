package tabletop

// listenerEntry pairs a registered callback with the id its handle refers to.
type listenerEntry[F any] struct {
	id uint32
	fn F
}

// listenerSet is an insertion-ordered registry of external listeners.
// The same function may be registered more than once; each registration
// gets its own id and fires separately.
type listenerSet[F any] struct {
	entries []listenerEntry[F]
	nextID  uint32
}

func (s *listenerSet[F]) add(fn F) uint32 {
	s.nextID++
	s.entries = append(s.entries, listenerEntry[F]{id: s.nextID, fn: fn})
	return s.nextID
}

// remove drops the registration with the given id.
// Uses copy+zero to avoid retaining the callback in the backing array.
func (s *listenerSet[F]) remove(id uint32) bool {
	for i := range s.entries {
		if s.entries[i].id == id {
			copy(s.entries[i:], s.entries[i+1:])
			s.entries[len(s.entries)-1] = listenerEntry[F]{}
			s.entries = s.entries[:len(s.entries)-1]
			return true
		}
	}
	return false
}

func (s *listenerSet[F]) clear() {
	clear(s.entries)
	s.entries = s.entries[:0]
}

// snapshot returns a copy of the current registrations so listeners may
// add or remove listeners while being notified.
func (s *listenerSet[F]) snapshot() []listenerEntry[F] {
	if len(s.entries) == 0 {
		return nil
	}
	out := make([]listenerEntry[F], len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *listenerSet[F]) len() int {
	return len(s.entries)
}

// listenerOwner is implemented by everything that hands out ListenerHandles.
type listenerOwner interface {
	removeListener(id uint32)
}

// ListenerHandle allows removing a registered external listener.
// The zero value is valid and removes nothing.
type ListenerHandle struct {
	id    uint32
	owner listenerOwner
}

// Remove unregisters the listener so it no longer fires. Removing twice is a no-op.
func (h ListenerHandle) Remove() {
	if h.owner == nil {
		return
	}
	h.owner.removeListener(h.id)
}

// Observable is the root change-notification capability: a set of external
// listeners that take no payload. Listeners must re-read the observed state.
//
// The zero value is ready to use. Observable performs no locking; it belongs
// to the goroutine that owns the scene graph.
type Observable struct {
	listeners listenerSet[func()]
}

// AddListener registers fn and returns a handle that removes it.
func (o *Observable) AddListener(fn func()) ListenerHandle {
	return ListenerHandle{id: o.listeners.add(fn), owner: o}
}

// RemoveListener removes the registration behind h. No-op if h does not
// belong to o or was already removed.
func (o *Observable) RemoveListener(h ListenerHandle) {
	if h.owner != listenerOwner(o) {
		return
	}
	o.listeners.remove(h.id)
}

// ClearListeners removes all external listeners.
func (o *Observable) ClearListeners() {
	o.listeners.clear()
}

// NumListeners returns the number of registered external listeners.
func (o *Observable) NumListeners() int {
	return o.listeners.len()
}

// NotifyChange invokes every registered listener in insertion order.
func (o *Observable) NotifyChange() {
	for _, e := range o.listeners.snapshot() {
		e.fn()
	}
}

// NotifyUnchanged fires every listener without a preceding change, used to
// re-sync a newly attached listener to the current state.
func (o *Observable) NotifyUnchanged() {
	o.NotifyChange()
}

func (o *Observable) removeListener(id uint32) {
	o.listeners.remove(id)
}
