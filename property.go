package tabletop

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// maxNotifyDepth bounds how deeply a property's notifications may nest
// before a listener feedback loop is assumed.
const maxNotifyDepth = 64

// ValueListener receives the previous and the new value of a property.
type ValueListener[T any] func(oldValue, newValue T)

// Property is a typed observable holder of a single value with three
// listener channels:
//
//   - external listeners, any number, registered with AddListener;
//   - one internal listener reserved for the owning framework or game logic;
//   - one GUI listener reserved for the rendering/synchronization layer.
//
// An accepted change notifies external listeners in registration order,
// then the internal listener, then the GUI listener, each with (old, new).
// Writing a value equal to the current one notifies nobody. Listeners run
// synchronously on the caller's goroutine.
type Property[T any] struct {
	value    T
	equal    func(a, b T) bool
	validate func(T) error

	listeners listenerSet[ValueListener[T]]
	internal  ValueListener[T]
	gui       ValueListener[T]

	depth int
}

// StringProperty, IntegerProperty, DoubleProperty and BooleanProperty are
// the unconstrained properties used by the widget set.
type (
	StringProperty  = Property[string]
	IntegerProperty = Property[int]
	DoubleProperty  = Property[float64]
	BooleanProperty = Property[bool]
)

// NewProperty creates a property compared with ==.
func NewProperty[T comparable](initial T) *Property[T] {
	return &Property[T]{
		value: initial,
		equal: func(a, b T) bool { return a == b },
	}
}

// NewObjectProperty creates a property for values that are not comparable
// with ==, such as slices or maps. Values are compared with reflect.DeepEqual.
func NewObjectProperty[T any](initial T) *Property[T] {
	return &Property[T]{
		value: initial,
		equal: func(a, b T) bool { return reflect.DeepEqual(a, b) },
	}
}

// NewStringProperty creates a StringProperty.
func NewStringProperty(initial string) *StringProperty { return NewProperty(initial) }

// NewIntegerProperty creates an IntegerProperty.
func NewIntegerProperty(initial int) *IntegerProperty { return NewProperty(initial) }

// NewDoubleProperty creates a DoubleProperty.
func NewDoubleProperty(initial float64) *DoubleProperty { return NewProperty(initial) }

// NewBooleanProperty creates a BooleanProperty.
func NewBooleanProperty(initial bool) *BooleanProperty { return NewProperty(initial) }

// Value returns the last committed value.
func (p *Property[T]) Value() T {
	return p.value
}

// Set validates v and, if it differs from the current value, commits it and
// notifies all three channels. A rejected value leaves the property untouched
// and notifies nobody.
func (p *Property[T]) Set(v T) error {
	old, changed, err := p.commit(v)
	if err != nil || !changed {
		return err
	}
	p.fire(old, v, true)
	return nil
}

// SetSilent behaves like Set but notifies only the GUI listener. Used when
// the change originates from the rendering side and must not be echoed into
// game logic, while the GUI still needs its acknowledgement.
func (p *Property[T]) SetSilent(v T) error {
	old, changed, err := p.commit(v)
	if err != nil || !changed {
		return err
	}
	p.fire(old, v, false)
	return nil
}

// NotifyUnchanged fires all three channels with (current, current) without
// changing the value.
func (p *Property[T]) NotifyUnchanged() {
	p.fire(p.value, p.value, true)
}

func (p *Property[T]) commit(v T) (old T, changed bool, err error) {
	if p.validate != nil {
		if err := p.validate(v); err != nil {
			return old, false, err
		}
	}
	if p.equal(p.value, v) {
		return old, false, nil
	}
	old = p.value
	p.value = v
	return old, true, nil
}

func (p *Property[T]) fire(old, v T, loud bool) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxNotifyDepth {
		panic(fmt.Sprintf("tabletop: property notification nested %d levels deep; a listener keeps re-entering the property it observes", p.depth))
	}
	if loud {
		for _, e := range p.listeners.snapshot() {
			e.fn(old, v)
		}
		if p.internal != nil {
			p.internal(old, v)
		}
	}
	if p.gui != nil {
		p.gui(old, v)
	}
}

// AddListener registers an external listener and returns its handle.
func (p *Property[T]) AddListener(fn ValueListener[T]) ListenerHandle {
	return ListenerHandle{id: p.listeners.add(fn), owner: p}
}

// AddListenerAndInvoke registers fn and immediately invokes it once with
// (initial, initial). The property value is not touched.
func (p *Property[T]) AddListenerAndInvoke(initial T, fn ValueListener[T]) ListenerHandle {
	h := p.AddListener(fn)
	fn(initial, initial)
	return h
}

// RemoveListener removes the external listener behind h.
func (p *Property[T]) RemoveListener(h ListenerHandle) {
	if h.owner != listenerOwner(p) {
		return
	}
	p.listeners.remove(h.id)
}

// ClearListeners removes all external listeners. The internal and GUI
// slots are kept.
func (p *Property[T]) ClearListeners() {
	p.listeners.clear()
}

// NumListeners returns the number of external listeners.
func (p *Property[T]) NumListeners() int {
	return p.listeners.len()
}

func (p *Property[T]) removeListener(id uint32) {
	p.listeners.remove(id)
}

// SetInternalListener replaces the internal listener. The previous occupant
// is dropped without notification. nil clears the slot.
func (p *Property[T]) SetInternalListener(fn ValueListener[T]) {
	p.internal = fn
}

// SetInternalListenerAndInvoke replaces the internal listener and invokes the
// new one with (initial, initial).
func (p *Property[T]) SetInternalListenerAndInvoke(initial T, fn ValueListener[T]) {
	p.internal = fn
	fn(initial, initial)
}

// SetGUIListener replaces the GUI listener. The previous occupant is dropped
// without notification. nil clears the slot.
func (p *Property[T]) SetGUIListener(fn ValueListener[T]) {
	p.gui = fn
}

// SetGUIListenerAndInvoke replaces the GUI listener and invokes the new one
// with (initial, initial).
func (p *Property[T]) SetGUIListenerAndInvoke(initial T, fn ValueListener[T]) {
	p.gui = fn
	fn(initial, initial)
}

// HasGUIListener reports whether the GUI slot is occupied.
func (p *Property[T]) HasGUIListener() bool {
	return p.gui != nil
}

// HasInternalListener reports whether the internal slot is occupied.
func (p *Property[T]) HasInternalListener() bool {
	return p.internal != nil
}

// --- Type-erased view ---

// GUIBindable is implemented by every observable that offers a GUI slot.
type GUIBindable interface {
	BindGUI(fn func())
	UnbindGUI()
}

// AnyProperty is the view of a Property used by code that does not know its
// value type, such as the synchronization bridge and ECS adapters.
type AnyProperty interface {
	GUIBindable
	// Any returns the current value.
	Any() any
	// Watch registers an external listener receiving boxed values.
	Watch(fn func(oldValue, newValue any)) ListenerHandle
	// SetSilentJSON decodes raw into the value type and applies it with SetSilent.
	SetSilentJSON(raw []byte) error
}

// Any returns the current value boxed in an interface.
func (p *Property[T]) Any() any {
	return p.value
}

// BindGUI occupies the GUI slot with a payload-free callback.
func (p *Property[T]) BindGUI(fn func()) {
	p.gui = func(T, T) { fn() }
}

// UnbindGUI clears the GUI slot.
func (p *Property[T]) UnbindGUI() {
	p.gui = nil
}

// Watch registers an external listener that receives boxed values.
func (p *Property[T]) Watch(fn func(oldValue, newValue any)) ListenerHandle {
	return p.AddListener(func(o, n T) { fn(o, n) })
}

// SetSilentJSON decodes raw as a T and applies it with SetSilent.
func (p *Property[T]) SetSilentJSON(raw []byte) error {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return p.SetSilent(v)
}

// NamedProperty pairs a property with the name it is published under.
type NamedProperty struct {
	Name string
	Prop AnyProperty
}
