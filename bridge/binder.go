// Package bridge implements the GUI synchronization protocol: it occupies the
// GUI listener slot of every property and child list in a scene and turns
// each notification into a serialized message for a rendering collaborator.
package bridge

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/phanxgames/tabletop"
)

var (
	// ErrUnknownComponent is returned by Apply for an ID not in the scene.
	ErrUnknownComponent = errors.New("bridge: unknown component")
	// ErrUnknownProperty is returned by Apply for a property the component
	// does not publish.
	ErrUnknownProperty = errors.New("bridge: unknown property")
)

// facer is implemented by components with a fixed set of faces.
type facer interface {
	Faces() []tabletop.Visual
}

type binding struct {
	comp     tabletop.Component
	children []tabletop.ComponentID
}

// Binder keeps a rendering collaborator in sync with a scene. While bound it
// owns the GUI slot of every property and child list in the tree. Every
// notification emits its message immediately; nothing is coalesced. A change
// that moves the children of an Arranger is followed by a children message
// carrying the new placements.
//
// A Binder must be used from the scene's owner goroutine.
type Binder struct {
	scene *tabletop.Scene
	sink  Sink
	bound map[tabletop.ComponentID]*binding
}

// NewBinder creates an unbound Binder for scene that writes to sink.
func NewBinder(scene *tabletop.Scene, sink Sink) *Binder {
	return &Binder{scene: scene, sink: sink}
}

// Bind installs GUI listeners on the whole scene. Binding twice is a no-op.
func (b *Binder) Bind() {
	if b.bound != nil {
		return
	}
	b.bound = make(map[tabletop.ComponentID]*binding)
	for _, np := range b.scene.Properties() {
		np.Prop.BindGUI(b.sceneChanged)
	}
	b.bindSubtree(b.scene.Root())
}

// Unbind clears every GUI slot the Binder occupies.
func (b *Binder) Unbind() {
	if b.bound == nil {
		return
	}
	for _, np := range b.scene.Properties() {
		np.Prop.UnbindGUI()
	}
	b.unbindSubtree(b.scene.Root())
	b.bound = nil
}

// Bound reports whether the component with the given ID is bound.
func (b *Binder) Bound(id tabletop.ComponentID) bool {
	_, ok := b.bound[id]
	return ok
}

// Snapshot returns the full scene description.
func (b *Binder) Snapshot() SceneSnapshot {
	return SceneSnapshot{
		Kind:  b.scene.Kind().String(),
		Props: propsOf(b.scene.Properties()),
		Root:  snapshot(b.scene.Root(), true),
	}
}

// Apply sets a property on behalf of the renderer. The value is written
// silently, so business listeners stay quiet and the renderer receives the
// resulting update as acknowledgement.
func (b *Binder) Apply(cmd Command) error {
	c := b.scene.Find(cmd.ID)
	if c == nil {
		return fmt.Errorf("%w: %d", ErrUnknownComponent, cmd.ID)
	}
	for _, np := range c.Properties() {
		if np.Name == cmd.Prop {
			return np.Prop.SetSilentJSON(cmd.Value)
		}
	}
	return fmt.Errorf("%w: %q on %s", ErrUnknownProperty, cmd.Prop, c.AsComponent())
}

func (b *Binder) bindSubtree(root tabletop.Component) {
	tabletop.Walk(root, func(c tabletop.Component) bool {
		b.bind(c)
		return true
	})
}

// bind occupies c's GUI slots. A component that is already bound gets its
// slots installed again, since a move between containers may have passed
// through an unbind.
func (b *Binder) bind(c tabletop.Component) {
	id := c.AsComponent().ID()
	bd := b.bound[id]
	if bd == nil {
		bd = &binding{comp: c}
		b.bound[id] = bd
	}
	for _, np := range c.Properties() {
		name := np.Name
		np.Prop.BindGUI(func() { b.propertyChanged(c, name) })
	}
	if p, ok := c.(tabletop.Parent); ok {
		bd.children = childIDs(p)
		p.ChildrenGUI().BindGUI(func() { b.childrenChanged(p) })
	}
}

func (b *Binder) unbindSubtree(root tabletop.Component) {
	tabletop.Walk(root, func(c tabletop.Component) bool {
		for _, np := range c.Properties() {
			np.Prop.UnbindGUI()
		}
		if p, ok := c.(tabletop.Parent); ok {
			p.ChildrenGUI().UnbindGUI()
		}
		delete(b.bound, c.AsComponent().ID())
		return true
	})
}

func (b *Binder) sceneChanged() {
	b.sink.Send(Message{T: TypeScene, M: b.Snapshot()})
}

func (b *Binder) propertyChanged(c tabletop.Component, name string) {
	b.sink.Send(Message{T: TypeUpdate, M: snapshot(c, false)})
	if a, ok := c.(tabletop.Arranger); ok && a.ArrangedBy(name) {
		b.placementChanged(a)
	}
	if a, ok := c.AsComponent().Parent().(tabletop.Arranger); ok && a.ArrangedByChild(name) {
		b.placementChanged(a)
	}
}

// placementChanged reports the positions of p's children without a change
// in membership.
func (b *Binder) placementChanged(p tabletop.Parent) {
	pid := p.AsComponent().ID()
	if b.bound[pid] == nil {
		return
	}
	children := p.Children()
	change := ChildrenChange{Parent: pid, Children: make([]Placement, len(children))}
	for i, child := range children {
		change.Children[i] = Placement{ID: child.AsComponent().ID(), At: position(child)}
	}
	b.sink.Send(Message{T: TypeChildren, M: change})
}

func (b *Binder) childrenChanged(p tabletop.Parent) {
	pid := p.AsComponent().ID()
	bd := b.bound[pid]
	if bd == nil {
		return
	}
	old := make(map[tabletop.ComponentID]bool, len(bd.children))
	for _, id := range bd.children {
		old[id] = true
	}

	children := p.Children()
	change := ChildrenChange{Parent: pid, Children: make([]Placement, len(children))}
	current := make([]tabletop.ComponentID, len(children))
	for i, child := range children {
		id := child.AsComponent().ID()
		current[i] = id
		change.Children[i] = Placement{ID: id, At: position(child)}
		if old[id] {
			delete(old, id)
			continue
		}
		b.bindSubtree(child)
		change.Added = append(change.Added, snapshot(child, true))
	}
	bd.children = current

	var detached []tabletop.ComponentID
	for _, id := range sortedIDs(old) {
		gone := b.bound[id]
		if gone != nil && b.reattached(gone.comp) {
			// Already announced by its new parent.
			continue
		}
		if gone != nil {
			b.unbindSubtree(gone.comp)
		}
		detached = append(detached, id)
	}

	b.sink.Send(Message{T: TypeChildren, M: change})
	if len(detached) > 0 {
		b.sink.Send(Message{T: TypeDetach, M: Detach{IDs: detached}})
	}
}

// reattached reports whether c left one bound container for another one
// before the old container's notification reached the Binder.
func (b *Binder) reattached(c tabletop.Component) bool {
	parent := c.AsComponent().Parent()
	return parent != nil && b.bound[parent.AsComponent().ID()] != nil
}

func sortedIDs(set map[tabletop.ComponentID]bool) []tabletop.ComponentID {
	return slices.Sorted(maps.Keys(set))
}

func childIDs(p tabletop.Parent) []tabletop.ComponentID {
	children := p.Children()
	ids := make([]tabletop.ComponentID, len(children))
	for i, c := range children {
		ids[i] = c.AsComponent().ID()
	}
	return ids
}

func position(c tabletop.Component) *tabletop.Vec2 {
	parent := c.AsComponent().Parent()
	if parent == nil {
		return nil
	}
	at, ok := parent.ChildPosition(c)
	if !ok {
		return nil
	}
	return &at
}

func propsOf(props []tabletop.NamedProperty) map[string]any {
	m := make(map[string]any, len(props))
	for _, np := range props {
		m[np.Name] = np.Prop.Any()
	}
	return m
}

// snapshot serializes c, and its subtree when deep is set.
func snapshot(c tabletop.Component, deep bool) Snapshot {
	base := c.AsComponent()
	s := Snapshot{
		ID:    base.ID(),
		Kind:  base.Kind().String(),
		Name:  base.Name(),
		At:    position(c),
		Props: propsOf(c.Properties()),
	}
	if f, ok := c.(facer); ok {
		s.Faces = f.Faces()
	}
	if !deep {
		return s
	}
	if p, ok := c.(tabletop.Parent); ok {
		for _, child := range p.Children() {
			s.Children = append(s.Children, snapshot(child, true))
		}
	}
	return s
}
