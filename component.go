package tabletop

import (
	"fmt"
	"math"
)

// Component is the capability every scene-graph element exposes. Concrete
// widgets embed ComponentBase and add their own properties.
type Component interface {
	// AsComponent returns the embedded base carrying identity, parent and
	// the common properties.
	AsComponent() *ComponentBase

	// Properties lists every observable property of the component under the
	// name it is published with. Variants append their own to the base list.
	Properties() []NamedProperty
}

// Parent is implemented by every component that owns children.
type Parent interface {
	Component

	// Children returns a snapshot of the children in order.
	Children() []Component

	// RemoveChild removes child if present. It panics if child's type can
	// never be held by this container.
	RemoveChild(child Component)

	// ChildPosition returns the child's coordinate relative to this
	// container's anchor, or false if child is not a member.
	ChildPosition(child Component) (Vec2, bool)

	// WatchChildren registers an external listener on the child list.
	WatchChildren(fn func()) ListenerHandle

	// ChildrenGUI returns the GUI slot of the child list.
	ChildrenGUI() GUIBindable
}

// Arranger is implemented by containers that derive child positions from
// layout properties instead of each child's own X and Y.
type Arranger interface {
	Parent

	// ArrangedBy reports whether a change to the container's own property
	// name moves its children.
	ArrangedBy(name string) bool

	// ArrangedByChild reports whether a change to a child's property name
	// moves the child's siblings.
	ArrangedByChild(name string) bool
}

// Elem constrains the element types a container can hold.
type Elem interface {
	comparable
	Component
}

// ComponentBase carries what every component has: identity, parent link
// and the common layout and visibility properties.
type ComponentBase struct {
	id     ComponentID
	name   string
	kind   Kind
	env    *Env
	self   Component
	parent Parent

	X, Y     *DoubleProperty
	Width    *LimitedDoubleProperty
	Height   *LimitedDoubleProperty
	Rotation *DoubleProperty
	Opacity  *LimitedDoubleProperty
	ZIndex   *IntegerProperty

	Visible   *BooleanProperty
	Disabled  *BooleanProperty
	Draggable *BooleanProperty
}

// init sets the identity and default property values. self is the outer
// component embedding b, used as the parent of its children and as the
// argument to RemoveChild.
func (b *ComponentBase) init(env *Env, self Component, kind Kind, name string) {
	if env == nil {
		panic("tabletop: component created without an Env")
	}
	b.id = env.NextID()
	b.env = env
	b.self = self
	b.kind = kind
	b.name = name
	b.X = NewDoubleProperty(0)
	b.Y = NewDoubleProperty(0)
	b.Width = mustLimited(0, math.Inf(1), 0)
	b.Height = mustLimited(0, math.Inf(1), 0)
	b.Rotation = NewDoubleProperty(0)
	b.Opacity = mustLimited(0.0, 1.0, 1.0)
	b.ZIndex = NewIntegerProperty(0)
	b.Visible = NewBooleanProperty(true)
	b.Disabled = NewBooleanProperty(false)
	b.Draggable = NewBooleanProperty(false)
}

// AsComponent returns b.
func (b *ComponentBase) AsComponent() *ComponentBase { return b }

// Properties returns the common properties.
func (b *ComponentBase) Properties() []NamedProperty {
	return []NamedProperty{
		{"x", b.X},
		{"y", b.Y},
		{"width", b.Width},
		{"height", b.Height},
		{"rotation", b.Rotation},
		{"opacity", b.Opacity},
		{"zIndex", b.ZIndex},
		{"visible", b.Visible},
		{"disabled", b.Disabled},
		{"draggable", b.Draggable},
	}
}

// ID returns the component's ID.
func (b *ComponentBase) ID() ComponentID { return b.id }

// Name returns the component's name.
func (b *ComponentBase) Name() string { return b.name }

// Kind returns the component variant.
func (b *ComponentBase) Kind() Kind { return b.kind }

// Env returns the Env the component was created with.
func (b *ComponentBase) Env() *Env { return b.env }

// Self returns the outer component embedding b.
func (b *ComponentBase) Self() Component { return b.self }

// Parent returns the owning container, or nil.
func (b *ComponentBase) Parent() Parent { return b.parent }

// HasParent reports whether the component is owned by a container.
func (b *ComponentBase) HasParent() bool { return b.parent != nil }

func (b *ComponentBase) setParent(p Parent) { b.parent = p }

func (b *ComponentBase) String() string {
	return fmt.Sprintf("%s %q (%d)", b.kind, b.name, b.id)
}

// Position returns (X, Y).
func (b *ComponentBase) Position() Vec2 {
	return Vec2{b.X.Value(), b.Y.Value()}
}

// Size returns (Width, Height).
func (b *ComponentBase) Size() Vec2 {
	return Vec2{b.Width.Value(), b.Height.Value()}
}

// Bounds returns the component's rectangle in its parent's coordinates.
func (b *ComponentBase) Bounds() Rect {
	return Rect{b.X.Value(), b.Y.Value(), b.Width.Value(), b.Height.Value()}
}

// SetPosition sets X and Y.
func (b *ComponentBase) SetPosition(x, y float64) {
	_ = b.X.Set(x)
	_ = b.Y.Set(y)
}

// SetSize sets Width and Height. Nothing changes if either is negative.
func (b *ComponentBase) SetSize(w, h float64) error {
	if !b.Width.InRange(w) {
		return b.Width.Set(w)
	}
	if !b.Height.InRange(h) {
		return b.Height.Set(h)
	}
	_ = b.Width.Set(w)
	_ = b.Height.Set(h)
	return nil
}

// SetBounds sets position and size from r.
func (b *ComponentBase) SetBounds(r Rect) error {
	if err := b.SetSize(r.Width, r.Height); err != nil {
		return err
	}
	b.SetPosition(r.X, r.Y)
	return nil
}

// RemoveFromParent detaches the component from its container.
// No-op if it has no parent.
func (b *ComponentBase) RemoveFromParent() {
	if b.parent == nil {
		return
	}
	b.parent.RemoveChild(b.self)
}

// Depth returns the number of ancestors above the component.
func (b *ComponentBase) Depth() int {
	depth := 0
	for p := b.parent; p != nil; p = p.AsComponent().parent {
		depth++
	}
	return depth
}

// isAncestor reports whether candidate is node itself or one of its ancestors.
func isAncestor(candidate, node *ComponentBase) bool {
	for p := node; p != nil; {
		if p == candidate {
			return true
		}
		if p.parent == nil {
			return false
		}
		p = p.parent.AsComponent()
	}
	return false
}

// Walk calls fn for c and every descendant in depth-first pre-order.
// If fn returns false the subtree below that component is skipped.
func Walk(c Component, fn func(c Component) bool) {
	if !fn(c) {
		return
	}
	p, ok := c.(Parent)
	if !ok {
		return
	}
	for _, child := range p.Children() {
		Walk(child, fn)
	}
}

// FindByID returns the component with the given ID in the subtree rooted at
// root, or nil.
func FindByID(root Component, id ComponentID) Component {
	var found Component
	Walk(root, func(c Component) bool {
		if found != nil {
			return false
		}
		if c.AsComponent().id == id {
			found = c
			return false
		}
		return true
	})
	return found
}
