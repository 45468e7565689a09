package tabletop

// LinearLayout places its children one after another along an axis,
// such as a player's hand of cards. Negative spacing overlaps children.
type LinearLayout[T Elem] struct {
	Container[T]

	Orientation *Property[Orientation]
	Spacing     *DoubleProperty
}

// NewLinearLayout creates an empty LinearLayout.
func NewLinearLayout[T Elem](env *Env, name string, orientation Orientation, spacing float64) *LinearLayout[T] {
	l := &LinearLayout[T]{
		Orientation: NewProperty(orientation),
		Spacing:     NewDoubleProperty(spacing),
	}
	l.initContainer(env, l, KindLinearLayout, name)
	l.place = l.offset
	return l
}

// offset sums the extents of the children before index i along the axis.
func (l *LinearLayout[T]) offset(i int, _ T) Vec2 {
	elems := l.Elements()
	pos := 0.0
	for _, e := range elems[:i] {
		b := e.AsComponent()
		if l.Orientation.Value() == Horizontal {
			pos += b.Width.Value()
		} else {
			pos += b.Height.Value()
		}
		pos += l.Spacing.Value()
	}
	if l.Orientation.Value() == Horizontal {
		return Vec2{X: pos}
	}
	return Vec2{Y: pos}
}

// ArrangedBy reports true for orientation and spacing.
func (l *LinearLayout[T]) ArrangedBy(name string) bool {
	return name == "orientation" || name == "spacing"
}

// ArrangedByChild reports true for the child's extent along either axis,
// since the axis itself may change.
func (l *LinearLayout[T]) ArrangedByChild(name string) bool {
	return name == "width" || name == "height"
}

// Properties adds orientation and spacing to the common properties.
func (l *LinearLayout[T]) Properties() []NamedProperty {
	return append(l.ComponentBase.Properties(),
		NamedProperty{"orientation", l.Orientation},
		NamedProperty{"spacing", l.Spacing},
	)
}
