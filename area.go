package tabletop

// Area is a container whose children are placed by their own X and Y,
// such as a game board holding tokens.
type Area[T Elem] struct {
	Container[T]
}

// NewArea creates an empty Area.
func NewArea[T Elem](env *Env, name string) *Area[T] {
	a := &Area[T]{}
	a.initContainer(env, a, KindArea, name)
	return a
}

// Pane is an Area that holds components of any kind. Scenes use a Pane as
// their root.
type Pane = Area[Component]

// NewPane creates an empty Pane.
func NewPane(env *Env, name string) *Pane {
	p := &Pane{}
	p.initContainer(env, p, KindPane, name)
	return p
}
