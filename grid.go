package tabletop

import (
	"fmt"
	"math"
	"sync"
)

// GridPane is a fixed grid of columns x rows cells, each holding at most one
// element. It enforces the same parent invariants as Container; setting an
// occupied cell replaces and detaches the previous occupant.
type GridPane[T Elem] struct {
	ComponentBase

	CellWidth  *LimitedDoubleProperty
	CellHeight *LimitedDoubleProperty

	mu      sync.Mutex
	columns int
	rows    int
	cells   *ObservableList[T] // row-major; the zero T marks an empty cell
}

// NewGridPane creates a grid with the given dimensions. Panics if columns or
// rows is not positive.
func NewGridPane[T Elem](env *Env, name string, columns, rows int) *GridPane[T] {
	if columns <= 0 || rows <= 0 {
		panic(fmt.Sprintf("tabletop: invalid grid size %dx%d", columns, rows))
	}
	g := &GridPane[T]{
		CellWidth:  mustLimited(0, math.Inf(1), 0),
		CellHeight: mustLimited(0, math.Inf(1), 0),
		columns:    columns,
		rows:       rows,
		cells:      NewObservableArrayList(make([]T, columns*rows)...),
	}
	g.init(env, g, KindGrid, name)
	return g
}

// Columns returns the number of columns.
func (g *GridPane[T]) Columns() int { return g.columns }

// Rows returns the number of rows.
func (g *GridPane[T]) Rows() int { return g.rows }

func (g *GridPane[T]) index(col, row int) (int, error) {
	if col < 0 || col >= g.columns || row < 0 || row >= g.rows {
		return 0, fmt.Errorf("%w: cell (%d, %d) outside %dx%d grid %s",
			ErrIndexOutOfRange, col, row, g.columns, g.rows, &g.ComponentBase)
	}
	return row*g.columns + col, nil
}

// Get returns the element in cell (col, row).
func (g *GridPane[T]) Get(col, row int) (T, bool) {
	var zero T
	i, err := g.index(col, row)
	if err != nil {
		return zero, false
	}
	e := g.cells.At(i)
	return e, e != zero
}

// Set places e in cell (col, row). A previous occupant is detached.
func (g *GridPane[T]) Set(col, row int, e T) error {
	if any(e) == nil {
		panic("tabletop: cannot add nil component")
	}
	var zero T
	g.mu.Lock()
	i, err := g.index(col, row)
	if err != nil {
		g.mu.Unlock()
		return err
	}
	child := e.AsComponent()
	if g.cells.At(i) == e {
		g.mu.Unlock()
		return nil
	}
	if g.cells.Contains(e) {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s in %s", ErrAlreadyContained, child, &g.ComponentBase)
	}
	if child.parent != nil {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s is owned by %s", ErrHasParent, child, child.parent.AsComponent())
	}
	if isAncestor(child, &g.ComponentBase) {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s is an ancestor of %s", ErrCycle, child, &g.ComponentBase)
	}
	var prev T
	g.cells.quiet(func(q sequence[T]) bool {
		prev = q.at(i)
		q.set(i, e)
		return true
	})
	if prev != zero {
		prev.AsComponent().setParent(nil)
	}
	child.setParent(g)
	g.mu.Unlock()

	g.cells.fire()
	return nil
}

// RemoveAt empties cell (col, row) and returns its previous occupant.
func (g *GridPane[T]) RemoveAt(col, row int) (T, bool) {
	var zero T
	i, err := g.index(col, row)
	if err != nil {
		return zero, false
	}
	g.mu.Lock()
	var prev T
	g.cells.quiet(func(q sequence[T]) bool {
		prev = q.at(i)
		if prev == zero {
			return false
		}
		q.set(i, zero)
		return true
	})
	if prev != zero {
		prev.AsComponent().setParent(nil)
	}
	g.mu.Unlock()

	if prev == zero {
		return zero, false
	}
	g.cells.fire()
	return prev, true
}

// Remove empties the cell holding e. Removing a non-member is a no-op.
func (g *GridPane[T]) Remove(e T) bool {
	var zero T
	if e == zero {
		return false
	}
	g.mu.Lock()
	removed := g.cells.quiet(func(q sequence[T]) bool {
		i := q.indexOf(e)
		if i < 0 {
			return false
		}
		q.set(i, zero)
		return true
	})
	child := e.AsComponent()
	if removed || child.parent == Parent(g) {
		child.setParent(nil)
	}
	g.mu.Unlock()

	if removed {
		g.cells.fire()
	}
	return removed
}

// RemoveAll empties every cell and returns the previous occupants in
// row-major order.
func (g *GridPane[T]) RemoveAll() []T {
	var zero T
	g.mu.Lock()
	var removed []T
	g.cells.quiet(func(q sequence[T]) bool {
		for i := range q.len() {
			if e := q.at(i); e != zero {
				removed = append(removed, e)
				q.set(i, zero)
			}
		}
		return len(removed) > 0
	})
	for _, e := range removed {
		e.AsComponent().setParent(nil)
	}
	g.mu.Unlock()

	if len(removed) > 0 {
		g.cells.fire()
	}
	return removed
}

// CellOf returns the cell holding e.
func (g *GridPane[T]) CellOf(e T) (col, row int, ok bool) {
	var zero T
	if e == zero {
		return 0, 0, false
	}
	i := g.cells.IndexOf(e)
	if i < 0 {
		return 0, 0, false
	}
	return i % g.columns, i / g.columns, true
}

// Children returns the occupants in row-major order.
func (g *GridPane[T]) Children() []Component {
	var zero T
	var out []Component
	for _, e := range g.cells.ToList() {
		if e != zero {
			out = append(out, e)
		}
	}
	return out
}

// RemoveChild removes child if present. It panics if child is not of the
// element type.
func (g *GridPane[T]) RemoveChild(child Component) {
	e, ok := child.(T)
	if !ok {
		panic(fmt.Sprintf("tabletop: %s cannot hold a %T", &g.ComponentBase, child))
	}
	g.Remove(e)
}

// ChildPosition returns the origin of the cell holding child.
func (g *GridPane[T]) ChildPosition(child Component) (Vec2, bool) {
	e, ok := child.(T)
	if !ok {
		return Vec2{}, false
	}
	col, row, ok := g.CellOf(e)
	if !ok {
		return Vec2{}, false
	}
	return Vec2{
		X: float64(col) * g.CellWidth.Value(),
		Y: float64(row) * g.CellHeight.Value(),
	}, true
}

// WatchChildren registers an external listener on the cells.
func (g *GridPane[T]) WatchChildren(fn func()) ListenerHandle {
	return g.cells.AddListener(fn)
}

// ChildrenGUI returns the GUI slot of the cells.
func (g *GridPane[T]) ChildrenGUI() GUIBindable {
	return g.cells
}

// ArrangedBy reports true for the cell size.
func (g *GridPane[T]) ArrangedBy(name string) bool {
	return name == "cellWidth" || name == "cellHeight"
}

// ArrangedByChild always reports false: cells do not depend on their
// occupants.
func (g *GridPane[T]) ArrangedByChild(string) bool { return false }

// Properties adds the cell size to the common properties.
func (g *GridPane[T]) Properties() []NamedProperty {
	return append(g.ComponentBase.Properties(),
		NamedProperty{"cellWidth", g.CellWidth},
		NamedProperty{"cellHeight", g.CellHeight},
	)
}
