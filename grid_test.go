package tabletop

import (
	"errors"
	"testing"
)

func TestGridPaneSetGet(t *testing.T) {
	env := NewEnv()
	g := NewGridPane[*TokenView](env, "board", 3, 2)
	tok := newToken(env, "tok")
	n := countNotifications(g.cells)

	if _, ok := g.Get(1, 1); ok {
		t.Error("empty cell reported occupied")
	}
	if err := g.Set(1, 1, tok); err != nil {
		t.Fatal(err)
	}
	got, ok := g.Get(1, 1)
	if !ok || got != tok || tok.Parent() != Parent(g) || *n != 1 {
		t.Errorf("Get = %v, %v; parent = %v; notifications = %d", got, ok, tok.Parent(), *n)
	}
	col, row, ok := g.CellOf(tok)
	if !ok || col != 1 || row != 1 {
		t.Errorf("CellOf = (%d, %d, %v)", col, row, ok)
	}

	if err := g.Set(1, 1, tok); err != nil || *n != 1 {
		t.Errorf("re-setting the same occupant: err = %v notifications = %d", err, *n)
	}
	if err := g.Set(0, 0, tok); !errors.Is(err, ErrAlreadyContained) {
		t.Errorf("placing a member twice err = %v", err)
	}
}

func TestGridPaneSetReplacesOccupant(t *testing.T) {
	env := NewEnv()
	g := NewGridPane[*TokenView](env, "board", 2, 2)
	first, second := newToken(env, "first"), newToken(env, "second")
	_ = g.Set(0, 1, first)

	if err := g.Set(0, 1, second); err != nil {
		t.Fatal(err)
	}
	if first.HasParent() {
		t.Error("replaced occupant kept its parent")
	}
	if got, _ := g.Get(0, 1); got != second {
		t.Errorf("cell holds %v", got)
	}
	if len(g.Children()) != 1 {
		t.Errorf("Children = %v", g.Children())
	}
}

func TestGridPaneBoundsAndOwnership(t *testing.T) {
	env := NewEnv()
	g := NewGridPane[*TokenView](env, "board", 2, 2)
	other := NewArea[*TokenView](env, "other")
	owned := newToken(env, "owned")
	_ = other.Add(owned)

	for _, cell := range [][2]int{{-1, 0}, {2, 0}, {0, 2}} {
		if err := g.Set(cell[0], cell[1], newToken(env, "x")); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Set%v err = %v", cell, err)
		}
	}
	if err := g.Set(0, 0, owned); !errors.Is(err, ErrHasParent) {
		t.Errorf("foreign child err = %v", err)
	}
	if _, ok := g.Get(5, 5); ok {
		t.Error("Get outside the grid reported ok")
	}
}

func TestGridPaneRejectsCycle(t *testing.T) {
	env := NewEnv()
	outer := NewPane(env, "outer")
	g := NewGridPane[Component](env, "grid", 1, 1)
	_ = outer.Add(g)

	if err := g.Set(0, 0, outer); !errors.Is(err, ErrCycle) {
		t.Errorf("err = %v, want ErrCycle", err)
	}
}

func TestGridPaneRemove(t *testing.T) {
	env := NewEnv()
	g := NewGridPane[*TokenView](env, "board", 2, 2)
	a, b, c := newToken(env, "a"), newToken(env, "b"), newToken(env, "c")
	_ = g.Set(0, 0, a)
	_ = g.Set(1, 0, b)
	_ = g.Set(1, 1, c)

	got, ok := g.RemoveAt(1, 0)
	if !ok || got != b || b.HasParent() {
		t.Errorf("RemoveAt = %v, %v", got, ok)
	}
	if _, ok := g.RemoveAt(1, 0); ok {
		t.Error("RemoveAt of an empty cell reported ok")
	}

	if !g.Remove(a) || g.Remove(a) {
		t.Error("Remove result wrong")
	}

	var p Parent = g
	p.RemoveChild(c)
	if c.HasParent() || len(g.Children()) != 0 {
		t.Errorf("RemoveChild left %v", g.Children())
	}

	_ = g.Set(0, 0, a)
	_ = g.Set(1, 1, c)
	all := g.RemoveAll()
	if len(all) != 2 || all[0] != a || all[1] != c || a.HasParent() {
		t.Errorf("RemoveAll = %v", all)
	}
}

func TestGridPaneChildPosition(t *testing.T) {
	env := NewEnv()
	g := NewGridPane[*TokenView](env, "board", 3, 3)
	_ = g.CellWidth.Set(40)
	_ = g.CellHeight.Set(50)
	tok := newToken(env, "tok")
	_ = g.Set(2, 1, tok)

	pos, ok := g.ChildPosition(tok)
	if !ok || pos != (Vec2{80, 50}) {
		t.Errorf("ChildPosition = %v, %v; want {80 50}", pos, ok)
	}
	if g.Columns() != 3 || g.Rows() != 3 {
		t.Errorf("size = %dx%d", g.Columns(), g.Rows())
	}
}

func TestGridPaneInvalidSizePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewGridPane[*TokenView](NewEnv(), "bad", 0, 3)
}
