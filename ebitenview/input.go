package ebitenview

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/tabletop"
)

// pointerEvent is one injected pointer sample in screen coordinates.
type pointerEvent struct {
	x, y    float64
	pressed bool
}

type pointerState struct {
	down   bool
	startX float64
	startY float64
	moved  bool

	target     tabletop.Component // component under the press, if clickable or draggable
	dragging   tabletop.Component
	grabX      float64 // cursor offset inside the dragged rect
	grabY      float64
	dragOrigin tabletop.Vec2
}

// dragDeadZone is the distance in pixels the pointer must travel before a
// press becomes a drag.
const dragDeadZone = 4

// InjectPress queues a pointer press at the given screen coordinates. The
// event is consumed on the next Update instead of real mouse input.
func (r *Renderer) InjectPress(x, y float64) {
	r.injectQueue = append(r.injectQueue, pointerEvent{x: x, y: y, pressed: true})
}

// InjectMove queues a pointer move with the button held down.
func (r *Renderer) InjectMove(x, y float64) {
	r.injectQueue = append(r.injectQueue, pointerEvent{x: x, y: y, pressed: true})
}

// InjectRelease queues a pointer release.
func (r *Renderer) InjectRelease(x, y float64) {
	r.injectQueue = append(r.injectQueue, pointerEvent{x: x, y: y})
}

// InjectClick queues a press followed by a release at the same point.
// Consumes two frames.
func (r *Renderer) InjectClick(x, y float64) {
	r.InjectPress(x, y)
	r.InjectRelease(x, y)
}

// InjectDrag queues a full drag: press at (fromX, fromY), frames-2
// interpolated moves and a release at (toX, toY). Minimum frames is 2.
func (r *Renderer) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	r.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		r.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	r.InjectRelease(toX, toY)
}

// processInjectedInput pops one injected event and feeds it through
// processPointer. Returns true if an event was consumed.
func (r *Renderer) processInjectedInput() bool {
	if len(r.injectQueue) == 0 {
		return false
	}
	evt := r.injectQueue[0]
	copy(r.injectQueue, r.injectQueue[1:])
	r.injectQueue = r.injectQueue[:len(r.injectQueue)-1]
	r.processPointer(evt.x, evt.y, evt.pressed)
	return true
}

func interactive(c tabletop.Component) bool {
	switch c.(type) {
	case *tabletop.Button, *tabletop.TextField:
		return true
	}
	return c.AsComponent().Draggable.Value()
}

// processPointer advances the press / drag / release state machine by one
// sample.
func (r *Renderer) processPointer(x, y float64, pressed bool) {
	r.refresh()
	p := &r.pointer
	switch {
	case pressed && !p.down:
		target, rect := r.hit(x, y, interactive)
		*p = pointerState{down: true, startX: x, startY: y, target: target}
		if target != nil {
			p.grabX, p.grabY = x-rect.X, y-rect.Y
		}

	case pressed && p.down:
		if p.target == nil {
			return
		}
		if !p.moved && abs(x-p.startX) < dragDeadZone && abs(y-p.startY) < dragDeadZone {
			return
		}
		p.moved = true
		if p.dragging == nil && p.target.AsComponent().Draggable.Value() {
			p.dragging = p.target
		}
		if p.dragging != nil {
			p.dragOrigin = tabletop.Vec2{X: x - p.grabX, Y: y - p.grabY}
			r.dirty = true
		}

	case !pressed && p.down:
		state := *p
		*p = pointerState{}
		r.dirty = true
		switch {
		case state.dragging != nil:
			r.drop(state.dragging, x-state.grabX, y-state.grabY, x, y)
		case state.target != nil && !state.moved:
			r.click(state.target)
		default:
			r.focused = nil
		}
	}
}

// drop writes the final position of a dragged component placed by its own
// X/Y, then hands the drop to game logic.
func (r *Renderer) drop(c tabletop.Component, left, top, x, y float64) {
	b := c.AsComponent()
	if parent := b.Parent(); parent != nil {
		switch parent.AsComponent().Kind() {
		case tabletop.KindArea, tabletop.KindPane:
			origin := r.screenOrigin(parent)
			_ = b.X.SetSilent(left - origin.X)
			_ = b.Y.SetSilent(top - origin.Y)
		}
	}
	if r.OnDrop != nil {
		r.OnDrop(c, x, y)
	}
}

func (r *Renderer) click(c tabletop.Component) {
	switch v := c.(type) {
	case *tabletop.Button:
		r.focused = nil
		v.Click()
	case *tabletop.TextField:
		r.focused = v
	}
}

// screenOrigin returns the screen position of c's anchor.
func (r *Renderer) screenOrigin(c tabletop.Component) tabletop.Vec2 {
	for i := range r.items {
		if r.items[i].comp == c {
			return tabletop.Vec2{X: r.items[i].rect.X, Y: r.items[i].rect.Y}
		}
	}
	return tabletop.Vec2{}
}

// processKeys feeds typed characters into the focused text field.
func (r *Renderer) processKeys() {
	if r.focused == nil {
		return
	}
	r.runes = ebiten.AppendInputChars(r.runes[:0])
	backspace := inpututil.IsKeyJustPressed(ebiten.KeyBackspace)
	if len(r.runes) == 0 && !backspace {
		return
	}
	r.editText(string(r.runes), backspace)
}

// editText applies typed text to the focused field silently and reports the
// result to game logic.
func (r *Renderer) editText(typed string, backspace bool) {
	f := r.focused
	text := []rune(f.Text.Value())
	if backspace && len(text) > 0 {
		text = text[:len(text)-1]
	}
	text = append(text, []rune(typed)...)
	if err := f.Text.SetSilent(string(text)); err != nil {
		return
	}
	if r.OnTextInput != nil {
		r.OnTextInput(f, f.Text.Value())
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
