// Package ebitenview is a local reference renderer for tabletop scenes built
// on Ebitengine. It consumes the GUI channel through a bridge.Binder: every
// message marks the draw list dirty, and the list is rebuilt from the scene
// on the next frame. Player input flows back as silent property writes.
package ebitenview

import (
	"fmt"
	"image/color"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/tabletop"
	"github.com/phanxgames/tabletop/bridge"
)

// item is one component resolved to screen space.
type item struct {
	comp    tabletop.Component
	rect    tabletop.Rect
	fill    tabletop.Color
	bar     float64 // progress fraction for progress bars, -1 otherwise
	barFill tabletop.Color
	text    string
	opacity float64
	z       int
}

// Renderer draws a scene and turns mouse and keyboard input into property
// writes. It implements ebiten.Game and bridge.Sink.
type Renderer struct {
	scene  *tabletop.Scene
	binder *bridge.Binder

	// OnDrop is called when the player releases a dragged component at the
	// given screen position. Game logic decides where the component goes.
	OnDrop func(c tabletop.Component, x, y float64)

	// OnTextInput is called after the player edits a text field.
	OnTextInput func(f *tabletop.TextField, text string)

	ShowFPS bool

	dirty    bool
	messages int
	items    []item

	injectQueue []pointerEvent
	pointer     pointerState
	focused     *tabletop.TextField
	runes       []rune

	white *ebiten.Image
}

// New creates a Renderer for scene and binds the scene's GUI channel to it.
// Call it on the goroutine that will run the game loop.
func New(scene *tabletop.Scene) *Renderer {
	r := &Renderer{scene: scene, dirty: true}
	r.binder = bridge.NewBinder(scene, r)
	r.binder.Bind()
	return r
}

// Close releases the GUI channel.
func (r *Renderer) Close() {
	r.binder.Unbind()
}

// Send marks the draw list dirty.
func (r *Renderer) Send(bridge.Message) {
	r.dirty = true
	r.messages++
}

// Messages returns the number of GUI messages received.
func (r *Renderer) Messages() int { return r.messages }

// Update handles input, then advances the scene by one tick.
func (r *Renderer) Update() error {
	r.refresh()
	if !r.processInjectedInput() {
		x, y := ebiten.CursorPosition()
		r.processPointer(float64(x), float64(y), ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
	}
	r.processKeys()
	r.scene.Update(float32(1.0 / float64(ebiten.TPS())))
	return nil
}

// Draw renders the cached draw list.
func (r *Renderer) Draw(screen *ebiten.Image) {
	r.refresh()
	screen.Fill(r.scene.Background.Value().RGBA())
	if r.white == nil {
		r.white = ebiten.NewImage(1, 1)
		r.white.Fill(color.White)
	}
	var op ebiten.DrawImageOptions
	for i := range r.items {
		it := &r.items[i]
		if it.fill.A > 0 {
			r.drawRect(screen, &op, it.rect, it.fill, it.opacity, it.comp.AsComponent().Rotation.Value())
		}
		if it.bar >= 0 {
			fill := it.rect
			fill.Width *= it.bar
			r.drawRect(screen, &op, fill, it.barFill, it.opacity, 0)
		}
		if it.text != "" {
			ebitenutil.DebugPrintAt(screen, it.text, int(it.rect.X)+4, int(it.rect.Y)+4)
		}
	}
	if r.ShowFPS {
		ebitenutil.DebugPrintAt(screen, fpsText(), 4, 4)
	}
}

// Layout reports the scene size as the logical screen size.
func (r *Renderer) Layout(int, int) (int, int) {
	return int(r.scene.Width.Value()), int(r.scene.Height.Value())
}

func (r *Renderer) drawRect(screen *ebiten.Image, op *ebiten.DrawImageOptions, rect tabletop.Rect, c tabletop.Color, opacity, rotation float64) {
	op.GeoM.Reset()
	op.GeoM.Scale(rect.Width, rect.Height)
	op.GeoM.Rotate(rotation)
	op.GeoM.Translate(rect.X, rect.Y)
	op.ColorScale.Reset()
	a := float32(c.A * opacity)
	op.ColorScale.Scale(float32(c.R)*a, float32(c.G)*a, float32(c.B)*a, a)
	screen.DrawImage(r.white, op)
}

// refresh rebuilds the draw list if a GUI message arrived since the last
// build.
func (r *Renderer) refresh() {
	if !r.dirty {
		return
	}
	r.dirty = false
	r.items = r.items[:0]
	r.collect(r.scene.Root(), tabletop.Vec2{}, 1)
	slices.SortStableFunc(r.items, func(a, b item) int { return a.z - b.z })
}

// collect appends c and its visible descendants. origin is the screen
// position of c's anchor.
func (r *Renderer) collect(c tabletop.Component, origin tabletop.Vec2, opacity float64) {
	b := c.AsComponent()
	if !b.Visible.Value() {
		return
	}
	opacity *= b.Opacity.Value()
	if r.pointer.dragging == c {
		origin = r.pointer.dragOrigin
	}
	it := item{
		comp:    c,
		rect:    tabletop.Rect{X: origin.X, Y: origin.Y, Width: b.Width.Value(), Height: b.Height.Value()},
		bar:     -1,
		opacity: opacity,
		z:       b.ZIndex.Value(),
	}
	decorate(&it, c)
	r.items = append(r.items, it)

	p, ok := c.(tabletop.Parent)
	if !ok {
		return
	}
	for _, child := range p.Children() {
		at, ok := p.ChildPosition(child)
		if !ok {
			continue
		}
		r.collect(child, origin.Add(at), opacity)
	}
}

var buttonFill = tabletop.Color{R: 0.3, G: 0.3, B: 0.35, A: 1}
var fieldFill = tabletop.Color{R: 0.15, G: 0.15, B: 0.15, A: 1}

// decorate fills in the visual of a component by kind.
func decorate(it *item, c tabletop.Component) {
	switch v := c.(type) {
	case *tabletop.Button:
		it.fill = buttonFill
		it.text = v.Text.Value()
	case *tabletop.TextField:
		it.fill = fieldFill
		it.text = v.Text.Value()
		if it.text == "" {
			it.text = v.Prompt.Value()
		}
	case *tabletop.Label:
		it.text = v.Text.Value()
	case *tabletop.ProgressBar:
		it.fill = fieldFill
		it.bar = v.Progress.Value()
		it.barFill = v.BarColor.Value()
	case *tabletop.TokenView:
		vis := v.Visual.Value()
		it.fill, it.text = vis.Color, visualText(vis)
	case *tabletop.CardView:
		vis := v.Shown()
		it.fill, it.text = vis.Color, visualText(vis)
	case *tabletop.DiceView:
		vis := v.Shown()
		it.fill, it.text = vis.Color, visualText(vis)
	}
}

func visualText(v tabletop.Visual) string {
	if v.Text != "" {
		return v.Text
	}
	return v.Image
}

// hit returns the topmost drawn component containing (x, y) for which
// accept returns true.
func (r *Renderer) hit(x, y float64, accept func(tabletop.Component) bool) (tabletop.Component, tabletop.Rect) {
	for i := len(r.items) - 1; i >= 0; i-- {
		it := &r.items[i]
		if it.comp.AsComponent().Disabled.Value() {
			continue
		}
		if it.rect.Contains(x, y) && accept(it.comp) {
			return it.comp, it.rect
		}
	}
	return nil, tabletop.Rect{}
}

func fpsText() string {
	return fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
}
