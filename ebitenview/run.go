package ebitenview

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/tabletop"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool

	// OnDrop and OnTextInput are copied to the Renderer.
	OnDrop      func(c tabletop.Component, x, y float64)
	OnTextInput func(f *tabletop.TextField, text string)
}

// Run opens a window showing scene and blocks until it is closed. Width and
// Height default to the scene size.
func Run(scene *tabletop.Scene, cfg RunConfig) error {
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = int(scene.Width.Value())
	}
	if h <= 0 {
		h = int(scene.Height.Value())
	}
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(cfg.Title)

	r := New(scene)
	defer r.Close()
	r.ShowFPS = cfg.ShowFPS
	r.OnDrop = cfg.OnDrop
	r.OnTextInput = cfg.OnTextInput
	return ebiten.RunGame(r)
}
