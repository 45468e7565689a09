package tabletop

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Animation is advanced by Scene.Update until it reports Finished.
type Animation interface {
	Update(dt float32)
	Finished() bool
}

// Tween animates up to 4 float64 channels simultaneously and writes them to
// properties through Set, so every frame reaches all listener channels.
// Create one via the convenience constructors (TweenPosition, TweenSize,
// TweenOpacity, TweenRotation, TweenColor, TweenDouble) and either call
// Update(dt) each frame or hand it to Scene.PlayAnimation.
//
// Bounded properties are clamped to their range. If a write is still
// rejected the tween stops and Err reports why.
type Tween struct {
	tweens [4]*gween.Tween
	count  int
	apply  func(vals [4]float64) error
	done   bool
	err    error
}

func newTween(from, to []float64, duration float32, fn ease.TweenFunc, apply func([4]float64) error) *Tween {
	t := &Tween{count: len(from), apply: apply}
	for i := range from {
		t.tweens[i] = gween.New(float32(from[i]), float32(to[i]), duration, fn)
	}
	return t
}

// Update advances all channels by dt seconds and writes the values.
func (t *Tween) Update(dt float32) {
	if t.done {
		return
	}
	var vals [4]float64
	allDone := true
	for i := 0; i < t.count; i++ {
		val, finished := t.tweens[i].Update(dt)
		vals[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	if err := t.apply(vals); err != nil {
		t.err = err
		t.done = true
		return
	}
	t.done = allDone
}

// Finished reports whether the tween has completed, failed or was stopped.
func (t *Tween) Finished() bool { return t.done }

// Stop ends the tween where it is.
func (t *Tween) Stop() { t.done = true }

// Err returns the error that stopped the tween, if any.
func (t *Tween) Err() error { return t.err }

func clampSet(p *LimitedDoubleProperty, v float64) error {
	return p.Set(p.Clamp(v))
}

// TweenPosition animates c's X and Y to (toX, toY).
func TweenPosition(c Component, toX, toY float64, duration float32, fn ease.TweenFunc) *Tween {
	b := c.AsComponent()
	return newTween(
		[]float64{b.X.Value(), b.Y.Value()}, []float64{toX, toY}, duration, fn,
		func(v [4]float64) error {
			if err := b.X.Set(v[0]); err != nil {
				return err
			}
			return b.Y.Set(v[1])
		})
}

// TweenSize animates c's Width and Height to (toW, toH).
func TweenSize(c Component, toW, toH float64, duration float32, fn ease.TweenFunc) *Tween {
	b := c.AsComponent()
	return newTween(
		[]float64{b.Width.Value(), b.Height.Value()}, []float64{toW, toH}, duration, fn,
		func(v [4]float64) error {
			if err := clampSet(b.Width, v[0]); err != nil {
				return err
			}
			return clampSet(b.Height, v[1])
		})
}

// TweenOpacity animates c's Opacity to to.
func TweenOpacity(c Component, to float64, duration float32, fn ease.TweenFunc) *Tween {
	return TweenLimited(c.AsComponent().Opacity, to, duration, fn)
}

// TweenRotation animates c's Rotation to to, in radians.
func TweenRotation(c Component, to float64, duration float32, fn ease.TweenFunc) *Tween {
	return TweenDouble(c.AsComponent().Rotation, to, duration, fn)
}

// TweenDouble animates any DoubleProperty.
func TweenDouble(p *DoubleProperty, to float64, duration float32, fn ease.TweenFunc) *Tween {
	return newTween([]float64{p.Value()}, []float64{to}, duration, fn,
		func(v [4]float64) error { return p.Set(v[0]) })
}

// TweenLimited animates any LimitedDoubleProperty, clamping every frame.
func TweenLimited(p *LimitedDoubleProperty, to float64, duration float32, fn ease.TweenFunc) *Tween {
	return newTween([]float64{p.Value()}, []float64{to}, duration, fn,
		func(v [4]float64) error { return clampSet(p, v[0]) })
}

// TweenColor animates all four components of a color property. The property
// is written once per frame.
func TweenColor(p *Property[Color], to Color, duration float32, fn ease.TweenFunc) *Tween {
	from := p.Value()
	return newTween(
		[]float64{from.R, from.G, from.B, from.A}, []float64{to.R, to.G, to.B, to.A}, duration, fn,
		func(v [4]float64) error {
			return p.Set(Color{v[0], v[1], v[2], v[3]})
		})
}
