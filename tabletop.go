package tabletop

import "image/color"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// ColorWhite is the default tint for visuals.
var ColorWhite = Color{1, 1, 1, 1}

// ColorTransparent draws nothing.
var ColorTransparent = Color{}

// RGBA converts c to a premultiplied color.RGBA for renderers.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D vector used for positions, offsets and sizes.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Kind distinguishes the component variants of the scene graph.
type Kind uint8

const (
	KindPane         Kind = iota // generic container of any component
	KindArea                     // container of game elements positioned by their own X/Y
	KindCardStack                // pile of elements sharing one anchor
	KindLinearLayout             // row or column of elements
	KindGrid                     // fixed columns x rows of cells
	KindLabel                    // static text
	KindButton                   // clickable text
	KindTextField                // editable text
	KindProgressBar              // bar filled to a fraction
	KindToken                    // single-visual game element
	KindCard                     // two-sided game element
	KindDice                     // game element showing one of several faces
)

var kindNames = [...]string{
	KindPane:         "pane",
	KindArea:         "area",
	KindCardStack:    "cardStack",
	KindLinearLayout: "linearLayout",
	KindGrid:         "grid",
	KindLabel:        "label",
	KindButton:       "button",
	KindTextField:    "textField",
	KindProgressBar:  "progressBar",
	KindToken:        "token",
	KindCard:         "card",
	KindDice:         "dice",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Alignment controls horizontal text alignment within a text component.
type Alignment uint8

const (
	AlignLeft   Alignment = iota // align text to the left edge (default)
	AlignCenter                  // center text horizontally
	AlignRight                   // align text to the right edge
)

// Orientation selects the axis of a LinearLayout.
type Orientation uint8

const (
	Horizontal Orientation = iota
	Vertical
)

// CardSide is the side of a CardView facing the player.
type CardSide uint8

const (
	CardBack CardSide = iota
	CardFront
)

// Visual describes what a game element looks like. Renderers resolve Image
// names on their own; an empty Image draws a solid Color with Text on top.
type Visual struct {
	Color Color  `json:"color"`
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

// ColorVisual returns a solid-color Visual.
func ColorVisual(c Color) Visual {
	return Visual{Color: c}
}
