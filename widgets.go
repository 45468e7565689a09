package tabletop

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// --- Text widgets ---

// Label displays a line of text.
type Label struct {
	ComponentBase

	Text      *StringProperty
	Align     *Property[Alignment]
	FontSize  *LimitedDoubleProperty
	TextColor *Property[Color]
}

// DefaultFontSize is the font size of new text widgets.
const DefaultFontSize = 14

// NewLabel creates a Label showing text.
func NewLabel(env *Env, name, text string) *Label {
	l := &Label{}
	l.initText(text)
	l.init(env, l, KindLabel, name)
	return l
}

func (l *Label) initText(text string) {
	l.Text = NewStringProperty(text)
	l.Align = NewProperty(AlignLeft)
	l.FontSize = mustLimited(0, math.Inf(1), DefaultFontSize)
	l.TextColor = NewProperty(ColorWhite)
}

// Properties adds the text properties to the common ones.
func (l *Label) Properties() []NamedProperty {
	return append(l.ComponentBase.Properties(), l.textProperties()...)
}

func (l *Label) textProperties() []NamedProperty {
	return []NamedProperty{
		{"text", l.Text},
		{"align", l.Align},
		{"fontSize", l.FontSize},
		{"textColor", l.TextColor},
	}
}

// Button is a Label that reacts to clicks. Clicks are reported by the GUI
// through Click; game logic observes Clicks.
type Button struct {
	Label

	// Clicks counts clicks; every click notifies even if the GUI reports
	// several within one frame.
	Clicks *IntegerProperty
}

// NewButton creates a Button labelled text.
func NewButton(env *Env, name, text string) *Button {
	b := &Button{Clicks: NewIntegerProperty(0)}
	b.initText(text)
	b.Align = NewProperty(AlignCenter)
	b.init(env, b, KindButton, name)
	return b
}

// Click records a click. Disabled buttons ignore it.
func (b *Button) Click() {
	if b.Disabled.Value() {
		return
	}
	_ = b.Clicks.Set(b.Clicks.Value() + 1)
}

// OnClick registers fn as an external listener on Clicks.
func (b *Button) OnClick(fn func()) ListenerHandle {
	return b.Clicks.AddListener(func(int, int) { fn() })
}

// Properties adds the click counter to the text properties.
func (b *Button) Properties() []NamedProperty {
	return append(b.Label.Properties(), NamedProperty{"clicks", b.Clicks})
}

// TextField is an editable line of text. Edits made by the player arrive
// through SetSilent from the GUI.
type TextField struct {
	Label

	Prompt *StringProperty
}

// NewTextField creates an empty TextField showing prompt.
func NewTextField(env *Env, name, prompt string) *TextField {
	f := &TextField{Prompt: NewStringProperty(prompt)}
	f.initText("")
	f.init(env, f, KindTextField, name)
	return f
}

// Properties adds the prompt to the text properties.
func (f *TextField) Properties() []NamedProperty {
	return append(f.Label.Properties(), NamedProperty{"prompt", f.Prompt})
}

// ProgressBar shows a fraction in [0, 1].
type ProgressBar struct {
	ComponentBase

	Progress *LimitedDoubleProperty
	BarColor *Property[Color]
}

// NewProgressBar creates a ProgressBar at progress.
func NewProgressBar(env *Env, name string, progress float64) (*ProgressBar, error) {
	p, err := NewLimitedDoubleProperty(0, 1, progress)
	if err != nil {
		return nil, err
	}
	b := &ProgressBar{Progress: p, BarColor: NewProperty(ColorWhite)}
	b.init(env, b, KindProgressBar, name)
	return b, nil
}

// Properties adds progress and bar color to the common properties.
func (b *ProgressBar) Properties() []NamedProperty {
	return append(b.ComponentBase.Properties(),
		NamedProperty{"progress", b.Progress},
		NamedProperty{"barColor", b.BarColor},
	)
}

// --- Game elements ---

// TokenView is a game piece with a single visual.
type TokenView struct {
	ComponentBase

	Visual *Property[Visual]
}

// NewTokenView creates a TokenView showing v.
func NewTokenView(env *Env, name string, v Visual) *TokenView {
	t := &TokenView{Visual: NewProperty(v)}
	t.init(env, t, KindToken, name)
	return t
}

// Properties adds the visual to the common properties.
func (t *TokenView) Properties() []NamedProperty {
	return append(t.ComponentBase.Properties(), NamedProperty{"visual", t.Visual})
}

// CardView is a two-sided game element. Side selects the face shown.
type CardView struct {
	ComponentBase

	Front *Property[Visual]
	Back  *Property[Visual]
	Side  *Property[CardSide]
}

// NewCardView creates a face-down CardView.
func NewCardView(env *Env, name string, front, back Visual) *CardView {
	c := &CardView{
		Front: NewProperty(front),
		Back:  NewProperty(back),
		Side:  NewProperty(CardBack),
	}
	c.init(env, c, KindCard, name)
	return c
}

// Flip turns the card over.
func (c *CardView) Flip() {
	if c.Side.Value() == CardFront {
		_ = c.Side.Set(CardBack)
	} else {
		_ = c.Side.Set(CardFront)
	}
}

// ShowFront turns the card face up.
func (c *CardView) ShowFront() { _ = c.Side.Set(CardFront) }

// ShowBack turns the card face down.
func (c *CardView) ShowBack() { _ = c.Side.Set(CardBack) }

// IsFaceUp reports whether the front is shown.
func (c *CardView) IsFaceUp() bool { return c.Side.Value() == CardFront }

// Shown returns the visual of the side facing up.
func (c *CardView) Shown() Visual {
	if c.IsFaceUp() {
		return c.Front.Value()
	}
	return c.Back.Value()
}

// Properties adds both faces and the side to the common properties.
func (c *CardView) Properties() []NamedProperty {
	return append(c.ComponentBase.Properties(),
		NamedProperty{"front", c.Front},
		NamedProperty{"back", c.Back},
		NamedProperty{"side", c.Side},
	)
}

// DiceView shows one of a fixed set of faces. Side is the index of the face
// shown and is limited to the valid face indices.
type DiceView struct {
	ComponentBase

	Side *LimitedProperty[int]

	faces []Visual
}

// NewDiceView creates a DiceView showing the first face. Panics if faces is
// empty.
func NewDiceView(env *Env, name string, faces ...Visual) *DiceView {
	if len(faces) == 0 {
		panic(fmt.Sprintf("tabletop: dice %q has no faces", name))
	}
	d := &DiceView{
		Side:  mustLimited(0, len(faces)-1, 0),
		faces: append([]Visual(nil), faces...),
	}
	d.init(env, d, KindDice, name)
	return d
}

// NumFaces returns the number of faces.
func (d *DiceView) NumFaces() int { return len(d.faces) }

// Face returns face i. Panics if i is out of range.
func (d *DiceView) Face(i int) Visual { return d.faces[i] }

// Faces returns a copy of all faces.
func (d *DiceView) Faces() []Visual { return append([]Visual(nil), d.faces...) }

// Shown returns the visual of the current side.
func (d *DiceView) Shown() Visual { return d.faces[d.Side.Value()] }

// Roll picks a uniformly random side using r, or the global source when r is
// nil, and returns it. Rolling the side already shown notifies nobody.
func (d *DiceView) Roll(r *rand.Rand) int {
	var side int
	if r == nil {
		side = rand.IntN(len(d.faces))
	} else {
		side = r.IntN(len(d.faces))
	}
	_ = d.Side.Set(side)
	return side
}

// Properties adds the side to the common properties. Faces are fixed at
// construction and published through the snapshot.
func (d *DiceView) Properties() []NamedProperty {
	return append(d.ComponentBase.Properties(), NamedProperty{"side", d.Side})
}
