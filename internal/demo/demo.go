// Package demo builds the small card-and-dice board used by the server and
// the local example. Game logic reacts through internal listeners only, so
// the same rules run whichever renderer is attached.
package demo

import (
	"fmt"
	"math/rand/v2"

	"github.com/tanema/gween/ease"

	"github.com/phanxgames/tabletop"
)

const (
	cardW = 60
	cardH = 90
)

var (
	rose  = tabletop.Color{R: 0.95, G: 0.75, B: 0.75, A: 1}
	green = tabletop.Color{R: 0.1, G: 0.35, B: 0.15, A: 1}
	blue  = tabletop.Color{R: 0.2, G: 0.3, B: 0.7, A: 1}
	ivory = tabletop.Color{R: 0.95, G: 0.93, B: 0.85, A: 1}
)

// Board is the demo game.
type Board struct {
	Scene *tabletop.Scene

	Table  *tabletop.Area[tabletop.Component]
	Pile   *tabletop.CardStack[*tabletop.CardView]
	Hand   *tabletop.LinearLayout[*tabletop.CardView]
	Dice   *tabletop.DiceView
	Pawn   *tabletop.TokenView
	Draw   *tabletop.Button
	Roll   *tabletop.Button
	Status *tabletop.Label

	rng *rand.Rand
}

// New builds the board on a fresh scene of the given size. seed makes
// shuffles and rolls repeatable.
func New(env *tabletop.Env, width, height float64, seed uint64) (*Board, error) {
	b := &Board{
		Scene: tabletop.NewBoardScene(env, width, height),
		Table: tabletop.NewArea[tabletop.Component](env, "table"),
		Pile:  tabletop.NewCardStack[*tabletop.CardView](env, "pile"),
		Hand:  tabletop.NewLinearLayout[*tabletop.CardView](env, "hand", tabletop.Horizontal, -20),
		Draw:  tabletop.NewButton(env, "draw", "Draw"),
		Roll:  tabletop.NewButton(env, "roll", "Roll"),
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	_ = b.Scene.Background.Set(green)

	var faces []tabletop.Visual
	for i := 1; i <= 6; i++ {
		faces = append(faces, tabletop.Visual{Color: ivory, Text: fmt.Sprint(i)})
	}
	b.Dice = tabletop.NewDiceView(env, "dice", faces...)
	b.Pawn = tabletop.NewTokenView(env, "pawn", tabletop.ColorVisual(blue))
	_ = b.Pawn.Draggable.Set(true)
	b.Status = tabletop.NewLabel(env, "status", "")

	if err := b.layout(width, height); err != nil {
		return nil, err
	}
	if err := b.deal(); err != nil {
		return nil, err
	}
	b.wire()
	return b, nil
}

func (b *Board) layout(width, height float64) error {
	if err := b.Table.SetBounds(tabletop.Rect{Width: width, Height: height}); err != nil {
		return err
	}
	if err := b.Pile.SetBounds(tabletop.Rect{X: 40, Y: 40, Width: cardW, Height: cardH}); err != nil {
		return err
	}
	if err := b.Hand.SetBounds(tabletop.Rect{X: 160, Y: height - cardH - 40, Width: width - 200, Height: cardH}); err != nil {
		return err
	}
	if err := b.Dice.SetBounds(tabletop.Rect{X: width - 100, Y: 40, Width: 50, Height: 50}); err != nil {
		return err
	}
	if err := b.Pawn.SetBounds(tabletop.Rect{X: width / 2, Y: height / 2, Width: 30, Height: 30}); err != nil {
		return err
	}
	if err := b.Draw.SetBounds(tabletop.Rect{X: 40, Y: 150, Width: 80, Height: 28}); err != nil {
		return err
	}
	if err := b.Roll.SetBounds(tabletop.Rect{X: width - 110, Y: 100, Width: 70, Height: 28}); err != nil {
		return err
	}
	if err := b.Status.SetBounds(tabletop.Rect{X: 160, Y: 40, Width: 300, Height: 20}); err != nil {
		return err
	}
	if err := b.Table.AddAll(b.Pile, b.Hand, b.Dice, b.Pawn, b.Draw, b.Roll, b.Status); err != nil {
		return err
	}
	return b.Scene.Root().Add(b.Table)
}

// deal fills the draw pile with a shuffled deck.
func (b *Board) deal() error {
	back := tabletop.ColorVisual(blue)
	var cards []*tabletop.CardView
	for _, suit := range []string{"S", "H"} {
		face := ivory
		if suit == "H" {
			face = rose
		}
		for rank := 1; rank <= 6; rank++ {
			name := fmt.Sprintf("%d%s", rank, suit)
			c := tabletop.NewCardView(b.Scene.Env(), name, tabletop.Visual{Color: face, Text: name}, back)
			_ = c.SetSize(cardW, cardH)
			cards = append(cards, c)
		}
	}
	if err := b.Pile.AddAll(cards...); err != nil {
		return err
	}
	b.Pile.Shuffle(b.rng)
	return nil
}

func (b *Board) wire() {
	b.Draw.Clicks.SetInternalListener(func(_, _ int) { b.DrawCard() })
	b.Roll.Clicks.SetInternalListener(func(_, _ int) { b.Dice.Roll(b.rng) })
	b.Dice.Side.SetInternalListenerAndInvoke(b.Dice.Side.Value(), func(_, _ int) { b.updateStatus() })
	b.Hand.WatchChildren(b.updateStatus)
	b.Pile.WatchChildren(func() { _ = b.Draw.Disabled.Set(b.Pile.IsEmpty()) })
}

// DrawCard moves the top card of the pile into the hand face up and fades
// it in. It reports false when the pile is empty.
func (b *Board) DrawCard() bool {
	card, ok := b.Pile.Pop()
	if !ok {
		return false
	}
	card.ShowFront()
	_ = card.Opacity.Set(0)
	if err := b.Hand.Add(card); err != nil {
		return false
	}
	b.Scene.PlayAnimation(tabletop.TweenOpacity(card, 1, 0.3, ease.OutQuad))
	return true
}

func (b *Board) updateStatus() {
	_ = b.Status.Text.Set(fmt.Sprintf("hand: %d  pile: %d  dice: %s",
		b.Hand.Len(), b.Pile.Len(), b.Dice.Shown().Text))
}
