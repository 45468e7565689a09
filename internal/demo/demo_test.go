package demo

import (
	"testing"

	"github.com/phanxgames/tabletop"
)

func newBoard(t *testing.T) *Board {
	t.Helper()
	b, err := New(tabletop.NewEnv(), 960, 640, 7)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestNewDealsShuffledPile(t *testing.T) {
	b := newBoard(t)

	if b.Pile.Len() != 12 {
		t.Fatalf("pile = %d cards, want 12", b.Pile.Len())
	}
	if !b.Hand.IsEmpty() {
		t.Errorf("hand starts with %d cards", b.Hand.Len())
	}
	for _, c := range b.Pile.Elements() {
		if c.IsFaceUp() {
			t.Errorf("%s is face up in the pile", c.Name())
		}
	}
	if b.Scene.Find(b.Pawn.ID()) == nil {
		t.Error("pawn not in the scene")
	}

	// The same seed deals the same order.
	again := newBoard(t)
	for i, c := range b.Pile.Elements() {
		if again.Pile.At(i).Name() != c.Name() {
			t.Fatalf("seeded shuffle differs at %d", i)
		}
	}
}

func TestDrawButtonMovesCardToHand(t *testing.T) {
	b := newBoard(t)
	top, _ := b.Pile.Peek()

	b.Draw.Click()

	if b.Hand.Len() != 1 || b.Pile.Len() != 11 {
		t.Fatalf("hand = %d pile = %d", b.Hand.Len(), b.Pile.Len())
	}
	card := b.Hand.At(0)
	if card != top || !card.IsFaceUp() {
		t.Errorf("drew %s face up = %v, want the top card face up", card.Name(), card.IsFaceUp())
	}
	if card.Opacity.Value() != 0 || b.Scene.NumAnimations() != 1 {
		t.Fatalf("fade-in not started: opacity = %v animations = %d", card.Opacity.Value(), b.Scene.NumAnimations())
	}
	for range 30 {
		b.Scene.Update(1.0 / 60)
	}
	if card.Opacity.Value() != 1 || b.Scene.NumAnimations() != 0 {
		t.Errorf("after fade: opacity = %v animations = %d", card.Opacity.Value(), b.Scene.NumAnimations())
	}
}

func TestDrawDisabledWhenPileEmpty(t *testing.T) {
	b := newBoard(t)
	for range 12 {
		if !b.DrawCard() {
			t.Fatal("DrawCard failed before the pile ran out")
		}
	}
	if !b.Draw.Disabled.Value() {
		t.Error("draw button still enabled with an empty pile")
	}
	if b.DrawCard() {
		t.Error("DrawCard succeeded on an empty pile")
	}
	b.Draw.Click()
	if b.Draw.Clicks.Value() != 0 {
		t.Errorf("disabled button counted %d clicks", b.Draw.Clicks.Value())
	}
}

func TestStatusFollowsGame(t *testing.T) {
	b := newBoard(t)
	want := "hand: 0  pile: 12  dice: 1"
	if got := b.Status.Text.Value(); got != want {
		t.Errorf("status = %q, want %q", got, want)
	}

	b.DrawCard()
	want = "hand: 1  pile: 11  dice: 1"
	if got := b.Status.Text.Value(); got != want {
		t.Errorf("status = %q, want %q", got, want)
	}

	_ = b.Dice.Side.Set(4)
	want = "hand: 1  pile: 11  dice: 5"
	if got := b.Status.Text.Value(); got != want {
		t.Errorf("status = %q, want %q", got, want)
	}
}

func TestRollButton(t *testing.T) {
	b := newBoard(t)
	for range 20 {
		b.Roll.Click()
		side := b.Dice.Side.Value()
		if side < 0 || side >= b.Dice.NumFaces() {
			t.Fatalf("side %d out of range", side)
		}
	}
	if b.Roll.Clicks.Value() != 20 {
		t.Errorf("Clicks = %d", b.Roll.Clicks.Value())
	}
}
