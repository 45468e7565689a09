package ecs

import (
	"testing"

	"github.com/phanxgames/tabletop"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiStore(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)
	if store == nil {
		t.Fatal("NewDonburiStore returned nil")
	}
}

func TestDonburiStore_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var received []ChangeEvent
	ChangeEventType.Subscribe(world, func(w donburi.World, e ChangeEvent) {
		received = append(received, e)
	})

	store.EmitEvent(tabletop.ChangeEvent{
		Component: 42,
		Kind:      tabletop.KindToken,
		Property:  "x",
		Old:       1.0,
		New:       2.0,
	})
	store.EmitEvent(tabletop.ChangeEvent{
		Component: 42,
		Kind:      tabletop.KindToken,
		Property:  "y",
		Old:       0.0,
		New:       5.0,
	})

	// Events are queued; process them.
	ChangeEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}

	e0 := received[0]
	if e0.Component != 42 || e0.Property != "x" {
		t.Errorf("event 0: %+v", e0)
	}
	if e0.Old != 1.0 || e0.New != 2.0 {
		t.Errorf("event 0 values: (%v,%v)", e0.Old, e0.New)
	}
	if received[1].Entity != e0.Entity {
		t.Errorf("same component mapped to entities %v and %v", e0.Entity, received[1].Entity)
	}

	ref := RefComponent.Get(world.Entry(e0.Entity))
	if ref.ID != 42 || ref.Kind != tabletop.KindToken {
		t.Errorf("ref = %+v, want ID 42 kind token", *ref)
	}
}

func TestDonburiStore_ImplementsEntityStore(t *testing.T) {
	world := donburi.NewWorld()
	var store tabletop.EntityStore = NewDonburiStore(world)
	_ = store // compile-time interface check
}

func TestDonburiStore_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var count1, count2 int
	ChangeEventType.Subscribe(world, func(w donburi.World, e ChangeEvent) {
		count1++
	})
	ChangeEventType.Subscribe(world, func(w donburi.World, e ChangeEvent) {
		count2++
	})

	store.EmitEvent(tabletop.ChangeEvent{Component: 1, Property: "visible"})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}

func TestDonburiStore_SceneChanges(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	env := tabletop.NewEnv()
	scene := tabletop.NewBoardScene(env, 800, 600)
	token := tabletop.NewTokenView(env, "pawn", tabletop.ColorVisual(tabletop.ColorWhite))
	if err := scene.Root().Add(token); err != nil {
		t.Fatal(err)
	}
	scene.SetEntityStore(store)

	var received []ChangeEvent
	ChangeEventType.Subscribe(world, func(w donburi.World, e ChangeEvent) {
		received = append(received, e)
	})

	_ = token.X.Set(30)
	_ = token.Y.SetSilent(40) // silent writes stay out of game logic
	ChangeEventType.ProcessEvents(world)

	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(received))
	}
	if received[0].Component != token.ID() || received[0].Property != "x" || received[0].New != 30.0 {
		t.Errorf("event = %+v", received[0])
	}
	if e, ok := store.Entity(token.ID()); !ok || e != received[0].Entity {
		t.Errorf("Entity(%d) = %v, %v", token.ID(), e, ok)
	}
}

func TestDonburiStore_ReleasesDetachedComponents(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	env := tabletop.NewEnv()
	scene := tabletop.NewBoardScene(env, 800, 600)
	hand := tabletop.NewArea[*tabletop.CardView](env, "hand")
	card := tabletop.NewCardView(env, "card", tabletop.Visual{Text: "A"}, tabletop.Visual{})
	_ = hand.Add(card)
	if err := scene.Root().Add(hand); err != nil {
		t.Fatal(err)
	}
	scene.SetEntityStore(store)

	var received []ChangeEvent
	ChangeEventType.Subscribe(world, func(w donburi.World, e ChangeEvent) {
		received = append(received, e)
	})

	card.Flip()
	_ = hand.X.Set(10)
	cardEntity, ok := store.Entity(card.ID())
	if !ok {
		t.Fatal("no entity for the flipped card")
	}
	if store.Len() != 2 {
		t.Fatalf("Len = %d, want 2", store.Len())
	}

	// Removing the hand takes the card with it.
	scene.Root().Remove(hand)
	ChangeEventType.ProcessEvents(world)

	if store.Len() != 0 {
		t.Errorf("Len = %d after removal, want 0", store.Len())
	}
	if _, ok := store.Entity(card.ID()); ok {
		t.Error("card entity still mapped")
	}
	if world.Valid(cardEntity) {
		t.Error("card entity still valid in the world")
	}

	var detached []tabletop.ComponentID
	for _, e := range received {
		if e.Property == tabletop.DetachedProperty {
			detached = append(detached, e.Component)
			if e.Component == card.ID() && e.Entity != cardEntity {
				t.Errorf("detached event names entity %v, want %v", e.Entity, cardEntity)
			}
		}
	}
	if len(detached) != 2 || detached[0] != hand.ID() || detached[1] != card.ID() {
		t.Errorf("detached = %v, want [%d %d]", detached, hand.ID(), card.ID())
	}
	last := received[len(received)-1]
	if last.Property != tabletop.ChildrenProperty || last.Component != scene.Root().ID() {
		t.Errorf("last event = %+v, want the root's children change", last)
	}
}
