package ecs

import (
	"github.com/phanxgames/tabletop"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// Ref links a Donburi entity to the scene component it mirrors.
type Ref struct {
	ID   tabletop.ComponentID
	Kind tabletop.Kind
}

// RefComponent is attached to every entity the store creates.
var RefComponent = donburi.NewComponentType[Ref]()

// ChangeEvent is a scene change addressed to the entity mirroring the
// changed component.
type ChangeEvent struct {
	tabletop.ChangeEvent
	Entity donburi.Entity
}

// ChangeEventType is the Donburi event type for tabletop property and
// child-list changes. Subscribe to this in your ECS systems.
var ChangeEventType = events.NewEventType[ChangeEvent]()

// Store is an EntityStore backed by a Donburi world.
type Store struct {
	world    donburi.World
	entities map[tabletop.ComponentID]donburi.Entity
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Each component gets an entity carrying RefComponent the first time it
// changes. Events are published to ChangeEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) *Store {
	return &Store{world: world, entities: map[tabletop.ComponentID]donburi.Entity{}}
}

// EmitEvent publishes event to the world. A DetachedProperty event removes
// the component's entity; the published event still names it, though it is
// no longer valid by the time subscribers run.
func (s *Store) EmitEvent(event tabletop.ChangeEvent) {
	if event.Property == tabletop.DetachedProperty {
		e, _ := s.Entity(event.Component)
		s.release(event.Component)
		ChangeEventType.Publish(s.world, ChangeEvent{ChangeEvent: event, Entity: e})
		return
	}
	ChangeEventType.Publish(s.world, ChangeEvent{
		ChangeEvent: event,
		Entity:      s.entity(event.Component, event.Kind),
	})
}

// Len returns the number of components currently mirrored.
func (s *Store) Len() int {
	return len(s.entities)
}

func (s *Store) release(id tabletop.ComponentID) {
	e, ok := s.entities[id]
	if !ok {
		return
	}
	delete(s.entities, id)
	if s.world.Valid(e) {
		s.world.Remove(e)
	}
}

// Entity returns the entity mirroring the component with the given ID.
func (s *Store) Entity(id tabletop.ComponentID) (donburi.Entity, bool) {
	e, ok := s.entities[id]
	if !ok || !s.world.Valid(e) {
		return 0, false
	}
	return e, true
}

func (s *Store) entity(id tabletop.ComponentID, kind tabletop.Kind) donburi.Entity {
	if e, ok := s.Entity(id); ok {
		return e
	}
	e := s.world.Create(RefComponent)
	RefComponent.SetValue(s.world.Entry(e), Ref{ID: id, Kind: kind})
	s.entities[id] = e
	return e
}
