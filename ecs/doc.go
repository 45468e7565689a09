// Package ecs provides ECS adapters for tabletop's change propagation.
//
// The primary adapter is [NewDonburiStore], which bridges property and
// child-list changes from a scene into a [Donburi] world as typed events.
// Every scene component that changes is mirrored by an entity carrying
// [RefComponent]. Subscribe to [ChangeEventType] in your ECS systems to
// receive the changes.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
