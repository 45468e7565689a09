package tabletop

import (
	"math"
	"slices"
	"sync"
)

// SceneKind distinguishes menu scenes from board scenes.
type SceneKind uint8

const (
	SceneMenu SceneKind = iota
	SceneBoard
)

func (k SceneKind) String() string {
	if k == SceneBoard {
		return "board"
	}
	return "menu"
}

// EntityStore is the interface for optional ECS integration.
// When set on a Scene, property and child-list changes anywhere in the tree
// are forwarded to the store.
type EntityStore interface {
	EmitEvent(event ChangeEvent)
}

// ChildrenProperty is the Property name of a ChangeEvent reporting a
// child-list change. New holds the child IDs in order; Old is nil.
const ChildrenProperty = "children"

// DetachedProperty is the Property name of a ChangeEvent reporting that a
// component left the scene. It is emitted once for every component of a
// removed subtree, before the parent's ChildrenProperty event. Old and New
// are nil.
const DetachedProperty = "detached"

// ChangeEvent carries one observed change for the ECS bridge.
type ChangeEvent struct {
	Component ComponentID
	Kind      Kind
	Property  string
	Old, New  any
}

// Scene is the top-level object that owns the component tree, its size and
// background, a command queue and the running animations.
//
// A scene is owned by one goroutine, the one calling Update. Other
// goroutines hand work to it through Enqueue.
type Scene struct {
	env  *Env
	kind SceneKind
	root *Pane

	Width      *LimitedDoubleProperty
	Height     *LimitedDoubleProperty
	Background *Property[Color]

	mu    sync.Mutex
	queue []func()

	animations []Animation

	store   EntityStore
	watches map[ComponentID]watched
}

// NewBoardScene creates a board scene of the given size. Panics if width or
// height is negative.
func NewBoardScene(env *Env, width, height float64) *Scene {
	return newScene(env, SceneBoard, width, height)
}

// NewMenuScene creates a menu scene of the given size. Panics if width or
// height is negative.
func NewMenuScene(env *Env, width, height float64) *Scene {
	return newScene(env, SceneMenu, width, height)
}

func newScene(env *Env, kind SceneKind, width, height float64) *Scene {
	s := &Scene{
		env:        env,
		kind:       kind,
		root:       NewPane(env, "root"),
		Width:      mustLimited(0, math.Inf(1), width),
		Height:     mustLimited(0, math.Inf(1), height),
		Background: NewProperty(Color{0, 0, 0, 1}),
	}
	_ = s.root.SetSize(width, height)
	return s
}

// Root returns the scene's root pane.
func (s *Scene) Root() *Pane { return s.root }

// Env returns the Env the scene was created with.
func (s *Scene) Env() *Env { return s.env }

// Kind returns whether this is a menu or a board scene.
func (s *Scene) Kind() SceneKind { return s.kind }

// Properties lists the scene-level properties.
func (s *Scene) Properties() []NamedProperty {
	return []NamedProperty{
		{"width", s.Width},
		{"height", s.Height},
		{"background", s.Background},
	}
}

// Find returns the component with the given ID, or nil.
func (s *Scene) Find(id ComponentID) Component {
	return FindByID(s.root, id)
}

// Walk visits the tree in depth-first pre-order. See Walk.
func (s *Scene) Walk(fn func(c Component) bool) {
	Walk(s.root, fn)
}

// Enqueue schedules fn to run on the owner goroutine during the next Update.
// Safe for concurrent use.
func (s *Scene) Enqueue(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
}

// Update runs queued commands in the order they were enqueued, then advances
// the running animations by dt seconds and drops the finished ones. Commands
// enqueued while draining run on the next Update.
func (s *Scene) Update(dt float32) {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, fn := range queue {
		fn()
	}

	running := s.animations
	s.animations = nil
	live := running[:0]
	for _, a := range running {
		a.Update(dt)
		if !a.Finished() {
			live = append(live, a)
		}
	}
	clear(running[len(live):])
	// Animations started by listeners during this frame run next frame.
	s.animations = append(live, s.animations...)
}

// PlayAnimation starts a on the next Update. Must be called on the owner
// goroutine.
func (s *Scene) PlayAnimation(a Animation) {
	s.animations = append(s.animations, a)
}

// NumAnimations returns the number of running animations.
func (s *Scene) NumAnimations() int {
	return len(s.animations)
}

// SetEntityStore sets the optional ECS bridge. Passing nil detaches the
// current store and removes every watcher it installed.
func (s *Scene) SetEntityStore(store EntityStore) {
	for _, w := range s.watches {
		w.remove()
	}
	s.watches = nil
	s.store = store
	if store != nil {
		s.watches = make(map[ComponentID]watched)
		s.syncWatches()
	}
}

// watched is a component observed on behalf of the entity store.
type watched struct {
	kind    Kind
	handles []ListenerHandle
}

func (w watched) remove() {
	for _, h := range w.handles {
		h.Remove()
	}
}

// syncWatches installs watchers on components that joined the tree and
// removes them from components that left it.
func (s *Scene) syncWatches() {
	seen := make(map[ComponentID]bool, len(s.watches))
	Walk(s.root, func(c Component) bool {
		id := c.AsComponent().ID()
		seen[id] = true
		if _, ok := s.watches[id]; !ok {
			s.watches[id] = watched{kind: c.AsComponent().Kind(), handles: s.watch(c)}
		}
		return true
	})
	var gone []ComponentID
	for id, w := range s.watches {
		if seen[id] {
			continue
		}
		w.remove()
		gone = append(gone, id)
	}
	slices.Sort(gone)
	for _, id := range gone {
		kind := s.watches[id].kind
		delete(s.watches, id)
		s.store.EmitEvent(ChangeEvent{Component: id, Kind: kind, Property: DetachedProperty})
	}
}

func (s *Scene) watch(c Component) []ListenerHandle {
	b := c.AsComponent()
	var hs []ListenerHandle
	for _, np := range c.Properties() {
		name := np.Name
		hs = append(hs, np.Prop.Watch(func(oldValue, newValue any) {
			if s.store != nil {
				s.store.EmitEvent(ChangeEvent{
					Component: b.ID(), Kind: b.Kind(),
					Property: name, Old: oldValue, New: newValue,
				})
			}
		}))
	}
	if p, ok := c.(Parent); ok {
		hs = append(hs, p.WatchChildren(func() {
			if s.store == nil {
				return
			}
			s.syncWatches()
			children := p.Children()
			ids := make([]ComponentID, len(children))
			for i, child := range children {
				ids[i] = child.AsComponent().ID()
			}
			s.store.EmitEvent(ChangeEvent{
				Component: b.ID(), Kind: b.Kind(),
				Property: ChildrenProperty, New: ids,
			})
		}))
	}
	return hs
}
