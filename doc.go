// Package tabletop is the observable model layer of a board-game GUI.
//
// Game state lives in typed, observable properties. Components group those
// properties into a scene graph of containers and widgets. A renderer (the
// [Ebitengine] window in tabletop/ebitenview, or a browser attached through
// tabletop/bridge) observes the graph and redraws what changed, while game
// logic reacts to the very same properties without knowing which renderer,
// if any, is attached.
//
// # Properties
//
// A [Property] holds one value and three listener channels:
//
//   - any number of external listeners, added with [Property.AddListener]
//     and removed through the returned [ListenerHandle];
//   - one internal listener for the owning component's own logic;
//   - one GUI listener, reserved for the renderer binding.
//
// [Property.Set] validates the value, stores it and notifies external,
// internal and GUI listeners in that order. [Property.SetSilent] stores the
// value and notifies only the GUI listener, which is how a renderer writes
// user input back without re-triggering game logic. Writing the current
// value again notifies nobody.
//
//	hp, _ := tabletop.NewLimitedProperty(0, 100, 100)
//	h := hp.AddListener(func(old, v int) { log.Printf("hp %d -> %d", old, v) })
//	defer h.Remove()
//	if err := hp.Set(120); err != nil {
//		// errors.Is(err, tabletop.ErrOutOfRange); the value is still 100
//	}
//
// [LimitedProperty] adds inclusive bounds. [ObservableList] is the
// collection counterpart, backed by a slice ([NewObservableArrayList]) or a
// linked list ([NewObservableLinkedList]), and notifies once per mutation.
//
// # Scene graph
//
// Every element of a [Scene] implements [Component] by embedding
// [ComponentBase], which carries identity, the parent link and the common
// layout properties (position, size, rotation, opacity, visibility). A
// component is created against an [Env], which hands out identifiers and
// holds the debug switch and logger:
//
//	env := tabletop.NewEnv()
//	scene := tabletop.NewBoardScene(env, 800, 600)
//	hand := tabletop.NewLinearLayout[*tabletop.CardView](env, "hand", tabletop.Horizontal, 8)
//	_ = scene.Root().Add(hand)
//
// Containers ([Area], [CardStack], [LinearLayout], [GridPane]) are generic
// over the element type they hold and enforce the tree rules: a child has
// at most one parent, appears at most once, and a container never ends up
// inside itself. A rejected mutation leaves the graph untouched and returns
// one of the sentinel errors ([ErrAlreadyContained], [ErrHasParent],
// [ErrIndexOutOfRange], [ErrCycle]).
//
// Widgets ([Label], [Button], [TextField], [ProgressBar], [TokenView],
// [CardView], [DiceView]) are leaf components with their own properties.
//
// # Threading
//
// The graph is owned by one goroutine: the one that calls [Scene.Update].
// Other goroutines hand work to it with [Scene.Enqueue]. Listeners always
// run synchronously on the goroutine that performed the write.
//
// # Animation and ECS
//
// Tweens (via [gween]) animate any double, limited or color property and
// are driven by [Scene.Update]. Property changes can also be mirrored into
// a [Donburi] world through tabletop/ecs.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package tabletop
