package bridge

import (
	"encoding/json"

	"github.com/phanxgames/tabletop"
)

// Message types.
const (
	TypeScene    = "scene"    // M: SceneSnapshot
	TypeUpdate   = "update"   // M: Snapshot without children
	TypeChildren = "children" // M: ChildrenChange
	TypeDetach   = "detach"   // M: Detach
	TypeSet      = "set"      // M: Command, renderer to model
	TypeError    = "error"    // M: Error
	TypeHello    = "hello"    // renderer asks for a full scene snapshot
	TypePing     = "ping"
	TypePong     = "pong"
)

// Message is the outgoing envelope. It marshals as {"t": type, "m": payload}.
type Message struct {
	T string `json:"t"`
	M any    `json:"m,omitempty"`
}

// Envelope is the incoming envelope; M is decoded once T is known.
type Envelope struct {
	T string          `json:"t"`
	M json.RawMessage `json:"m,omitempty"`
}

// Snapshot is the serialized state of one component and, for full
// snapshots, its subtree.
type Snapshot struct {
	ID    tabletop.ComponentID `json:"id"`
	Kind  string               `json:"kind"`
	Name  string               `json:"name,omitempty"`
	At    *tabletop.Vec2       `json:"at,omitempty"`
	Props map[string]any       `json:"props"`
	Faces []tabletop.Visual    `json:"faces,omitempty"`

	Children []Snapshot `json:"children,omitempty"`
}

// SceneSnapshot is the full description of a scene sent on connect and
// whenever a scene-level property changes.
type SceneSnapshot struct {
	Kind  string         `json:"kind"`
	Props map[string]any `json:"props"`
	Root  Snapshot       `json:"root"`
}

// Placement is a child's ID and position inside its parent.
type Placement struct {
	ID tabletop.ComponentID `json:"id"`
	At *tabletop.Vec2       `json:"at,omitempty"`
}

// ChildrenChange reports the new child order of Parent. Added holds full
// snapshots of children that were not attached before.
type ChildrenChange struct {
	Parent   tabletop.ComponentID `json:"parent"`
	Children []Placement          `json:"children"`
	Added    []Snapshot           `json:"added,omitempty"`
}

// Detach lists the roots of subtrees that left the scene.
type Detach struct {
	IDs []tabletop.ComponentID `json:"ids"`
}

// Command asks the model to set a property on behalf of the renderer, such
// as the position of a dragged element.
type Command struct {
	ID    tabletop.ComponentID `json:"id"`
	Prop  string               `json:"prop"`
	Value json.RawMessage      `json:"value"`
}

// Error reports a rejected command back to the renderer.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Sink receives the messages produced by a Binder. Send is called on the
// scene's owner goroutine and must not block.
type Sink interface {
	Send(msg Message)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(msg Message)

// Send calls f(msg).
func (f SinkFunc) Send(msg Message) { f(msg) }

// MultiSink fans every message out to each sink in order.
type MultiSink []Sink

// Send forwards msg to every sink.
func (m MultiSink) Send(msg Message) {
	for _, s := range m {
		s.Send(msg)
	}
}
