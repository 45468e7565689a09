// Package wshub serves a scene to browser renderers over WebSocket. It is a
// bridge.Sink: every message the scene's Binder emits is fanned out to all
// connected clients, and "set" commands coming back are applied on the
// scene's owner goroutine.
package wshub

import (
	crand "crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"nhooyr.io/websocket"

	"github.com/phanxgames/tabletop"
	"github.com/phanxgames/tabletop/bridge"
)

const (
	defaultSendBuffer   = 64
	defaultPingInterval = 15 * time.Second
)

// Options configures a Hub. The zero value is usable.
type Options struct {
	// AllowOrigins lists the Origin headers accepted for browser clients.
	// Requests without an Origin header are always accepted.
	AllowOrigins []string

	Logger *slog.Logger

	// Registerer receives the hub's metrics. nil disables registration.
	Registerer prometheus.Registerer

	// SendBuffer is the per-client queue length. Messages for a client
	// whose queue is full are dropped, and the client is sent a full scene
	// in place of its next message.
	SendBuffer int

	PingInterval time.Duration
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	// stale is set when a message was dropped; the client's view can only
	// be repaired by a full scene.
	stale atomic.Bool
}

// Hub is a WebSocket endpoint serving one scene.
type Hub struct {
	scene  *tabletop.Scene
	binder *bridge.Binder
	log    *slog.Logger

	allowOrigins map[string]bool
	sendBuffer   int
	pingInterval time.Duration

	mu      sync.RWMutex
	clients map[*client]struct{}

	metrics *metrics
}

// New creates a Hub for scene and binds the scene to it. Call it on the
// scene's owner goroutine before the update loop starts.
func New(scene *tabletop.Scene, opts Options) *Hub {
	allow := map[string]bool{}
	for _, a := range opts.AllowOrigins {
		if a != "" {
			allow[a] = true
		}
	}
	h := &Hub{
		scene:        scene,
		log:          opts.Logger,
		allowOrigins: allow,
		sendBuffer:   opts.SendBuffer,
		pingInterval: opts.PingInterval,
		clients:      map[*client]struct{}{},
		metrics:      newMetrics(opts.Registerer),
	}
	if h.log == nil {
		h.log = slog.Default()
	}
	if h.sendBuffer <= 0 {
		h.sendBuffer = defaultSendBuffer
	}
	if h.pingInterval <= 0 {
		h.pingInterval = defaultPingInterval
	}
	h.binder = bridge.NewBinder(scene, h)
	h.binder.Bind()
	return h
}

// Binder returns the Binder feeding the hub.
func (h *Hub) Binder() *bridge.Binder { return h.binder }

// NumClients returns the number of registered clients.
func (h *Hub) NumClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send broadcasts msg to every registered client. It never blocks. A client
// that missed a message receives the full scene instead of msg. Send runs on
// the scene's owner goroutine, like the Binder calling it.
func (h *Hub) Send(msg bridge.Message) {
	b, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("marshal message", "type", msg.T, "err", err)
		return
	}
	var scene []byte
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.stale.Load() {
			h.push(c, b)
			continue
		}
		if scene == nil {
			if scene, err = json.Marshal(h.sceneMessage()); err != nil {
				h.log.Error("marshal scene", "err", err)
				return
			}
		}
		h.resync(c, scene)
	}
}

func (h *Hub) sceneMessage() bridge.Message {
	return bridge.Message{T: bridge.TypeScene, M: h.binder.Snapshot()}
}

func (h *Hub) sendTo(c *client, msg bridge.Message) {
	b, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("marshal message", "type", msg.T, "err", err)
		return
	}
	h.mu.RLock()
	if _, ok := h.clients[c]; ok {
		h.push(c, b)
	}
	h.mu.RUnlock()
}

// push must be called with h.mu held. A dropped message marks c stale.
func (h *Hub) push(c *client, b []byte) bool {
	select {
	case c.send <- b:
		h.metrics.sent.Inc()
		return true
	default:
		h.metrics.dropped.Inc()
		c.stale.Store(true)
		return false
	}
}

// resync sends the marshalled scene to a stale client and clears the mark
// once it is queued. Must be called with h.mu held.
func (h *Hub) resync(c *client, scene []byte) {
	if h.push(c, scene) {
		c.stale.Store(false)
		h.metrics.resyncs.Inc()
	}
}

// sendScene queues the full scene for c. It runs on the owner goroutine.
func (h *Hub) sendScene(c *client) {
	b, err := json.Marshal(h.sceneMessage())
	if err != nil {
		h.log.Error("marshal scene", "err", err)
		return
	}
	h.mu.RLock()
	if _, ok := h.clients[c]; ok && h.push(c, b) {
		c.stale.Store(false)
	}
	h.mu.RUnlock()
}

// register adds c and sends it the full scene. It runs on the owner
// goroutine, so no update can slip in between the snapshot and the
// registration. A client that disconnected before it got here is not added.
func (h *Hub) register(c *client) {
	h.mu.Lock()
	select {
	case <-c.done:
		h.mu.Unlock()
		return
	default:
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.metrics.clients.Inc()
	h.sendScene(c)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	close(c.done)
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	if ok {
		h.metrics.clients.Dec()
	}
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin != "" && !h.allowOrigins[origin] {
		http.Error(w, "forbidden origin", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.log.Warn("websocket accept", "err", err)
		return
	}

	c := h.newClient(conn)
	ctx := r.Context()
	h.log.Info("client connected", "client", c.id, "remote", r.RemoteAddr)
	h.scene.Enqueue(func() { h.register(c) })

	// writer
	go func() {
		ping := time.NewTicker(h.pingInterval)
		defer func() { ping.Stop(); _ = conn.Close(websocket.StatusNormalClosure, "bye") }()
		for {
			select {
			case msg, ok := <-c.send:
				if !ok {
					return
				}
				if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
					return
				}
			case <-ping.C:
				_ = conn.Ping(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	// reader
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		h.handle(c, data)
	}

	h.unregister(c)
	h.log.Info("client disconnected", "client", c.id)
}

func (h *Hub) newClient(conn *websocket.Conn) *client {
	return &client{
		id:   randID(),
		conn: conn,
		send: make(chan []byte, h.sendBuffer),
		done: make(chan struct{}),
	}
}

func (h *Hub) handle(c *client, data []byte) {
	var env bridge.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.metrics.commands.WithLabelValues("malformed").Inc()
		return
	}
	switch env.T {
	case bridge.TypeHello:
		h.scene.Enqueue(func() { h.sendScene(c) })

	case bridge.TypeSet:
		var cmd bridge.Command
		if err := json.Unmarshal(env.M, &cmd); err != nil {
			h.metrics.commands.WithLabelValues("malformed").Inc()
			h.sendTo(c, errorMessage("malformed", err))
			return
		}
		h.scene.Enqueue(func() {
			if err := h.binder.Apply(cmd); err != nil {
				h.metrics.commands.WithLabelValues("rejected").Inc()
				h.log.Debug("command rejected", "client", c.id, "id", cmd.ID, "prop", cmd.Prop, "err", err)
				h.sendTo(c, errorMessage(errorCode(err), err))
				return
			}
			h.metrics.commands.WithLabelValues("ok").Inc()
		})

	case bridge.TypePing:
		h.sendTo(c, bridge.Message{T: bridge.TypePong})

	case bridge.TypePong:
		// ignore
	}
}

func errorMessage(code string, err error) bridge.Message {
	return bridge.Message{T: bridge.TypeError, M: bridge.Error{Code: code, Message: err.Error()}}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, bridge.ErrUnknownComponent):
		return "unknown_component"
	case errors.Is(err, bridge.ErrUnknownProperty):
		return "unknown_property"
	case errors.Is(err, tabletop.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, tabletop.ErrInvalidValue):
		return "invalid_value"
	}
	return "rejected"
}

func randID() string {
	var b [8]byte
	_, _ = crand.Read(b[:])
	return hex.EncodeToString(b[:])
}
