package wshub

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"nhooyr.io/websocket"

	"github.com/phanxgames/tabletop"
	"github.com/phanxgames/tabletop/bridge"
)

type fixture struct {
	scene *tabletop.Scene
	tok   *tabletop.TokenView
	hub   *Hub
	reg   *prometheus.Registry
	url   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	env := tabletop.NewEnv()
	scene := tabletop.NewBoardScene(env, 320, 240)
	tok := tabletop.NewTokenView(env, "tok", tabletop.ColorVisual(tabletop.ColorWhite))
	if err := scene.Root().Add(tok); err != nil {
		t.Fatal(err)
	}
	reg := prometheus.NewRegistry()
	hub := New(scene, Options{
		AllowOrigins: []string{"http://allowed.test"},
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Registerer:   reg,
	})

	// The pump goroutine owns the scene from here on.
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		tick := time.NewTicker(2 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				scene.Update(0)
			}
		}
	}()

	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		srv.Close()
		close(stop)
		<-done
	})
	return &fixture{
		scene: scene,
		tok:   tok,
		hub:   hub,
		reg:   reg,
		url:   "ws" + strings.TrimPrefix(srv.URL, "http"),
	}
}

// run executes fn on the owner goroutine and waits for it.
func (f *fixture) run(fn func()) {
	done := make(chan struct{})
	f.scene.Enqueue(func() { fn(); close(done) })
	<-done
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, f.url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readType(t *testing.T, conn *websocket.Conn, typ string) bridge.Envelope {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("waiting for %q: %v", typ, err)
		}
		var env bridge.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatal(err)
		}
		if env.T == typ {
			return env
		}
	}
}

func write(t *testing.T, conn *websocket.Conn, msg bridge.Message) {
	t.Helper()
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, b); err != nil {
		t.Fatal(err)
	}
}

func TestHubSendsSnapshotOnConnect(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	env := readType(t, conn, bridge.TypeScene)
	var snap bridge.SceneSnapshot
	if err := json.Unmarshal(env.M, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Kind != "board" || len(snap.Root.Children) != 1 || snap.Root.Children[0].ID != f.tok.ID() {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestHubBroadcastsUpdates(t *testing.T) {
	f := newFixture(t)
	a := f.dial(t)
	b := f.dial(t)
	readType(t, a, bridge.TypeScene)
	readType(t, b, bridge.TypeScene)

	f.run(func() { _ = f.tok.X.Set(42) })

	for _, conn := range []*websocket.Conn{a, b} {
		env := readType(t, conn, bridge.TypeUpdate)
		var s bridge.Snapshot
		if err := json.Unmarshal(env.M, &s); err != nil {
			t.Fatal(err)
		}
		if s.ID != f.tok.ID() || s.Props["x"] != 42.0 {
			t.Errorf("update = %+v", s)
		}
	}
}

func TestHubAppliesSetCommands(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)
	readType(t, conn, bridge.TypeScene)

	business := 0
	f.run(func() { f.tok.X.AddListener(func(_, _ float64) { business++ }) })

	write(t, conn, bridge.Message{T: bridge.TypeSet, M: bridge.Command{
		ID: f.tok.ID(), Prop: "x", Value: json.RawMessage("17"),
	}})
	readType(t, conn, bridge.TypeUpdate)

	var x float64
	var calls int
	f.run(func() { x, calls = f.tok.X.Value(), business })
	if x != 17 || calls != 0 {
		t.Errorf("x = %v business calls = %d, want 17 and 0", x, calls)
	}
}

func TestHubRejectsBadCommands(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)
	readType(t, conn, bridge.TypeScene)

	tests := []struct {
		cmd  bridge.Command
		code string
	}{
		{bridge.Command{ID: 9999, Prop: "x", Value: json.RawMessage("1")}, "unknown_component"},
		{bridge.Command{ID: f.tok.ID(), Prop: "mass", Value: json.RawMessage("1")}, "unknown_property"},
		{bridge.Command{ID: f.tok.ID(), Prop: "opacity", Value: json.RawMessage("3")}, "out_of_range"},
		{bridge.Command{ID: f.tok.ID(), Prop: "x", Value: json.RawMessage(`"left"`)}, "invalid_value"},
	}
	for _, tt := range tests {
		write(t, conn, bridge.Message{T: bridge.TypeSet, M: tt.cmd})
		env := readType(t, conn, bridge.TypeError)
		var e bridge.Error
		if err := json.Unmarshal(env.M, &e); err != nil {
			t.Fatal(err)
		}
		if e.Code != tt.code {
			t.Errorf("code = %q, want %q (%s)", e.Code, tt.code, e.Message)
		}
	}
}

func TestHubHelloAndPing(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)
	readType(t, conn, bridge.TypeScene)

	write(t, conn, bridge.Message{T: bridge.TypePing})
	readType(t, conn, bridge.TypePong)

	write(t, conn, bridge.Message{T: bridge.TypeHello})
	readType(t, conn, bridge.TypeScene)
}

func TestHubOriginCheck(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, f.url, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"http://evil.test"}},
	})
	if err == nil {
		t.Fatal("foreign origin was accepted")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}

	conn, _, err := websocket.Dial(ctx, f.url, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"http://allowed.test"}},
	})
	if err != nil {
		t.Fatalf("allowed origin rejected: %v", err)
	}
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

func TestHubMetricsAndDisconnect(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)
	readType(t, conn, bridge.TypeScene)

	if n := f.hub.NumClients(); n != 1 {
		t.Fatalf("NumClients = %d, want 1", n)
	}

	found := gather(t, f.reg)
	if found["tabletop_ws_clients"] != 1 {
		t.Errorf("clients gauge = %v", found["tabletop_ws_clients"])
	}
	if found["tabletop_ws_messages_sent_total"] < 1 {
		t.Errorf("sent counter = %v", found["tabletop_ws_messages_sent_total"])
	}

	_ = conn.Close(websocket.StatusNormalClosure, "")
	deadline := time.Now().Add(2 * time.Second)
	for f.hub.NumClients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client not unregistered after close")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func gather(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetGauge() != nil:
				found[mf.GetName()] = m.GetGauge().GetValue()
			case m.GetCounter() != nil:
				found[mf.GetName()] += m.GetCounter().GetValue()
			}
		}
	}
	return found
}

func decode(t *testing.T, raw []byte) bridge.Envelope {
	t.Helper()
	var env bridge.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatal(err)
	}
	return env
}

// These tests own the scene on the test goroutine and drive clients
// without a connection.
func newLocalHub(t *testing.T, sendBuffer int) (*Hub, *tabletop.TokenView, *prometheus.Registry) {
	t.Helper()
	env := tabletop.NewEnv()
	scene := tabletop.NewBoardScene(env, 320, 240)
	tok := tabletop.NewTokenView(env, "tok", tabletop.ColorVisual(tabletop.ColorWhite))
	if err := scene.Root().Add(tok); err != nil {
		t.Fatal(err)
	}
	reg := prometheus.NewRegistry()
	hub := New(scene, Options{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Registerer: reg,
		SendBuffer: sendBuffer,
	})
	return hub, tok, reg
}

func TestHubResyncsClientAfterDrop(t *testing.T) {
	hub, tok, reg := newLocalHub(t, 1)
	c := hub.newClient(nil)
	hub.register(c)

	// The queue still holds the initial scene, so this update is dropped.
	_ = tok.X.Set(1)
	if !c.stale.Load() {
		t.Fatal("client not marked stale after a dropped message")
	}
	if env := decode(t, <-c.send); env.T != bridge.TypeScene {
		t.Fatalf("first message = %q, want scene", env.T)
	}

	// The next change reaches the client as a full scene.
	_ = tok.X.Set(2)
	env := decode(t, <-c.send)
	if env.T != bridge.TypeScene {
		t.Fatalf("message after drop = %q, want scene", env.T)
	}
	var snap bridge.SceneSnapshot
	if err := json.Unmarshal(env.M, &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Root.Children) != 1 || snap.Root.Children[0].Props["x"] != 2.0 {
		t.Errorf("resync root = %+v", snap.Root)
	}
	if c.stale.Load() {
		t.Error("client still stale after resync")
	}

	// Back to incremental updates.
	_ = tok.X.Set(3)
	if env := decode(t, <-c.send); env.T != bridge.TypeUpdate {
		t.Errorf("message after resync = %q, want update", env.T)
	}

	m := gather(t, reg)
	if m["tabletop_ws_messages_dropped_total"] != 1 || m["tabletop_ws_resyncs_total"] != 1 {
		t.Errorf("dropped = %v, resyncs = %v", m["tabletop_ws_messages_dropped_total"], m["tabletop_ws_resyncs_total"])
	}
}

func TestHubStaleClientWaitsForRoom(t *testing.T) {
	hub, tok, _ := newLocalHub(t, 1)
	c := hub.newClient(nil)
	hub.register(c)

	_ = tok.X.Set(1)
	_ = tok.X.Set(2)
	if !c.stale.Load() {
		t.Fatal("client not stale while its queue is full")
	}
	<-c.send
	_ = tok.Y.Set(5)
	if env := decode(t, <-c.send); env.T != bridge.TypeScene {
		t.Errorf("message = %q, want scene", env.T)
	}
}

func TestHubIgnoresClientGoneBeforeRegister(t *testing.T) {
	hub, tok, reg := newLocalHub(t, 4)
	c := hub.newClient(nil)

	// The connection closes before the owner goroutine gets to register it.
	hub.unregister(c)
	hub.register(c)

	if n := hub.NumClients(); n != 0 {
		t.Fatalf("NumClients = %d, want 0", n)
	}
	_ = tok.X.Set(1)
	m := gather(t, reg)
	if m["tabletop_ws_clients"] != 0 || m["tabletop_ws_messages_dropped_total"] != 0 {
		t.Errorf("clients = %v, dropped = %v", m["tabletop_ws_clients"], m["tabletop_ws_messages_dropped_total"])
	}
}
