package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/trophic/components"
	"github.com/pthm-cable/trophic/config"
	"github.com/pthm-cable/trophic/evolution"
	"github.com/pthm-cable/trophic/render"
	"github.com/pthm-cable/trophic/species"
)

func testTable(t *testing.T) *species.Table {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	table, err := species.FromConfig(cfg)
	if err != nil {
		t.Fatalf("building table: %v", err)
	}
	return table
}

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    render.Command
		wantErr bool
	}{
		{"begin", `{"t":"b"}`, render.Command{Kind: render.CommandBegin}, false},
		{"pause", `{"t":"p"}`, render.Command{Kind: render.CommandPause}, false},
		{"speed", `{"t":"v","s":4}`, render.Command{Kind: render.CommandSpeed, Steps: 4}, false},
		{"toggle on", `{"t":"g","k":"vision","e":1}`, render.Command{Kind: render.CommandToggle, Trait: evolution.TraitVision, Enabled: true}, false},
		{"toggle off", `{"t":"g","k":"mass"}`, render.Command{Kind: render.CommandToggle, Trait: evolution.TraitMass}, false},
		{"unknown trait", `{"t":"g","k":"wings","e":1}`, render.Command{}, true},
		{"unknown type", `{"t":"q"}`, render.Command{}, true},
		{"garbage", `not json`, render.Command{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCommand([]byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEncodeFrame(t *testing.T) {
	var toggles evolution.Toggles
	toggles.Set(evolution.TraitSpeed, true)

	f := &render.Frame{
		Tick:    12,
		Trial:   3,
		Started: true,
		Samples: []render.Sample{
			{ID: 1, X: 10.04, Y: 20.06, Radius: 5, Color: components.Color{R: 255, G: 165, A: 255}, Vision: 80, Status: components.StatusAlive},
			{ID: 2, X: 1, Y: 1, Radius: 5, Vision: 80, Status: components.StatusEaten},
		},
		Panel:   render.Panel{Species: []render.SpeciesSummary{{Name: "Primary", Alive: 1, Total: 2, Longest: 40}}},
		Toggles: toggles,
	}

	msg := EncodeFrame(f)

	if msg.Type != MsgFrame || msg.Tick != 12 || msg.Trial != 3 || msg.Started != 1 {
		t.Errorf("header = %+v", msg)
	}
	if msg.Entities[0].X != 10 || msg.Entities[0].Y != 20.1 {
		t.Errorf("position not rounded: %+v", msg.Entities[0])
	}
	if msg.Entities[0].Color != "#ffa500" {
		t.Errorf("color = %q, want #ffa500", msg.Entities[0].Color)
	}
	if msg.Entities[1].Vision != 0 || msg.Entities[1].Status != uint8(components.StatusEaten) {
		t.Errorf("dead entity = %+v, want no vision", msg.Entities[1])
	}
	if msg.Panel[0] != (PanelDTO{Name: "Primary", Alive: 1, Total: 2, Longest: 40}) {
		t.Errorf("panel = %+v", msg.Panel[0])
	}
	if len(msg.Toggles) != evolution.NumTraits || msg.Toggles[0] != 1 || msg.Toggles[1] != 0 {
		t.Errorf("toggles = %v", msg.Toggles)
	}
}

func TestNewWelcome(t *testing.T) {
	table := testTable(t)
	msg := NewWelcome("abc", 800, 600, table)

	if msg.Type != MsgWelcome || msg.ID != "abc" || msg.Width != 800 || msg.Height != 600 {
		t.Errorf("welcome = %+v", msg)
	}
	if len(msg.Species) != table.Len() {
		t.Fatalf("species = %d, want %d", len(msg.Species), table.Len())
	}
	if msg.Species[0].Tier != 0 {
		t.Errorf("first species tier = %d, want producer", msg.Species[0].Tier)
	}
}

type recordingControls struct {
	cmds []render.Command
}

func (r *recordingControls) Apply(cmd render.Command) error {
	r.cmds = append(r.cmds, cmd)
	return nil
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readType(t *testing.T, ws *websocket.Conn) (string, []byte) {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var head struct {
		Type string `json:"t"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return head.Type, raw
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubRoundTrip(t *testing.T) {
	hub := NewHub(config.ServerConfig{Path: "/ws", FrameInterval: 2}, testTable(t))
	hub.Present(&render.Frame{Width: 800, Height: 600})

	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	ws := dial(t, srv)

	typ, raw := readType(t, ws)
	if typ != MsgWelcome {
		t.Fatalf("first message = %q, want welcome", typ)
	}
	var welcome WelcomeMsg
	if err := json.Unmarshal(raw, &welcome); err != nil {
		t.Fatal(err)
	}
	if welcome.Width != 800 || welcome.ID == "" {
		t.Errorf("welcome = %+v", welcome)
	}
	if typ, _ := readType(t, ws); typ != MsgFrame {
		t.Fatalf("second message = %q, want last frame", typ)
	}
	waitFor(t, func() bool { return hub.Clients() == 1 })

	// Odd running tick is thinned, even tick goes out.
	hub.Present(&render.Frame{Tick: 3, Total: 3, Started: true})
	hub.Present(&render.Frame{Tick: 4, Total: 4, Started: true})
	_, raw = readType(t, ws)
	var frame FrameMsg
	if err := json.Unmarshal(raw, &frame); err != nil {
		t.Fatal(err)
	}
	if frame.Tick != 4 {
		t.Errorf("broadcast tick = %d, want 4", frame.Tick)
	}

	if err := ws.WriteMessage(websocket.TextMessage, []byte(`{"t":"b"}`)); err != nil {
		t.Fatal(err)
	}
	if err := ws.WriteMessage(websocket.TextMessage, []byte(`{"t":"bogus"}`)); err != nil {
		t.Fatal(err)
	}
	if typ, _ := readType(t, ws); typ != MsgError {
		t.Errorf("reply to bad message = %q, want error", typ)
	}

	ctrl := &recordingControls{}
	waitFor(t, func() bool {
		hub.Drain(ctrl)
		return len(ctrl.cmds) == 1
	})
	if ctrl.cmds[0].Kind != render.CommandBegin {
		t.Errorf("command = %v, want begin", ctrl.cmds[0].Kind)
	}

	ws.Close()
	waitFor(t, func() bool { return hub.Clients() == 0 })
}

func TestClientManager(t *testing.T) {
	m := NewClientManager()
	a := &Client{ID: "a"}
	b := &Client{ID: "b"}

	m.Add(a)
	m.Add(b)
	if m.Count() != 2 || len(m.Snapshot()) != 2 {
		t.Fatalf("count = %d, want 2", m.Count())
	}

	m.Remove("a")
	snap := m.Snapshot()
	if len(snap) != 1 || snap[0] != b {
		t.Errorf("snapshot = %v, want [b]", snap)
	}
}

func TestClientQueueNeverBlocks(t *testing.T) {
	c := NewClient(nil)

	for i := 0; i < sendBuffer; i++ {
		if !c.Queue([]byte("{}")) {
			t.Fatalf("queue rejected message %d of %d", i, sendBuffer)
		}
	}
	if c.Queue([]byte("{}")) {
		t.Error("full queue accepted a message")
	}
	if err := c.Send(ErrorMsg{Type: MsgError}); err != ErrClientBacklogged {
		t.Errorf("Send on full queue = %v, want ErrClientBacklogged", err)
	}

	<-c.send
	c.Close()
	c.Close()
	if c.Queue([]byte("{}")) {
		t.Error("closed client accepted a message")
	}
}

func TestPresentDoesNotWaitOnStalledViewer(t *testing.T) {
	hub := NewHub(config.ServerConfig{Addr: ":0", Path: "/ws", FrameInterval: 1}, testTable(t))
	stalled := NewClient(nil) // no writer drains this one
	hub.clients.Add(stalled)

	f := &render.Frame{Width: 800, Height: 600}
	done := make(chan struct{})
	go func() {
		for i := 0; i < 4*sendBuffer; i++ {
			hub.Present(f)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Present blocked on a stalled viewer")
	}
	if got := len(stalled.send); got != sendBuffer {
		t.Errorf("queued %d frames, want %d", got, sendBuffer)
	}
}
