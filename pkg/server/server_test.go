package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lumen-ui/lumen/pkg/driver"
	"github.com/lumen-ui/lumen/pkg/protocol"
	"github.com/lumen-ui/lumen/pkg/vdom"
)

// clickCounter increments on every client event.
type clickCounter struct{}

func (clickCounter) Render(s int) (*vdom.VNode, []driver.Hook) {
	return vdom.Element("div", nil, vdom.Text(strconv.Itoa(s))), nil
}

func (clickCounter) Interpret(query any) driver.Op {
	if _, ok := query.(*protocol.Event); ok {
		return driver.Modify{
			Fn:   func(s any) any { return s.(int) + 1 },
			Then: driver.Done{},
		}
	}
	return driver.Done{}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := New(nil, func(engine driver.Engine) driver.Handle {
		return driver.RunUI[int](clickCounter{}, 0, engine)
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readFrame reads frames until one of the wanted type arrives, skipping
// heartbeats.
func readFrame(t *testing.T, conn *websocket.Conn, want protocol.FrameType) *protocol.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage: %v", err)
		}
		f, err := protocol.DecodeFrame(data)
		if err != nil {
			t.Fatalf("DecodeFrame: %v", err)
		}
		if f.Type == want {
			return f
		}
		if f.Type == protocol.FramePing || f.Type == protocol.FramePong {
			continue
		}
		t.Fatalf("frame type = %v, want %v", f.Type, want)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("body = %q, want %q", body, "ok")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "lumen_server_sessions_active") {
		t.Error("metrics output missing lumen_server_sessions_active")
	}
}

func TestMountSnapshot(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	f := readFrame(t, conn, protocol.FrameMount)
	m, err := protocol.DecodeMount(f.Payload)
	if err != nil {
		t.Fatalf("DecodeMount: %v", err)
	}
	if m.SessionID == "" {
		t.Error("SessionID is empty")
	}
	if got := m.Tree.Children[0].Text; got != "0" {
		t.Errorf("initial text = %q, want %q", got, "0")
	}
}

func TestEventProducesPatches(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	readFrame(t, conn, protocol.FrameMount)

	ev, err := protocol.EncodeFrame(protocol.FrameEvent, &protocol.Event{Seq: 1, Type: "click"})
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, ev); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	f := readFrame(t, conn, protocol.FramePatches)
	p, err := protocol.DecodePatches(f.Payload)
	if err != nil {
		t.Fatalf("DecodePatches: %v", err)
	}
	if p.Seq != 1 {
		t.Errorf("Seq = %d, want 1", p.Seq)
	}
	if len(p.Patches) != 1 {
		t.Fatalf("len(Patches) = %d, want 1", len(p.Patches))
	}
	if p.Patches[0].Op != vdom.PatchSetText || p.Patches[0].Value != "1" {
		t.Errorf("patch = %+v, want SetText \"1\"", p.Patches[0])
	}
}

func TestPatchSequenceAdvances(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	readFrame(t, conn, protocol.FrameMount)

	for i := 1; i <= 3; i++ {
		ev, _ := protocol.EncodeFrame(protocol.FrameEvent, &protocol.Event{Seq: uint64(i), Type: "click"})
		if err := conn.WriteMessage(websocket.BinaryMessage, ev); err != nil {
			t.Fatalf("WriteMessage: %v", err)
		}
		f := readFrame(t, conn, protocol.FramePatches)
		p, err := protocol.DecodePatches(f.Payload)
		if err != nil {
			t.Fatalf("DecodePatches: %v", err)
		}
		if p.Seq != uint64(i) {
			t.Errorf("Seq = %d, want %d", p.Seq, i)
		}
	}
}

func TestSessionCountTracksConnections(t *testing.T) {
	srv, ts := newTestServer(t)
	conn := dial(t, ts)

	readFrame(t, conn, protocol.FrameMount)
	if n := srv.SessionCount(); n != 1 {
		t.Errorf("SessionCount = %d, want 1", n)
	}

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for srv.SessionCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("SessionCount = %d after close, want 0", srv.SessionCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMalformedFrameIsDropped(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	readFrame(t, conn, protocol.FrameMount)

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{0xc1, 0x00}); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	// The session must survive and still process a real event.
	ev, _ := protocol.EncodeFrame(protocol.FrameEvent, &protocol.Event{Seq: 1, Type: "click"})
	if err := conn.WriteMessage(websocket.BinaryMessage, ev); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	readFrame(t, conn, protocol.FramePatches)
}
