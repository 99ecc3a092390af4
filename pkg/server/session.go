package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lumen-ui/lumen/pkg/driver"
	"github.com/lumen-ui/lumen/pkg/protocol"
	"github.com/lumen-ui/lumen/pkg/vdom"
)

// Session represents a single WebSocket connection and its mounted component
// tree. The session is the driver's render engine: Build streams the mount
// snapshot, Apply streams patch batches, and a server-side DOM mirror tracks
// what the client should be showing.
//
// Incoming client events are dispatched to the mounted component as
// *protocol.Event queries, each on its own goroutine so a halting query never
// wedges the read loop.
type Session struct {
	// Identity
	ID        string
	CreatedAt time.Time

	// Connection
	conn   *websocket.Conn
	mu     sync.Mutex // Protects conn writes
	closed atomic.Bool

	// Sequence numbers
	sendSeq atomic.Uint64 // Next patch batch sequence
	recvSeq atomic.Uint64 // Last received event sequence

	// Mounted component, set by the server after the driver mounts
	handle driver.Handle

	done chan struct{}

	config *SessionConfig
	logger *slog.Logger

	// Counters
	eventCount atomic.Uint64
	patchCount atomic.Uint64
	bytesSent  atomic.Uint64
}

// generateSessionID generates a cryptographically random session ID.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// Weak session IDs are worse than no server at all.
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// newSession creates a session for the given connection.
func newSession(conn *websocket.Conn, config *SessionConfig, logger *slog.Logger) *Session {
	id := generateSessionID()
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		conn:      conn,
		done:      make(chan struct{}),
		config:    config,
		logger:    logger.With("session_id", id),
	}
	conn.SetReadLimit(config.MaxMessageSize)
	return s
}

// Build implements driver.Engine. It streams the mount snapshot to the client
// and returns the server-side mirror as the live node handle.
func (s *Session) Build(tree *vdom.VNode) any {
	s.sendFrame(protocol.FrameMount, &protocol.Mount{SessionID: s.ID, Tree: tree})
	return vdom.Build(tree)
}

// Diff implements driver.Engine.
func (s *Session) Diff(prev, next *vdom.VNode) []vdom.Patch {
	return vdom.Diff(prev, next)
}

// Apply implements driver.Engine. It streams the patch batch to the client
// and applies it to the server-side mirror. Empty batches are not sent.
func (s *Session) Apply(patches []vdom.Patch, node any) any {
	if len(patches) > 0 {
		seq := s.sendSeq.Add(1)
		s.sendFrame(protocol.FramePatches, &protocol.Patches{Seq: seq, Patches: patches})
		s.patchCount.Add(uint64(len(patches)))
		metrics.patchesTotal.Add(float64(len(patches)))
	}
	root, _ := node.(*vdom.DOMNode)
	return vdom.Apply(patches, root)
}

// Mirror returns the server-side DOM mirror, for diagnostics and tests.
func (s *Session) Mirror() *vdom.DOMNode {
	root, _ := s.handle.(interface{ LiveNode() any })
	if root == nil {
		return nil
	}
	mirror, _ := root.LiveNode().(*vdom.DOMNode)
	return mirror
}

// Run services the connection until the client goes away or Close is called.
// It blocks; the server runs it on the upgrade goroutine.
func (s *Session) Run() {
	go s.heartbeat()
	s.readLoop()
	s.Close(websocket.CloseNormalClosure, "session ended")
}

// readLoop reads frames until the connection breaks. Events are dispatched
// to the component on their own goroutines.
func (s *Session) readLoop() {
	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() {
				s.logger.Debug("read loop ended", "error", err)
			}
			return
		}

		frame, err := protocol.DecodeFrame(data)
		if err != nil {
			s.logger.Warn("dropping malformed frame", "error", err)
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			ev, err := protocol.DecodeEvent(frame.Payload)
			if err != nil {
				s.logger.Warn("dropping malformed event", "error", err)
				continue
			}
			s.recvSeq.Store(ev.Seq)
			s.eventCount.Add(1)
			metrics.eventsTotal.Inc()
			go s.handle.Send(ev)

		case protocol.FramePing:
			if p, err := protocol.DecodePingPong(frame.Payload); err == nil {
				s.sendFrame(protocol.FramePong, p)
			}

		case protocol.FramePong:
			// Read deadline already extended above.

		case protocol.FrameClose:
			s.logger.Debug("client closed session")
			return

		default:
			s.logger.Warn("unknown frame type", "type", uint8(frame.Type))
		}
	}
}

// heartbeat sends a ping every HeartbeatInterval until the session closes.
func (s *Session) heartbeat() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sendFrame(protocol.FramePing, &protocol.PingPong{Timestamp: time.Now().UnixMilli()})
		case <-s.done:
			return
		}
	}
}

// sendFrame encodes and writes one frame. Send errors close the session;
// engine operations stay total either way.
func (s *Session) sendFrame(t protocol.FrameType, payload any) {
	if s.closed.Load() {
		return
	}
	data, err := protocol.EncodeFrame(t, payload)
	if err != nil {
		s.logger.Error("frame encode failed", "type", t.String(), "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		s.logger.Debug("write failed, closing session", "error", err)
		s.closeLocked(websocket.CloseAbnormalClosure, "write failed")
		return
	}
	s.bytesSent.Add(uint64(len(data)))
	metrics.bytesSentTotal.Add(float64(len(data)))
}

// Close shuts the session down. It is idempotent.
func (s *Session) Close(code int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked(code, reason)
}

func (s *Session) closeLocked(code int, reason string) {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	close(s.done)
	if data, err := protocol.EncodeFrame(protocol.FrameClose, &protocol.Close{Code: code, Reason: reason}); err == nil {
		s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		s.conn.WriteMessage(websocket.BinaryMessage, data)
	}
	s.conn.Close()
	s.logger.Debug("session closed",
		"events", s.eventCount.Load(),
		"patches", s.patchCount.Load(),
		"bytes_sent", s.bytesSent.Load())
}
