package protocol

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/lumen-ui/lumen/internal/errors"
	"github.com/lumen-ui/lumen/pkg/vdom"
)

// FrameType discriminates the wire frames.
type FrameType uint8

const (
	FrameMount   FrameType = 0x01 // Server -> client: full tree snapshot
	FramePatches FrameType = 0x02 // Server -> client: patch batch
	FrameEvent   FrameType = 0x03 // Client -> server: input event
	FramePing    FrameType = 0x04 // Either direction: heartbeat
	FramePong    FrameType = 0x05 // Either direction: heartbeat reply
	FrameClose   FrameType = 0x06 // Either direction: orderly close
)

// String returns the string representation of the FrameType.
func (t FrameType) String() string {
	switch t {
	case FrameMount:
		return "Mount"
	case FramePatches:
		return "Patches"
	case FrameEvent:
		return "Event"
	case FramePing:
		return "Ping"
	case FramePong:
		return "Pong"
	case FrameClose:
		return "Close"
	default:
		return "Unknown"
	}
}

// Frame is the wire envelope: a type tag and a payload encoded separately,
// so the envelope decodes even when the payload does not.
type Frame struct {
	Type    FrameType `msgpack:"type"`
	Payload []byte    `msgpack:"payload"`
}

// Mount carries the initial tree snapshot and the session identity.
type Mount struct {
	SessionID string      `msgpack:"session_id"`
	Tree      *vdom.VNode `msgpack:"tree"`
}

// Patches carries one render's patch batch. Seq increases by one per batch;
// the client uses it to detect gaps.
type Patches struct {
	Seq     uint64       `msgpack:"seq"`
	Patches []vdom.Patch `msgpack:"patches"`
}

// Event is a client input event, addressed by node path. It is delivered to
// the mounted component as a driver query.
type Event struct {
	Seq   uint64 `msgpack:"seq"`
	Path  []int  `msgpack:"path"`
	Type  string `msgpack:"type"`  // "click", "input", ...
	Value string `msgpack:"value"` // event payload, if any
}

// PingPong is the heartbeat payload for FramePing and FramePong.
type PingPong struct {
	Timestamp int64 `msgpack:"ts"`
}

// Close announces an orderly shutdown.
type Close struct {
	Code   int    `msgpack:"code"`
	Reason string `msgpack:"reason"`
}

// EncodeFrame encodes payload and wraps it in a frame envelope of the given
// type.
func EncodeFrame(t FrameType, payload any) ([]byte, error) {
	body, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, errors.New("E102").Wrap(err)
	}
	data, err := msgpack.Marshal(&Frame{Type: t, Payload: body})
	if err != nil {
		return nil, errors.New("E101").Wrap(err)
	}
	return data, nil
}

// DecodeFrame decodes a frame envelope.
func DecodeFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return nil, errors.New("E101").Wrap(err)
	}
	return &f, nil
}

// DecodeMount decodes a Mount payload. The mount doubles as the session
// handshake, so a payload without a session identity or tree is rejected
// even when it decodes structurally.
func DecodeMount(payload []byte) (*Mount, error) {
	var m Mount
	if err := msgpack.Unmarshal(payload, &m); err != nil {
		return nil, errors.New("E102").Wrap(err)
	}
	if m.SessionID == "" || m.Tree == nil {
		return nil, errors.New("E102").Wrap(fmt.Errorf("mount payload missing session id or tree"))
	}
	return &m, nil
}

// DecodePatches decodes a Patches payload.
func DecodePatches(payload []byte) (*Patches, error) {
	var p Patches
	if err := msgpack.Unmarshal(payload, &p); err != nil {
		return nil, errors.New("E102").Wrap(err)
	}
	return &p, nil
}

// DecodeEvent decodes an Event payload.
func DecodeEvent(payload []byte) (*Event, error) {
	var e Event
	if err := msgpack.Unmarshal(payload, &e); err != nil {
		return nil, errors.New("E102").Wrap(err)
	}
	return &e, nil
}

// DecodePingPong decodes a heartbeat payload.
func DecodePingPong(payload []byte) (*PingPong, error) {
	var p PingPong
	if err := msgpack.Unmarshal(payload, &p); err != nil {
		return nil, errors.New("E102").Wrap(err)
	}
	return &p, nil
}

// DecodeClose decodes a Close payload.
func DecodeClose(payload []byte) (*Close, error) {
	var c Close
	if err := msgpack.Unmarshal(payload, &c); err != nil {
		return nil, errors.New("E102").Wrap(err)
	}
	return &c, nil
}
