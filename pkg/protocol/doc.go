// Package protocol defines the wire frames exchanged between a session and
// its browser client: the mount snapshot, patch batches, input events, and
// control messages. Frames are msgpack-encoded; the envelope carries a type
// tag and an opaque payload so unknown frame types can be skipped without
// understanding them.
package protocol
