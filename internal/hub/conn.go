package hub

import "scrabbled/internal/protocol"

// Conn is whatever the registry needs from a live transport connection:
// enough to push a frame to it and to force it closed. The transport
// package provides the WebSocket implementation; tests use a fake.
type Conn interface {
	Send(msg protocol.Message) error
	Close() error
}
