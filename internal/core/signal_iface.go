package core

import "github.com/dkeye/tunequiz/internal/domain"

// Frame is a raw encoded event.
type Frame []byte

// ConnID identifies one realtime connection. A user may hold several.
type ConnID string

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Event is what the server pushes to clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Gateway is the group messaging primitive the orchestrator publishes through.
type Gateway interface {
	JoinGroup(conn ConnID, room domain.RoomID)
	LeaveGroup(conn ConnID, room domain.RoomID)
	SendTo(conn ConnID, ev Event)
	SendToGroup(room domain.RoomID, ev Event)
	SendToGroupExcept(room domain.RoomID, except ConnID, ev Event)
	SendToAll(ev Event)
}
