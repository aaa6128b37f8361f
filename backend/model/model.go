package model

import (
	"encoding/json"
	"errors"
)

// Message kinds accepted from clients.
const (
	TypeJoin         = "join"
	TypeOffer        = "offer"
	TypeAnswer       = "answer"
	TypeICECandidate = "ice-candidate"
)

// Message kinds produced by the server.
const (
	TypeViewerReady    = "viewer-ready"
	TypeMonitorReady   = "monitor-ready"
	TypeViewerLeft     = "viewer-left"
	TypeMonitorLeft    = "monitor-left"
	TypeRoomOverridden = "room-overridden"
)

var (
	ErrMalformed   = errors.New("malformed message")
	ErrUnknownType = errors.New("unknown message type")
	ErrBadRole     = errors.New("role must be monitor or viewer")
)

// Role is a room slot designation. A connection declares its role once,
// in its join message.
type Role string

const (
	RoleMonitor Role = "monitor"
	RoleViewer  Role = "viewer"
)

func (r Role) Valid() bool {
	return r == RoleMonitor || r == RoleViewer
}

// Counterpart returns the opposite slot's role.
func (r Role) Counterpart() Role {
	if r == RoleMonitor {
		return RoleViewer
	}
	return RoleMonitor
}

// Message is one signaling frame. Payload stays raw so relayed frames
// reach the counterpart byte-identical.
type Message struct {
	Type    string          `json:"type"`
	Room    string          `json:"room,omitempty"`
	Role    Role            `json:"role,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Parse decodes and validates one inbound frame. Frames that fail here
// are dropped by the caller; nothing is reported to the sender.
func Parse(b []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(b, &msg); err != nil {
		return Message{}, errors.Join(ErrMalformed, err)
	}
	switch msg.Type {
	case TypeJoin:
		if !msg.Role.Valid() {
			return Message{}, ErrBadRole
		}
		// a join may omit the room: the fixed-room policy can still supply
		// one, and the router drops the join if nothing does
	case TypeOffer, TypeAnswer, TypeICECandidate:
	default:
		return Message{}, ErrUnknownType
	}
	return msg, nil
}

// Relay builds the outbound copy of a forwarded frame: type and payload
// only, room and role stripped.
func Relay(typ string, payload json.RawMessage) Message {
	return Message{Type: typ, Payload: payload}
}

// Overridden is the one-time advisory sent when the fixed-room policy
// substitutes the effective room.
func Overridden(room string) Message {
	payload, _ := json.Marshal(struct {
		Room string `json:"room"`
	}{Room: room})
	return Message{Type: TypeRoomOverridden, Payload: payload}
}

// ReadyFor returns the readiness notification addressed to the given role:
// the monitor is told the viewer is ready and vice versa.
func ReadyFor(r Role) Message {
	if r == RoleMonitor {
		return Message{Type: TypeViewerReady}
	}
	return Message{Type: TypeMonitorReady}
}

// LeftFor returns the departure notification addressed to the surviving
// role.
func LeftFor(survivor Role) Message {
	if survivor == RoleMonitor {
		return Message{Type: TypeViewerLeft}
	}
	return Message{Type: TypeMonitorLeft}
}

// Occupant is a connection's identity plus its outbound wire, as seen by
// the room table. Slot membership is compared by ID.
type Occupant struct {
	ID   string
	Wire Wire
}

const defaultWireBuffer = 32

// Wire is the outbound path of one websocket session. The core pushes
// messages into TX and the session's sender goroutine drains it.
type Wire struct {
	TX chan Message
}

func NewWire() Wire {
	return Wire{
		TX: make(chan Message, defaultWireBuffer),
	}
}

// TrySend queues msg without blocking. A full or abandoned wire drops the
// message; signaling is defined to tolerate lost notifications.
func (w Wire) TrySend(msg Message) bool {
	select {
	case w.TX <- msg:
		return true
	default:
		return false
	}
}
