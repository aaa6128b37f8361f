package memory

import (
	"sync"

	"github.com/ragnarcam/server/backend/model"
)

type room struct {
	monitor *model.Occupant
	viewer  *model.Occupant
}

func (r *room) slot(role model.Role) **model.Occupant {
	if role == model.RoleMonitor {
		return &r.monitor
	}
	return &r.viewer
}

// MemStore is the room table: at most one monitor and one viewer per room
// key. Rooms are created lazily on bind and deleted the moment both slots
// are empty.
//
// One mutex covers every bind/forward/unbind together with the
// notifications it produces, so a pairing check can never observe a room
// mid-mutation. Notification sends are non-blocking wire pushes and cannot
// stall the table.
type MemStore struct {
	mx *sync.Mutex
	db map[string]*room
}

func NewMemStore() *MemStore {
	return &MemStore{
		mx: &sync.Mutex{},
		db: make(map[string]*room),
	}
}

// Bind places occ into the role slot of roomKey, creating the room if
// needed and unconditionally replacing any previous occupant. The replaced
// connection keeps its transport but no longer receives routed messages.
// If the bind leaves both slots occupied, each side gets its readiness
// notification. Returns whether the room is now paired.
func (ms *MemStore) Bind(roomKey string, role model.Role, occ model.Occupant) bool {
	ms.mx.Lock()
	defer ms.mx.Unlock()

	r, ok := ms.db[roomKey]
	if !ok {
		r = &room{}
		ms.db[roomKey] = r
	}

	*r.slot(role) = &occ

	if r.monitor == nil || r.viewer == nil {
		return false
	}
	r.monitor.Wire.TrySend(model.ReadyFor(model.RoleMonitor))
	r.viewer.Wire.TrySend(model.ReadyFor(model.RoleViewer))
	return true
}

// Forward relays msg to the counterpart of from in roomKey. A missing room
// or empty counterpart slot drops the message; the peer may simply not
// have joined yet.
func (ms *MemStore) Forward(roomKey string, from model.Role, msg model.Message) bool {
	ms.mx.Lock()
	defer ms.mx.Unlock()

	r, ok := ms.db[roomKey]
	if !ok {
		return false
	}
	dst := *r.slot(from.Counterpart())
	if dst == nil {
		return false
	}
	return dst.Wire.TrySend(msg)
}

// Unbind clears whichever slot of roomKey holds the connection with the
// given id. An empty room is deleted outright; otherwise the survivor is
// told its counterpart left. A connection absent from both slots (already
// replaced, or never bound here) is a no-op.
func (ms *MemStore) Unbind(roomKey string, id string) {
	ms.mx.Lock()
	defer ms.mx.Unlock()

	r, ok := ms.db[roomKey]
	if !ok {
		return
	}

	var cleared bool
	if r.monitor != nil && r.monitor.ID == id {
		r.monitor = nil
		cleared = true
	}
	if r.viewer != nil && r.viewer.ID == id {
		r.viewer = nil
		cleared = true
	}
	if !cleared {
		return
	}

	switch {
	case r.monitor == nil && r.viewer == nil:
		delete(ms.db, roomKey)
	case r.monitor != nil:
		r.monitor.Wire.TrySend(model.LeftFor(model.RoleMonitor))
	default:
		r.viewer.Wire.TrySend(model.LeftFor(model.RoleViewer))
	}
}

// RoomView is a point-in-time copy of one room's slot occupancy, keyed by
// occupant id.
type RoomView struct {
	Monitor string
	Viewer  string
}

// Snapshot copies the current table state. Used by tests and debug
// logging.
func (ms *MemStore) Snapshot() map[string]RoomView {
	ms.mx.Lock()
	defer ms.mx.Unlock()

	out := make(map[string]RoomView, len(ms.db))
	for key, r := range ms.db {
		var view RoomView
		if r.monitor != nil {
			view.Monitor = r.monitor.ID
		}
		if r.viewer != nil {
			view.Viewer = r.viewer.ID
		}
		out[key] = view
	}
	return out
}
