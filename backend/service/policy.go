package service

// RoomPolicy optionally pins every connection to a single room. When fixed
// is set the client-declared room is ignored; clients declaring a
// different room get a one-time room-overridden advisory.
type RoomPolicy struct {
	fixed string
}

func NewRoomPolicy(fixed string) RoomPolicy {
	return RoomPolicy{fixed: fixed}
}

// Fixed returns the pinned room key, empty when the policy is disabled.
func (p RoomPolicy) Fixed() string {
	return p.fixed
}

// Effective maps the client-declared room to the room the table will use.
// overridden reports that the client asked for a different room and should
// be advised.
func (p RoomPolicy) Effective(declared string) (effective string, overridden bool) {
	if p.fixed == "" {
		return declared, false
	}
	return p.fixed, declared != "" && declared != p.fixed
}
