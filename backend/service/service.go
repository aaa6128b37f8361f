package service

import (
	"github.com/rs/zerolog"

	"github.com/ragnarcam/server/backend/model"
	"github.com/ragnarcam/server/backend/registry"
)

type (
	// RoomStore is the room table: slot binding, counterpart forwarding
	// and disconnect cleanup, each atomic per call.
	RoomStore interface {
		Bind(roomKey string, role model.Role, occ model.Occupant) bool
		Forward(roomKey string, from model.Role, msg model.Message) bool
		Unbind(roomKey string, id string)
	}

	// Service is the signaling router. Each connection's frames are handled
	// synchronously on its reader goroutine, so per-connection forwarding
	// order matches arrival order.
	Service struct {
		store  RoomStore
		reg    *registry.Registry
		policy RoomPolicy
		logger zerolog.Logger
	}

	Config struct {
		RoomStore RoomStore
		Registry  *registry.Registry
		Policy    RoomPolicy
		Logger    *zerolog.Logger
	}
)

func NewService(cfg Config) *Service {
	return &Service{
		store:  cfg.RoomStore,
		reg:    cfg.Registry,
		policy: cfg.Policy,
		logger: cfg.Logger.With().Str("component", "signaling").Logger(),
	}
}

// Connect admits a new transport connection with no room or role and
// returns its identity.
func (svc *Service) Connect(wire model.Wire) string {
	id := svc.reg.Add(wire)
	svc.logger.Debug().Str("connID", id).Msg("connection admitted")
	return id
}

// HandleMessage runs one inbound frame through the router. Malformed
// frames and precondition failures are dropped without penalizing the
// connection; signaling races are expected and benign.
func (svc *Service) HandleMessage(id string, raw []byte) {
	msg, err := model.Parse(raw)
	if err != nil {
		svc.logger.Debug().Err(err).Str("connID", id).Msg("dropping frame")
		return
	}

	effective, overridden := svc.policy.Effective(msg.Room)
	if overridden && svc.reg.MarkAdvised(id) {
		if wire, ok := svc.reg.Wire(id); ok {
			wire.TrySend(model.Overridden(effective))
		}
	}
	msg.Room = effective

	switch msg.Type {
	case model.TypeJoin:
		svc.join(id, msg)
	case model.TypeOffer:
		svc.relay(id, msg, model.RoleMonitor)
	case model.TypeAnswer:
		svc.relay(id, msg, model.RoleViewer)
	case model.TypeICECandidate:
		svc.relay(id, msg, "")
	}
}

func (svc *Service) join(id string, msg model.Message) {
	// post-policy: neither the client nor the fixed-room policy named a room
	if msg.Room == "" {
		svc.logger.Debug().Str("connID", id).Msg("join without room, dropped")
		return
	}
	err := svc.reg.Bind(id, registry.Binding{Room: msg.Room, Role: msg.Role})
	if err != nil {
		svc.logger.Debug().Err(err).
			Str("connID", id).
			Str("room", msg.Room).
			Str("role", string(msg.Role)).
			Msg("join ignored")
		return
	}
	wire, ok := svc.reg.Wire(id)
	if !ok {
		return
	}
	paired := svc.store.Bind(msg.Room, msg.Role, model.Occupant{ID: id, Wire: wire})
	svc.logger.Debug().
		Str("connID", id).
		Str("room", msg.Room).
		Str("role", string(msg.Role)).
		Bool("paired", paired).
		Msg("connection joined room")
}

// relay forwards msg's payload to the sender's counterpart. want pins the
// sender role required for this message kind; empty means either role.
func (svc *Service) relay(id string, msg model.Message, want model.Role) {
	b, ok := svc.reg.Binding(id)
	if !ok {
		return
	}
	if want != "" && b.Role != want {
		return
	}
	sent := svc.store.Forward(b.Room, b.Role, model.Relay(msg.Type, msg.Payload))
	if !sent {
		svc.logger.Trace().
			Str("connID", id).
			Str("room", b.Room).
			Str("type", msg.Type).
			Msg("no counterpart, frame dropped")
	}
}

// Disconnect clears the connection's room slot and notifies the surviving
// peer. Safe to call for connections that never joined, and idempotent
// against duplicate close events.
func (svc *Service) Disconnect(id string) {
	if b, ok := svc.reg.Binding(id); ok {
		svc.store.Unbind(b.Room, id)
		svc.logger.Debug().
			Str("connID", id).
			Str("room", b.Room).
			Str("role", string(b.Role)).
			Msg("connection left room")
	}
	svc.reg.Remove(id)
}
