package registry

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/ragnarcam/server/backend/model"
)

var (
	ErrAlreadyBound = errors.New("connection is already bound")
	ErrNotFound     = errors.New("connection is not registered")
)

// Binding is a connection's room and role, set once on the first valid
// join and immutable afterwards.
type Binding struct {
	Room string
	Role model.Role
}

type conn struct {
	wire    model.Wire
	binding *Binding
	advised bool
}

// Registry tracks live transport connections and their bindings. It is
// safe for concurrent use across connections; a single connection's
// messages arrive on one goroutine.
type Registry struct {
	mx *sync.Mutex
	db map[string]*conn
}

func New() *Registry {
	return &Registry{
		mx: &sync.Mutex{},
		db: make(map[string]*conn),
	}
}

// Add admits a new connection with no binding and returns its identity.
func (reg *Registry) Add(wire model.Wire) string {
	id := uuid.NewString()
	reg.mx.Lock()
	defer reg.mx.Unlock()
	reg.db[id] = &conn{wire: wire}
	return id
}

// Remove forgets the connection. Removing an unknown id is a no-op.
func (reg *Registry) Remove(id string) {
	reg.mx.Lock()
	defer reg.mx.Unlock()
	delete(reg.db, id)
}

// Bind sets the connection's binding. A repeated bind is accepted only if
// it restates the existing binding exactly.
func (reg *Registry) Bind(id string, b Binding) error {
	reg.mx.Lock()
	defer reg.mx.Unlock()
	c, ok := reg.db[id]
	if !ok {
		return ErrNotFound
	}
	if c.binding != nil {
		if *c.binding != b {
			return ErrAlreadyBound
		}
		return nil
	}
	c.binding = &b
	return nil
}

// Binding returns the connection's binding, or false if the connection is
// unknown or still unbound.
func (reg *Registry) Binding(id string) (Binding, bool) {
	reg.mx.Lock()
	defer reg.mx.Unlock()
	c, ok := reg.db[id]
	if !ok || c.binding == nil {
		return Binding{}, false
	}
	return *c.binding, true
}

// Wire returns the connection's outbound wire.
func (reg *Registry) Wire(id string) (model.Wire, bool) {
	reg.mx.Lock()
	defer reg.mx.Unlock()
	c, ok := reg.db[id]
	if !ok {
		return model.Wire{}, false
	}
	return c.wire, true
}

// MarkAdvised records that the room-override advisory was sent. Returns
// false if the connection was already advised, so the caller sends at most
// one advisory per connection.
func (reg *Registry) MarkAdvised(id string) bool {
	reg.mx.Lock()
	defer reg.mx.Unlock()
	c, ok := reg.db[id]
	if !ok || c.advised {
		return false
	}
	c.advised = true
	return true
}
