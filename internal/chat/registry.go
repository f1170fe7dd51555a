// Package chat implements the session and room coordinator of the relay:
// who is connected, which room each connection sits in, the per-room
// message history and the fan-out of events to room members.
package chat

import (
	"sync"

	"github.com/google/uuid"
)

// Handle is an opaque per-connection identifier. It is distinct from the
// display name a client chooses at login.
type Handle string

// NewHandle returns a fresh random handle.
func NewHandle() Handle {
	return Handle(uuid.NewString())
}

// Registry maps live connection handles to display names. It is pure
// bookkeeping and never broadcasts anything.
type Registry struct {
	mu    sync.RWMutex
	names map[Handle]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[Handle]string)}
}

// Register binds name to h, replacing any earlier binding so a repeated
// login on the same connection is harmless.
func (r *Registry) Register(h Handle, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[h] = name
}

// Unregister removes the binding for h. Unknown handles are ignored.
func (r *Registry) Unregister(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.names, h)
}

// Resolve returns the display name bound to h.
func (r *Registry) Resolve(h Handle) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.names[h]
	return name, ok
}

// Len reports how many handles are currently logged in.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}
