package chat

import (
	"slices"
	"sync"
)

// Room is one of the statically configured channels. It owns a membership
// list, kept in join order, and a message History. Both are guarded by mu;
// the unexported accessors below must only be used while the Directory
// holds the room locked.
type Room struct {
	name    string
	order   int
	mu      sync.Mutex
	members []Handle
	history History
}

func newRoom(name string, order int, history History) *Room {
	return &Room{name: name, order: order, history: history}
}

// Name returns the room name.
func (r *Room) Name() string {
	return r.name
}

func (r *Room) add(h Handle) bool {
	if slices.Contains(r.members, h) {
		return false
	}
	r.members = append(r.members, h)
	return true
}

func (r *Room) remove(h Handle) bool {
	i := slices.Index(r.members, h)
	if i < 0 {
		return false
	}
	r.members = slices.Delete(r.members, i, i+1)
	return true
}

func (r *Room) handles() []Handle {
	return slices.Clone(r.members)
}

// lockRooms locks a and b in a fixed order so two connections moving in
// opposite directions cannot deadlock. Either room may be nil and both may
// be the same room.
func lockRooms(a, b *Room) (unlock func()) {
	switch {
	case a == nil && b == nil:
		return func() {}
	case a == nil || a == b:
		b.mu.Lock()
		return b.mu.Unlock
	case b == nil:
		a.mu.Lock()
		return a.mu.Unlock
	}
	first, second := a, b
	if second.order < first.order {
		first, second = second, first
	}
	first.mu.Lock()
	second.mu.Lock()
	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}
