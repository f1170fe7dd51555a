package chat

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Directory is the fixed set of rooms plus the handle-to-room mapping.
// Every mutation locks only the rooms it touches, so operations on
// unrelated rooms run in parallel. The callbacks passed to Join, Leave and
// With run while those rooms are still locked: whatever they read (online
// lists, history windows) reflects the mutation that triggered them and
// nothing later.
type Directory struct {
	rooms    map[string]*Room
	names    []string
	registry *Registry
	presence Presence

	mu       sync.Mutex
	location map[Handle]*Room
}

// NewDirectory creates one room per name, each with an empty Log.
func NewDirectory(registry *Registry, names []string) (*Directory, error) {
	if len(names) == 0 {
		return nil, ErrNoRooms
	}
	if dup := lo.FindDuplicates(names); len(dup) > 0 {
		return nil, errors.Wrapf(ErrDuplicateRoom, "%q", dup[0])
	}

	d := &Directory{
		rooms:    make(map[string]*Room, len(names)),
		names:    append([]string(nil), names...),
		registry: registry,
		presence: Presence{registry: registry},
		location: make(map[Handle]*Room),
	}
	for i, name := range names {
		d.rooms[name] = newRoom(name, i, NewLog())
	}
	return d, nil
}

// Rooms returns the configured room names in configuration order.
func (d *Directory) Rooms() []string {
	return append([]string(nil), d.names...)
}

// Has reports whether name is a configured room.
func (d *Directory) Has(name string) bool {
	_, ok := d.rooms[name]
	return ok
}

// RoomOf returns the room h currently belongs to.
func (d *Directory) RoomOf(h Handle) (string, bool) {
	r := d.current(h)
	if r == nil {
		return "", false
	}
	return r.name, true
}

func (d *Directory) current(h Handle) *Room {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.location[h]
}

// Join moves h into the named room as one step: h is never seen in both
// rooms nor in neither. fn is called with the previous room (nil on first
// join, equal to next when re-joining the same room) while both rooms are
// still locked.
func (d *Directory) Join(h Handle, name string, fn func(prev, next *Room)) error {
	next, ok := d.rooms[name]
	if !ok {
		return errors.Wrapf(ErrUnknownRoom, "%q", name)
	}

	for {
		prev := d.current(h)
		unlock := lockRooms(prev, next)

		d.mu.Lock()
		if d.location[h] != prev {
			// Moved concurrently; retry against the new location.
			d.mu.Unlock()
			unlock()
			continue
		}
		if prev != nil && prev != next {
			prev.remove(h)
		}
		next.add(h)
		d.location[h] = next
		d.mu.Unlock()

		if fn != nil {
			fn(prev, next)
		}
		unlock()
		return nil
	}
}

// Leave removes h from its room. fn runs with that room still locked. It
// reports false, without calling fn, when h is in no room.
func (d *Directory) Leave(h Handle, fn func(prev *Room)) bool {
	for {
		prev := d.current(h)
		if prev == nil {
			return false
		}
		prev.mu.Lock()

		d.mu.Lock()
		if d.location[h] != prev {
			d.mu.Unlock()
			prev.mu.Unlock()
			continue
		}
		prev.remove(h)
		delete(d.location, h)
		d.mu.Unlock()

		if fn != nil {
			fn(prev)
		}
		prev.mu.Unlock()
		return true
	}
}

// With runs fn with the named room locked.
func (d *Directory) With(name string, fn func(r *Room)) error {
	r, ok := d.rooms[name]
	if !ok {
		return errors.Wrapf(ErrUnknownRoom, "%q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r)
	return nil
}

// MembersOf returns the display names currently online in the named room.
func (d *Directory) MembersOf(name string) ([]string, error) {
	var online []string
	err := d.With(name, func(r *Room) {
		online = d.presence.Online(r)
	})
	return online, err
}

// Handles returns the connection handles currently in the named room.
func (d *Directory) Handles(name string) ([]Handle, error) {
	var handles []Handle
	err := d.With(name, func(r *Room) {
		handles = r.handles()
	})
	return handles, err
}

// History runs fn against the named room's message store with the room
// locked.
func (d *Directory) History(name string, fn func(h History)) error {
	return d.With(name, func(r *Room) {
		fn(r.history)
	})
}
