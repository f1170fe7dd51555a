package chat

import "github.com/samber/lo"

// Presence derives the online list of a room by resolving its members
// through the Registry.
type Presence struct {
	registry *Registry
}

// Online returns the display names of everyone in r, in join order. A
// member the registry cannot resolve is left out; under the router's call
// order that never happens. The caller must hold r locked.
func (p Presence) Online(r *Room) []string {
	return lo.FilterMap(r.members, func(h Handle, _ int) (string, bool) {
		return p.registry.Resolve(h)
	})
}
