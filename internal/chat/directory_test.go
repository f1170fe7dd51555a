package chat

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRooms = []string{"general", "sports", "tech", "random"}

func newTestDirectory(t *testing.T) (*Directory, *Registry) {
	t.Helper()
	registry := NewRegistry()
	d, err := NewDirectory(registry, testRooms)
	require.NoError(t, err)
	return d, registry
}

func TestRegistry_RegisterResolveUnregister(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	h := NewHandle()

	_, ok := r.Resolve(h)
	req.False(ok)

	r.Register(h, "alice")
	r.Register(h, "alicia")
	name, ok := r.Resolve(h)
	req.True(ok)
	req.Equal("alicia", name)
	req.Equal(1, r.Len())

	r.Unregister(h)
	r.Unregister(h)
	_, ok = r.Resolve(h)
	req.False(ok)
	req.Equal(0, r.Len())
}

func TestNewDirectory_Validation(t *testing.T) {
	req := require.New(t)

	_, err := NewDirectory(NewRegistry(), nil)
	req.ErrorIs(err, ErrNoRooms)

	_, err = NewDirectory(NewRegistry(), []string{"general", "tech", "general"})
	req.ErrorIs(err, ErrDuplicateRoom)
}

func TestDirectory_JoinMovesHandle(t *testing.T) {
	req := require.New(t)
	d, registry := newTestDirectory(t)
	h := NewHandle()
	registry.Register(h, "alice")

	req.NoError(d.Join(h, "general", func(prev, next *Room) {
		req.Nil(prev)
		req.Equal("general", next.Name())
	}))
	req.NoError(d.Join(h, "tech", func(prev, next *Room) {
		req.Equal("general", prev.Name())
		req.Equal("tech", next.Name())
		req.Empty(prev.handles())
		req.Equal([]Handle{h}, next.handles())
	}))

	general, err := d.MembersOf("general")
	req.NoError(err)
	req.Empty(general)
	tech, err := d.MembersOf("tech")
	req.NoError(err)
	req.Equal([]string{"alice"}, tech)

	room, ok := d.RoomOf(h)
	req.True(ok)
	req.Equal("tech", room)
}

func TestDirectory_JoinSameRoomKeepsSingleMembership(t *testing.T) {
	req := require.New(t)
	d, _ := newTestDirectory(t)
	h := NewHandle()

	req.NoError(d.Join(h, "sports", nil))
	req.NoError(d.Join(h, "sports", func(prev, next *Room) {
		req.Same(prev, next)
	}))

	handles, err := d.Handles("sports")
	req.NoError(err)
	req.Equal([]Handle{h}, handles)
}

func TestDirectory_JoinUnknownRoom(t *testing.T) {
	req := require.New(t)
	d, _ := newTestDirectory(t)
	h := NewHandle()
	req.NoError(d.Join(h, "general", nil))

	err := d.Join(h, "cooking", func(_, _ *Room) {
		req.Fail("callback must not run")
	})
	req.ErrorIs(err, ErrUnknownRoom)

	room, _ := d.RoomOf(h)
	req.Equal("general", room)
}

func TestDirectory_Leave(t *testing.T) {
	req := require.New(t)
	d, _ := newTestDirectory(t)
	h := NewHandle()

	req.False(d.Leave(h, func(*Room) { req.Fail("callback must not run") }))

	req.NoError(d.Join(h, "random", nil))
	req.True(d.Leave(h, func(prev *Room) {
		req.Equal("random", prev.Name())
		req.Empty(prev.handles())
	}))
	_, ok := d.RoomOf(h)
	req.False(ok)
}

func TestDirectory_MembersOfSkipsUnresolvedHandles(t *testing.T) {
	req := require.New(t)
	d, registry := newTestDirectory(t)
	named, anonymous := NewHandle(), NewHandle()
	registry.Register(named, "bob")

	req.NoError(d.Join(named, "general", nil))
	req.NoError(d.Join(anonymous, "general", nil))

	members, err := d.MembersOf("general")
	req.NoError(err)
	req.Equal([]string{"bob"}, members)

	_, err = d.MembersOf("cooking")
	req.ErrorIs(err, ErrUnknownRoom)
}

func TestDirectory_ConcurrentAppendsGetDistinctIndices(t *testing.T) {
	req := require.New(t)
	d, _ := newTestDirectory(t)

	const senders, perSender = 20, 50
	results := make(chan int, senders*perSender)
	errs := make(chan error, senders*perSender)
	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				msg := Message{Sender: fmt.Sprintf("user-%d", id), Text: "x"}
				errs <- d.History("general", func(h History) {
					results <- h.Append(msg)
				})
			}
		}(s)
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		req.NoError(err)
	}

	got := make([]int, 0, senders*perSender)
	for i := range results {
		got = append(got, i)
	}
	sort.Ints(got)
	req.Equal(lo.Range(senders*perSender), got)
}

func TestDirectory_ConcurrentJoinsKeepMembershipPartitioned(t *testing.T) {
	req := require.New(t)
	d, registry := newTestDirectory(t)

	handles := make([]Handle, 16)
	for i := range handles {
		handles[i] = NewHandle()
		registry.Register(handles[i], fmt.Sprintf("user-%d", i))
	}

	var wg sync.WaitGroup
	for i, h := range handles {
		wg.Add(1)
		go func(i int, h Handle) {
			defer wg.Done()
			for step := 0; step < 200; step++ {
				room := testRooms[(i+step)%len(testRooms)]
				assert.NoError(t, d.Join(h, room, func(prev, next *Room) {
					if prev != nil && prev != next {
						assert.NotContains(t, prev.members, h)
					}
					assert.Contains(t, next.members, h)
				}))
			}
		}(i, h)
	}
	wg.Wait()

	total := 0
	for _, room := range testRooms {
		inRoom, err := d.Handles(room)
		req.NoError(err)
		req.Len(lo.Uniq(inRoom), len(inRoom))
		for _, h := range inRoom {
			current, ok := d.RoomOf(h)
			req.True(ok)
			req.Equal(room, current)
		}
		total += len(inRoom)
	}
	req.Equal(len(handles), total)
}
