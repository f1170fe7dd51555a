package server

import (
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/roomchat/internal/chat"
)

func newTestHub() *Hub {
	return NewHub(logs.GetLoggerFromLevel(slog.LevelDebug))
}

// detachedClient has no socket; only the hub bookkeeping is exercised.
func detachedClient(h *Hub, handle chat.Handle, buffer int) *Client {
	return &Client{
		send:   make(chan []byte, buffer),
		hub:    h,
		handle: handle,
		addr:   "test",
		log:    h.log,
	}
}

func TestHub_DeliverUnknownHandle(t *testing.T) {
	h := newTestHub()
	require.False(t, h.Deliver("nobody", []byte("x")))
}

func TestHub_DeliverQueuesFrame(t *testing.T) {
	req := require.New(t)
	h := newTestHub()
	c := detachedClient(h, "a", 2)
	h.add(c)

	req.True(h.Deliver("a", []byte("one")))
	req.True(h.Deliver("a", []byte("two")))
	req.Equal([]byte("one"), <-c.send)
	req.Equal([]byte("two"), <-c.send)
	req.Equal(1, h.Len())
}

func TestHub_DeliverEvictsSlowClient(t *testing.T) {
	req := require.New(t)
	h := newTestHub()
	c := detachedClient(h, "slow", 1)
	h.add(c)

	req.True(h.Deliver("slow", []byte("fits")))
	req.False(h.Deliver("slow", []byte("overflow")))

	h.mutex.RLock()
	req.True(c.closing)
	h.mutex.RUnlock()

	req.False(h.Deliver("slow", []byte("after eviction")))
	req.Len(c.send, 1)
}

func TestHub_RemoveClosesSendChannel(t *testing.T) {
	req := require.New(t)
	h := newTestHub()
	c := detachedClient(h, "a", 1)
	h.add(c)

	h.remove(c)
	_, ok := <-c.send
	req.False(ok)
	req.Zero(h.Len())

	// A second removal is a no-op.
	h.remove(c)
}

func TestHub_RemoveIgnoresStaleClient(t *testing.T) {
	req := require.New(t)
	h := newTestHub()
	stale := detachedClient(h, "a", 1)
	current := detachedClient(h, "a", 1)
	h.add(stale)
	h.add(current)

	h.remove(stale)
	req.Equal(1, h.Len())
	req.True(h.Deliver("a", []byte("still here")))
}

func TestHub_UnregisterAfterShutdown(t *testing.T) {
	req := require.New(t)
	h := newTestHub()
	go h.Run()

	c := detachedClient(h, "a", 1)
	h.add(c)
	req.NoError(h.Shutdown(time.Second))

	done := make(chan struct{})
	go func() {
		h.Unregister(c)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Unregister blocked after shutdown")
	}
	req.Zero(h.Len())
}

func TestHub_ShutdownWithoutClients(t *testing.T) {
	h := newTestHub()
	go h.Run()
	require.NoError(t, h.Shutdown(time.Second))
}
