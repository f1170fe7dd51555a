// Package server tracks live connections by handle and delivers encoded
// frames to them on behalf of the chat router.
package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// Hub owns every live Client. It implements chat.Sender: frames are queued
// onto a client's buffered send channel and a client whose buffer is full
// is disconnected instead of stalling the room.
type Hub struct {
	clients    map[chat.Handle]*Client
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	log        *slog.Logger
}

// NewHub creates a Hub. Call Run before registering clients.
func NewHub(log *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[chat.Handle]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		log:        log,
	}
}

// Deliver queues frame for the client behind h without blocking.
func (h *Hub) Deliver(handle chat.Handle, frame []byte) bool {
	h.mutex.RLock()
	client, ok := h.clients[handle]
	if !ok || client.closing {
		h.mutex.RUnlock()
		return false
	}

	select {
	case client.send <- frame:
		h.mutex.RUnlock()
		return true
	default:
	}
	h.mutex.RUnlock()

	h.evict(client)
	return false
}

// evict closes a slow client's socket. Its read pump then runs the regular
// disconnect path, so no router state is touched from here.
func (h *Hub) evict(client *Client) {
	h.mutex.Lock()
	if client.closing {
		h.mutex.Unlock()
		return
	}
	client.closing = true
	h.mutex.Unlock()

	h.log.Warn("Dropping client with full send buffer", "addr", client.addr, "handle", client.handle)
	go client.closeConnection()
}

// Register hands client to the hub, which starts its pumps.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeConnection()
	}
}

// Unregister removes client and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		h.remove(client)
	}
}

// Len returns the number of registered clients.
func (h *Hub) Len() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Run starts the hub's event loop. It returns after Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				h.log.Warn("Received nil client registration; skipping")
				continue
			}
			h.add(client)

			h.wg.Add(2)
			go func() {
				defer h.wg.Done()
				client.writePump()
			}()
			go func() {
				defer h.wg.Done()
				client.readPump()
			}()

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) add(client *Client) {
	h.mutex.Lock()
	h.clients[client.handle] = client
	clientCount := len(h.clients)
	h.mutex.Unlock()

	h.log.Info("Client registered", "addr", client.addr, "handle", client.handle, "clients", clientCount)
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	current, ok := h.clients[client.handle]
	if !ok || current != client {
		h.mutex.Unlock()
		return
	}
	delete(h.clients, client.handle)
	client.closing = true
	clientCount := len(h.clients)
	h.mutex.Unlock()

	close(client.send)
	h.log.Info("Client unregistered", "addr", client.addr, "handle", client.handle, "clients", clientCount)
}

func (h *Hub) shutdownClients() {
	h.log.Info("Shutting down all client connections")

	h.mutex.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.RUnlock()

	for _, client := range clients {
		client.closeConnection()
	}

	h.log.Info("Closed client connections", "count", len(clients))
}

// Shutdown stops the event loop, closes every connection and waits up to
// timeout for the pumps to exit.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("Initiating hub shutdown")

	h.cancel()
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("Hub shutdown completed")
		return nil
	case <-time.After(timeout):
		h.log.Warn("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
