//go:generate go run go.uber.org/mock/mockgen -source=router.go -destination=mocks/mock_sender.go -package=mocks
package chat

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// DefaultReactions is the reaction set used when none is configured.
var DefaultReactions = []string{"❤️", "😂", "👍", "🔥", "😮"}

// DefaultPageSize is the history window used when none is configured.
const DefaultPageSize = 15

// Sender delivers encoded frames to live connections.
//
// Deliver is called while room locks are held, so it must not block and
// must not call back into the Router. It reports whether the frame was
// queued; a frame that cannot be queued is simply lost.
type Sender interface {
	Deliver(h Handle, frame []byte) bool
}

// RouterConfig tunes a Router.
type RouterConfig struct {
	DefaultRoom string
	PageSize    int
	Reactions   []string
	MaxFileSize int
	Moderator   *Moderator
	Clock       func() time.Time
}

// Router applies inbound client events to the registry, directory and
// message store and fans the results out through a Sender.
//
// Each connection moves through Anonymous -> Active(room) -> Closed. Events
// for a connection must be dispatched from a single goroutine; different
// connections may dispatch concurrently.
type Router struct {
	registry *Registry
	rooms    *Directory
	presence Presence
	out      Sender
	log      *slog.Logger
	cfg      RouterConfig
}

// NewRouter creates a Router. DefaultRoom must name a room of rooms; when
// empty the first configured room is used.
func NewRouter(registry *Registry, rooms *Directory, out Sender, log *slog.Logger, cfg RouterConfig) (*Router, error) {
	if cfg.DefaultRoom == "" {
		cfg.DefaultRoom = rooms.names[0]
	}
	if !rooms.Has(cfg.DefaultRoom) {
		return nil, errors.Wrapf(ErrUnknownRoom, "default room %q", cfg.DefaultRoom)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if len(cfg.Reactions) == 0 {
		cfg.Reactions = DefaultReactions
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Router{
		registry: registry,
		rooms:    rooms,
		presence: Presence{registry: registry},
		out:      out,
		log:      log,
		cfg:      cfg,
	}, nil
}

// Dispatch decodes one raw frame from h and applies it. Events that are
// malformed, reference unknown rooms or messages, or arrive before login
// are logged and dropped; nothing is reported to the client.
func (r *Router) Dispatch(h Handle, raw []byte) {
	env, err := DecodeEnvelope(raw)
	if err == nil {
		err = r.route(h, env)
	}
	if err != nil {
		r.log.Debug("Dropping event", "handle", h, "event", env.Event, "error", err)
	}
}

func (r *Router) route(h Handle, env Envelope) error {
	switch env.Event {
	case EventLogin:
		name, err := decodeString(env)
		if err != nil {
			return err
		}
		return r.Login(h, name)

	case EventJoinRoom:
		room, err := decodeString(env)
		if err != nil {
			return err
		}
		if room == "" {
			return errors.Wrapf(ErrMalformedEvent, "%s: missing room", env.Event)
		}
		return r.JoinRoom(h, room)

	case EventLoadMore:
		req, err := decodePayload[loadMoreRequest](env)
		if err != nil {
			return err
		}
		return r.LoadMore(h, req.Room, *req.Page)

	case EventChatMessage:
		req, err := decodePayload[chatMessageRequest](env)
		if err != nil {
			return err
		}
		return r.SendMessage(h, req.Room, req.Text)

	case EventUploadFile:
		req, err := decodePayload[uploadFileRequest](env)
		if err != nil {
			return err
		}
		return r.SendFile(h, req.Room, req.File, req.FileName)

	case EventTyping, EventStopTyping:
		room, err := decodeString(env)
		if err != nil {
			return err
		}
		return r.Typing(h, room, env.Event == EventStopTyping)

	case EventReactMessage:
		req, err := decodePayload[reactMessageRequest](env)
		if err != nil {
			return err
		}
		return r.React(h, req.Room, *req.MessageID, req.Reaction)
	}
	return errors.Wrapf(ErrUnknownEvent, "%q", env.Event)
}

// Login binds name to h and places h in the default room. The new
// connection receives the recent history; the room receives the updated
// online list and a join notice. Logging in again on the same connection
// rebinds the name and moves it back to the default room.
func (r *Router) Login(h Handle, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyDisplayName
	}
	r.registry.Register(h, name)

	return r.rooms.Join(h, r.cfg.DefaultRoom, func(prev, next *Room) {
		r.emit([]Handle{h}, EventInitialMessages, toWireList(next.history.Recent(r.cfg.PageSize)))
		if prev != nil && prev != next {
			r.broadcastPresence(prev)
		}
		r.broadcastPresence(next)
		r.emit(others(next, h), EventNotification, fmt.Sprintf("%s joined %s chat", name, next.name))
	})
}

// JoinRoom moves h into room. Joining the current room again leaves the
// membership unchanged but still resends history and presence.
func (r *Router) JoinRoom(h Handle, room string) error {
	if _, ok := r.registry.Resolve(h); !ok {
		return ErrNotLoggedIn
	}
	if _, ok := r.rooms.RoomOf(h); !ok {
		return ErrNotLoggedIn
	}

	return r.rooms.Join(h, room, func(prev, next *Room) {
		r.emit([]Handle{h}, EventNotification, "Switched to room: "+next.name)
		r.emit([]Handle{h}, EventInitialMessages, toWireList(next.history.Recent(r.cfg.PageSize)))
		if prev != nil && prev != next {
			r.broadcastPresence(prev)
		}
		r.broadcastPresence(next)
	})
}

// LoadMore sends h the page-th window of older messages of its room.
func (r *Router) LoadMore(h Handle, room string, page int) error {
	_, current, err := r.session(h, room)
	if err != nil {
		return err
	}
	return r.rooms.With(current, func(rm *Room) {
		r.emit([]Handle{h}, EventOlderMessages, toWireList(rm.history.Page(page, r.cfg.PageSize)))
	})
}

// SendMessage appends a text message to h's room and broadcasts it to
// every member, sender included. Whitespace-only text is dropped.
func (r *Router) SendMessage(h Handle, room, text string) error {
	name, current, err := r.session(h, room)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	msg := Message{
		Sender:    name,
		Text:      r.cfg.Moderator.Censor(text),
		CreatedAt: r.cfg.Clock().UTC(),
		Room:      current,
	}
	return r.rooms.With(current, func(rm *Room) {
		r.publish(rm, EventChatMessage, msg)
	})
}

// SendFile appends a file message to h's room and broadcasts it as a
// fileMessage so clients can render it apart from text.
func (r *Router) SendFile(h Handle, room, payload, fileName string) error {
	name, current, err := r.session(h, room)
	if err != nil {
		return err
	}
	data, mime, err := decodeFile(payload, r.cfg.MaxFileSize)
	if err != nil {
		return err
	}

	msg := Message{
		Sender:    name,
		File:      data,
		FileName:  r.cfg.Moderator.Censor(fileName),
		MimeType:  mime,
		CreatedAt: r.cfg.Clock().UTC(),
		Room:      current,
	}
	return r.rooms.With(current, func(rm *Room) {
		r.publish(rm, EventFileMessage, msg)
	})
}

// Typing tells everyone else in h's room that h started (or stopped)
// typing. Nothing is stored.
func (r *Router) Typing(h Handle, room string, stop bool) error {
	name, current, err := r.session(h, room)
	if err != nil {
		return err
	}
	event := EventTyping
	if stop {
		event = EventStopTyping
	}
	return r.rooms.With(current, func(rm *Room) {
		r.emit(others(rm, h), event, name)
	})
}

// React increments the reaction counter of message id in h's room and
// broadcasts the new count to every member. Unknown ids are ignored.
func (r *Router) React(h Handle, room string, id int, reaction string) error {
	name, current, err := r.session(h, room)
	if err != nil {
		return err
	}
	if !lo.Contains(r.cfg.Reactions, reaction) {
		return errors.Wrapf(ErrUnknownReaction, "%q", reaction)
	}

	var found bool
	err = r.rooms.With(current, func(rm *Room) {
		count, ok := rm.history.React(id, reaction)
		if !ok {
			return
		}
		found = true
		r.emit(rm.handles(), EventMessageReaction, ReactionEvent{
			MessageID: id,
			User:      name,
			Reaction:  reaction,
			Count:     count,
		})
	})
	if err == nil && !found {
		err = errors.Wrapf(ErrMessageNotFound, "message %d in %q", id, current)
	}
	return err
}

// Disconnect forgets h. The room it was in receives the new online list
// and, when h had logged in, a departure notice. Disconnecting a handle
// that never logged in does nothing.
func (r *Router) Disconnect(h Handle) {
	name, named := r.registry.Resolve(h)
	left := r.rooms.Leave(h, func(prev *Room) {
		r.registry.Unregister(h)
		r.broadcastPresence(prev)
		if named {
			r.emit(prev.handles(), EventNotification, name+" left the chat")
		}
	})
	if !left {
		r.registry.Unregister(h)
	}
}

// session resolves h's display name and current room. room, when not
// empty, must be the current room.
func (r *Router) session(h Handle, room string) (name, current string, err error) {
	name, ok := r.registry.Resolve(h)
	if !ok {
		return "", "", ErrNotLoggedIn
	}
	current, ok = r.rooms.RoomOf(h)
	if !ok {
		return "", "", ErrNotLoggedIn
	}
	if room != "" && room != current {
		if !r.rooms.Has(room) {
			return "", "", errors.Wrapf(ErrUnknownRoom, "%q", room)
		}
		return "", "", errors.Wrapf(ErrRoomMismatch, "%q, in %q", room, current)
	}
	return name, current, nil
}

// publish appends msg to rm and broadcasts it. The caller holds rm locked.
func (r *Router) publish(rm *Room, event string, msg Message) {
	index := rm.history.Append(msg)
	r.emit(rm.handles(), event, toWire(Record{Index: index, Message: msg}))
}

// broadcastPresence sends the online list of rm to all its members. The
// caller holds rm locked.
func (r *Router) broadcastPresence(rm *Room) {
	online := r.presence.Online(rm)
	if online == nil {
		online = []string{}
	}
	r.emit(rm.handles(), EventOnlineUsers, online)
}

// emit encodes data once and delivers it to every target.
func (r *Router) emit(targets []Handle, event string, data any) {
	if len(targets) == 0 {
		return
	}
	frame, err := EncodeFrame(event, data)
	if err != nil {
		r.log.Error("Failed to encode frame", "event", event, "error", err)
		return
	}
	delivered := 0
	for _, h := range targets {
		if r.out.Deliver(h, frame) {
			delivered++
		}
	}
	r.log.Debug("Fan-out", "event", event, "targets", len(targets), "delivered", delivered)
}

func others(rm *Room, h Handle) []Handle {
	return lo.Without(rm.handles(), h)
}
