// Package server assembles the chat core and the WebSocket transport into
// a runnable service.
package server

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// Server wires a chat.Router to a Hub of WebSocket clients.
type Server struct {
	cfg       Config
	log       *slog.Logger
	hub       *Hub
	router    *chat.Router
	directory *chat.Directory
	upgrader  websocket.Upgrader
}

// New builds a Server from cfg. The hub is not running until Start.
func New(cfg Config, log *slog.Logger) (*Server, error) {
	cfg = SanitizeConfig(cfg)

	registry := chat.NewRegistry()
	directory, err := chat.NewDirectory(registry, cfg.RoomList())
	if err != nil {
		return nil, errors.Wrap(err, "create room directory")
	}

	moderator, err := chat.NewModerator(cfg.CensoredWordList(), cfg.CensorRune())
	if err != nil {
		return nil, errors.Wrap(err, "build moderation dictionary")
	}

	hub := NewHub(log)
	router, err := chat.NewRouter(registry, directory, hub, log, chat.RouterConfig{
		DefaultRoom: cfg.DefaultRoom,
		PageSize:    cfg.PageSize,
		Reactions:   cfg.ReactionList(),
		MaxFileSize: cfg.MaxFileSize,
		Moderator:   moderator,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create router")
	}

	origins := newOriginPolicy(cfg.OriginList(), log)
	return &Server{
		cfg:       cfg,
		log:       log,
		hub:       hub,
		router:    router,
		directory: directory,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.check,
		},
	}, nil
}

// Start runs the hub in its own goroutine.
func (s *Server) Start() {
	go s.hub.Run()
	s.log.Info("Hub started and ready to manage WebSocket connections", "rooms", s.directory.Rooms())
}

// Shutdown closes every connection and waits up to timeout for them to drain.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.hub.Shutdown(timeout)
}
