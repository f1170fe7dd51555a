// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, room discovery and the built-in test page.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// RoomsResponse is the body served by RoomsHandler.
type RoomsResponse struct {
	Rooms       []string `json:"rooms"`
	DefaultRoom string   `json:"defaultRoom"`
	PageSize    int      `json:"pageSize"`
	Reactions   []string `json:"reactions"`
}

// WebSocketHandler upgrades GET requests from allowed origins and hands the
// connection to the hub, which starts its pumps.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "addr", r.RemoteAddr, "error", err)
		return
	}

	s.hub.Register(NewClient(conn, s.hub, s.router, r.RemoteAddr, s.cfg))
}

// HealthHandler reports that the server is up.
func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Chat server running...")
}

// RoomsHandler lists the configured rooms so clients can build their UI.
func (s *Server) RoomsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	body := RoomsResponse{
		Rooms:       s.directory.Rooms(),
		DefaultRoom: s.cfg.DefaultRoom,
		PageSize:    s.cfg.PageSize,
		Reactions:   s.cfg.ReactionList(),
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Warn("Error writing rooms response", "error", err)
	}
}

// TestPageHandler serves a minimal browser client for manual testing.
func (s *Server) TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if _, err := fmt.Fprint(w, testPage); err != nil {
		s.log.Warn("Error writing HTML response", "error", err)
	}
}

const testPage = `<!DOCTYPE html>
<html>
<head>
    <title>Room Chat Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages { border: 1px solid #ccc; height: 300px; padding: 10px; overflow-y: scroll; margin: 10px 0; background-color: #f9f9f9; }
        input[type="text"] { width: 220px; padding: 5px; margin-right: 10px; }
        button { padding: 5px 15px; background-color: #007cba; color: white; border: none; cursor: pointer; }
        .system { color: gray; font-style: italic; }
    </style>
</head>
<body>
    <h1>Room Chat Test</h1>
    <div>
        <input type="text" id="name" placeholder="Display name">
        <select id="room"></select>
        <button onclick="connect()">Connect</button>
    </div>
    <div id="online" class="system"></div>
    <div id="messages"></div>
    <div>
        <input type="text" id="text" placeholder="Type a message...">
        <button onclick="sendText()">Send</button>
        <button onclick="loadMore()">Older</button>
    </div>
    <script>
        let ws = null;
        let page = 0;
        const messages = document.getElementById('messages');
        const room = document.getElementById('room');

        fetch('/rooms').then(r => r.json()).then(cfg => {
            cfg.rooms.forEach(name => room.add(new Option(name, name, name === cfg.defaultRoom, name === cfg.defaultRoom)));
        });
        room.addEventListener('change', () => send('joinRoom', room.value));

        function line(text, cls) {
            const el = document.createElement('div');
            if (cls) el.className = cls;
            el.textContent = text;
            messages.appendChild(el);
            messages.scrollTop = messages.scrollHeight;
        }

        function send(event, data) {
            if (ws && ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify({event, data}));
        }

        function connect() {
            const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
            ws = new WebSocket(scheme + location.host + '/ws');
            ws.onopen = () => { send('login', document.getElementById('name').value); send('joinRoom', room.value); };
            ws.onclose = () => line('Connection closed', 'system');
            ws.onmessage = e => {
                const msg = JSON.parse(e.data);
                switch (msg.event) {
                case 'initialMessages': messages.innerHTML = ''; page = 0; msg.data.forEach(m => line(m.sender + ': ' + (m.text || m.fileName))); break;
                case 'olderMessages': msg.data.reverse().forEach(m => messages.prepend(Object.assign(document.createElement('div'), {textContent: m.sender + ': ' + (m.text || m.fileName)}))); break;
                case 'chatMessage': case 'fileMessage': line(msg.data.sender + ': ' + (msg.data.text || msg.data.fileName)); break;
                case 'notification': line(msg.data, 'system'); break;
                case 'onlineUsers': document.getElementById('online').textContent = 'Online: ' + msg.data.join(', '); break;
                case 'typing': line(msg.data + ' is typing...', 'system'); break;
                case 'messageReaction': line(msg.data.user + ' reacted ' + msg.data.reaction + ' to #' + msg.data.messageId, 'system'); break;
                }
            };
        }

        function sendText() {
            const input = document.getElementById('text');
            if (input.value.trim()) send('chatMessage', {text: input.value, room: room.value});
            input.value = '';
        }

        function loadMore() {
            page += 1;
            send('loadMore', {room: room.value, page});
        }
    </script>
</body>
</html>`
