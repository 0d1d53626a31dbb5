package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"steward/internal/core/health"
)

func NewRequestHandler(broadcaster *health.Broadcaster) *Handler {
	return &Handler{
		Broadcaster: broadcaster,
		Upgrader:    websocket.Upgrader{},
	}
}

type Handler struct {
	Broadcaster *health.Broadcaster
	Upgrader    websocket.Upgrader
}

// ServeHTTP handles GET /v1/health/stream (WebSocket). Every probe
// outcome is pushed to the client as one JSON text message.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	up := h.Upgrader
	if up.CheckOrigin == nil {
		up.CheckOrigin = func(r *http.Request) bool { return true }
	}

	ws, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer ws.Close()

	events, cancel := h.Broadcaster.Subscribe()
	defer cancel()

	// drain client frames so close handshakes are noticed
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-clientGone:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			b, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
				_ = ws.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream closed"),
					time.Now().Add(1*time.Second),
				)
				return
			}
		}
	}
}
