package toast

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// KeyFunc resolves the session key for an incoming connection,
// typically from the session cookie. An empty key rejects the
// connection.
type KeyFunc func(r *http.Request) string

// WireHandler streams a session's notes over a WebSocket, one at a
// time, so toasts appear without a page reload. Notes already queued
// at connect time are delivered first, then live emissions follow.
type WireHandler struct {
	bus *Bus
	key KeyFunc
}

// NewWireHandler creates the WebSocket endpoint for a bus.
func NewWireHandler(bus *Bus, key KeyFunc) *WireHandler {
	return &WireHandler{bus: bus, key: key}
}

// ServeHTTP upgrades to WebSocket and runs the delivery loop.
func (h *WireHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := h.key(r)
	if key == "" {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("toast: websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	live, cancel := h.bus.Subscribe(key)
	defer cancel()

	// Drain the backlog before switching to live delivery.
	for {
		n, ok := h.bus.Next(key)
		if !ok {
			break
		}
		if err := h.send(ctx, conn, n); err != nil {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-live:
			// The channel only signals arrival; the queue stays the
			// single source of truth for ordering.
			for {
				n, ok := h.bus.Next(key)
				if !ok {
					break
				}
				if err := h.send(ctx, conn, n); err != nil {
					return
				}
			}
		}
	}
}

func (h *WireHandler) send(ctx context.Context, conn *websocket.Conn, n Note) error {
	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := wsjson.Write(wctx, conn, n); err != nil {
		log.Printf("toast: write: %v", err)
		return err
	}
	return nil
}
