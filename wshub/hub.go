// Package wshub streams reward sync messages to external clients over
// websockets. Every message carries the full ledger of a world, so a slow
// client only ever needs the newest one.
package wshub

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oriumgames/titanium/reward"
)

const (
	writeTimeout = 5 * time.Second
	readTimeout  = 60 * time.Second
	queueSize    = 4
)

// Hub implements reward.Broadcaster by fanning encoded messages out to every
// connected websocket client.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[chan []byte]struct{}
	last    []byte
}

// New returns a hub with no clients. A nil logger uses slog.Default.
func New(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[chan []byte]struct{}),
	}
}

// Broadcast queues msg for every client. A client that has not yet received
// its previous message loses it in favour of msg.
func (h *Hub) Broadcast(msg reward.SyncMessage) {
	b, err := msg.Encode()
	if err != nil {
		h.log.Error("wshub: failed to encode sync message", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = b
	for out := range h.clients {
		push(out, b)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func push(out chan []byte, b []byte) {
	for {
		select {
		case out <- b:
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}

func (h *Hub) register() chan []byte {
	out := make(chan []byte, queueSize)
	h.mu.Lock()
	h.clients[out] = struct{}{}
	if h.last != nil {
		out <- h.last
	}
	h.mu.Unlock()
	return out
}

func (h *Hub) unregister(out chan []byte) {
	h.mu.Lock()
	delete(h.clients, out)
	h.mu.Unlock()
}

// Handler upgrades requests to websocket connections. A new client receives
// the last broadcast message straight away.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		out := h.register()
		defer h.unregister(out)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
						cancel()
						_ = conn.Close()
						return
					}
				}
			}
		}()

		// Clients never send data; reading only notices when they leave.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
