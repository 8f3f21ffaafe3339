package server

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ayusman/abhinaya/internal/landmark"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// FrameSink accepts decoded landmark frames.
type FrameSink interface {
	Submit(f landmark.Frame)
}

// LandmarksHandler accepts landmark frames pushed by tracking backends over
// WebSocket. Undecodable messages are logged and dropped.
type LandmarksHandler struct {
	sink    FrameSink
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewLandmarksHandler creates a new LandmarksHandler submitting to sink.
func NewLandmarksHandler(sink FrameSink) *LandmarksHandler {
	return &LandmarksHandler{
		sink:    sink,
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LandmarksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	for {
		typ, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if typ != websocket.TextMessage && typ != websocket.BinaryMessage {
			continue
		}

		f, err := landmark.Decode(msg)
		if err != nil {
			log.Printf("dropping landmark message: %v", err)
			continue
		}
		h.sink.Submit(f)
	}
}

// Clients returns the number of connected producers.
func (h *LandmarksHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every producer.
func (h *LandmarksHandler) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
	}
}
