package render

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pulse.transitlab.org/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	clientBuffer   = 256
)

// Hub broadcasts every boundary write to connected websocket clients.
// Slow clients whose buffer fills are disconnected.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
	replay   func() []Op
	seq      atomic.Uint64

	mu      sync.Mutex
	clients map[*hubClient]struct{}
	closed  bool
}

type hubClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *hubClient) close() {
	c.once.Do(func() { close(c.send) })
}

// NewHub creates a Hub. replay, when non-nil, provides the operations sent to
// a client right after it connects.
func NewHub(logger *slog.Logger, replay func() []Op) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logging.ForComponent(logger, "stream"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		replay:  replay,
		clients: make(map[*hubClient]struct{}),
	}
}

func (h *Hub) SetText(elementID, text string) {
	h.Broadcast(textOp(elementID, text))
}

func (h *Hub) SetMarkerPosition(markerID string, lat, lng float64) {
	h.Broadcast(markerPositionOp(markerID, lat, lng))
}

func (h *Hub) SetMarkerDetail(markerID, html string) {
	h.Broadcast(markerDetailOp(markerID, html))
}

func (h *Hub) SetRoutePath(routeID, color string, path []Point) {
	h.Broadcast(routePathOp(routeID, color, path))
}

func (h *Hub) RenderChart(containerID string, chart Chart) {
	h.Broadcast(chartOp(containerID, chart.Clone()))
}

func (h *Hub) AppendChartPoint(containerID, label string, value float64) {
	h.Broadcast(chartPointOp(containerID, label, value))
}

func (h *Hub) Notify(message string, severity Severity) {
	h.Broadcast(notifyOp(message, severity))
}

// Broadcast stamps op with the next sequence number and queues it for every
// client.
func (h *Hub) Broadcast(op Op) {
	op.Seq = h.seq.Add(1)
	payload, err := json.Marshal(op)
	if err != nil {
		logging.LogError(h.logger, "failed to encode stream operation", err,
			slog.String("type", string(op.Type)))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			delete(h.clients, c)
			c.close()
			h.logger.Warn("dropping slow stream client", slog.String("client_id", c.id))
		}
	}
}

// Clients reports the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams operations until the client goes
// away or the hub is closed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.LogError(h.logger, "websocket upgrade failed", err)
		return
	}

	c := &hubClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}

	// The snapshot is taken and the client registered under one lock, so every
	// write is either in the replay or broadcast to the client afterwards.
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	if h.replay != nil {
		for _, op := range h.replay() {
			payload, err := json.Marshal(op)
			if err != nil {
				continue
			}
			c.send <- payload
			if len(c.send) == cap(c.send) {
				break
			}
		}
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	logging.LogOperation(h.logger, "stream_client_connected", slog.String("client_id", c.id))

	go h.writePump(c)
	h.readPump(c)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

func (h *Hub) unregister(c *hubClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

func (h *Hub) readPump(c *hubClient) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
		logging.LogOperation(h.logger, "stream_client_disconnected", slog.String("client_id", c.id))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *hubClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
