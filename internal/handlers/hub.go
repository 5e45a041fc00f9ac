// internal/handlers/hub.go
package handlers

import (
	"context"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/phaseten/internal/game"
	"github.com/jason-s-yu/phaseten/internal/protocol"
	"github.com/sirupsen/logrus"
)

// Connection is one live WebSocket client. Outbound frames are queued on
// OutChan and written by the connection's write pump.
type Connection struct {
	ID      uuid.UUID
	Remote  string
	OutChan chan []byte

	ws *websocket.Conn
}

// NewConnection builds a connection with a send buffer of the given size.
// ws may be nil for connections that are never written to a socket.
func NewConnection(id uuid.UUID, remote string, ws *websocket.Conn, buffer int) *Connection {
	return &Connection{
		ID:      id,
		Remote:  remote,
		OutChan: make(chan []byte, buffer),
		ws:      ws,
	}
}

// Write queues a frame without blocking. Reports false if the buffer was full
// and the frame was dropped.
func (c *Connection) Write(frame []byte) bool {
	select {
	case c.OutChan <- frame:
		return true
	default:
		return false
	}
}

// Hub tracks live connections and which rooms each one listens to. It is the
// game.Broadcaster the GameStore sends through.
type Hub struct {
	mu     sync.RWMutex
	conns  map[uuid.UUID]*Connection
	rooms  map[string]map[uuid.UUID]struct{}
	logger *logrus.Logger
}

var _ game.Broadcaster = (*Hub)(nil)

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		conns:  make(map[uuid.UUID]*Connection),
		rooms:  make(map[string]map[uuid.UUID]struct{}),
		logger: logger,
	}
}

// Register makes the connection reachable by SendTo and BroadcastRoom.
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn.ID] = conn
}

// Unregister forgets the connection and all of its room subscriptions.
func (h *Hub) Unregister(connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, connID)
	for roomID, members := range h.rooms {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// Len returns the number of registered connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Subscribe adds the connection to the room's channel.
func (h *Hub) Subscribe(connID uuid.UUID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[connID]; !ok {
		return
	}
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[uuid.UUID]struct{})
		h.rooms[roomID] = members
	}
	members[connID] = struct{}{}
}

// BroadcastRoom encodes ev once and queues it for every subscriber of the room.
func (h *Hub) BroadcastRoom(roomID string, ev game.Event) {
	frame, err := protocol.Encode(ev)
	if err != nil {
		h.logger.WithField("room", roomID).Errorf("dropping broadcast: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for connID := range h.rooms[roomID] {
		if conn, ok := h.conns[connID]; ok {
			h.deliver(conn, ev.Type, frame)
		}
	}
}

// SendTo queues ev for a single connection.
func (h *Hub) SendTo(connID uuid.UUID, ev game.Event) {
	frame, err := protocol.Encode(ev)
	if err != nil {
		h.logger.WithField("conn", connID).Errorf("dropping message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if conn, ok := h.conns[connID]; ok {
		h.deliver(conn, ev.Type, frame)
	}
}

func (h *Hub) deliver(conn *Connection, evType game.EventType, frame []byte) {
	if !conn.Write(frame) {
		h.logger.WithFields(logrus.Fields{
			"conn":  conn.ID,
			"event": evType,
		}).Warn("send buffer full, dropped message")
	}
}

// CloseAll sends a close frame with the given code to every connection and
// waits for the close handshakes to finish or ctx to expire.
func (h *Hub) CloseAll(ctx context.Context, code websocket.StatusCode, reason string) {
	h.mu.RLock()
	sockets := make([]*websocket.Conn, 0, len(h.conns))
	for _, conn := range h.conns {
		if conn.ws != nil {
			sockets = append(sockets, conn.ws)
		}
	}
	h.mu.RUnlock()

	var wg sync.WaitGroup
	for _, ws := range sockets {
		wg.Add(1)
		go func(ws *websocket.Conn) {
			defer wg.Done()
			_ = ws.Close(code, reason)
		}(ws)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
