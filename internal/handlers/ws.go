// internal/handlers/ws.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/phaseten/internal/game"
	"github.com/jason-s-yu/phaseten/internal/middleware"
	"github.com/jason-s-yu/phaseten/internal/protocol"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
	pingTimeout  = 15 * time.Second

	defaultSendBuffer = 64
)

// WSHandler upgrades requests to WebSocket connections and feeds their events
// into the GameStore. Each connection gets a fresh id, announced to it in a
// "connected" event; the id is the player id in every room it joins.
type WSHandler struct {
	Hub        *Hub
	Store      *game.GameStore
	Logger     *logrus.Logger
	SendBuffer int

	// MessageRate throttles how fast each connection's frames are read. Zero
	// disables throttling.
	MessageRate  rate.Limit
	MessageBurst int
}

func NewWSHandler(hub *Hub, store *game.GameStore, logger *logrus.Logger, sendBuffer int) *WSHandler {
	if sendBuffer < 1 {
		sendBuffer = defaultSendBuffer
	}
	return &WSHandler{Hub: hub, Store: store, Logger: logger, SendBuffer: sendBuffer}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.Logger.Warnf("websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	conn := NewConnection(uuid.New(), r.RemoteAddr, c, h.SendBuffer)
	h.Hub.Register(conn)
	h.Hub.SendTo(conn.ID, game.NewEvent(game.EventConnected, game.ConnectedPayload{ID: conn.ID}))
	middleware.LogWebSocketConnect(h.Logger, conn.ID, conn.Remote, r.URL.Path)

	ctx, cancel := context.WithCancel(r.Context())
	go writePump(ctx, c, conn, h.Logger)

	readErr := h.readPump(ctx, c, conn)

	cancel()
	h.Hub.Unregister(conn.ID)
	h.Store.Disconnect(conn.ID)
	middleware.LogWebSocketDisconnect(h.Logger, conn.ID, conn.Remote, r.URL.Path, readErr)

	c.Close(websocket.StatusNormalClosure, "")
}

// readPump decodes inbound frames until the socket closes. Returns nil on a
// normal close and the read error otherwise.
func (h *WSHandler) readPump(ctx context.Context, c *websocket.Conn, conn *Connection) error {
	log := h.Logger.WithField("conn", conn.ID)

	var limiter *rate.Limiter
	if h.MessageRate > 0 {
		limiter = rate.NewLimiter(h.MessageRate, h.MessageBurst)
	}

	for {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
		}

		typ, msg, err := c.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway, ServerShutdownError:
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if typ != websocket.MessageText {
			log.Warnf("Ignoring non-text message type %d", typ)
			continue
		}

		req, err := protocol.Decode(msg)
		if err != nil {
			log.Warnf("Dropping message: %v", err)
			continue
		}
		h.dispatch(conn.ID, req)
	}
}

// dispatch routes a decoded request to the GameStore. Rejections are logged
// (and optionally reported) by the store itself.
func (h *WSHandler) dispatch(connID uuid.UUID, req protocol.Request) {
	switch req := req.(type) {
	case *protocol.CreateRoom:
		_, _ = h.Store.CreateRoom(connID, req.PlayerName)
	case *protocol.JoinRoom:
		_ = h.Store.JoinRoom(connID, req.RoomID, req.PlayerName)
	case *protocol.StartGame:
		_ = h.Store.StartGame(connID, req.RoomID)
	case *protocol.DrawCard:
		_ = h.Store.DrawCard(connID, req.RoomID, req.From)
	case *protocol.DiscardCard:
		_ = h.Store.DiscardCard(connID, req.RoomID, req.Card)
	case *protocol.ChatMessage:
		h.Store.ChatMessage(connID, req.RoomID, req.Message)
	default:
		h.Logger.WithField("conn", connID).Warnf("No handler for %s", req.EventName())
	}
}

// writePump writes queued frames and keeps the connection alive with pings.
func writePump(ctx context.Context, c *websocket.Conn, conn *Connection, logger *logrus.Logger) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-conn.OutChan:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Write(writeCtx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				logger.WithField("conn", conn.ID).Warnf("Failed to write to websocket: %v", err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.WithField("conn", conn.ID).Warnf("Failed to send ping: %v. Assuming disconnect.", err)
				return
			}
		}
	}
}
