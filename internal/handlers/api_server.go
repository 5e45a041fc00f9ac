// internal/handlers/api_server.go
package handlers

import (
	"net/http"

	"github.com/jason-s-yu/phaseten/internal/game"
	"github.com/jason-s-yu/phaseten/internal/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// GameServer holds the long-lived services the HTTP routes share: the room
// registry, the connection hub it broadcasts through and the optional room
// directory.
type GameServer struct {
	Store     *game.GameStore
	Hub       *Hub
	Directory game.Directory
	Logger    *logrus.Logger

	SendBuffer     int
	AllowedOrigins []string
	MessageRate    rate.Limit // inbound frames per second per connection, 0 for unlimited
	MessageBurst   int
}

// NewGameServer wires a hub and a registry together. The registry broadcasts
// through the hub and, when dir is non-nil, publishes to it.
func NewGameServer(dir game.Directory, logger *logrus.Logger) *GameServer {
	hub := NewHub(logger)
	store := game.NewGameStore(hub, logger)
	store.Directory = dir
	return &GameServer{
		Store:          store,
		Hub:            hub,
		Directory:      dir,
		Logger:         logger,
		SendBuffer:     defaultSendBuffer,
		AllowedOrigins: []string{"*"},
	}
}

// Routes returns the HTTP handler:
//
//	GET /       health check
//	GET /rooms  room directory
//	GET /ws     WebSocket endpoint
func (gs *GameServer) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", PingHandler)
	mux.Handle("GET /rooms", ListRoomsHandler(gs.Directory, gs.Store, gs.Logger))
	ws := NewWSHandler(gs.Hub, gs.Store, gs.Logger, gs.SendBuffer)
	ws.MessageRate = gs.MessageRate
	ws.MessageBurst = gs.MessageBurst
	mux.Handle("GET /ws", ws)

	var h http.Handler = mux
	h = middleware.CORSMiddleware(gs.AllowedOrigins)(h)
	h = middleware.LogMiddleware(gs.Logger)(h)
	return h
}
