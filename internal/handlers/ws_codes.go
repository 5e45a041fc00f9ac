// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes sent by the server. They give clients a more
// specific reason than the standard codes.
const (
	ServerShutdownError websocket.StatusCode = 3000 // Server is shutting down; the client may reconnect later.
)
