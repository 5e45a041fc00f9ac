// internal/handlers/rooms.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jason-s-yu/phaseten/internal/game"
	"github.com/sirupsen/logrus"
)

// PingHandler answers health checks.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("pong"))
}

// ListRoomsHandler serves the room directory as a JSON array. When the
// directory is unset or fails, it falls back to this process's registry.
func ListRoomsHandler(dir game.Directory, store *game.GameStore, logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var rooms []game.RoomSummary
		if dir != nil {
			list, err := dir.List(r.Context())
			if err != nil {
				logger.Warnf("room directory unavailable, listing local rooms: %v", err)
			} else {
				rooms = list
			}
		}
		if rooms == nil {
			rooms = store.Summaries()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rooms)
	}
}
