// internal/game/utils.go
package game

import (
	"encoding/json"

	log "github.com/sirupsen/logrus"
)

// encodePayload marshals an event payload into JSON bytes.
// Logs a warning and returns empty JSON "{}" on marshalling error.
func encodePayload(evType EventType, v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		log.Warnf("Failed to marshal payload for event %s: %v", evType, err)
		return json.RawMessage("{}")
	}
	return data
}
