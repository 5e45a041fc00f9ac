// internal/game/errors.go
package game

import "errors"

// Rejection reasons. Every engine operation either succeeds fully or returns
// one of these without touching state or broadcasting.
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrGameStarted    = errors.New("game already started")
	ErrGameNotStarted = errors.New("game not started")
	ErrRoomFull       = errors.New("room is full")
	ErrAlreadyJoined  = errors.New("connection already seated in room")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrAlreadyDrew    = errors.New("already drew this turn")
	ErrMustDrawFirst  = errors.New("must draw before discarding")
	ErrCardNotInHand  = errors.New("card not in hand")
	ErrNotEnoughCards = errors.New("not enough cards to deal")
	ErrEmptyPile      = errors.New("draw pile is empty")
)
