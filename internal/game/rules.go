// internal/game/rules.go
package game

import "fmt"

// Rules holds the tunables a room is created with. They are fixed for the
// lifetime of the room.
type Rules struct {
	HandSize         int  `json:"handSize" yaml:"hand_size"`                 // cards dealt to each player at start
	MaxPlayers       int  `json:"maxPlayers" yaml:"max_players"`             // 0 means no limit; start still needs enough cards
	ReshuffleDiscard bool `json:"reshuffleDiscard" yaml:"reshuffle_discard"` // refill an empty deck from the discard pile, keeping the up-card
}

// DefaultRules returns the standard deal: ten cards each, no seat limit, no reshuffle.
func DefaultRules() Rules {
	return Rules{
		HandSize:         10,
		MaxPlayers:       0,
		ReshuffleDiscard: false,
	}
}

// MaxSeats returns the largest player count the deck can deal to, one up-card included.
func (r Rules) MaxSeats() int {
	if r.HandSize <= 0 {
		return 0
	}
	return (DeckSize - 1) / r.HandSize
}

// Validate rejects rule sets that could never start a game.
func (r Rules) Validate() error {
	if r.HandSize < 1 {
		return fmt.Errorf("hand size must be at least 1, got %d", r.HandSize)
	}
	if r.HandSize+1 > DeckSize {
		return fmt.Errorf("hand size %d leaves no up-card in a %d-card deck", r.HandSize, DeckSize)
	}
	if r.MaxPlayers < 0 {
		return fmt.Errorf("max players cannot be negative, got %d", r.MaxPlayers)
	}
	if r.MaxPlayers > r.MaxSeats() {
		return fmt.Errorf("max players %d exceeds the %d hands of %d a %d-card deck can deal", r.MaxPlayers, r.MaxSeats(), r.HandSize, DeckSize)
	}
	return nil
}
