// internal/models/player.go
package models

import "github.com/google/uuid"

// Player is a seat in a room, identified by the connection that created it.
// Phase and PhaseComplete are reserved for phase-based win conditions and are
// never transitioned by the engine.
type Player struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Hand          []Card    `json:"hand"`
	Phase         int       `json:"phase"`
	PhaseComplete bool      `json:"phaseComplete"`
}

// NewPlayer returns a player with an empty hand at phase 1.
func NewPlayer(id uuid.UUID, name string) *Player {
	return &Player{
		ID:    id,
		Name:  name,
		Hand:  []Card{},
		Phase: 1,
	}
}

// IndexOf returns the index of the first card in hand equal to c, or -1.
func (p *Player) IndexOf(c Card) int {
	for i, h := range p.Hand {
		if h == c {
			return i
		}
	}
	return -1
}

// RemoveCard removes the first card in hand equal to c.
// Returns false and leaves the hand untouched if no card matches.
func (p *Player) RemoveCard(c Card) (Card, bool) {
	idx := p.IndexOf(c)
	if idx == -1 {
		return Card{}, false
	}
	removed := p.Hand[idx]
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	return removed, true
}

// Clone returns a deep copy of the player.
func (p *Player) Clone() *Player {
	cp := *p
	cp.Hand = append([]Card{}, p.Hand...)
	return &cp
}
