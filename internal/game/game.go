// internal/game/game.go
package game

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/phaseten/internal/models"
)

// DrawSource names the pile a player draws from.
type DrawSource string

const (
	SourceDeck    DrawSource = "deck"
	SourceDiscard DrawSource = "discard"
)

// ParseDrawSource maps the client's "from" field to a pile. Anything other
// than "discard" means the deck.
func ParseDrawSource(from string) DrawSource {
	if from == string(SourceDiscard) {
		return SourceDiscard
	}
	return SourceDeck
}

// Game holds the entire state for a single room. It is not safe for
// concurrent use; the GameStore serializes every call.
//
// A game starts in the lobby (Started=false). Start deals the hands and moves
// it to play, where each turn cycles between awaiting a draw (DrewCard=false)
// and awaiting a discard (DrewCard=true). There is no terminal state.
type Game struct {
	RoomID      string           `json:"roomId"`
	Players     []*models.Player `json:"players"` // turn order
	Deck        Pile             `json:"deck"`
	Discard     Pile             `json:"discard"`
	CurrentTurn int              `json:"currentTurn"`
	Started     bool             `json:"started"`
	DrewCard    bool             `json:"drewCard"`

	Rules     Rules     `json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// emptySince is set when the last player leaves; zero while seated players remain.
	emptySince time.Time
}

// NewGame builds a lobby-phase game around an already shuffled deck.
func NewGame(roomID string, deck Pile, rules Rules, now time.Time) *Game {
	return &Game{
		RoomID:    roomID,
		Players:   []*models.Player{},
		Deck:      deck,
		Discard:   Pile{},
		Rules:     rules,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// playerIndex returns the seat of the given connection, or -1.
func (g *Game) playerIndex(id uuid.UUID) int {
	for i, p := range g.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// HasPlayer reports whether the connection holds a seat in this game.
func (g *Game) HasPlayer(id uuid.UUID) bool {
	return g.playerIndex(id) != -1
}

// CurrentPlayer returns the player whose turn it is, or nil when no seat matches CurrentTurn.
func (g *Game) CurrentPlayer() *models.Player {
	if g.CurrentTurn < 0 || g.CurrentTurn >= len(g.Players) {
		return nil
	}
	return g.Players[g.CurrentTurn]
}

// AddPlayer seats a new player at the end of the turn order. Only allowed in the lobby.
func (g *Game) AddPlayer(id uuid.UUID, name string, now time.Time) error {
	if g.Started {
		return ErrGameStarted
	}
	if g.HasPlayer(id) {
		return ErrAlreadyJoined
	}
	if g.Rules.MaxPlayers > 0 && len(g.Players) >= g.Rules.MaxPlayers {
		return ErrRoomFull
	}
	g.Players = append(g.Players, models.NewPlayer(id, name))
	g.emptySince = time.Time{}
	g.UpdatedAt = now
	return nil
}

// Start deals HandSize cards to every player in seat order, then flips the up-card.
// Player 0 receives the first HandSize cards off the top, player 1 the next, and so on.
func (g *Game) Start(now time.Time) error {
	if g.Started {
		return ErrGameStarted
	}
	if len(g.Players)*g.Rules.HandSize+1 > g.Deck.Len() {
		return ErrNotEnoughCards
	}

	g.Started = true
	for _, p := range g.Players {
		for i := 0; i < g.Rules.HandSize; i++ {
			c, _ := g.Deck.Pop()
			p.Hand = append(p.Hand, c)
		}
	}
	up, _ := g.Deck.Pop()
	g.Discard.Push(up)
	g.UpdatedAt = now
	return nil
}

// checkTurn validates that the game is in play and id holds the current turn.
func (g *Game) checkTurn(id uuid.UUID) (*models.Player, error) {
	if !g.Started {
		return nil, ErrGameNotStarted
	}
	cur := g.CurrentPlayer()
	if cur == nil || cur.ID != id {
		return nil, ErrNotYourTurn
	}
	return cur, nil
}

// Draw moves the top card of the chosen pile into the current player's hand.
// A player may draw once per turn. Empty piles reject the draw unless
// ReshuffleDiscard is set and the deck can be refilled from the discard pile.
func (g *Game) Draw(id uuid.UUID, src DrawSource, r *rand.Rand, now time.Time) (models.Card, error) {
	cur, err := g.checkTurn(id)
	if err != nil {
		return models.Card{}, err
	}
	if g.DrewCard {
		return models.Card{}, ErrAlreadyDrew
	}

	var (
		card models.Card
		ok   bool
	)
	switch src {
	case SourceDiscard:
		card, ok = g.Discard.Pop()
	default:
		if g.Deck.Len() == 0 && g.Rules.ReshuffleDiscard {
			g.refillFromDiscard(r)
		}
		card, ok = g.Deck.Pop()
	}
	if !ok {
		return models.Card{}, ErrEmptyPile
	}

	cur.Hand = append(cur.Hand, card)
	g.DrewCard = true
	g.UpdatedAt = now
	return card, nil
}

// refillFromDiscard shuffles every discard except the up-card back into the deck.
func (g *Game) refillFromDiscard(r *rand.Rand) {
	up, ok := g.Discard.Pop()
	if !ok {
		return
	}
	g.Deck = append(g.Deck, g.Discard...)
	g.Deck.Shuffle(r)
	g.Discard = Pile{up}
}

// DiscardCard moves the first card in the current player's hand that matches card
// onto the discard pile and passes the turn to the next seat.
func (g *Game) DiscardCard(id uuid.UUID, card models.Card, now time.Time) error {
	if !g.Started {
		return ErrGameNotStarted
	}
	if !g.DrewCard {
		return ErrMustDrawFirst
	}
	cur, err := g.checkTurn(id)
	if err != nil {
		return err
	}

	removed, ok := cur.RemoveCard(card)
	if !ok {
		return ErrCardNotInHand
	}
	g.Discard.Push(removed)
	g.CurrentTurn = (g.CurrentTurn + 1) % len(g.Players)
	g.DrewCard = false
	g.UpdatedAt = now
	return nil
}

// RemovePlayer drops the connection's seat, if any, and keeps CurrentTurn
// pointing at a valid seat. Seats before the current one shift it down by one.
// Removing the current player hands the turn to whoever now sits at that
// index (wrapping) and forfeits a pending draw.
func (g *Game) RemovePlayer(id uuid.UUID, now time.Time) bool {
	idx := g.playerIndex(id)
	if idx == -1 {
		return false
	}
	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)
	g.UpdatedAt = now

	n := len(g.Players)
	switch {
	case n == 0:
		g.CurrentTurn = 0
		g.DrewCard = false
		g.emptySince = now
	case idx < g.CurrentTurn:
		g.CurrentTurn--
	case idx == g.CurrentTurn:
		g.DrewCard = false
		g.CurrentTurn %= n
	}
	return true
}

// EmptyFor reports how long the room has had no players. Zero while occupied.
func (g *Game) EmptyFor(now time.Time) time.Duration {
	if len(g.Players) > 0 || g.emptySince.IsZero() {
		return 0
	}
	return now.Sub(g.emptySince)
}
