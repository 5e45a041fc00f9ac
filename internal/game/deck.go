// internal/game/deck.go
package game

import (
	"math/rand/v2"

	"github.com/jason-s-yu/phaseten/internal/models"
)

const (
	colorGroups     = 4
	copiesPerNumber = 2
	wildCount       = 8
	skipCount       = 4

	// DeckSize is the number of cards in a fresh deck: 4 colors x 12 values x 2 copies, 8 wilds, 4 skips.
	DeckSize = colorGroups*int(models.MaxNumber)*copiesPerNumber + wildCount + skipCount
)

// Pile is an ordered stack of cards. The top of the pile is the last element.
type Pile []models.Card

// Len returns the number of cards in the pile.
func (p Pile) Len() int { return len(p) }

// Top returns the top card without removing it.
func (p Pile) Top() (models.Card, bool) {
	if len(p) == 0 {
		return models.Card{}, false
	}
	return p[len(p)-1], true
}

// Push places c on top of the pile.
func (p *Pile) Push(c models.Card) {
	*p = append(*p, c)
}

// Pop removes and returns the top card. Returns false if the pile is empty.
func (p *Pile) Pop() (models.Card, bool) {
	n := len(*p)
	if n == 0 {
		return models.Card{}, false
	}
	c := (*p)[n-1]
	*p = (*p)[:n-1]
	return c, true
}

// Shuffle permutes the pile uniformly in place using r.
func (p Pile) Shuffle(r *rand.Rand) {
	r.Shuffle(len(p), func(i, j int) {
		p[i], p[j] = p[j], p[i]
	})
}

// Clone returns an independent copy of the pile.
func (p Pile) Clone() Pile {
	return append(Pile{}, p...)
}

// OrderedDeck builds the unshuffled 108-card deck: two copies of 1-12 in each
// color group, followed by the wild and skip cards.
func OrderedDeck() Pile {
	deck := make(Pile, 0, DeckSize)
	for _, color := range models.NumberColors {
		for n := int(models.MinNumber); n <= int(models.MaxNumber); n++ {
			for i := 0; i < copiesPerNumber; i++ {
				deck = append(deck, models.NewNumberCard(color, n))
			}
		}
	}
	for i := 0; i < wildCount; i++ {
		deck = append(deck, models.WildCard)
	}
	for i := 0; i < skipCount; i++ {
		deck = append(deck, models.SkipCard)
	}
	return deck
}

// NewDeck returns a freshly shuffled deck.
func NewDeck(r *rand.Rand) Pile {
	deck := OrderedDeck()
	deck.Shuffle(r)
	return deck
}
