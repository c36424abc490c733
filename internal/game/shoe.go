package game

import (
	"fmt"
	"math/rand"
)

// Shoe is the ordered pool of cards still to be dealt. Cards leave from the
// front and never come back until the shoe is rebuilt.
type Shoe struct {
	cards []Card
	decks int
	rng   *rand.Rand
}

// BuildCards returns 52*decks cards, one of each rank and suit per deck.
func BuildCards(decks int) []Card {
	cards := make([]Card, 0, 52*decks)
	for i := 0; i < decks; i++ {
		for _, suit := range Suits {
			for _, rank := range Ranks {
				cards = append(cards, NewCard(rank, suit))
			}
		}
	}
	return cards
}

// NewShoe builds and shuffles a shoe of the given number of decks. A nil rng
// falls back to the global math/rand source.
func NewShoe(decks int, rng *rand.Rand) *Shoe {
	if decks < 1 {
		decks = 1
	}
	s := &Shoe{
		cards: BuildCards(decks),
		decks: decks,
		rng:   rng,
	}
	s.Shuffle()
	return s
}

// NewStackedShoe returns a shoe that deals cards in exactly the given order.
// Once exhausted it is rebuilt from decks full decks.
func NewStackedShoe(decks int, cards ...Card) *Shoe {
	if decks < 1 {
		decks = 1
	}
	stacked := make([]Card, len(cards))
	copy(stacked, cards)
	return &Shoe{cards: stacked, decks: decks}
}

// Shuffle puts the remaining cards in a uniformly random order.
func (s *Shoe) Shuffle() {
	swap := func(i, j int) {
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
	if s.rng != nil {
		s.rng.Shuffle(len(s.cards), swap)
		return
	}
	rand.Shuffle(len(s.cards), swap)
}

func (s *Shoe) Draw() (Card, error) {
	if len(s.cards) == 0 {
		return Card{}, ErrEmptyShoe
	}
	card := s.cards[0]
	s.cards = s.cards[1:]
	return card, nil
}

func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// Rebuild refills the shoe with full decks minus the cards still held in play,
// then shuffles. Each held card removes exactly one matching card.
func (s *Shoe) Rebuild(held ...Card) error {
	cards := BuildCards(s.decks)
	for _, h := range held {
		found := false
		for i, c := range cards {
			if c == h {
				cards = append(cards[:i], cards[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("held card %s not in a %d-deck shoe", h, s.decks)
		}
	}
	s.cards = cards
	s.Shuffle()
	return nil
}
