package game

import "fmt"

type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

type Rank string

const (
	Ace   Rank = "A"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
)

var (
	Suits = []Suit{Hearts, Diamonds, Clubs, Spades}
	Ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}
)

// RankValues is the blackjack value of each rank before ace adjustment.
var RankValues = map[Rank]int{
	Two: 2, Three: 3, Four: 4, Five: 5, Six: 6, Seven: 7, Eight: 8, Nine: 9, Ten: 10,
	Jack: 10, Queen: 10, King: 10, Ace: 11,
}

// Card is an immutable playing card. Build it with NewCard.
type Card struct {
	rank Rank
	suit Suit
}

func NewCard(rank Rank, suit Suit) Card {
	return Card{rank: rank, suit: suit}
}

func (c Card) Rank() Rank { return c.rank }
func (c Card) Suit() Suit { return c.suit }

func (c Card) Value() int {
	return RankValues[c.rank]
}

func (c Card) Display() string {
	return string(c.rank)
}

func (c Card) IsAce() bool {
	return c.rank == Ace
}

func (c Card) String() string {
	suit := "?"
	switch c.suit {
	case Hearts:
		suit = "♥"
	case Diamonds:
		suit = "♦"
	case Clubs:
		suit = "♣"
	case Spades:
		suit = "♠"
	}
	return fmt.Sprintf("%s%s", c.rank, suit)
}
