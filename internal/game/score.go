package game

type Participant string

const (
	Player Participant = "player"
	Dealer Participant = "dealer"
)

// Hand is the cards one participant holds in the current round. It only grows.
type Hand struct {
	Owner Participant
	cards []Card
}

func NewHand(owner Participant) *Hand {
	return &Hand{
		Owner: owner,
		cards: make([]Card, 0, 10),
	}
}

func (h *Hand) Add(c Card) {
	h.cards = append(h.cards, c)
}

// Cards returns a copy so callers cannot reorder or shrink the hand.
func (h *Hand) Cards() []Card {
	out := make([]Card, len(h.cards))
	copy(out, h.cards)
	return out
}

func (h *Hand) Len() int { return len(h.cards) }
func (h *Hand) Score() int { return CalculateScore(h.cards) }
func (h *Hand) IsBust() bool { return IsBust(h.cards) }
func (h *Hand) IsNatural() bool { return IsNatural(h.cards) }
func (h *Hand) IsSoft() bool { return IsSoft(h.cards) }

// CalculateScore counts every ace as 11, then downgrades aces to 1 one at a
// time while the total is over 21.
func CalculateScore(cards []Card) int {
	score, _ := scoreWithSoftAces(cards)
	return score
}

func scoreWithSoftAces(cards []Card) (int, int) {
	score := 0
	aces := 0

	for _, card := range cards {
		score += card.Value()
		if card.IsAce() {
			aces++
		}
	}

	for score > 21 && aces > 0 {
		score -= 10
		aces--
	}

	return score, aces
}

func IsBust(cards []Card) bool {
	return CalculateScore(cards) > 21
}

// IsNatural reports a two-card 21.
func IsNatural(cards []Card) bool {
	return len(cards) == 2 && CalculateScore(cards) == 21
}

// IsSoft reports whether the best total still counts an ace as 11.
func IsSoft(cards []Card) bool {
	score, aces := scoreWithSoftAces(cards)
	return aces > 0 && score <= 21
}
