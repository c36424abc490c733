package game

import (
	"math/rand"
	"testing"
)

func cards(ranks ...Rank) []Card {
	out := make([]Card, 0, len(ranks))
	for i, r := range ranks {
		out = append(out, NewCard(r, Suits[i%len(Suits)]))
	}
	return out
}

func TestCalculateScore(t *testing.T) {
	tests := []struct {
		name  string
		cards []Card
		want  int
		bust  bool
	}{
		{"empty", nil, 0, false},
		{"no aces", cards(Ten, Seven), 17, false},
		{"faces", cards(King, Queen), 20, false},
		{"ace ten", cards(Ace, King), 21, false},
		{"ace ace nine", cards(Ace, Ace, Nine), 21, false},
		{"ace ace", cards(Ace, Ace), 12, false},
		{"four aces", cards(Ace, Ace, Ace, Ace), 14, false},
		{"soft seventeen", cards(Ace, Six), 17, false},
		{"ace downgraded", cards(Ace, Six, Ten), 17, false},
		{"bust", cards(King, Five, Seven), 22, true},
		{"bust with ace", cards(King, Queen, Ace, Ace), 22, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateScore(tt.cards); got != tt.want {
				t.Errorf("CalculateScore() = %d, want %d", got, tt.want)
			}
			if got := IsBust(tt.cards); got != tt.bust {
				t.Errorf("IsBust() = %v, want %v", got, tt.bust)
			}
		})
	}
}

func TestIsNatural(t *testing.T) {
	tests := []struct {
		name  string
		cards []Card
		want  bool
	}{
		{"ace king", cards(Ace, King), true},
		{"ten ace", cards(Ten, Ace), true},
		{"three card 21", cards(Seven, Seven, Seven), false},
		{"ace ace nine", cards(Ace, Ace, Nine), false},
		{"twenty", cards(King, Queen), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNatural(tt.cards); got != tt.want {
				t.Errorf("IsNatural() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsSoft(t *testing.T) {
	if !IsSoft(cards(Ace, Six)) {
		t.Error("A+6 should be soft")
	}
	if IsSoft(cards(Ace, Six, Ten)) {
		t.Error("A+6+10 should be hard")
	}
	if IsSoft(cards(Ten, Seven)) {
		t.Error("10+7 should be hard")
	}
	if !IsSoft(cards(Ace, Ace, Five)) {
		t.Error("A+A+5 should be soft 17")
	}
}

func permutations(in []Card) [][]Card {
	if len(in) <= 1 {
		return [][]Card{append([]Card(nil), in...)}
	}
	var out [][]Card
	for i := range in {
		rest := make([]Card, 0, len(in)-1)
		rest = append(rest, in[:i]...)
		rest = append(rest, in[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]Card{in[i]}, p...))
		}
	}
	return out
}

func TestScoreIgnoresOrder(t *testing.T) {
	hands := [][]Card{
		cards(Ace, Ace, Nine),
		cards(Ace, Five, King, Ace),
		cards(Two, Ace, Three, Ace, Ten),
		cards(King, Five, Seven),
	}

	for _, h := range hands {
		want := CalculateScore(h)
		for _, p := range permutations(h) {
			if got := CalculateScore(p); got != want {
				t.Errorf("CalculateScore(%v) = %d, want %d", p, got, want)
			}
		}
	}
}

func TestScoreWithoutAcesIsSum(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	noAces := Ranks[1:]

	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(6)
		h := make([]Card, 0, n)
		sum := 0
		for j := 0; j < n; j++ {
			c := NewCard(noAces[rng.Intn(len(noAces))], Suits[rng.Intn(4)])
			h = append(h, c)
			sum += c.Value()
		}
		if got := CalculateScore(h); got != sum {
			t.Fatalf("CalculateScore(%v) = %d, want %d", h, got, sum)
		}
	}
}

func TestHandCardsIsCopy(t *testing.T) {
	h := NewHand(Player)
	h.Add(NewCard(King, Hearts))
	h.Add(NewCard(Five, Clubs))

	got := h.Cards()
	got[0] = NewCard(Ace, Spades)

	if h.Score() != 15 {
		t.Errorf("hand mutated through Cards(): score %d", h.Score())
	}
}
