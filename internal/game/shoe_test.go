package game

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
)

func TestBuildCards(t *testing.T) {
	for _, decks := range []int{1, 2, 6} {
		got := BuildCards(decks)
		if len(got) != 52*decks {
			t.Fatalf("BuildCards(%d) len = %d", decks, len(got))
		}
		counts := make(map[Card]int)
		for _, c := range got {
			counts[c]++
		}
		if len(counts) != 52 {
			t.Errorf("distinct cards = %d, want 52", len(counts))
		}
		for c, n := range counts {
			if n != decks {
				t.Errorf("%s appears %d times, want %d", c, n, decks)
			}
		}
	}
}

func TestShoeDrawsEveryCardOnce(t *testing.T) {
	s := NewShoe(1, rand.New(rand.NewSource(1)))
	seen := make(map[Card]bool)

	for i := 0; i < 52; i++ {
		c, err := s.Draw()
		if err != nil {
			t.Fatalf("draw %d: %v", i, err)
		}
		if seen[c] {
			t.Fatalf("duplicate card %s", c)
		}
		seen[c] = true
	}

	if _, err := s.Draw(); !errors.Is(err, ErrEmptyShoe) {
		t.Errorf("draw from empty shoe = %v, want ErrEmptyShoe", err)
	}
	if s.Remaining() != 0 {
		t.Errorf("Remaining() = %d", s.Remaining())
	}
}

func TestStackedShoeOrder(t *testing.T) {
	want := cards(King, Two, Ace)
	s := NewStackedShoe(1, want...)

	for _, w := range want {
		c, err := s.Draw()
		if err != nil {
			t.Fatal(err)
		}
		if c != w {
			t.Errorf("drew %s, want %s", c, w)
		}
	}
}

func TestShuffleIsUniform(t *testing.T) {
	const rounds = 60000
	rng := rand.New(rand.NewSource(42))
	base := cards(Ace, Two, Three)
	counts := make(map[string]int)

	for i := 0; i < rounds; i++ {
		s := &Shoe{cards: append([]Card(nil), base...), decks: 1, rng: rng}
		s.Shuffle()
		var key strings.Builder
		for _, c := range s.cards {
			key.WriteString(string(c.Rank()))
		}
		counts[key.String()]++
	}

	if len(counts) != 6 {
		t.Fatalf("saw %d permutations, want 6", len(counts))
	}
	expected := rounds / 6
	for perm, n := range counts {
		if n < expected*95/100 || n > expected*105/100 {
			t.Errorf("permutation %s seen %d times, expected about %d", perm, n, expected)
		}
	}
}

func TestRebuildExcludesHeld(t *testing.T) {
	held := []Card{NewCard(Ace, Spades), NewCard(King, Hearts), NewCard(Seven, Clubs)}
	s := NewStackedShoe(1)

	if err := s.Rebuild(held...); err != nil {
		t.Fatal(err)
	}
	if s.Remaining() != 49 {
		t.Fatalf("Remaining() = %d, want 49", s.Remaining())
	}
	for _, c := range s.cards {
		for _, h := range held {
			if c == h {
				t.Errorf("held card %s back in shoe", h)
			}
		}
	}
}

func TestRebuildMultiDeckRemovesOneCopy(t *testing.T) {
	s := NewStackedShoe(2)
	ace := NewCard(Ace, Spades)

	if err := s.Rebuild(ace); err != nil {
		t.Fatal(err)
	}
	n := 0
	for _, c := range s.cards {
		if c == ace {
			n++
		}
	}
	if n != 1 {
		t.Errorf("copies of %s = %d, want 1", ace, n)
	}
}

func TestRebuildRejectsImpossibleHand(t *testing.T) {
	s := NewStackedShoe(1, NewCard(Two, Clubs))
	ace := NewCard(Ace, Spades)

	if err := s.Rebuild(ace, ace); err == nil {
		t.Fatal("expected error for duplicate held card in a single deck")
	}
	if s.Remaining() != 1 {
		t.Errorf("failed rebuild changed the shoe: %d cards", s.Remaining())
	}
}
