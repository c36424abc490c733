package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Rules are the table-rule variants a round is played under.
type Rules struct {
	DeckCount     int
	HitSoft17     bool
	BlackjackPays float64
}

func DefaultRules() Rules {
	return Rules{DeckCount: 1, BlackjackPays: 1}
}

// Wallet is the balance a round debits and credits.
type Wallet interface {
	Balance() int64
	Debit(amount int64) error
	Credit(amount int64) error
}

type Option func(*Session)

// WithShoe replaces the freshly shuffled shoe, mostly for stacked tests.
func WithShoe(shoe *Shoe) Option {
	return func(s *Session) { s.shoe = shoe }
}

func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session is one round between a player and the dealer. Every method holds the
// session lock, so at most one action is in flight per session.
type Session struct {
	mu sync.Mutex

	id     string
	rules  Rules
	policy DealerPolicy
	shoe   *Shoe
	rng    *rand.Rand
	wallet Wallet
	now    func() time.Time

	player  *Hand
	dealer  *Hand
	bet     int64
	status  Status
	natural bool
	payout  int64

	updatedAt time.Time
}

// NewRound takes the bet from the wallet and deals two cards each. A player
// natural resolves at once: push against a dealer natural, otherwise a win.
func NewRound(id string, rules Rules, wallet Wallet, bet int64, opts ...Option) (*Session, error) {
	if bet <= 0 {
		return nil, fmt.Errorf("%w: bet must be positive, got %d", ErrInvalidBet, bet)
	}

	s := &Session{
		id:     id,
		rules:  rules,
		policy: DealerPolicy{HitSoft17: rules.HitSoft17},
		wallet: wallet,
		now:    time.Now,
		player: NewHand(Player),
		dealer: NewHand(Dealer),
		bet:    bet,
		status: StatusPlaying,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.shoe == nil {
		s.shoe = NewShoe(rules.DeckCount, s.rng)
	}

	if err := wallet.Debit(bet); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBet, err)
	}

	for _, h := range []*Hand{s.player, s.dealer, s.player, s.dealer} {
		card, err := s.draw()
		if err != nil {
			if rerr := wallet.Credit(bet); rerr != nil {
				return nil, fmt.Errorf("deal: %w (refund failed: %w)", err, rerr)
			}
			return nil, fmt.Errorf("deal: %w", err)
		}
		h.Add(card)
	}
	s.updatedAt = s.now()

	if s.player.IsNatural() {
		s.natural = !s.dealer.IsNatural()
		s.status = StatusPlayerWin
		if !s.natural {
			s.status = StatusPush
		}
		if err := s.settle(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

type drawFunc func() (Card, error)

func (f drawFunc) Draw() (Card, error) { return f() }

// draw takes the top card, rebuilding the shoe first if it ran out. The
// rebuild leaves out every card currently in either hand.
func (s *Session) draw() (Card, error) {
	if s.shoe.Remaining() == 0 {
		held := append(s.player.Cards(), s.dealer.Cards()...)
		if err := s.shoe.Rebuild(held...); err != nil {
			return Card{}, fmt.Errorf("rebuild shoe: %w", err)
		}
	}
	return s.shoe.Draw()
}

func (s *Session) Hit() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusPlaying {
		return Snapshot{}, fmt.Errorf("%w: hit while %s", ErrInvalidAction, s.status)
	}

	card, err := s.draw()
	if err != nil {
		return Snapshot{}, err
	}
	s.player.Add(card)
	s.updatedAt = s.now()

	if s.player.IsBust() {
		s.status = StatusPlayerBust
		if err := s.settle(); err != nil {
			return Snapshot{}, err
		}
	}

	return s.snapshot(), nil
}

func (s *Session) Stand() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusPlaying {
		return Snapshot{}, fmt.Errorf("%w: stand while %s", ErrInvalidAction, s.status)
	}

	// a failed dealer play puts back the dealer hand and the shoe as they were
	dealt, remaining := s.dealer.Len(), s.shoe.cards
	if err := s.policy.Play(s.dealer, drawFunc(s.draw)); err != nil {
		s.dealer.cards = s.dealer.cards[:dealt]
		s.shoe.cards = remaining
		return Snapshot{}, fmt.Errorf("dealer play: %w", err)
	}
	s.updatedAt = s.now()

	s.status = Resolve(s.player, s.dealer)
	if err := s.settle(); err != nil {
		return Snapshot{}, err
	}

	return s.snapshot(), nil
}

// ForfeitIdle ends a round nobody has acted on since cutoff as a dealer win.
// The bet taken at round start is not returned.
func (s *Session) ForfeitIdle(cutoff time.Time) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusPlaying {
		return Snapshot{}, fmt.Errorf("%w: forfeit while %s", ErrInvalidAction, s.status)
	}
	if s.updatedAt.After(cutoff) {
		return Snapshot{}, fmt.Errorf("%w: round active since %s", ErrInvalidAction, s.updatedAt.Format(time.RFC3339))
	}

	s.status = StatusDealerWin
	s.updatedAt = s.now()
	if err := s.settle(); err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(), nil
}

func (s *Session) settle() error {
	s.payout = Payout(s.status, s.bet, s.natural, s.rules.BlackjackPays)
	if s.payout == 0 {
		return nil
	}
	if err := s.wallet.Credit(s.payout); err != nil {
		return fmt.Errorf("settle %s: %w", s.status, err)
	}
	return nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Bet() int64 {
	return s.bet
}

func (s *Session) Payout() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payout
}

func (s *Session) Natural() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.natural
}

func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	playing := s.status == StatusPlaying

	snap := Snapshot{
		ID:          s.id,
		PlayerCards: make([]CardView, 0, s.player.Len()),
		DealerCards: make([]CardView, 0, s.dealer.Len()),
		PlayerScore: s.player.Score(),
		DealerScore: s.dealer.Score(),
		Status:      s.status,
		BetAmount:   s.bet,
		Balance:     s.wallet.Balance(),
		Payout:      s.payout,
	}
	for _, c := range s.player.Cards() {
		snap.PlayerCards = append(snap.PlayerCards, Visible(c))
	}

	dealerCards := s.dealer.Cards()
	for i, c := range dealerCards {
		if playing && i > 0 {
			snap.DealerCards = append(snap.DealerCards, Concealed())
			continue
		}
		snap.DealerCards = append(snap.DealerCards, Visible(c))
	}
	if playing {
		snap.DealerScore = CalculateScore(dealerCards[:1])
	}

	return snap
}
