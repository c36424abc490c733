// Package table runs blackjack rounds for many players at once. It owns each
// player's ledger, routes actions to sessions by id and records results.
package table

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"blackjackd/internal/config"
	"blackjackd/internal/game"
	"blackjackd/internal/ledger"
	"blackjackd/internal/player"
)

var ErrPlayerRequired = errors.New("player id required")

type Option func(*Table)

// WithRoundOptions adds session options to every round the table deals.
func WithRoundOptions(fn func() []game.Option) Option {
	return func(t *Table) { t.roundOpts = fn }
}

func WithIDGenerator(fn func() string) Option {
	return func(t *Table) { t.newID = fn }
}

type seat struct {
	mu     sync.Mutex
	ledger *ledger.Ledger
	player *player.Player
}

type Table struct {
	cfg     *config.Config
	rules   game.Rules
	players player.Repository
	games   *game.Manager
	log     *log.Entry

	newID     func() string
	roundOpts func() []game.Option

	mu     sync.Mutex
	seats  map[string]*seat
	owners map[string]*seat
}

func New(cfg *config.Config, repo player.Repository, opts ...Option) *Table {
	t := &Table{
		cfg: cfg,
		rules: game.Rules{
			DeckCount:     cfg.DeckCount,
			HitSoft17:     cfg.HitSoft17,
			BlackjackPays: cfg.BlackjackPays,
		},
		players: repo,
		games:   game.NewManager(),
		log:     log.WithField("component", "table"),
		newID:   uuid.NewString,
		seats:   make(map[string]*seat),
		owners:  make(map[string]*seat),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Table) seat(ctx context.Context, playerID string) (*seat, error) {
	if playerID == "" {
		return nil, ErrPlayerRequired
	}

	t.mu.Lock()
	st, ok := t.seats[playerID]
	t.mu.Unlock()
	if ok {
		return st, nil
	}

	p, err := t.players.GetOrCreate(ctx, playerID, t.cfg.StartBalance, t.cfg.DefaultBet)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// another request may have seated the player while we were loading
	if st, ok := t.seats[playerID]; ok {
		return st, nil
	}
	st = &seat{ledger: ledger.New(p.Balance), player: p}
	t.seats[playerID] = st
	return st, nil
}

// Start deals a new round. A zero bet reuses the player's last bet.
func (t *Table) Start(ctx context.Context, playerID string, bet int64) (game.Snapshot, error) {
	st, err := t.seat(ctx, playerID)
	if err != nil {
		return game.Snapshot{}, err
	}

	if bet == 0 {
		st.mu.Lock()
		bet = st.player.LastBet
		st.mu.Unlock()
	}
	if bet < t.cfg.MinBet || bet > t.cfg.MaxBet {
		return game.Snapshot{}, fmt.Errorf("%w: bet %d outside %d..%d", game.ErrInvalidBet, bet, t.cfg.MinBet, t.cfg.MaxBet)
	}

	var opts []game.Option
	if t.roundOpts != nil {
		opts = t.roundOpts()
	}
	s, err := game.NewRound(t.newID(), t.rules, st.ledger, bet, opts...)
	if err != nil {
		return game.Snapshot{}, err
	}

	t.games.Set(s)
	t.mu.Lock()
	t.owners[s.ID()] = st
	t.mu.Unlock()

	st.mu.Lock()
	st.player.LastBet = bet
	st.player.Balance = st.ledger.Balance()
	if err := t.players.Save(ctx, st.player); err != nil {
		t.log.WithError(err).WithField("player_id", playerID).Error("failed to save player")
	}
	st.mu.Unlock()

	snap := s.Snapshot()
	t.log.WithFields(log.Fields{
		"session_id": s.ID(),
		"player_id":  playerID,
		"bet":        bet,
	}).Info("round started")

	if snap.Status.IsTerminal() {
		t.finish(ctx, s, snap)
	}
	return snap, nil
}

func (t *Table) Hit(ctx context.Context, sessionID string) (game.Snapshot, error) {
	return t.act(ctx, sessionID, (*game.Session).Hit)
}

func (t *Table) Stand(ctx context.Context, sessionID string) (game.Snapshot, error) {
	return t.act(ctx, sessionID, (*game.Session).Stand)
}

func (t *Table) act(ctx context.Context, sessionID string, action func(*game.Session) (game.Snapshot, error)) (game.Snapshot, error) {
	s, err := t.games.Get(sessionID)
	if err != nil {
		return game.Snapshot{}, err
	}

	snap, err := action(s)
	if err != nil {
		return game.Snapshot{}, err
	}
	if snap.Status.IsTerminal() {
		t.finish(ctx, s, snap)
	}
	return snap, nil
}

func (t *Table) Snapshot(sessionID string) (game.Snapshot, error) {
	s, err := t.games.Get(sessionID)
	if err != nil {
		return game.Snapshot{}, err
	}
	return s.Snapshot(), nil
}

// finish records a terminal round against its player. It runs once per
// session, from the action that ended it.
func (t *Table) finish(ctx context.Context, s *game.Session, snap game.Snapshot) {
	t.mu.Lock()
	st, ok := t.owners[s.ID()]
	delete(t.owners, s.ID())
	t.mu.Unlock()
	if !ok {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	switch {
	case snap.Status.PlayerWon():
		st.player.AddWin(s.Natural())
	case snap.Status == game.StatusPush:
		st.player.AddPush()
	default:
		st.player.AddLoss()
	}
	st.player.Balance = st.ledger.Balance()

	entry := t.log.WithFields(log.Fields{
		"session_id": s.ID(),
		"player_id":  st.player.ID,
		"status":     snap.Status,
		"payout":     snap.Payout,
		"balance":    st.player.Balance,
	})
	if err := t.players.Save(ctx, st.player); err != nil {
		entry.WithError(err).Error("failed to save player")
		return
	}
	entry.Info("round finished")
}

// Player returns a copy of the player's record with the live balance.
func (t *Table) Player(ctx context.Context, playerID string) (player.Player, error) {
	st, err := t.seat(ctx, playerID)
	if err != nil {
		return player.Player{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	p := *st.player
	p.Balance = st.ledger.Balance()
	return p, nil
}

// SetBalance is the operator adjustment. Negative balances are rejected.
func (t *Table) SetBalance(ctx context.Context, playerID string, balance int64) (player.Player, error) {
	st, err := t.seat(ctx, playerID)
	if err != nil {
		return player.Player{}, err
	}
	if err := st.ledger.Set(balance); err != nil {
		return player.Player{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.player.Balance = st.ledger.Balance()
	if err := t.players.Save(ctx, st.player); err != nil {
		return player.Player{}, err
	}
	t.log.WithFields(log.Fields{"player_id": playerID, "balance": balance}).Info("balance adjusted")
	return *st.player, nil
}

func (t *Table) Top(ctx context.Context, limit int) ([]player.Stats, error) {
	return t.players.GetTopByBalance(ctx, limit)
}

// Sweep removes sessions untouched for ttl. A round still in play by then is
// forfeited and recorded as a loss.
func (t *Table) Sweep(ctx context.Context, now time.Time, ttl time.Duration) int {
	cutoff := now.Add(-ttl)

	removed := 0
	for _, s := range t.games.Stale(cutoff) {
		if s.Status() == game.StatusPlaying {
			snap, err := s.ForfeitIdle(cutoff)
			if err != nil {
				// acted on since Stale, or settled by a concurrent action
				continue
			}
			t.finish(ctx, s, snap)
			t.log.WithField("session_id", s.ID()).Info("idle round forfeited")
		}
		t.games.Delete(s.ID())
		removed++
	}

	if removed > 0 {
		t.log.WithField("removed", removed).Debug("swept sessions")
	}
	return removed
}

// RunSweeper sweeps every interval until ctx is done.
func (t *Table) RunSweeper(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.Sweep(ctx, now, ttl)
		}
	}
}
