package player

import (
	"context"
	"database/sql"
	"fmt"
)

type Player struct {
	ID       string `json:"id"`
	Balance  int64  `json:"balance"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Pushes   int    `json:"pushes"`
	Naturals int    `json:"naturals"`
	Rounds   int    `json:"rounds"`
	LastBet  int64  `json:"last_bet"`
}

type Stats struct {
	ID      string  `json:"id"`
	Balance int64   `json:"balance"`
	Wins    int     `json:"wins"`
	Rounds  int     `json:"rounds"`
	WinRate float64 `json:"win_rate"`
}

type Repository interface {
	GetOrCreate(ctx context.Context, id string, startBalance, defaultBet int64) (*Player, error)
	Save(ctx context.Context, player *Player) error
	GetTopByBalance(ctx context.Context, limit int) ([]Stats, error)
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetOrCreate is safe to race for the same id: the insert is a no-op when the
// player already exists.
func (r *SQLiteRepository) GetOrCreate(ctx context.Context, id string, startBalance, defaultBet int64) (*Player, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO players (id, balance, last_bet)
		VALUES (?, ?, ?)
	`, id, startBalance, defaultBet)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	player := &Player{ID: id}
	err = r.db.QueryRowContext(ctx, `
		SELECT balance, wins, losses, pushes, naturals, rounds, last_bet
		FROM players WHERE id = ?
	`, id).Scan(
		&player.Balance, &player.Wins, &player.Losses, &player.Pushes,
		&player.Naturals, &player.Rounds, &player.LastBet,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, player *Player) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE players SET
			balance = ?, wins = ?, losses = ?, pushes = ?, naturals = ?,
			rounds = ?, last_bet = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, player.Balance, player.Wins, player.Losses, player.Pushes, player.Naturals,
		player.Rounds, player.LastBet, player.ID)

	if err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetTopByBalance(ctx context.Context, limit int) ([]Stats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, balance, wins, rounds
		FROM players
		WHERE rounds > 0
		ORDER BY balance DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []Stats
	for rows.Next() {
		var s Stats
		if err := rows.Scan(&s.ID, &s.Balance, &s.Wins, &s.Rounds); err != nil {
			return nil, err
		}
		if s.Rounds > 0 {
			s.WinRate = float64(s.Wins) / float64(s.Rounds) * 100
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

func (p *Player) AddWin(natural bool) {
	p.Wins++
	p.Rounds++
	if natural {
		p.Naturals++
	}
}

func (p *Player) AddLoss() {
	p.Losses++
	p.Rounds++
}

func (p *Player) AddPush() {
	p.Pushes++
	p.Rounds++
}

func (p *Player) WinRate() float64 {
	if p.Rounds == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.Rounds) * 100
}
