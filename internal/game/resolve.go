package game

type Status string

const (
	StatusPlaying    Status = "playing"
	StatusPlayerBust Status = "player_bust"
	StatusDealerBust Status = "dealer_bust"
	StatusPlayerWin  Status = "player_win"
	StatusDealerWin  Status = "dealer_win"
	StatusPush       Status = "push"
)

func (s Status) IsTerminal() bool {
	switch s {
	case StatusPlayerBust, StatusDealerBust, StatusPlayerWin, StatusDealerWin, StatusPush:
		return true
	}
	return false
}

// PlayerWon is true for the two outcomes that pay the player.
func (s Status) PlayerWon() bool {
	return s == StatusPlayerWin || s == StatusDealerBust
}

// Resolve settles a finished round. A player bust loses even if the dealer
// also busts.
func Resolve(player, dealer *Hand) Status {
	if player.IsBust() {
		return StatusPlayerBust
	}
	if dealer.IsBust() {
		return StatusDealerBust
	}

	playerScore := player.Score()
	dealerScore := dealer.Score()

	switch {
	case playerScore > dealerScore:
		return StatusPlayerWin
	case playerScore < dealerScore:
		return StatusDealerWin
	default:
		return StatusPush
	}
}

// Payout is what goes back to the balance when the round ends. The bet has
// already been taken at round start. A winning natural pays blackjackPays
// times the bet on top of the returned stake.
func Payout(status Status, bet int64, natural bool, blackjackPays float64) int64 {
	switch {
	case status.PlayerWon() && natural:
		return bet + int64(float64(bet)*blackjackPays)
	case status.PlayerWon():
		return bet * 2
	case status == StatusPush:
		return bet
	default:
		return 0
	}
}
