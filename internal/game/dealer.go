package game

// CardSource is anything the dealer can draw from.
type CardSource interface {
	Draw() (Card, error)
}

// DealerPolicy is the fixed drawing rule applied once the player stands.
type DealerPolicy struct {
	// HitSoft17 makes the dealer draw on a soft 17 (e.g. A+6).
	HitSoft17 bool
}

func (p DealerPolicy) ShouldHit(h *Hand) bool {
	score := h.Score()
	if score < 17 {
		return true
	}
	return p.HitSoft17 && score == 17 && h.IsSoft()
}

// Play draws into the dealer hand until the policy stands or the hand busts.
func (p DealerPolicy) Play(h *Hand, src CardSource) error {
	for p.ShouldHit(h) {
		card, err := src.Draw()
		if err != nil {
			return err
		}
		h.Add(card)
	}
	return nil
}
