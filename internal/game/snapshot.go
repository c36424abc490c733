package game

import "encoding/json"

// CardView is a card as seen from outside the engine: either Visible with a
// known card, or Concealed with nothing but the marker.
type CardView struct {
	card      Card
	concealed bool
}

func Visible(c Card) CardView {
	return CardView{card: c}
}

func Concealed() CardView {
	return CardView{concealed: true}
}

// Card returns the card and false if it is concealed.
func (v CardView) Card() (Card, bool) {
	return v.card, !v.concealed
}

func (v CardView) IsConcealed() bool {
	return v.concealed
}

func (v CardView) String() string {
	if v.concealed {
		return "?"
	}
	return v.card.String()
}

type cardJSON struct {
	Rank      Rank   `json:"rank,omitempty"`
	Suit      Suit   `json:"suit,omitempty"`
	Value     int    `json:"value,omitempty"`
	Display   string `json:"display,omitempty"`
	Concealed bool   `json:"concealed"`
}

func (v CardView) MarshalJSON() ([]byte, error) {
	if v.concealed {
		return json.Marshal(cardJSON{Concealed: true})
	}
	return json.Marshal(cardJSON{
		Rank:    v.card.Rank(),
		Suit:    v.card.Suit(),
		Value:   v.card.Value(),
		Display: v.card.Display(),
	})
}

// Snapshot is the read model handed to transports after every action.
type Snapshot struct {
	ID          string     `json:"id"`
	PlayerCards []CardView `json:"player_cards"`
	DealerCards []CardView `json:"dealer_cards"`
	PlayerScore int        `json:"player_score"`
	DealerScore int        `json:"dealer_score"`
	Status      Status     `json:"status"`
	BetAmount   int64      `json:"bet_amount"`
	Balance     int64      `json:"balance"`
	Payout      int64      `json:"payout"`
}
