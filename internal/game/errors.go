package game

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBet    = errors.New("invalid bet")
	ErrInvalidAction = errors.New("invalid action")
	// ErrEmptyShoe means a draw happened without the pre-draw rebuild. It is
	// an engine bug, not a player error.
	ErrEmptyShoe = errors.New("empty shoe")

	ErrSessionNotFound = fmt.Errorf("%w: session not found", ErrInvalidAction)
)
