package ledger

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNegativeAmount    = errors.New("negative amount")
)

// Ledger is a player's chip balance. It never goes below zero and is safe to
// share between concurrent rounds of the same player.
type Ledger struct {
	mu      sync.Mutex
	balance int64
}

func New(balance int64) *Ledger {
	if balance < 0 {
		balance = 0
	}
	return &Ledger{balance: balance}
}

func (l *Ledger) Balance() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Debit takes amount off the balance, or fails leaving it untouched.
func (l *Ledger) Debit(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("debit %d: %w", amount, ErrNegativeAmount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if amount > l.balance {
		return fmt.Errorf("debit %d from %d: %w", amount, l.balance, ErrInsufficientFunds)
	}
	l.balance -= amount
	return nil
}

func (l *Ledger) Credit(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("credit %d: %w", amount, ErrNegativeAmount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance += amount
	return nil
}

// Set overwrites the balance. Used for operator adjustments.
func (l *Ledger) Set(balance int64) error {
	if balance < 0 {
		return fmt.Errorf("set balance %d: %w", balance, ErrNegativeAmount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance = balance
	return nil
}
