// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-stake/models"
)

// HistoryLimit is the number of entries a ledger keeps.
const HistoryLimit = 100

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNegativeAmount    = errors.New("amount must not be negative")
	ErrBalanceOverflow   = errors.New("balance would overflow")
)

// Ledger is one user's point balance and newest-first history.
// It is a plain value; callers persist it.
type Ledger struct {
	owner   string
	balance int64
	history []models.LedgerEntry
	now     func() time.Time
}

// New builds a ledger from stored state. A negative balance is clamped to 0.
func New(owner string, balance int64, history []models.LedgerEntry) *Ledger {
	if balance < 0 {
		balance = 0
	}
	h := make([]models.LedgerEntry, len(history))
	copy(h, history)
	if len(h) > HistoryLimit {
		h = h[:HistoryLimit]
	}
	return &Ledger{owner: owner, balance: balance, history: h, now: time.Now}
}

// WithClock replaces the timestamp source and returns the ledger.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

func (l *Ledger) Owner() string  { return l.owner }
func (l *Ledger) Balance() int64 { return l.balance }

// History returns a copy of the capped, newest-first log.
func (l *Ledger) History() []models.LedgerEntry {
	h := make([]models.LedgerEntry, len(l.history))
	copy(h, l.history)
	return h
}

// Clone returns an independent copy.
func (l *Ledger) Clone() *Ledger {
	c := New(l.owner, l.balance, l.history)
	c.now = l.now
	return c
}

// Credit adds amount to the balance. Zero amounts are still logged.
func (l *Ledger) Credit(amount int64, kind, description string) (models.LedgerEntry, error) {
	if amount < 0 {
		return models.LedgerEntry{}, fmt.Errorf("credit %d: %w", amount, ErrNegativeAmount)
	}
	if amount > math.MaxInt64-l.balance {
		return models.LedgerEntry{}, fmt.Errorf("credit %d: %w", amount, ErrBalanceOverflow)
	}
	l.balance += amount
	return l.append(amount, kind, description), nil
}

// Debit removes amount from the balance.
func (l *Ledger) Debit(amount int64, kind, description string) (models.LedgerEntry, error) {
	if amount < 0 {
		return models.LedgerEntry{}, fmt.Errorf("debit %d: %w", amount, ErrNegativeAmount)
	}
	if amount > l.balance {
		return models.LedgerEntry{}, ErrInsufficientFunds
	}
	l.balance -= amount
	return l.append(-amount, kind, description), nil
}

// Annotate records a bookkeeping entry that does not move the balance.
func (l *Ledger) Annotate(delta int64, kind, description string) models.LedgerEntry {
	return l.append(delta, kind, description)
}

func (l *Ledger) append(delta int64, kind, description string) models.LedgerEntry {
	entry := models.LedgerEntry{
		ID:           uuid.NewString(),
		Kind:         kind,
		Delta:        delta,
		Description:  description,
		Timestamp:    l.now().UTC(),
		BalanceAfter: l.balance,
	}

	l.history = append(l.history, models.LedgerEntry{})
	copy(l.history[1:], l.history)
	l.history[0] = entry

	if len(l.history) > HistoryLimit {
		l.history = l.history[:HistoryLimit]
	}
	return entry
}
