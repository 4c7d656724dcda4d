// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-stake/models"
)

// MinAddressLength is the shortest accepted withdrawal address.
const MinAddressLength = 20

// WithdrawalFee is 10% of amount, rounded up.
func WithdrawalFee(amount int64) int64 {
	return (amount + 9) / 10
}

func validAddress(addr string) bool {
	if len(addr) < MinAddressLength {
		return false
	}
	for i := 0; i < len(addr); i++ {
		c := addr[i]
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
			return false
		}
	}
	return true
}

// Withdraw debits amount plus fee. Delivering the payout is out of scope;
// the receipt is all the engine produces.
func (e *Engine) Withdraw(ctx context.Context, actor models.Identity, address string, amount int64) (models.Withdrawal, error) {
	if !validAddress(address) {
		return models.Withdrawal{}, invalid("address", RuleInvalid)
	}
	if amount <= 0 {
		return models.Withdrawal{}, invalid("amount", RuleNotPositive)
	}

	fee := WithdrawalFee(amount)
	total := amount + fee

	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.begin()
	l := c.ledger(actor.UID)
	desc := fmt.Sprintf("Withdraw %s points (fee %s)", humanize.Comma(amount), humanize.Comma(fee))
	if _, err := l.Debit(total, models.KindWithdraw, desc); err != nil {
		return models.Withdrawal{}, err
	}

	if err := e.commit(ctx, c); err != nil {
		return models.Withdrawal{}, err
	}

	slog.Info("withdrawal requested", "uid", actor.UID, "amount", amount, "fee", fee)
	return models.Withdrawal{
		Address: address,
		Amount:  amount,
		Fee:     fee,
		Total:   total,
		Balance: l.Balance(),
	}, nil
}
