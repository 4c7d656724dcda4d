// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger implements a single user's points balance and history.

# Operations

	l := ledger.New(uid, balance, history)
	_, err := l.Debit(50, models.KindVoteCost, "Vote - Rain tomorrow")
	_, _ = l.Credit(50, models.KindVoteReturn, "Vote returned - Rain tomorrow")

Debit fails with ErrInsufficientFunds when the amount exceeds the balance.
Annotate appends a bookkeeping entry without moving the balance.

# History

History is newest first and capped at HistoryLimit (100) entries; the oldest
entries fall off the tail. Every entry records the balance after it was
applied.

A Ledger does no I/O. The engine clones it, mutates the clone, persists the
result and only then swaps it in.
*/
package ledger
