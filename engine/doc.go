// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package engine is the points ledger and settlement engine.

# Setup

	e, err := engine.New(ctx, store.New(conn, cfg.DatabaseType))

New loads every persisted collection once. After that each mutating
operation validates, edits private copies of the affected records, writes
them in one transaction and only then swaps them in. A failed write leaves
the engine unchanged.

# Operations

Every operation takes the acting identity explicitly:

	id, balance, err := e.Authenticate(ctx, models.Identity{UID: "alice"})
	p, err := e.CreateProject(ctx, id, engine.CreateProjectInput{...})
	view, err := e.CastVote(ctx, bob, p.ID, models.OptionYes, 50)
	s, err := e.PublishResult(ctx, id, p.ID, models.OptionYes)
	refund, err := e.DeleteProject(ctx, id, p.ID)
	err = e.HideParticipation(ctx, bob, p.ID)
	receipt, err := e.Withdraw(ctx, bob, address, 100)

# Escrow

Creating a project freezes MaxPoints from the creator. MaxPoints also caps
each option's pool independently. Settlement pays every correct vote its
stake plus a floor-rounded share of the frozen points; the creator gets back
the whole escrow when nobody was right and the rounding remainder otherwise.

# Errors

Sentinel errors (ErrNotFound, ErrPoolExhausted, ...) and *ValidationError
are matched with errors.Is / errors.As. ErrorCode maps them to stable
machine-readable codes.

# Concurrency

One RWMutex guards all state, so a vote can never land after settlement and
a project settles at most once.
*/
package engine
