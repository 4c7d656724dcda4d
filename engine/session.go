// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/danielhkuo/quickly-stake/models"
)

// Authenticate registers an identity vouched for by the authentication
// provider. The first time a uid is seen it receives the initial grant.
func (e *Engine) Authenticate(ctx context.Context, id models.Identity) (models.Identity, int64, error) {
	id.UID = strings.TrimSpace(id.UID)
	id.DisplayName = strings.TrimSpace(id.DisplayName)
	if id.UID == "" {
		return models.Identity{}, 0, invalid("uid", RuleRequired)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	known, ok := e.st.users[id.UID]
	if ok && id.DisplayName == "" {
		id.DisplayName = known.DisplayName
	}
	if ok && known.DisplayName == id.DisplayName {
		return known, e.balanceLocked(id.UID), nil
	}

	c := e.begin()
	c.putUser(id)

	isNew := !ok
	if isNew {
		l := c.ledger(id.UID)
		if len(l.History()) == 0 {
			if _, err := l.Credit(e.initialPoints, models.KindInitial, "Welcome bonus"); err != nil {
				return models.Identity{}, 0, err
			}
		}
	}

	if err := e.commit(ctx, c); err != nil {
		return models.Identity{}, 0, err
	}

	slog.Info("user authenticated", "uid", id.UID, "new", isNew)
	return id, e.balanceLocked(id.UID), nil
}

// Identity returns the registered identity for uid.
func (e *Engine) Identity(uid string) (models.Identity, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	id, ok := e.st.users[uid]
	return id, ok
}

// Balance returns uid's spendable points.
func (e *Engine) Balance(uid string) int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.balanceLocked(uid)
}

// History returns uid's newest-first ledger history.
func (e *Engine) History(uid string) []models.LedgerEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()

	l, ok := e.st.ledgers[uid]
	if !ok {
		return []models.LedgerEntry{}
	}
	return l.History()
}

func (e *Engine) balanceLocked(uid string) int64 {
	if l, ok := e.st.ledgers[uid]; ok {
		return l.Balance()
	}
	return 0
}
