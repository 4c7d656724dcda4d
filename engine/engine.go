// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/danielhkuo/quickly-stake/ledger"
	"github.com/danielhkuo/quickly-stake/models"
	"github.com/danielhkuo/quickly-stake/store"
)

// Storage keys
const (
	keyProjects      = "projects"
	keyVotes         = "votes"
	keyHidden        = "hidden"
	keyUsers         = "users"
	keyBalancePrefix = "balance/"
	keyHistoryPrefix = "history/"
)

// DefaultInitialPoints is granted on a user's first authentication.
const DefaultInitialPoints = 1000

// Store is the whole-value persistence the engine reads at startup and
// writes after every mutation.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	PutAll(ctx context.Context, records []store.Record) error
}

// Engine owns the ledgers and projects. All mutations run under one lock and
// are persisted before they become visible.
type Engine struct {
	mu            sync.RWMutex
	store         Store
	now           func() time.Time
	initialPoints int64
	st            *state
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithInitialPoints sets the first-login grant.
func WithInitialPoints(n int64) Option {
	return func(e *Engine) { e.initialPoints = n }
}

// New loads all persisted state and returns a ready engine.
func New(ctx context.Context, s Store, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:         s,
		now:           time.Now,
		initialPoints: DefaultInitialPoints,
	}
	for _, opt := range opts {
		opt(e)
	}

	st, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	e.st = st

	slog.Info("engine loaded",
		"projects", len(st.projects),
		"users", len(st.users),
		"votes", len(st.votes),
	)
	return e, nil
}

type state struct {
	projects []models.Project
	votes    []models.UserVote
	hidden   []models.HiddenProject
	users    map[string]models.Identity
	ledgers  map[string]*ledger.Ledger
}

func (e *Engine) load(ctx context.Context) (*state, error) {
	st := &state{
		users:   make(map[string]models.Identity),
		ledgers: make(map[string]*ledger.Ledger),
	}

	if _, err := e.store.GetJSON(ctx, keyProjects, &st.projects); err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	if _, err := e.store.GetJSON(ctx, keyVotes, &st.votes); err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}
	if _, err := e.store.GetJSON(ctx, keyHidden, &st.hidden); err != nil {
		return nil, fmt.Errorf("failed to load hidden projects: %w", err)
	}
	if _, err := e.store.GetJSON(ctx, keyUsers, &st.users); err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	if st.users == nil {
		st.users = make(map[string]models.Identity)
	}

	for i := range st.projects {
		p := &st.projects[i]
		if p.Status == "" {
			p.Status = models.StatusActive
			if p.ResultPublished {
				p.Status = models.StatusSettled
			}
		}
	}

	for uid := range st.users {
		l, err := e.loadLedger(ctx, uid)
		if err != nil {
			return nil, err
		}
		st.ledgers[uid] = l
	}

	return st, nil
}

func (e *Engine) loadLedger(ctx context.Context, uid string) (*ledger.Ledger, error) {
	raw, ok, err := e.store.Get(ctx, keyBalancePrefix+uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load balance for %s: %w", uid, err)
	}

	var balance int64
	if ok {
		balance, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			// A corrupted balance must not make the service unusable
			slog.Warn("stored balance is not a number, using 0", "uid", uid, "value", raw)
			balance = 0
		}
	}

	var history []models.LedgerEntry
	if _, err := e.store.GetJSON(ctx, keyHistoryPrefix+uid, &history); err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", uid, err)
	}

	return ledger.New(uid, balance, history).WithClock(e.now), nil
}

// change collects the copy-on-write edits of one operation.
type change struct {
	base     *state
	now      func() time.Time
	projects []models.Project
	votes    []models.UserVote
	hidden   []models.HiddenProject
	users    map[string]models.Identity
	ledgers  map[string]*ledger.Ledger
}

func (e *Engine) begin() *change {
	return &change{
		base:    e.st,
		now:     e.now,
		ledgers: make(map[string]*ledger.Ledger),
	}
}

// ledger returns a private copy of uid's ledger.
func (c *change) ledger(uid string) *ledger.Ledger {
	if l, ok := c.ledgers[uid]; ok {
		return l
	}
	var l *ledger.Ledger
	if base, ok := c.base.ledgers[uid]; ok {
		l = base.Clone()
	} else {
		// Ledgers are loaded by user, so the owner must be registered too
		l = ledger.New(uid, 0, nil).WithClock(c.now)
		if _, known := c.user(uid); !known {
			c.putUser(models.Identity{UID: uid})
		}
	}
	c.ledgers[uid] = l
	return l
}

// project returns a private copy of the project at index i.
func (c *change) project(i int) *models.Project {
	if c.projects == nil {
		c.projects = slices.Clone(c.base.projects)
	}
	p := &c.projects[i]
	p.Voters = slices.Clone(p.Voters)
	p.VoteDetails = slices.Clone(p.VoteDetails)
	if p.Result != nil {
		r := *p.Result
		p.Result = &r
	}
	return p
}

func (c *change) prependProject(p models.Project) {
	base := c.projects
	if base == nil {
		base = c.base.projects
	}
	c.projects = append([]models.Project{p}, base...)
}

func (c *change) appendVote(v models.UserVote) {
	if c.votes == nil {
		c.votes = slices.Clone(c.base.votes)
	}
	c.votes = append(c.votes, v)
}

func (c *change) hide(uid, projectID string) {
	if c.hidden == nil {
		c.hidden = slices.Clone(c.base.hidden)
	}
	c.hidden = append(c.hidden, models.HiddenProject{UserID: uid, ProjectID: projectID})
}

func (c *change) user(uid string) (models.Identity, bool) {
	if c.users != nil {
		id, ok := c.users[uid]
		return id, ok
	}
	id, ok := c.base.users[uid]
	return id, ok
}

func (c *change) putUser(id models.Identity) {
	if c.users == nil {
		c.users = make(map[string]models.Identity, len(c.base.users)+1)
		for k, v := range c.base.users {
			c.users[k] = v
		}
	}
	c.users[id.UID] = id
}

func (c *change) records() ([]store.Record, error) {
	var recs []store.Record
	add := func(key string, v any) error {
		rec, err := store.JSONRecord(key, v)
		if err != nil {
			return err
		}
		recs = append(recs, rec)
		return nil
	}

	if c.projects != nil {
		if err := add(keyProjects, c.projects); err != nil {
			return nil, err
		}
	}
	if c.votes != nil {
		if err := add(keyVotes, c.votes); err != nil {
			return nil, err
		}
	}
	if c.hidden != nil {
		if err := add(keyHidden, c.hidden); err != nil {
			return nil, err
		}
	}
	if c.users != nil {
		if err := add(keyUsers, c.users); err != nil {
			return nil, err
		}
	}
	for uid, l := range c.ledgers {
		recs = append(recs, store.Record{
			Key:   keyBalancePrefix + uid,
			Value: strconv.FormatInt(l.Balance(), 10),
		})
		if err := add(keyHistoryPrefix+uid, l.History()); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// commit persists the change and, only on success, makes it visible.
// Callers hold e.mu.
func (e *Engine) commit(ctx context.Context, c *change) error {
	recs, err := c.records()
	if err != nil {
		return err
	}
	if err := e.store.PutAll(ctx, recs); err != nil {
		return fmt.Errorf("failed to persist: %w", err)
	}

	next := *e.st
	if c.projects != nil {
		next.projects = c.projects
	}
	if c.votes != nil {
		next.votes = c.votes
	}
	if c.hidden != nil {
		next.hidden = c.hidden
	}
	if c.users != nil {
		next.users = c.users
	}
	if len(c.ledgers) > 0 {
		next.ledgers = make(map[string]*ledger.Ledger, len(e.st.ledgers)+len(c.ledgers))
		for k, v := range e.st.ledgers {
			next.ledgers[k] = v
		}
		for k, v := range c.ledgers {
			next.ledgers[k] = v
		}
	}
	e.st = &next
	return nil
}

func (s *state) findProject(id string) int {
	return slices.IndexFunc(s.projects, func(p models.Project) bool { return p.ID == id })
}

func (s *state) isHidden(uid, projectID string) bool {
	return slices.Contains(s.hidden, models.HiddenProject{UserID: uid, ProjectID: projectID})
}
