// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-stake/models"
	"github.com/danielhkuo/quickly-stake/store"
)

var errDiskFull = errors.New("disk full")

// memStore keeps whole values in a map. Setting fail makes every write fail.
type memStore struct {
	mu     sync.Mutex
	data   map[string]string
	fail   error
	writes int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, _ := m.Get(ctx, key)
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal([]byte(raw), v)
}

func (m *memStore) PutAll(_ context.Context, records []store.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	for _, r := range records {
		m.data[r.Key] = r.Value
	}
	m.writes++
	return nil
}

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

var (
	alice = models.Identity{UID: "alice", DisplayName: "Alice"}
	bob   = models.Identity{UID: "bob", DisplayName: "Bob"}
	carol = models.Identity{UID: "carol", DisplayName: "Carol"}
	dave  = models.Identity{UID: "dave", DisplayName: "Dave"}
)

func newTestEngine(t *testing.T, s Store) (*Engine, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	e, err := New(context.Background(), s, WithClock(clock.now))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e, clock
}

func signIn(t *testing.T, e *Engine, ids ...models.Identity) {
	t.Helper()
	for _, id := range ids {
		if _, _, err := e.Authenticate(context.Background(), id); err != nil {
			t.Fatalf("Authenticate %s: %v", id.UID, err)
		}
	}
}

func createProject(t *testing.T, e *Engine, clock *testClock, creator models.Identity, maxPoints int64) models.Project {
	t.Helper()
	p, err := e.CreateProject(context.Background(), creator, CreateProjectInput{
		Title:       "Rain?",
		Description: "Will it rain tomorrow",
		EndTime:     clock.now().Add(24 * time.Hour),
		MaxPoints:   maxPoints,
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	return p
}

func vote(t *testing.T, e *Engine, voter models.Identity, projectID, option string, points int64) {
	t.Helper()
	if _, err := e.CastVote(context.Background(), voter, projectID, option, points); err != nil {
		t.Fatalf("CastVote %s %s %d: %v", voter.UID, option, points, err)
	}
}

func TestReloadRestoresState(t *testing.T) {
	s := newMemStore()
	e, clock := newTestEngine(t, s)
	signIn(t, e, alice, bob)

	p := createProject(t, e, clock, alice, 200)
	vote(t, e, bob, p.ID, models.OptionNo, 40)

	reloaded, _ := newTestEngine(t, s)

	if got := reloaded.Balance("alice"); got != 800 {
		t.Errorf("alice balance = %d, want 800", got)
	}
	if got := reloaded.Balance("bob"); got != 960 {
		t.Errorf("bob balance = %d, want 960", got)
	}
	if got := len(reloaded.History("bob")); got != 2 {
		t.Errorf("bob history length = %d, want 2", got)
	}

	view, err := reloaded.GetProject(p.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if view.Votes.No != 40 || len(view.VoteDetails) != 1 {
		t.Errorf("reloaded votes = %+v, details = %d", view.Votes, len(view.VoteDetails))
	}
	if parts := reloaded.ParticipatedProjects("bob"); len(parts) != 1 {
		t.Errorf("reloaded participations = %d, want 1", len(parts))
	}
}

func TestCorruptedBalanceLoadsAsZero(t *testing.T) {
	s := newMemStore()
	s.data[keyUsers] = `{"alice":{"uid":"alice"}}`
	s.data[keyBalancePrefix+"alice"] = "lots"

	e, _ := newTestEngine(t, s)

	if got := e.Balance("alice"); got != 0 {
		t.Errorf("balance = %d, want 0", got)
	}

	// Known users do not get the grant again
	_, balance, err := e.Authenticate(context.Background(), models.Identity{UID: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	if balance != 0 {
		t.Errorf("balance after sign-in = %d, want 0", balance)
	}
}

func TestLoadRejectsCorruptedProjects(t *testing.T) {
	s := newMemStore()
	s.data[keyProjects] = `{not json`

	if _, err := New(context.Background(), s); err == nil {
		t.Error("expected error for corrupted projects")
	}
}

func TestFailedPersistLeavesStateUntouched(t *testing.T) {
	s := newMemStore()
	e, clock := newTestEngine(t, s)
	signIn(t, e, alice, bob)
	p := createProject(t, e, clock, alice, 100)
	vote(t, e, bob, p.ID, models.OptionYes, 10)

	s.fail = errDiskFull
	ctx := context.Background()

	ops := []struct {
		name string
		run  func() error
	}{
		{"authenticate", func() error {
			_, _, err := e.Authenticate(ctx, carol)
			return err
		}},
		{"create", func() error {
			_, err := e.CreateProject(ctx, alice, CreateProjectInput{Title: "t", Description: "d", EndTime: clock.now().Add(time.Hour), MaxPoints: 5})
			return err
		}},
		{"vote", func() error {
			_, err := e.CastVote(ctx, bob, p.ID, models.OptionNo, 5)
			return err
		}},
		{"publish", func() error {
			_, err := e.PublishResult(ctx, alice, p.ID, models.OptionYes)
			return err
		}},
		{"withdraw", func() error {
			_, err := e.Withdraw(ctx, bob, "ABCDEFGHIJ0123456789", 10)
			return err
		}},
	}

	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			err := op.run()
			if !errors.Is(err, errDiskFull) {
				t.Fatalf("err = %v, want disk full", err)
			}
			if code := ErrorCode(err); code != "" {
				t.Errorf("persistence failure mapped to %q", code)
			}
		})
	}

	if got := e.Balance("alice"); got != 900 {
		t.Errorf("alice balance = %d, want 900", got)
	}
	if got := e.Balance("bob"); got != 990 {
		t.Errorf("bob balance = %d, want 990", got)
	}
	if _, ok := e.Identity("carol"); ok {
		t.Error("carol must not be registered")
	}
	if got := len(e.ListProjects("alice")); got != 1 {
		t.Errorf("projects = %d, want 1", got)
	}
	view, _ := e.GetProject(p.ID)
	if view.Votes.No != 0 || view.ResultPublished {
		t.Errorf("project changed: votes %+v, published %v", view.Votes, view.ResultPublished)
	}

	// Once the store recovers the same operation goes through
	s.fail = nil
	if _, err := e.PublishResult(ctx, alice, p.ID, models.OptionYes); err != nil {
		t.Fatalf("publish after recovery: %v", err)
	}
}

func TestEveryMutationPersists(t *testing.T) {
	s := newMemStore()
	e, clock := newTestEngine(t, s)
	signIn(t, e, alice)
	p := createProject(t, e, clock, alice, 100)

	before := s.writes
	if _, err := e.DeleteProject(context.Background(), alice, p.ID); err != nil {
		t.Fatal(err)
	}
	if s.writes != before+1 {
		t.Errorf("writes = %d, want %d", s.writes, before+1)
	}

	var hidden []models.HiddenProject
	if _, err := s.GetJSON(context.Background(), keyHidden, &hidden); err != nil {
		t.Fatal(err)
	}
	if len(hidden) != 1 || hidden[0] != (models.HiddenProject{UserID: "alice", ProjectID: p.ID}) {
		t.Errorf("hidden = %+v", hidden)
	}
	if raw := s.data[keyBalancePrefix+"alice"]; raw != "1000" {
		t.Errorf("stored balance = %q, want 1000", raw)
	}
}
