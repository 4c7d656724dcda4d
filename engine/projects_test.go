// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-stake/models"
)

func TestCreateProjectValidation(t *testing.T) {
	e, clock := newTestEngine(t, newMemStore())
	signIn(t, e, alice)
	tomorrow := clock.now().Add(24 * time.Hour)

	tests := []struct {
		name  string
		in    CreateProjectInput
		field string
		rule  string
	}{
		{"blank title", CreateProjectInput{Title: "   ", Description: "d", EndTime: tomorrow, MaxPoints: 1}, "title", RuleRequired},
		{"12 char title", CreateProjectInput{Title: "abcdefghijkl", Description: "d", EndTime: tomorrow, MaxPoints: 1}, "title", RuleTooLong},
		{"12 emoji title", CreateProjectInput{Title: strings.Repeat("🎲", 12), Description: "d", EndTime: tomorrow, MaxPoints: 1}, "title", RuleTooLong},
		{"blank description", CreateProjectInput{Title: "t", EndTime: tomorrow, MaxPoints: 1}, "description", RuleRequired},
		{"101 char description", CreateProjectInput{Title: "t", Description: strings.Repeat("d", 101), EndTime: tomorrow, MaxPoints: 1}, "description", RuleTooLong},
		{"no end time", CreateProjectInput{Title: "t", Description: "d", MaxPoints: 1}, "end_time", RuleRequired},
		{"end time now", CreateProjectInput{Title: "t", Description: "d", EndTime: clock.now(), MaxPoints: 1}, "end_time", RuleNotFuture},
		{"zero max points", CreateProjectInput{Title: "t", Description: "d", EndTime: tomorrow}, "max_points", RuleNotPositive},
		{"negative max points", CreateProjectInput{Title: "t", Description: "d", EndTime: tomorrow, MaxPoints: -5}, "max_points", RuleNotPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.CreateProject(context.Background(), alice, tt.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if verr.Field != tt.field || verr.Rule != tt.rule {
				t.Errorf("got %s/%s, want %s/%s", verr.Field, verr.Rule, tt.field, tt.rule)
			}
		})
	}

	if got := e.Balance("alice"); got != 1000 {
		t.Errorf("balance = %d, want 1000", got)
	}
}

func TestCreateProjectCountsCharacters(t *testing.T) {
	e, clock := newTestEngine(t, newMemStore())
	signIn(t, e, alice)

	// All are 11 characters. The second is 13 runes before NFC composes the
	// accents; the emoji take 22 UTF-16 units but count once each.
	for _, title := range []string{"日本語のタイトルです。", "cafe\u0301cafe\u0301caf", strings.Repeat("🎲", 11)} {
		p, err := e.CreateProject(context.Background(), alice, CreateProjectInput{
			Title:       title,
			Description: "d",
			EndTime:     clock.now().Add(time.Hour),
			MaxPoints:   1,
		})
		if err != nil {
			t.Fatalf("%q: %v", title, err)
		}
		if p.Title != title {
			t.Errorf("title = %q, want %q", p.Title, title)
		}
	}
}

func TestCreateProject(t *testing.T) {
	e, clock := newTestEngine(t, newMemStore())
	signIn(t, e, alice)

	if _, err := e.CreateProject(context.Background(), alice, CreateProjectInput{
		Title: "t", Description: "d", EndTime: clock.now().Add(time.Hour), MaxPoints: 1001,
	}); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}

	first := createProject(t, e, clock, alice, 300)
	second := createProject(t, e, clock, alice, 200)

	if first.ID == second.ID || len(first.ID) == 0 {
		t.Errorf("ids = %q, %q", first.ID, second.ID)
	}
	if first.CreatorName != "Alice" || first.FrozenPoints != 300 || first.Status != models.StatusActive {
		t.Errorf("project = %+v", first)
	}
	if got := e.Balance("alice"); got != 500 {
		t.Errorf("balance = %d, want 500", got)
	}

	list := e.ListProjects("alice")
	if len(list) != 2 || list[0].ID != second.ID {
		t.Errorf("expected newest first, got %d projects", len(list))
	}

	h := e.History("alice")
	if h[0].Kind != models.KindProjectCost || h[0].Delta != -200 || h[0].BalanceAfter != 500 {
		t.Errorf("newest entry = %+v", h[0])
	}

	// Spending the whole balance is allowed
	createProject(t, e, clock, alice, 500)
	if got := e.Balance("alice"); got != 0 {
		t.Errorf("balance = %d, want 0", got)
	}
}

func TestDeleteProject(t *testing.T) {
	ctx := context.Background()

	t.Run("refunds and hides for the creator only", func(t *testing.T) {
		e, clock := newTestEngine(t, newMemStore())
		signIn(t, e, alice, bob)
		p := createProject(t, e, clock, alice, 300)

		if _, err := e.DeleteProject(ctx, bob, p.ID); !errors.Is(err, ErrForbidden) {
			t.Fatalf("err = %v, want ErrForbidden", err)
		}

		refunded, err := e.DeleteProject(ctx, alice, p.ID)
		if err != nil {
			t.Fatal(err)
		}
		if refunded != 300 || e.Balance("alice") != 1000 {
			t.Errorf("refunded %d, balance %d", refunded, e.Balance("alice"))
		}
		if len(e.ListProjects("alice")) != 0 || len(e.MyProjects("alice")) != 0 {
			t.Error("deleted project still listed for creator")
		}
		if len(e.ListProjects("bob")) != 1 {
			t.Error("deleted project must stay visible to others")
		}

		if _, err := e.DeleteProject(ctx, alice, p.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second delete err = %v, want ErrNotFound", err)
		}
		if e.Balance("alice") != 1000 {
			t.Error("second delete must not refund again")
		}
	})

	t.Run("deleted project is closed", func(t *testing.T) {
		e, clock := newTestEngine(t, newMemStore())
		signIn(t, e, alice, bob)
		p := createProject(t, e, clock, alice, 100)

		if _, err := e.DeleteProject(ctx, alice, p.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := e.CastVote(ctx, bob, p.ID, models.OptionYes, 10); !errors.Is(err, ErrVotingClosed) {
			t.Errorf("vote err = %v, want ErrVotingClosed", err)
		}
		if _, err := e.PublishResult(ctx, alice, p.ID, models.OptionNo); !errors.Is(err, ErrNotFound) {
			t.Errorf("publish err = %v, want ErrNotFound", err)
		}

		if got := e.Balance("alice") + e.Balance("bob"); got != 2000 {
			t.Errorf("total points = %d, want 2000", got)
		}
		view, err := e.GetProject(p.ID)
		if err != nil {
			t.Fatal(err)
		}
		if view.Status != models.StatusDeleted || view.Active {
			t.Errorf("status = %s, active = %v", view.Status, view.Active)
		}
	})

	t.Run("votes require settlement first", func(t *testing.T) {
		e, clock := newTestEngine(t, newMemStore())
		signIn(t, e, alice, bob)
		p := createProject(t, e, clock, alice, 300)
		vote(t, e, bob, p.ID, models.OptionYes, 10)

		if _, err := e.DeleteProject(ctx, alice, p.ID); !errors.Is(err, ErrSettlementRequired) {
			t.Fatalf("err = %v, want ErrSettlementRequired", err)
		}

		if _, err := e.PublishResult(ctx, alice, p.ID, models.OptionYes); err != nil {
			t.Fatal(err)
		}
		// Settlement moved the escrow to bob and left alice at 700
		if e.Balance("alice") != 700 {
			t.Fatalf("balance after settlement = %d, want 700", e.Balance("alice"))
		}

		refunded, err := e.DeleteProject(ctx, alice, p.ID)
		if err != nil {
			t.Fatal(err)
		}
		if refunded != 300 || e.Balance("alice") != 1000 {
			t.Errorf("refunded %d, balance %d", refunded, e.Balance("alice"))
		}
	})

	t.Run("unknown project", func(t *testing.T) {
		e, _ := newTestEngine(t, newMemStore())
		if _, err := e.DeleteProject(ctx, alice, "nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestHideParticipation(t *testing.T) {
	ctx := context.Background()
	e, clock := newTestEngine(t, newMemStore())
	signIn(t, e, alice, bob)
	p := createProject(t, e, clock, alice, 100)
	vote(t, e, bob, p.ID, models.OptionNo, 20)

	if err := e.HideParticipation(ctx, bob, p.ID); !errors.Is(err, ErrSettlementNotDone) {
		t.Fatalf("err = %v, want ErrSettlementNotDone", err)
	}
	if err := e.HideParticipation(ctx, bob, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if _, err := e.PublishResult(ctx, alice, p.ID, models.OptionYes); err != nil {
		t.Fatal(err)
	}

	for range 2 {
		if err := e.HideParticipation(ctx, bob, p.ID); err != nil {
			t.Fatalf("hide: %v", err)
		}
	}

	if len(e.ListProjects("bob")) != 0 || len(e.ParticipatedProjects("bob")) != 0 {
		t.Error("hidden project still listed for bob")
	}
	if len(e.ListProjects("alice")) != 1 {
		t.Error("hiding is per user")
	}
	if _, err := e.GetProject(p.ID); err != nil {
		t.Errorf("GetProject ignores hide-sets, got %v", err)
	}
}

func TestProjectViews(t *testing.T) {
	e, clock := newTestEngine(t, newMemStore())
	signIn(t, e, alice, bob, carol)
	p := createProject(t, e, clock, alice, 100)
	other := createProject(t, e, clock, bob, 50)

	vote(t, e, bob, p.ID, models.OptionYes, 30)
	vote(t, e, bob, p.ID, models.OptionNo, 5)
	vote(t, e, carol, p.ID, models.OptionYes, 10)

	view, err := e.GetProject(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if view.ParticipantCount != 2 {
		t.Errorf("participants = %d, want 2", view.ParticipantCount)
	}
	if view.RemainingYes != 60 || view.RemainingNo != 95 {
		t.Errorf("remaining = %d/%d, want 60/95", view.RemainingYes, view.RemainingNo)
	}
	if !view.Active {
		t.Error("expected active before end time")
	}

	mine := e.MyProjects("bob")
	if len(mine) != 1 || mine[0].ID != other.ID {
		t.Errorf("bob's projects = %+v", mine)
	}

	parts := e.ParticipatedProjects("bob")
	if len(parts) != 1 || parts[0].MyYesPoints != 30 || parts[0].MyNoPoints != 5 || parts[0].MyVoteCount != 2 {
		t.Errorf("bob's participations = %+v", parts)
	}

	clock.advance(25 * time.Hour)
	view, _ = e.GetProject(p.ID)
	if view.Active {
		t.Error("expected inactive after end time")
	}

	if _, err := e.GetProject("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
