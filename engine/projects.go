// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/danielhkuo/quickly-stake/auth"
	"github.com/danielhkuo/quickly-stake/models"
)

// Field limits, counted in characters
const (
	MaxTitleLength       = 11
	MaxDescriptionLength = 100
)

// CreateProjectInput holds the creator-supplied fields of a new project.
type CreateProjectInput struct {
	Title       string
	Description string
	EndTime     time.Time
	MaxPoints   int64
}

func charCount(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}

func (in *CreateProjectInput) validate(now time.Time) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	switch {
	case in.Title == "":
		return invalid("title", RuleRequired)
	case charCount(in.Title) > MaxTitleLength:
		return invalid("title", RuleTooLong)
	case in.Description == "":
		return invalid("description", RuleRequired)
	case charCount(in.Description) > MaxDescriptionLength:
		return invalid("description", RuleTooLong)
	case in.EndTime.IsZero():
		return invalid("end_time", RuleRequired)
	case !in.EndTime.After(now):
		return invalid("end_time", RuleNotFuture)
	case in.MaxPoints <= 0:
		return invalid("max_points", RuleNotPositive)
	}
	return nil
}

// CreateProject freezes MaxPoints from the creator and publishes a new
// project at the head of the list.
func (e *Engine) CreateProject(ctx context.Context, actor models.Identity, in CreateProjectInput) (models.Project, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	if err := in.validate(now); err != nil {
		return models.Project{}, err
	}

	c := e.begin()
	l := c.ledger(actor.UID)
	if in.MaxPoints > l.Balance() {
		return models.Project{}, ErrInsufficientFunds
	}

	id, err := auth.GenerateID(16)
	if err != nil {
		return models.Project{}, err
	}

	if _, err := l.Debit(in.MaxPoints, models.KindProjectCost, "Create project - "+in.Title); err != nil {
		return models.Project{}, err
	}

	p := models.Project{
		ID:           id,
		Title:        in.Title,
		Description:  in.Description,
		CreatorID:    actor.UID,
		CreatorName:  actor.Name(),
		CreatedAt:    now.UTC(),
		EndTime:      in.EndTime.UTC(),
		MaxPoints:    in.MaxPoints,
		FrozenPoints: in.MaxPoints,
		Voters:       []string{},
		VoteDetails:  []models.VoteRecord{},
		Status:       models.StatusActive,
	}
	c.prependProject(p)

	if err := e.commit(ctx, c); err != nil {
		return models.Project{}, err
	}

	slog.Info("project created", "project_id", id, "creator", actor.UID, "frozen_points", p.FrozenPoints)
	return p, nil
}

// DeleteProject returns the escrow to the creator and hides the project for
// them. Other participants still see it. A project deleted before settlement
// is closed for good: it takes no more votes and cannot be published.
func (e *Engine) DeleteProject(ctx context.Context, actor models.Identity, projectID string) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.st.findProject(projectID)
	if i < 0 || e.st.projects[i].Deleted || e.st.isHidden(actor.UID, projectID) {
		return 0, ErrNotFound
	}
	p := e.st.projects[i]
	if p.CreatorID != actor.UID {
		return 0, ErrForbidden
	}
	if len(p.VoteDetails) > 0 && !p.ResultPublished {
		return 0, ErrSettlementRequired
	}

	c := e.begin()
	if _, err := c.ledger(p.CreatorID).Credit(p.FrozenPoints, models.KindProjectDelete, "Delete project - "+p.Title); err != nil {
		return 0, err
	}
	c.hide(actor.UID, projectID)

	dp := c.project(i)
	dp.Deleted = true
	if !dp.ResultPublished {
		dp.Status = models.StatusDeleted
	}

	if err := e.commit(ctx, c); err != nil {
		return 0, err
	}

	slog.Info("project deleted", "project_id", projectID, "creator", actor.UID, "refunded", p.FrozenPoints)
	return p.FrozenPoints, nil
}

// HideParticipation removes a settled project from the actor's lists.
func (e *Engine) HideParticipation(ctx context.Context, actor models.Identity, projectID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.st.findProject(projectID)
	if i < 0 {
		return ErrNotFound
	}
	if !e.st.projects[i].ResultPublished {
		return ErrSettlementNotDone
	}
	if e.st.isHidden(actor.UID, projectID) {
		return nil
	}

	c := e.begin()
	c.hide(actor.UID, projectID)
	if err := e.commit(ctx, c); err != nil {
		return err
	}

	slog.Info("project hidden", "project_id", projectID, "uid", actor.UID)
	return nil
}

// GetProject returns one project regardless of hide-sets.
func (e *Engine) GetProject(projectID string) (models.ProjectView, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	i := e.st.findProject(projectID)
	if i < 0 {
		return models.ProjectView{}, fmt.Errorf("%s: %w", projectID, ErrNotFound)
	}
	return e.view(e.st.projects[i]), nil
}

// ListProjects returns every project not hidden for viewer, newest first.
func (e *Engine) ListProjects(viewer string) []models.ProjectView {
	e.mu.RLock()
	defer e.mu.RUnlock()

	views := []models.ProjectView{}
	for _, p := range e.st.projects {
		if e.st.isHidden(viewer, p.ID) {
			continue
		}
		views = append(views, e.view(p))
	}
	return views
}

// MyProjects returns the projects viewer created and has not deleted.
func (e *Engine) MyProjects(viewer string) []models.ProjectView {
	e.mu.RLock()
	defer e.mu.RUnlock()

	views := []models.ProjectView{}
	for _, p := range e.st.projects {
		if p.CreatorID != viewer || e.st.isHidden(viewer, p.ID) {
			continue
		}
		views = append(views, e.view(p))
	}
	return views
}

// ParticipatedProjects returns the projects viewer voted on with viewer's
// own totals.
func (e *Engine) ParticipatedProjects(viewer string) []models.Participation {
	e.mu.RLock()
	defer e.mu.RUnlock()

	type mine struct {
		yes, no int64
		count   int
	}
	byProject := make(map[string]*mine)
	for _, v := range e.st.votes {
		if v.UserID != viewer {
			continue
		}
		m, ok := byProject[v.ProjectID]
		if !ok {
			m = &mine{}
			byProject[v.ProjectID] = m
		}
		if v.Option == models.OptionYes {
			m.yes += v.Points
		} else {
			m.no += v.Points
		}
		m.count++
	}

	out := []models.Participation{}
	for _, p := range e.st.projects {
		m, ok := byProject[p.ID]
		if !ok || e.st.isHidden(viewer, p.ID) {
			continue
		}
		out = append(out, models.Participation{
			ProjectView: e.view(p),
			MyYesPoints: m.yes,
			MyNoPoints:  m.no,
			MyVoteCount: m.count,
		})
	}
	return out
}

func (e *Engine) view(p models.Project) models.ProjectView {
	return models.ProjectView{
		Project:          p,
		Active:           !p.Deleted && e.now().Before(p.EndTime),
		ParticipantCount: p.ParticipantCount(),
		RemainingYes:     p.Remaining(models.OptionYes),
		RemainingNo:      p.Remaining(models.OptionNo),
	}
}
