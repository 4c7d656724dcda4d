// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/quickly-stake/models"
)

// CastVote stakes points on one option of a project. A user may vote any
// number of times, on either option.
func (e *Engine) CastVote(ctx context.Context, actor models.Identity, projectID, option string, points int64) (models.ProjectView, error) {
	if !models.ValidOption(option) {
		return models.ProjectView{}, invalid("option", RuleInvalid)
	}
	if points < 1 {
		return models.ProjectView{}, invalid("points", RuleNotPositive)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.st.findProject(projectID)
	if i < 0 {
		return models.ProjectView{}, ErrNotFound
	}
	base := e.st.projects[i]

	now := e.now()
	if !now.Before(base.EndTime) || base.ResultPublished || base.Deleted {
		return models.ProjectView{}, ErrVotingClosed
	}

	c := e.begin()
	l := c.ledger(actor.UID)
	if points > l.Balance() {
		return models.ProjectView{}, ErrInsufficientFunds
	}

	remaining := base.Remaining(option)
	if points > remaining {
		return models.ProjectView{}, fmt.Errorf("%w: %d points remaining on %s", ErrPoolExhausted, remaining, option)
	}

	desc := fmt.Sprintf("Vote - %s (%s, %d points)", base.Title, option, points)
	if _, err := l.Debit(points, models.KindVoteCost, desc); err != nil {
		return models.ProjectView{}, err
	}

	ts := now.UTC()
	p := c.project(i)
	p.VoteDetails = append(p.VoteDetails, models.VoteRecord{
		Voter:     actor.UID,
		Option:    option,
		Points:    points,
		Timestamp: ts,
	})
	p.Votes.Add(option, points)
	p.Voters = append(p.Voters, actor.UID)

	c.appendVote(models.UserVote{
		ProjectID: projectID,
		UserID:    actor.UID,
		Option:    option,
		Points:    points,
		Timestamp: ts,
	})

	if err := e.commit(ctx, c); err != nil {
		return models.ProjectView{}, err
	}

	slog.Info("vote cast", "project_id", projectID, "voter", actor.UID, "option", option, "points", points)
	return e.view(*p), nil
}
