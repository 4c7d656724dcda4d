// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/bits"

	"github.com/danielhkuo/quickly-stake/models"
)

// ComputePayouts splits a project's frozen points among the votes that
// picked result, in proportion to their stake. Each correct vote gets its
// stake back plus floor(points * frozen / totalCorrect). The rounding
// remainder is reported as Residual.
func ComputePayouts(p models.Project, result string) models.Settlement {
	s := models.Settlement{
		ProjectID: p.ID,
		Result:    result,
		Payouts:   []models.Payout{},
	}

	for _, v := range p.VoteDetails {
		if v.Option == result {
			s.TotalVotedPoints += v.Points
		}
	}

	for _, v := range p.VoteDetails {
		if v.Option != result {
			continue
		}
		var extra int64
		if s.TotalVotedPoints > 0 {
			extra = mulDiv(v.Points, p.FrozenPoints, s.TotalVotedPoints)
		}
		s.Payouts = append(s.Payouts, models.Payout{
			Voter:       v.Voter,
			Points:      v.Points,
			ExtraReward: extra,
			TotalReward: v.Points + extra,
		})
		s.TotalExtra += extra
		s.TotalRewards += v.Points + extra
	}

	if len(s.Payouts) == 0 {
		s.Refunded = p.FrozenPoints
	} else {
		s.Residual = p.FrozenPoints - s.TotalExtra
	}
	return s
}

// mulDiv returns floor(a * b / c) for 0 <= a <= c and b >= 0 without
// overflowing. The result is at most b.
func mulDiv(a, b, c int64) int64 {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	q, _ := bits.Div64(hi, lo, uint64(c))
	return int64(q)
}

// PublishResult settles a project. Every correct voter's ledger is credited
// with the stake and the reward as two entries; the creator's ledger records
// the payout and receives any escrow nobody claimed. Publishing is allowed
// before the deadline and with no votes at all.
func (e *Engine) PublishResult(ctx context.Context, actor models.Identity, projectID, result string) (models.Settlement, error) {
	if !models.ValidOption(result) {
		return models.Settlement{}, invalid("result", RuleInvalid)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.st.findProject(projectID)
	if i < 0 {
		return models.Settlement{}, ErrNotFound
	}
	base := e.st.projects[i]
	if base.CreatorID != actor.UID {
		return models.Settlement{}, ErrForbidden
	}
	if base.ResultPublished {
		return models.Settlement{}, ErrAlreadyPublished
	}
	// the escrow went back to the creator on delete
	if base.Deleted {
		return models.Settlement{}, ErrNotFound
	}

	s := ComputePayouts(base, result)
	c := e.begin()

	for _, pay := range s.Payouts {
		l := c.ledger(pay.Voter)
		if _, err := l.Credit(pay.Points, models.KindVoteReturn, "Vote returned - "+base.Title); err != nil {
			return models.Settlement{}, err
		}
		if pay.ExtraReward > 0 {
			desc := fmt.Sprintf("Vote reward - %s (extra %d points)", base.Title, pay.ExtraReward)
			if _, err := l.Credit(pay.ExtraReward, models.KindVoteReward, desc); err != nil {
				return models.Settlement{}, err
			}
		}
	}

	// frozen points already left the creator's balance at creation, so the
	// payout is an annotation, not a debit
	cl := c.ledger(base.CreatorID)
	cl.Annotate(-s.TotalExtra, models.KindProjectRewardPayout, "Reward payout - "+base.Title)
	if s.Refunded > 0 {
		if _, err := cl.Credit(s.Refunded, models.KindProjectRefund, "Escrow refund - "+base.Title+" (no correct votes)"); err != nil {
			return models.Settlement{}, err
		}
	}
	if s.Residual > 0 {
		if _, err := cl.Credit(s.Residual, models.KindProjectResidual, "Escrow remainder - "+base.Title); err != nil {
			return models.Settlement{}, err
		}
	}

	p := c.project(i)
	r := result
	p.Result = &r
	p.ResultPublished = true
	p.Status = models.StatusSettled

	if err := e.commit(ctx, c); err != nil {
		return models.Settlement{}, err
	}

	slog.Info("result published",
		"project_id", projectID,
		"result", result,
		"beneficiaries", len(s.Payouts),
		"total_rewards", s.TotalRewards,
		"residual", s.Residual,
		"refunded", s.Refunded,
	)
	return s, nil
}
