// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Project status constants
const (
	StatusActive  = "active"
	StatusSettled = "settled"
	StatusDeleted = "deleted"
)

// Vote options
const (
	OptionYes = "yes"
	OptionNo  = "no"
)

// Ledger entry kinds
const (
	KindInitial             = "initial"
	KindProjectCost         = "project_cost"
	KindProjectDelete       = "project_delete"
	KindVoteCost            = "vote_cost"
	KindVoteReturn          = "vote_return"
	KindVoteReward          = "vote_reward"
	KindProjectRewardPayout = "project_reward_payout"
	KindProjectRefund       = "project_refund"
	KindProjectResidual     = "project_residual"
	KindWithdraw            = "withdraw"
)

// ValidOption reports whether o is yes or no.
func ValidOption(o string) bool {
	return o == OptionYes || o == OptionNo
}

// Request types

// CreateSessionRequest carries an identity assertion signed by the
// authentication provider. DisplayName overrides the asserted name.
type CreateSessionRequest struct {
	Assertion   string `json:"assertion"`
	DisplayName string `json:"display_name"`
}

type CreateProjectRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EndTime     time.Time `json:"end_time"`
	MaxPoints   int64     `json:"max_points"`
}

type CastVoteRequest struct {
	Option string `json:"option"`
	Points int64  `json:"points"`
}

type PublishResultRequest struct {
	Result string `json:"result"`
}

type WithdrawRequest struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
}

// Response types

type CreateSessionResponse struct {
	Token       string `json:"token"`
	UID         string `json:"uid"`
	DisplayName string `json:"display_name,omitempty"`
	Balance     int64  `json:"balance"`
}

type MeResponse struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name,omitempty"`
	Balance     int64  `json:"balance"`
}

type LedgerResponse struct {
	Balance int64         `json:"balance"`
	History []LedgerEntry `json:"history"`
}

type CastVoteResponse struct {
	Project ProjectView `json:"project"`
	Balance int64       `json:"balance"`
}

type DeleteProjectResponse struct {
	Refunded int64 `json:"refunded"`
	Balance  int64 `json:"balance"`
}

type WithdrawResponse struct {
	Receipt Withdrawal `json:"receipt"`
	Message string     `json:"message"`
}

// Domain types

// Identity is what the authentication provider vouches for.
type Identity struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name,omitempty"`
}

// Name returns the display name, falling back to the uid.
func (i Identity) Name() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.UID
}

type LedgerEntry struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Delta        int64     `json:"delta"`
	Description  string    `json:"description"`
	Timestamp    time.Time `json:"timestamp"`
	BalanceAfter int64     `json:"balance_after"`
}

type Votes struct {
	Yes int64 `json:"yes"`
	No  int64 `json:"no"`
}

// Get returns the pool total for option.
func (v Votes) Get(option string) int64 {
	if option == OptionYes {
		return v.Yes
	}
	return v.No
}

// Add increments the pool total for option.
func (v *Votes) Add(option string, points int64) {
	if option == OptionYes {
		v.Yes += points
	} else {
		v.No += points
	}
}

// Total is the sum of both pools.
func (v Votes) Total() int64 {
	return v.Yes + v.No
}

// VoteRecord is immutable once appended to a project.
type VoteRecord struct {
	Voter     string    `json:"voter"`
	Option    string    `json:"option"`
	Points    int64     `json:"points"`
	Timestamp time.Time `json:"timestamp"`
}

type Project struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	CreatorID       string       `json:"creator_id"`
	CreatorName     string       `json:"creator_name"`
	CreatedAt       time.Time    `json:"created_at"`
	EndTime         time.Time    `json:"end_time"`
	MaxPoints       int64        `json:"max_points"`
	FrozenPoints    int64        `json:"frozen_points"`
	Votes           Votes        `json:"votes"`
	Voters          []string     `json:"voters"`
	VoteDetails     []VoteRecord `json:"vote_details"`
	Status          string       `json:"status"`
	Result          *string      `json:"result"`
	ResultPublished bool         `json:"result_published"`
	Deleted         bool         `json:"deleted,omitempty"`
}

// Remaining returns how many more points option can accept.
func (p Project) Remaining(option string) int64 {
	return max(0, p.MaxPoints-p.Votes.Get(option))
}

// ParticipantCount counts distinct voters.
func (p Project) ParticipantCount() int {
	seen := make(map[string]struct{}, len(p.VoteDetails))
	for _, v := range p.VoteDetails {
		seen[v.Voter] = struct{}{}
	}
	return len(seen)
}

// UserVote is one entry of the per-user vote log.
type UserVote struct {
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Option    string    `json:"option"`
	Points    int64     `json:"points"`
	Timestamp time.Time `json:"timestamp"`
}

// HiddenProject is one (user, project) pair of the hide-set.
type HiddenProject struct {
	UserID    string `json:"user_id"`
	ProjectID string `json:"project_id"`
}

// ProjectView decorates a project with derived fields for display.
type ProjectView struct {
	Project
	Active           bool  `json:"active"`
	ParticipantCount int   `json:"participant_count"`
	RemainingYes     int64 `json:"remaining_yes"`
	RemainingNo      int64 `json:"remaining_no"`
}

// Participation is a project seen from one voter's side.
type Participation struct {
	ProjectView
	MyYesPoints int64 `json:"my_yes_points"`
	MyNoPoints  int64 `json:"my_no_points"`
	MyVoteCount int   `json:"my_vote_count"`
}

// Payout is one correct vote's share of a settlement.
type Payout struct {
	Voter       string `json:"voter"`
	Points      int64  `json:"points"`
	ExtraReward int64  `json:"extra_reward"`
	TotalReward int64  `json:"total_reward"`
}

// Settlement summarises a published result.
type Settlement struct {
	ProjectID        string   `json:"project_id"`
	Result           string   `json:"result"`
	Payouts          []Payout `json:"payouts"`
	TotalVotedPoints int64    `json:"total_voted_points"`
	TotalExtra       int64    `json:"total_extra"`
	TotalRewards     int64    `json:"total_rewards"`
	Residual         int64    `json:"residual"`
	Refunded         int64    `json:"refunded"`
}

type Withdrawal struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
	Fee     int64  `json:"fee"`
	Total   int64  `json:"total"`
	Balance int64  `json:"balance"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}
