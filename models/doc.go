// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateSessionRequest: assertion, display_name
  - CreateProjectRequest: title, description, end_time, max_points
  - CastVoteRequest: option, points
  - PublishResultRequest: result
  - WithdrawRequest: address, amount

# Response Types

  - CreateSessionResponse: token, uid, balance
  - MeResponse: uid, display_name, balance
  - LedgerResponse: balance, history
  - CastVoteResponse: project, balance
  - DeleteProjectResponse: refunded, balance
  - WithdrawResponse: receipt, message
  - ErrorResponse: error, message, code

# Domain Types

  - Identity: a principal vouched for by the authentication provider
  - LedgerEntry: one line of a user's points history
  - Project: a yes/no proposition with its escrow and vote pools
  - VoteRecord: one stake on a project (immutable)
  - UserVote: per-user vote log entry
  - HiddenProject: per-user hide-set entry
  - Settlement, Payout: the outcome of publishing a result
  - Withdrawal: a withdrawal receipt

# Constants

Project status:

	StatusActive  = "active"
	StatusSettled = "settled"
	StatusDeleted = "deleted"

Options:

	OptionYes = "yes"
	OptionNo  = "no"

Ledger kinds: initial, project_cost, project_delete, vote_cost, vote_return,
vote_reward, project_reward_payout, project_refund, project_residual, withdraw.
*/
package models
