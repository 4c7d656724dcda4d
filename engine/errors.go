// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"errors"

	"github.com/danielhkuo/quickly-stake/ledger"
)

var (
	ErrInsufficientFunds  = ledger.ErrInsufficientFunds
	ErrNotFound           = errors.New("project not found")
	ErrForbidden          = errors.New("only the project creator may do this")
	ErrVotingClosed       = errors.New("voting is closed")
	ErrPoolExhausted      = errors.New("option pool exhausted")
	ErrAlreadyPublished   = errors.New("result already published")
	ErrSettlementRequired = errors.New("project has votes; publish the result first")
	ErrSettlementNotDone  = errors.New("result not published yet")
)

// Validation rules
const (
	RuleRequired    = "required"
	RuleTooLong     = "too_long"
	RuleNotFuture   = "not_in_future"
	RuleNotPositive = "not_positive"
	RuleInvalid     = "invalid"
)

// ValidationError reports a malformed or out-of-range input field.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Rule
}

func invalid(field, rule string) error {
	return &ValidationError{Field: field, Rule: rule}
}

// ErrorCode returns the machine-readable kind of an engine error, or "" if
// err is not one.
func ErrorCode(err error) string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return "validation_error"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrVotingClosed):
		return "voting_closed"
	case errors.Is(err, ErrPoolExhausted):
		return "pool_exhausted"
	case errors.Is(err, ErrAlreadyPublished):
		return "already_published"
	case errors.Is(err, ErrSettlementRequired):
		return "settlement_required"
	case errors.Is(err, ErrSettlementNotDone):
		return "settlement_not_done"
	}
	return ""
}
