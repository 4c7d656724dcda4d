// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-stake/engine"
	"github.com/danielhkuo/quickly-stake/middleware"
	"github.com/danielhkuo/quickly-stake/models"
)

// statusFor maps engine error codes to HTTP status codes
var statusFor = map[string]int{
	"validation_error":    http.StatusBadRequest,
	"insufficient_funds":  http.StatusPaymentRequired,
	"forbidden":           http.StatusForbidden,
	"not_found":           http.StatusNotFound,
	"voting_closed":       http.StatusConflict,
	"pool_exhausted":      http.StatusConflict,
	"already_published":   http.StatusConflict,
	"settlement_required": http.StatusConflict,
	"settlement_not_done": http.StatusConflict,
}

// writeEngineError turns an engine error into a coded JSON error response.
// Anything the engine does not classify is a 500 and gets logged.
func writeEngineError(w http.ResponseWriter, err error, action string) {
	code := engine.ErrorCode(err)
	status, ok := statusFor[code]
	if !ok {
		slog.Error("failed to "+action, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to "+action)
		return
	}

	msg := err.Error()
	var verr *engine.ValidationError
	if errors.As(err, &verr) {
		msg = verr.Field + " is " + describeRule(verr.Rule)
	}
	middleware.CodedErrorResponse(w, status, code, msg)
}

func describeRule(rule string) string {
	switch rule {
	case engine.RuleRequired:
		return "required"
	case engine.RuleTooLong:
		return "too long"
	case engine.RuleNotFuture:
		return "not in the future"
	case engine.RuleNotPositive:
		return "not positive"
	}
	return "invalid"
}

// actor returns the session identity stored by middleware.RequireSession.
// Routes without it are wired wrong, so this answers 401 rather than panic.
func actor(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authorization bearer token required")
	}
	return id, ok
}
