// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-stake/auth"
	"github.com/danielhkuo/quickly-stake/engine"
	"github.com/danielhkuo/quickly-stake/middleware"
	"github.com/danielhkuo/quickly-stake/models"
)

type SessionHandler struct {
	eng      *engine.Engine
	issuer   *auth.Issuer
	provider auth.IdentityProvider
}

func NewSessionHandler(eng *engine.Engine, issuer *auth.Issuer, provider auth.IdentityProvider) *SessionHandler {
	return &SessionHandler{eng: eng, issuer: issuer, provider: provider}
}

// CreateSession handles POST /session
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	verified, err := h.provider.VerifyIdentity(r.Context(), req.Assertion)
	if err != nil {
		slog.Warn("identity assertion rejected", "error", err, "ip", middleware.GetClientIP(r))
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Identity could not be verified")
		return
	}
	if req.DisplayName != "" {
		verified.DisplayName = req.DisplayName
	}

	id, balance, err := h.eng.Authenticate(r.Context(), verified)
	if err != nil {
		writeEngineError(w, err, "create session")
		return
	}

	token, err := h.issuer.Issue(id)
	if err != nil {
		slog.Error("failed to issue session token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		Token:       token,
		UID:         id.UID,
		DisplayName: id.DisplayName,
		Balance:     balance,
	})
}

// DeleteSession handles DELETE /session
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.issuer.Revoke(r.Context(), middleware.BearerToken(r)); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid or expired session")
			return
		}
		slog.Error("failed to revoke session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to sign out")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /me
func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}

	if known, found := h.eng.Identity(id.UID); found {
		id = known
	}
	middleware.JSONResponse(w, http.StatusOK, models.MeResponse{
		UID:         id.UID,
		DisplayName: id.DisplayName,
		Balance:     h.eng.Balance(id.UID),
	})
}
