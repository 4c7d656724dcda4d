// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quickly-stake/auth"
	"github.com/danielhkuo/quickly-stake/engine"
	"github.com/danielhkuo/quickly-stake/handlers"
	"github.com/danielhkuo/quickly-stake/middleware"
)

func NewRouter(eng *engine.Engine, issuer *auth.Issuer, provider auth.IdentityProvider) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(eng, issuer, provider)
	ledgerHandler := handlers.NewLedgerHandler(eng)
	projectHandler := handlers.NewProjectHandler(eng)

	// Public routes log only; everything else also needs a session
	public := middleware.WithLogging
	private := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireSession(issuer, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Sessions
	mux.HandleFunc("POST /session", public(sessionHandler.CreateSession))
	mux.HandleFunc("DELETE /session", private(sessionHandler.DeleteSession))
	mux.HandleFunc("GET /me", private(sessionHandler.Me))

	// Ledger
	mux.HandleFunc("GET /ledger", private(ledgerHandler.GetLedger))
	mux.HandleFunc("POST /ledger/withdraw", private(ledgerHandler.Withdraw))

	// Projects
	mux.HandleFunc("GET /projects", private(projectHandler.ListProjects))
	mux.HandleFunc("POST /projects", private(projectHandler.CreateProject))
	mux.HandleFunc("GET /projects/mine", private(projectHandler.MyProjects))
	mux.HandleFunc("GET /projects/participated", private(projectHandler.ParticipatedProjects))
	mux.HandleFunc("GET /projects/{id}", private(projectHandler.GetProject))
	mux.HandleFunc("DELETE /projects/{id}", private(projectHandler.DeleteProject))
	mux.HandleFunc("POST /projects/{id}/hide", private(projectHandler.HideProject))
	mux.HandleFunc("POST /projects/{id}/votes", private(projectHandler.CastVote))
	mux.HandleFunc("POST /projects/{id}/result", private(projectHandler.PublishResult))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-stake API v1"))
	})

	return mux
}
