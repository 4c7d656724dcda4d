// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Stake API.

# Handler Types

Each handler is a struct wrapping the engine:

  - SessionHandler: Sign-in, sign-out, current user
  - LedgerHandler: Balance, history, withdrawals
  - ProjectHandler: Project lifecycle, voting, settlement

Handlers are created via constructor functions:

	projectHandler := handlers.NewProjectHandler(eng)
	sessionHandler := handlers.NewSessionHandler(eng, issuer, provider)

# Sessions

	POST /session   → CreateSession (verifies the provider assertion, returns a bearer token)
	DELETE /session → DeleteSession (revokes the token)
	GET /me         → Me

Every route except POST /session expects the caller identity placed in the
request context by middleware.RequireSession.

# Project Lifecycle

	POST /projects               → CreateProject (freezes max_points)
	POST /projects/{id}/votes    → CastVote
	POST /projects/{id}/result   → PublishResult (creator only, settles)
	DELETE /projects/{id}        → DeleteProject (creator only)
	POST /projects/{id}/hide     → HideProject (settled projects only)

# Errors

Engine errors become {error, message, code} bodies. The code is the
machine-readable kind, such as "pool_exhausted" or "insufficient_funds".
*/
package handlers
