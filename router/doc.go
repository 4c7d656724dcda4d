// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Stake API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(eng, issuer, provider)

# Endpoints

Public:

	GET  /health  - Liveness
	POST /session - Sign in, returns a bearer token

Session (requires Authorization: Bearer <token>):

	DELETE /session - Sign out
	GET    /me      - Identity and balance

Ledger:

	GET  /ledger          - Balance and newest-first history
	POST /ledger/withdraw - Withdraw points, 10% fee

Projects:

	GET    /projects              - All projects not hidden for the caller
	POST   /projects              - Create, freezing max_points
	GET    /projects/mine         - Projects the caller created
	GET    /projects/participated - Projects the caller voted on
	GET    /projects/{id}         - One project
	DELETE /projects/{id}         - Delete (creator only)
	POST   /projects/{id}/hide    - Hide a settled project
	POST   /projects/{id}/votes   - Stake points on yes or no
	POST   /projects/{id}/result  - Publish the result and settle
*/
package router
