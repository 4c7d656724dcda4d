// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Stake API server.

Quickly Stake is a points-staking prediction service. A creator freezes
points into a yes/no project, voters stake their own points on either
option, and when the creator publishes the result the frozen points are
split among the correct votes in proportion to their stake.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=stake.db SESSION_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -session-secret ...

A .env file in the working directory is read first when present.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - SESSION_SECRET (--session-secret): HMAC secret for session tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - SESSION_TTL (--session-ttl): Session lifetime (default: 72h)
  - INITIAL_POINTS (--initial-points): First sign-in grant (default: 1000)

# Architecture

  - engine: Projects, voting, settlement, withdrawals
  - ledger: Per-user balance and capped history
  - store: Whole-value key/value persistence
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, sessions, JSON helpers
  - models: Domain, request and response types
  - auth: Session tokens and ID generation
  - db: Driver selection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
