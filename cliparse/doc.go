// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite path/DSN or PostgreSQL connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - SessionSecret: HMAC secret for session tokens (required)
  - SessionTTL: Session token lifetime (default: 72h)
  - InitialPoints: Points granted on first login (default: 1000)

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type
	--session-secret Session token secret
	--session-ttl    Session token lifetime
	--initial-points Points granted on first login

# Environment Variables

A .env file in the working directory is loaded first if present. Flags fall
back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	SESSION_SECRET → --session-secret
	SESSION_TTL    → --session-ttl
	INITIAL_POINTS → --initial-points

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - SESSION_SECRET must be provided
  - DATABASE_TYPE must be sqlite or postgres
*/
package cliparse
