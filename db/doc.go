// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connections

Open selects the driver from the configured database type:

	conn, err := db.Open(db.TypeSQLite, "file:stake.db")
	conn, err := db.Open(db.TypePostgres, "postgres://...")

SQLite uses the pure-Go modernc.org/sqlite driver; PostgreSQL uses lib/pq.
In-memory SQLite databases are pinned to a single connection.

# Schema Creation

CreateSchema initializes the key-value table:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS.

# Tables

  - kv: whole-value records (key, value, updated_at)

The engine stores each logical collection (projects, vote log, hide-set,
users, per-user balance and history) under its own key. See package store.
*/
package db
