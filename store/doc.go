// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists whole values in the kv table.

Reads return one value per key; writes replace a set of keys inside a single
transaction so an operation is either fully persisted or not at all:

	rec, err := store.JSONRecord("projects", projects)
	err = s.PutAll(ctx, []store.Record{rec, {Key: "balance/alice", Value: "950"}})

Queries are written with ? placeholders and rebound to $n for PostgreSQL.
*/
package store
