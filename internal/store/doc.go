// Package store materializes query results into SQLite for ad-hoc SQL.
//
// The document log itself is never written; an export is a one-way copy of
// one query's results. Each export replaces a caller-named table
//
//	NAME(seq INTEGER PRIMARY KEY, doc TEXT NOT NULL)
//
// where seq is the 1-based result position and doc is the record (or
// partial record) as canonical JSON, queryable with SQLite's json_extract.
// The exports table records what produced each export table.
//
// # Determinism
//
//   - Rows are canonical JSON (RFC 8785), so equal results give equal bytes
//   - Reads order by seq ASC, never by insertion time
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
