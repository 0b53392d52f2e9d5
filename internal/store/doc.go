// Package store keeps the rally journal of a scoring session in SQLite.
//
// The journal is append-only apart from undo:
//   - entries: accepted rallies with the state they produced
//   - rejections: refused rallies with their reason
//
// Entries carry the canonical state hash before and after the rally, so a
// journal can be replayed and checked against itself. The state snapshot
// is stored as msgpack so undo can restore it without replaying.
//
// # Ordering
//
// All ordering uses the session's seq counter, never timestamps. Every
// query orders by seq ASC.
//
// # Schema
//
// Tables are created by goose migrations embedded from migrations/.
// The journal lives for one session: history across sessions is not kept,
// so callers normally Open(":memory:").
package store
