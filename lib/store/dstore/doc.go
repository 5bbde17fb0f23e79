// Package dstore implements the durable store: a store.IFullStore engine
// over a transactional SQLite database (modernc.org/sqlite, no cgo). It is
// the persistent counterpart to fstore for data that must survive process
// restarts and tolerate concurrent access from multiple goroutines.
//
// Key Features:
//   - Lazily opened, memoized connection with single-flight semantics
//   - A dedicated short-lived transaction per public operation
//   - Cursor-driven iteration with inline validation
//   - Wipe-on-version-change schema handling
//   - The same watermark-gated lazy GC as the fast store
//
// Implementation Details:
//
//   - Connection: the first operation opens the database, applies the
//     schema hook and memoizes the handle. The memo is set only on
//     success, so a failed open never poisons the store - the next
//     operation simply retries. No close/teardown is part of the
//     contract; the handle lives for the process lifetime.
//
//   - Schema: each namespace owns one record container (table) with the
//     key as primary key. A version change detected at first open drops
//     the container and recreates it empty. This is the only migration
//     the engine performs: old data is abandoned by design.
//
//   - GC: Set fires the opportunistic GC check as a detached side effect
//     after the write commits; its completion is never awaited. The
//     watermark lives in a synchronous medium (in-memory by default)
//     because the durable medium cannot answer "when did GC last run"
//     without a read of its own.
//
// Concurrency:
//
//	Operations are not serialized by this layer. Each runs in its own
//	transaction and relies on SQLite's isolation; concurrent writes to
//	the same key race at commit order, last commit wins. A caller that
//	abandons a pending operation (context cancellation) does not affect
//	transactions that already committed.
package dstore
