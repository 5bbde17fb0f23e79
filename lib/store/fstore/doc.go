// Package fstore implements the fast store: a synchronous store.IFullStore
// engine over any medium.IMedium. Envelopes are serialized as JSON text
// under prefixed keys ("<namespace>:<userKey>"), so any string medium can
// back it without schema support.
//
// Key Features:
//   - No suspension points: operations complete as fast as the medium does
//   - Lazy liveness: expiration is checked at read time, never by timers
//   - Opportunistic, watermark-gated garbage collection
//   - Corrupt entries are logged, discarded and never surface as errors
//
// Implementation Details:
//
//   - Namespacing: the store owns every medium key starting with its
//     prefix. Enumeration scans the medium's full key set and filters by
//     prefix, which keeps the medium contract minimal.
//
//   - Versioning: the version participates in the watermark key and the
//     store identity. The fast store does not prefix keys with the
//     version, so bumping it abandons the watermark but keeps reading the
//     same namespace; callers that want a hard wipe call Clear.
//
//   - GC: a sweep only runs when the persisted watermark says one is due.
//     The watermark is rewritten before sweeping as a best-effort guard
//     against concurrent duplicate sweeps. Reads are correct whether or
//     not GC has physically removed dead entries.
//
// Thread Safety:
//
//	All operations are safe for concurrent use as long as the backing
//	medium is. A ForEach callback may synchronously mutate the store, but
//	must then not assume the namespace is stable across its own execution.
package fstore
