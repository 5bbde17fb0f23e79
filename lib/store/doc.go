// Package store provides the shared building blocks for key-value storage
// with per-entry expiration: the expiry envelope, the storage-adapter
// contracts, the persisted GC watermark and a unified error system.
//
// The package focuses on:
//   - A minimal adapter contract (IStore) and a full engine contract
//     (IFullStore) for key-value operations across different backends
//   - The Entry envelope that wraps every stored value with creation and
//     expiry timestamps, together with the Validate liveness seam
//   - GC watermark persistence and key derivation
//   - The Item accessor, a per-key convenience handle
//
// Key Components:
//
//   - IStore / IFullStore: the core abstractions defining operations for
//     interacting with an expiring key-value store. All engines share these
//     interfaces, allowing applications to switch between backing mediums
//     without code changes. Methods return custom Error values carrying a
//     typed RetCode.
//
//   - Entry and Validate: liveness is decided lazily at read time, not by
//     background timers. Validate never fails for malformed envelopes; a
//     bad shape is indistinguishable from an expired entry as far as
//     callers are concerned. Only value deserialization into a caller's
//     destination type can surface an error.
//
//   - Watermark: a scalar "last GC" timestamp persisted in a synchronous
//     medium under a key derived from the full store identity. Writing the
//     watermark before a sweep is the (best-effort) guard against
//     concurrent duplicate sweeps.
//
// Implementations:
//
//	The module includes two engines implementing IFullStore:
//
//	- Fast Store (fstore): synchronous engine over any medium.IMedium,
//	  serializing envelopes as JSON text under prefixed keys. Available in
//	  the "github.com/ValentinKolb/ttlstore/lib/store/fstore" package.
//
//	- Durable Store (dstore): transactional engine over SQLite. Every
//	  operation runs in its own short-lived transaction; iteration is
//	  cursor-driven. Available in the
//	  "github.com/ValentinKolb/ttlstore/lib/store/dstore" package.
//
//	A process-wide shared instance with late configuration lives in the
//	"github.com/ValentinKolb/ttlstore/lib/store/global" package.
package store
