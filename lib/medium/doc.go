// Package medium defines the capability contract for the synchronous string
// key-value mediums that back the fast store and hold every GC watermark.
//
// A medium is deliberately dumb: it maps string keys to string values, can
// enumerate its keys, and knows nothing about namespaces, envelopes or
// expiration. All of that is layered on top by the store packages, which is
// what allows a backing medium to be swapped without touching store logic.
//
// Implementations:
//
//   - In-Memory Medium (memmedium): a process-local medium built on a
//     concurrent map. Fast, not persistent. Available in the
//     "github.com/ValentinKolb/ttlstore/lib/medium/memmedium" package.
//
//   - File Medium (filemedium): one file per key under a root directory,
//     surviving process restarts. Available in the
//     "github.com/ValentinKolb/ttlstore/lib/medium/filemedium" package.
//
//   - Redis Medium (redismedium): a remote medium speaking to a Redis
//     server, for mediums shared between processes. Available in the
//     "github.com/ValentinKolb/ttlstore/lib/medium/redismedium" package.
//
// The Factory type abstracts medium creation so stores can be wired with
// dependency injection, mirroring how store engines are constructed.
package medium
