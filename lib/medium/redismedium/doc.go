// Package redismedium implements the medium.IMedium contract against a
// Redis server. It lets a fast store (and its GC watermark) live in a
// medium shared between processes, at the cost of a network round trip per
// operation.
//
// Values are written without a Redis-side TTL: expiration is entirely the
// store layer's concern, the same as for every other medium. Key
// enumeration uses SCAN so it never blocks the server.
package redismedium
