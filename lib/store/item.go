package store

import (
	"context"

	"github.com/ValentinKolb/ttlstore/lib/lifespan"
)

// --------------------------------------------------------------------------
// Item Accessor
// --------------------------------------------------------------------------

// Item is a lightweight handle binding one key, one store and one default
// lifespan, so callers that work with a single logical value do not repeat
// the key on every operation. An Item holds no state beyond that binding
// and performs no caching: every call round-trips to the underlying store.
// Many Items may reference the same store concurrently.
type Item struct {
	store IStore
	key   string
	ttl   lifespan.Lifespan
}

// NewItem creates an accessor for key on the given store. A zero Lifespan
// defers to the store's own default.
func NewItem(s IStore, key string, ttl lifespan.Lifespan) Item {
	return Item{store: s, key: key, ttl: ttl}
}

// Key returns the bound key.
func (i Item) Key() string {
	return i.key
}

// Set writes the value under the bound key with the bound lifespan.
func (i Item) Set(ctx context.Context, value any) error {
	if i.ttl.IsZero() {
		return i.store.Set(ctx, i.key, value)
	}
	return i.store.Set(ctx, i.key, value, i.ttl)
}

// Get reads the value under the bound key into dest.
func (i Item) Get(ctx context.Context, dest any) (bool, error) {
	return i.store.Get(ctx, i.key, dest)
}

// Delete removes the bound key.
func (i Item) Delete(ctx context.Context) error {
	return i.store.Delete(ctx, i.key)
}
