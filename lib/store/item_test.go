package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/ValentinKolb/ttlstore/lib/lifespan"
	"github.com/ValentinKolb/ttlstore/lib/medium/memmedium"
	"github.com/ValentinKolb/ttlstore/lib/store"
	"github.com/ValentinKolb/ttlstore/lib/store/fstore"
	storetesting "github.com/ValentinKolb/ttlstore/lib/store/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItemTestStore(clock *storetesting.FakeClock) store.IFullStore {
	return fstore.New(memmedium.New(), fstore.Config{
		Namespace: "items",
		Version:   1,
		Clock:     clock.Now,
	})
}

func TestItemRoundTrip(t *testing.T) {
	clock := storetesting.NewFakeClock()
	s := newItemTestStore(clock)
	ctx := context.Background()

	item := store.NewItem(s, "profile", lifespan.Millis(5000))
	assert.Equal(t, "profile", item.Key())

	require.NoError(t, item.Set(ctx, map[string]string{"name": "kim"}))

	// the item is sugar over the store: the store sees the same key
	var viaStore map[string]string
	found, err := s.Get(ctx, "profile", &viaStore)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "kim", viaStore["name"])

	var viaItem map[string]string
	found, err = item.Get(ctx, &viaItem)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, viaStore, viaItem)

	require.NoError(t, item.Delete(ctx))
	found, err = item.Get(ctx, nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestItemBoundLifespan(t *testing.T) {
	clock := storetesting.NewFakeClock()
	s := newItemTestStore(clock)
	ctx := context.Background()

	item := store.NewItem(s, "token", lifespan.Millis(1000))
	require.NoError(t, item.Set(ctx, "secret"))

	clock.Advance(999 * time.Millisecond)
	found, err := item.Get(ctx, nil)
	require.NoError(t, err)
	assert.True(t, found)

	clock.Advance(time.Millisecond)
	found, err = item.Get(ctx, nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestItemZeroLifespanUsesStoreDefault(t *testing.T) {
	clock := storetesting.NewFakeClock()
	s := newItemTestStore(clock)
	s.SetDefaults(lifespan.Millis(2000), 0)
	ctx := context.Background()

	item := store.NewItem(s, "key", lifespan.Lifespan{})
	require.NoError(t, item.Set(ctx, "v"))

	entry, found, err := s.GetStored(ctx, "key")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, entry.StoredMs+2000, entry.ExpiryMs)
}

func TestManyItemsOneStore(t *testing.T) {
	clock := storetesting.NewFakeClock()
	s := newItemTestStore(clock)
	ctx := context.Background()

	a := store.NewItem(s, "a", lifespan.Millis(1000))
	b := store.NewItem(s, "b", lifespan.Millis(1000))

	require.NoError(t, a.Set(ctx, 1))
	require.NoError(t, b.Set(ctx, 2))

	var got int
	_, err := a.Get(ctx, &got)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	_, err = b.Get(ctx, &got)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}
