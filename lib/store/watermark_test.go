package store

import (
	"testing"

	"github.com/ValentinKolb/ttlstore/lib/medium/memmedium"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermarkKey(t *testing.T) {
	assert.Equal(t,
		"__store:lastGcMs:sqlite:v3:session",
		WatermarkKey("sqlite", 3, "session"))
}

func TestWatermarkRoundTrip(t *testing.T) {
	m := memmedium.New()
	w := NewWatermark(m, "memory", 1, "ns")

	_, found, err := w.Load()
	require.NoError(t, err)
	assert.False(t, found, "expected no watermark before first store")

	require.NoError(t, w.Store(42_000))

	ms, found, err := w.Load()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(42_000), ms)
}

func TestWatermarkIdentitiesDoNotCollide(t *testing.T) {
	m := memmedium.New()

	a := NewWatermark(m, "memory", 1, "ns")
	b := NewWatermark(m, "memory", 2, "ns")
	c := NewWatermark(m, "sqlite", 1, "ns")

	require.NoError(t, a.Store(1))
	require.NoError(t, b.Store(2))
	require.NoError(t, c.Store(3))

	ms, _, err := a.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(1), ms)
	ms, _, err = b.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(2), ms)
	ms, _, err = c.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(3), ms)
}

func TestWatermarkCorruptValueTreatedAsAbsent(t *testing.T) {
	m := memmedium.New()
	w := NewWatermark(m, "memory", 1, "ns")

	require.NoError(t, m.Set(WatermarkKey("memory", 1, "ns"), "not-a-number"))

	_, found, err := w.Load()
	require.NoError(t, err)
	assert.False(t, found, "corrupt watermark must read as absent so it gets reseeded")
}
