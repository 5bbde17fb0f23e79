package global

import (
	"context"
	"testing"
	"time"

	"github.com/ValentinKolb/ttlstore/lib/lifespan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reset restores the package state between tests.
func reset() {
	mu.Lock()
	defer mu.Unlock()
	cfg = Config{Driver: DriverMemory, Namespace: "default", Version: 1}
	shared = nil
}

func TestStoreIsMemoized(t *testing.T) {
	reset()
	defer reset()

	first, err := Store()
	require.NoError(t, err)
	second, err := Store()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestConfigureBeforeFirstUse(t *testing.T) {
	reset()
	defer reset()

	Configure(func(c *Config) {
		c.Namespace = "app"
		c.DefaultLifespan = lifespan.Millis(1000)
	})

	s, err := Store()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "key", "v"))

	entry, found, err := s.GetStored(ctx, "key")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, entry.StoredMs+1000, entry.ExpiryMs)
}

func TestLateOverridesApplyToLifespanOnly(t *testing.T) {
	reset()
	defer reset()

	s, err := Store()
	require.NoError(t, err)

	// connection-affecting overrides after first use are inert...
	Configure(func(c *Config) {
		c.Driver = DriverSQLite
		c.Path = "/nonexistent/ignored.db"
		c.DefaultLifespan = lifespan.Millis(2000)
		c.GCInterval = time.Minute
	})

	again, err := Store()
	require.NoError(t, err)
	assert.Same(t, s, again, "driver override must not rebuild the shared store")

	// ...but lifespan overrides are forwarded to the live instance
	ctx := context.Background()
	require.NoError(t, again.Set(ctx, "key", "v"))

	entry, found, err := again.GetStored(ctx, "key")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, entry.StoredMs+2000, entry.ExpiryMs)
}

func TestUnknownDriver(t *testing.T) {
	reset()
	defer reset()

	Configure(func(c *Config) {
		c.Driver = Driver("bogus")
	})

	_, err := Store()
	require.Error(t, err)

	// a failed build is not memoized: fixing the config makes Store work
	Configure(func(c *Config) {
		c.Driver = DriverMemory
	})
	_, err = Store()
	assert.NoError(t, err)
}
