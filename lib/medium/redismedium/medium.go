package redismedium

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/ttlstore/lib/medium"
	"github.com/redis/go-redis/v9"
)

// MediumName identifies the redis medium in store identities and watermark
// keys.
const MediumName = "redis"

type mediumImpl struct {
	client *redis.Client
	ctx    context.Context
}

// New creates a redis-backed medium and verifies the connection with a ping.
// The medium exposes the synchronous IMedium contract, so all calls block on
// the round trip to the server.
func New(addr string) (medium.IMedium, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redismedium: connect to %s: %w", addr, err)
	}

	return &mediumImpl{
		client: client,
		ctx:    ctx,
	}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see medium/interface.go)
// --------------------------------------------------------------------------

func (m *mediumImpl) Name() string {
	return MediumName
}

func (m *mediumImpl) Get(key string) (string, bool, error) {
	value, err := m.client.Get(m.ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redismedium: get %q: %w", key, err)
	}
	return value, true, nil
}

func (m *mediumImpl) Set(key, value string) error {
	// no TTL on the redis side: liveness is owned by the store layer
	if err := m.client.Set(m.ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redismedium: set %q: %w", key, err)
	}
	return nil
}

func (m *mediumImpl) Delete(key string) error {
	if err := m.client.Del(m.ctx, key).Err(); err != nil {
		return fmt.Errorf("redismedium: delete %q: %w", key, err)
	}
	return nil
}

func (m *mediumImpl) Keys() ([]string, error) {
	var keys []string
	iter := m.client.Scan(m.ctx, 0, "*", 0).Iterator()
	for iter.Next(m.ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redismedium: scan keys: %w", err)
	}
	return keys, nil
}

func (m *mediumImpl) Close() error {
	return m.client.Close()
}
