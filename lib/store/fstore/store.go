package fstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ValentinKolb/ttlstore/lib/lifespan"
	"github.com/ValentinKolb/ttlstore/lib/medium"
	"github.com/ValentinKolb/ttlstore/lib/store"
)

// --------------------------------------------------------------------------
// Constants and Configuration
// --------------------------------------------------------------------------

const (
	// DefaultLifespanMs is the fallback entry lifespan (one day).
	DefaultLifespanMs = int64(24 * 60 * 60 * 1000)
	// DefaultGCInterval is the fallback minimum delay between sweeps.
	DefaultGCInterval = 24 * time.Hour
)

// Config configures a fast store instance.
type Config struct {
	// Namespace is the logical key partition this store owns. Required.
	Namespace string
	// Version is part of the store identity. Bumping it abandons all data
	// written under the previous version (the old prefix keeps its keys,
	// they are simply never read again).
	Version int
	// DefaultLifespan applies to Set calls without an explicit lifespan.
	// Zero means DefaultLifespanMs.
	DefaultLifespan lifespan.Lifespan
	// GCInterval is the minimum delay between watermark-gated sweeps.
	// Zero means DefaultGCInterval.
	GCInterval time.Duration
	// Watermarks is the medium the GC watermark is persisted in. Nil
	// means the store's own medium.
	Watermarks medium.IMedium
	// Clock overrides the time source, for tests. Nil means time.Now.
	Clock func() time.Time
}

// --------------------------------------------------------------------------
// Store Implementation
// --------------------------------------------------------------------------

type storeImpl struct {
	medium    medium.IMedium
	namespace string
	version   int
	prefix    string
	watermark store.Watermark
	clock     func() time.Time
	logger    *slog.Logger

	// defaults are read per-operation and tunable at runtime
	mu         sync.RWMutex
	defaultTTL lifespan.Lifespan
	gcInterval time.Duration
}

// New creates a fast store over the given medium. All operations are
// synchronous: the store inherits whatever blocking behavior the medium
// has, and adds no suspension points of its own.
//
// Thread-safety: the store is as safe for concurrent use as its medium;
// every bundled medium implementation is fully concurrent.
func New(m medium.IMedium, cfg Config) store.IFullStore {
	ttl := cfg.DefaultLifespan
	if ttl.IsZero() {
		ttl = lifespan.Millis(DefaultLifespanMs)
	}
	interval := cfg.GCInterval
	if interval <= 0 {
		interval = DefaultGCInterval
	}
	watermarks := cfg.Watermarks
	if watermarks == nil {
		watermarks = m
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &storeImpl{
		medium:     m,
		namespace:  cfg.Namespace,
		version:    cfg.Version,
		prefix:     cfg.Namespace + ":",
		watermark:  store.NewWatermark(watermarks, m.Name(), cfg.Version, cfg.Namespace),
		clock:      clock,
		logger:     slog.With("component", "fstore", "namespace", cfg.Namespace),
		defaultTTL: ttl,
		gcInterval: interval,
	}
}

func (s *storeImpl) mediumKey(key string) string {
	return s.prefix + key
}

func (s *storeImpl) resolveTTL(ttl []lifespan.Lifespan) lifespan.Lifespan {
	if len(ttl) > 0 && !ttl[len(ttl)-1].IsZero() {
		return ttl[len(ttl)-1]
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultTTL
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Set(_ context.Context, key string, value any, ttl ...lifespan.Lifespan) error {
	entry, err := store.Wrap(value, s.resolveTTL(ttl), s.clock())
	if err != nil {
		return err
	}

	raw, merr := json.Marshal(entry)
	if merr != nil {
		return store.NewErrorf(store.RetCSerialization, "marshal envelope: %v", merr)
	}

	if err := s.medium.Set(s.mediumKey(key), string(raw)); err != nil {
		return store.NewErrorf(store.RetCInternalError, "set %q: %v", key, err)
	}

	metricSets.Inc()
	s.opportunisticGC()
	return nil
}

func (s *storeImpl) Get(ctx context.Context, key string, dest any) (bool, error) {
	entry, found, err := s.GetStored(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := entry.Unmarshal(dest); err != nil {
		return true, err
	}
	return true, nil
}

func (s *storeImpl) GetStored(_ context.Context, key string) (store.Entry, bool, error) {
	metricGets.Inc()

	raw, found, err := s.medium.Get(s.mediumKey(key))
	if err != nil {
		return store.Entry{}, false, store.NewErrorf(store.RetCInternalError, "get %q: %v", key, err)
	}
	if !found {
		return store.Entry{}, false, nil
	}

	var entry store.Entry
	if uerr := json.Unmarshal([]byte(raw), &entry); uerr != nil {
		// corrupt serialized text: discard the entry and move on
		s.logger.Warn("discarding corrupt entry",
			"key", key, "err", uerr, "raw", store.DescribeValue(raw))
		s.dropDeadKey(key)
		return store.Entry{}, false, nil
	}

	if !store.Validate(entry, s.clock()) {
		s.dropDeadKey(key)
		return store.Entry{}, false, nil
	}

	entry.Key = key
	return entry, true, nil
}

// dropDeadKey removes an expired or invalid entry found on a read path and
// fires the opportunistic GC check.
func (s *storeImpl) dropDeadKey(key string) {
	if err := s.medium.Delete(s.mediumKey(key)); err != nil {
		s.logger.Warn("failed to delete dead entry", "key", key, "err", err)
	}
	s.opportunisticGC()
}

func (s *storeImpl) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		if err := s.medium.Delete(s.mediumKey(key)); err != nil {
			return store.NewErrorf(store.RetCInternalError, "delete %q: %v", key, err)
		}
	}
	return nil
}

func (s *storeImpl) ForEach(_ context.Context, fn store.ForEachFn) error {
	keys, err := s.namespaceKeys()
	if err != nil {
		return err
	}

	now := s.clock()
	for _, userKey := range keys {
		raw, found, err := s.medium.Get(s.mediumKey(userKey))
		if err != nil {
			return store.NewErrorf(store.RetCInternalError, "get %q: %v", userKey, err)
		}
		if !found {
			// deleted since enumeration, possibly by the callback itself
			continue
		}

		var entry store.Entry
		if uerr := json.Unmarshal([]byte(raw), &entry); uerr != nil {
			s.logger.Warn("discarding corrupt entry",
				"key", userKey, "err", uerr, "raw", store.DescribeValue(raw))
			s.dropDeadKey(userKey)
			continue
		}
		if !store.Validate(entry, now) {
			s.dropDeadKey(userKey)
			continue
		}

		entry.Key = userKey
		if err := fn(userKey, entry); err != nil {
			return err
		}
	}
	return nil
}

func (s *storeImpl) Size(ctx context.Context) (int, error) {
	count := 0
	err := s.ForEach(ctx, func(string, store.Entry) error {
		count++
		return nil
	})
	return count, err
}

func (s *storeImpl) AsMap(ctx context.Context) (map[string]store.Entry, error) {
	result := make(map[string]store.Entry)
	err := s.ForEach(ctx, func(key string, entry store.Entry) error {
		result[key] = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *storeImpl) Clear(_ context.Context) error {
	keys, err := s.namespaceKeys()
	if err != nil {
		return err
	}
	for _, userKey := range keys {
		if err := s.medium.Delete(s.mediumKey(userKey)); err != nil {
			return store.NewErrorf(store.RetCInternalError, "delete %q: %v", userKey, err)
		}
	}
	return nil
}

func (s *storeImpl) SetDefaults(ttl lifespan.Lifespan, gcInterval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ttl.IsZero() {
		s.defaultTTL = ttl
	}
	if gcInterval > 0 {
		s.gcInterval = gcInterval
	}
}

// namespaceKeys enumerates the user keys of this store's namespace by
// scanning the medium's full key set and filtering by prefix.
func (s *storeImpl) namespaceKeys() ([]string, error) {
	all, err := s.medium.Keys()
	if err != nil {
		return nil, store.NewErrorf(store.RetCInternalError, "enumerate keys: %v", err)
	}

	keys := make([]string, 0, len(all))
	for _, key := range all {
		if strings.HasPrefix(key, s.prefix) {
			keys = append(keys, strings.TrimPrefix(key, s.prefix))
		}
	}
	return keys, nil
}
