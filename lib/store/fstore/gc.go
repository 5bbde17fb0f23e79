package fstore

import (
	"context"
	"encoding/json"

	"github.com/ValentinKolb/ttlstore/lib/store"
)

// --------------------------------------------------------------------------
// Garbage Collection
// --------------------------------------------------------------------------

// GC runs a sweep if one is due. On a store that has never swept it only
// seeds the watermark, so a brand-new store never pays for a pointless
// first sweep.
func (s *storeImpl) GC(ctx context.Context) error {
	nowMs := s.clock().UnixMilli()

	watermarkMs, found, err := s.watermark.Load()
	if err != nil {
		return err
	}
	if !found {
		return s.watermark.Store(nowMs)
	}

	s.mu.RLock()
	interval := s.gcInterval
	s.mu.RUnlock()

	if nowMs < watermarkMs+interval.Milliseconds() {
		return nil
	}
	return s.GCNow(ctx)
}

// GCNow runs an unconditional sweep. The watermark is written before the
// sweep starts: a concurrent GC call that races in sees a fresh watermark
// and skips its own sweep. This is a best-effort guard, not a lock - a
// lost race causes a harmless double sweep.
func (s *storeImpl) GCNow(_ context.Context) error {
	if err := s.watermark.Store(s.clock().UnixMilli()); err != nil {
		return err
	}

	keys, err := s.namespaceKeys()
	if err != nil {
		return err
	}

	now := s.clock()
	var dead []string
	for _, userKey := range keys {
		raw, found, err := s.medium.Get(s.mediumKey(userKey))
		if err != nil {
			return store.NewErrorf(store.RetCInternalError, "get %q: %v", userKey, err)
		}
		if !found {
			continue
		}

		var entry store.Entry
		if json.Unmarshal([]byte(raw), &entry) != nil || !store.Validate(entry, now) {
			dead = append(dead, userKey)
		}
	}

	for _, userKey := range dead {
		if err := s.medium.Delete(s.mediumKey(userKey)); err != nil {
			return store.NewErrorf(store.RetCInternalError, "delete %q: %v", userKey, err)
		}
	}

	metricGCSweeps.Inc()
	metricGCReclaimed.Add(len(dead))

	// second write captures the sweep duration
	return s.watermark.Store(s.clock().UnixMilli())
}

// opportunisticGC is the side-effect GC check fired after every write and
// after reads that hit a dead entry. Failures only affect space
// reclamation, never read correctness, so they are logged and swallowed.
func (s *storeImpl) opportunisticGC() {
	if err := s.GC(context.Background()); err != nil {
		s.logger.Warn("opportunistic gc failed", "err", err)
	}
}
