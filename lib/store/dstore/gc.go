package dstore

import (
	"context"
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
func (s *storeImpl) GCNow(ctx context.Context) error {
	if err := s.watermark.Store(s.clock().UnixMilli()); err != nil {
		return err
	}

	dead, err := s.scan(ctx, nil)
	if err != nil {
		return err
	}
	if len(dead) > 0 {
		if err := s.deleteKeys(ctx, dead); err != nil {
			return err
		}
	}

	metricGCSweeps.Inc()
	metricGCReclaimed.Add(len(dead))

	// second write captures the sweep duration
	return s.watermark.Store(s.clock().UnixMilli())
}

// opportunisticGC is the fire-and-forget GC check spawned after writes and
// after reads that hit a dead entry. Its completion is never awaited;
// failures only delay space reclamation, so they are logged and swallowed.
func (s *storeImpl) opportunisticGC() {
	if err := s.GC(context.Background()); err != nil {
		s.logger.Warn("opportunistic gc failed", "err", err)
	}
}
