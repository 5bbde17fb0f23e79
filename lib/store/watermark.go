package store

import (
	"fmt"
	"strconv"

	"github.com/ValentinKolb/ttlstore/lib/medium"
)

// --------------------------------------------------------------------------
// GC Watermark
// --------------------------------------------------------------------------

// WatermarkKey derives the key under which a store persists its "last GC"
// timestamp. The key encodes the full store identity so distinct stores
// never collide, even when they share a watermark medium.
func WatermarkKey(mediumName string, version int, namespace string) string {
	return fmt.Sprintf("__store:lastGcMs:%s:v%d:%s", mediumName, version, namespace)
}

// Watermark is the persisted scalar timestamp that throttles GC sweeps.
// It always lives in a synchronous medium, even for the durable store,
// because the durable medium cannot answer "when did GC last run" without
// a dedicated read of its own.
type Watermark struct {
	medium medium.IMedium
	key    string
}

// NewWatermark binds a watermark to its medium and store identity.
func NewWatermark(m medium.IMedium, mediumName string, version int, namespace string) Watermark {
	return Watermark{
		medium: m,
		key:    WatermarkKey(mediumName, version, namespace),
	}
}

// Load reads the watermark. The boolean return value indicates whether a
// watermark has been seeded yet. A corrupt watermark value is treated as
// absent, so the next GC call reseeds it.
func (w Watermark) Load() (ms int64, found bool, err error) {
	raw, found, err := w.medium.Get(w.key)
	if err != nil {
		return 0, false, NewErrorf(RetCInternalError, "read gc watermark: %v", err)
	}
	if !found {
		return 0, false, nil
	}

	ms, perr := strconv.ParseInt(raw, 10, 64)
	if perr != nil {
		return 0, false, nil
	}
	return ms, true, nil
}

// Store writes the watermark.
func (w Watermark) Store(ms int64) error {
	if err := w.medium.Set(w.key, strconv.FormatInt(ms, 10)); err != nil {
		return NewErrorf(RetCInternalError, "write gc watermark: %v", err)
	}
	return nil
}
