package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ValentinKolb/ttlstore/lib/lifespan"
)

// --------------------------------------------------------------------------
// Expiry Envelope
// --------------------------------------------------------------------------

// Entry is the unit of persistence: a serialized value wrapped with its
// creation and expiry timestamps. In the fast store the whole envelope is
// serialized to JSON text; in the durable store it maps to one record with
// Key as the primary key.
type Entry struct {
	Key      string          `json:"key,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
	StoredMs int64           `json:"storedMs"`
	ExpiryMs int64           `json:"expiryMs"`
}

// Wrap serializes a value into an envelope with StoredMs = now and
// ExpiryMs = now + ttl. Untyped nil is rejected: an empty value is the
// internal absence sentinel and therefore not storable.
func Wrap(value any, ttl lifespan.Lifespan, now time.Time) (Entry, error) {
	if value == nil {
		return Entry{}, NewError(RetCInvalidOperation, "nil is not a storable value")
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return Entry{}, NewErrorf(RetCSerialization, "marshal value: %v", err)
	}

	nowMs := now.UnixMilli()
	return Entry{
		Value:    raw,
		StoredMs: nowMs,
		ExpiryMs: nowMs + ttl.Millis(),
	}, nil
}

// Expired reports whether the entry is logically dead at the given time.
// The boundary is inclusive: an entry dies at exactly ExpiryMs.
func (e Entry) Expired(now time.Time) bool {
	return now.UnixMilli() >= e.ExpiryMs
}

// Validate is the single liveness seam used by every read path and by the
// GC sweeps. It reports whether the entry is well-formed and still alive.
// A malformed envelope (missing value, missing or non-positive timestamps)
// is treated exactly like an expired one: not an error, just absent.
func Validate(e Entry, now time.Time) bool {
	if len(e.Value) == 0 {
		return false
	}
	if e.StoredMs <= 0 || e.ExpiryMs <= 0 {
		return false
	}
	return !e.Expired(now)
}

// Unmarshal deserializes the wrapped value into dest. Unlike the shape
// checks in Validate this can fail, and the failure is surfaced to the
// caller.
func (e Entry) Unmarshal(dest any) error {
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(e.Value, dest); err != nil {
		return NewErrorf(RetCSerialization, "unmarshal value: %v", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Diagnostics
// --------------------------------------------------------------------------

const describeMaxLen = 200

// DescribeValue renders an arbitrary value for diagnostic log output. It is
// never used for the persisted payload. Long renderings are truncated.
func DescribeValue(v any) string {
	var s string
	if raw, err := json.Marshal(v); err == nil {
		s = string(raw)
	} else {
		s = fmt.Sprintf("%v", v)
	}
	if len(s) > describeMaxLen {
		s = s[:describeMaxLen] + "..."
	}
	return s
}
