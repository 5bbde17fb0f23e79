package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ValentinKolb/ttlstore/lib/lifespan"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// ForEachFn is the callback invoked by IFullStore.ForEach for every live
// entry. The iteration only advances after the callback returns; returning
// a non-nil error aborts the iteration and is propagated to the caller.
type ForEachFn func(key string, entry Entry) error

// IStore is the minimal adapter contract for a key-value store with
// expiry. Generic application code should depend on this interface so the
// backing engine (and its medium) can be swapped transparently.
type IStore interface {
	// Set inserts or updates a key-value pair. The value must be JSON
	// serializable and must not be untyped nil. If no Lifespan is given,
	// the store's default lifespan applies.
	Set(ctx context.Context, key string, value any, ttl ...lifespan.Lifespan) error
	// Get reads the value for a key into dest (a pointer, as for
	// json.Unmarshal; may be nil to only probe existence). The boolean
	// return value indicates whether a live value was found. A missing,
	// corrupt, malformed or expired entry yields (false, nil).
	Get(ctx context.Context, key string, dest any) (found bool, err error)
	// Delete removes one or more keys. Deleting an absent key is not an
	// error.
	Delete(ctx context.Context, keys ...string) error
	// Clear removes every key in the store's namespace, bypassing
	// liveness checks.
	Clear(ctx context.Context) error
}

// IFullStore is the complete contract implemented by the store engines.
// It extends IStore with envelope access, iteration, garbage collection
// and runtime-tunable defaults.
type IFullStore interface {
	IStore

	// GetStored behaves like Get but returns the full envelope, for
	// callers that need the stored and expiry timestamps.
	GetStored(ctx context.Context, key string) (entry Entry, found bool, err error)
	// ForEach iterates over every live entry in the namespace, in the
	// backing medium's native enumeration order. Invalid or expired
	// entries found during iteration are deleted inline.
	ForEach(ctx context.Context, fn ForEachFn) error
	// Size returns the count of live entries. It is always computed by a
	// full scan, never read from a counter.
	Size(ctx context.Context) (int, error)
	// AsMap returns a dump of all live entries, for debugging.
	AsMap(ctx context.Context) (map[string]Entry, error)
	// GC runs a sweep if one is due according to the persisted watermark.
	// On a store with no watermark it only seeds the watermark.
	GC(ctx context.Context) error
	// GCNow runs an unconditional sweep, removing every expired or
	// invalid entry from the backing medium.
	GCNow(ctx context.Context) error
	// SetDefaults replaces the default lifespan and GC interval. Both are
	// read per-operation, so changes apply to subsequent calls.
	SetDefaults(ttl lifespan.Lifespan, gcInterval time.Duration)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCInternalError:
		errorCode = "InternalError"
	case RetCSerialization:
		errorCode = "Serialization"
	case RetCInvalidOperation:
		errorCode = "InvalidOperation"
	default:
		errorCode = "Unknown"
	}

	return fmt.Sprintf("StoreError (code %s): %s", errorCode, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// NewErrorf creates a new Error with the given code and a formatted
// message.
func NewErrorf(code RetCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// CodeOf returns the RetCode carried by err, or RetCSuccess for nil and
// RetCInternalError for foreign errors.
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return RetCInternalError
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess          RetCode = iota // 0: Operation executed successfully.
	RetCInternalError                   // 1: Operation failed in the backing medium or its transaction.
	RetCSerialization                   // 2: Value could not be (de)serialized.
	RetCInvalidOperation                // 3: Invalid operation.
)
