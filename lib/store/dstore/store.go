package dstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ValentinKolb/ttlstore/lib/lifespan"
	"github.com/ValentinKolb/ttlstore/lib/medium"
	"github.com/ValentinKolb/ttlstore/lib/medium/memmedium"
	"github.com/ValentinKolb/ttlstore/lib/store"
	_ "modernc.org/sqlite"
)

// --------------------------------------------------------------------------
// Constants and Configuration
// --------------------------------------------------------------------------

// MediumName identifies the durable medium in store identities and
// watermark keys.
const MediumName = "sqlite"

const (
	// DefaultLifespanMs is the fallback entry lifespan (one day).
	DefaultLifespanMs = int64(24 * 60 * 60 * 1000)
	// DefaultGCInterval is the fallback minimum delay between sweeps.
	DefaultGCInterval = 24 * time.Hour
)

// defaultWatermarks holds GC watermarks for durable stores that were not
// given an explicit watermark medium. Process-local on purpose: the
// watermark only throttles sweeps, losing it on restart merely reseeds it.
var defaultWatermarks = memmedium.New()

// Config configures a durable store instance.
type Config struct {
	// Path is the SQLite database file. Required.
	Path string
	// Namespace is the record container (table) this store owns within
	// the database file. Required.
	Namespace string
	// Version is the schema version of the namespace. Changing it drops
	// and recreates the container on first open: all prior data is gone.
	Version int
	// DefaultLifespan applies to Set calls without an explicit lifespan.
	// Zero means DefaultLifespanMs.
	DefaultLifespan lifespan.Lifespan
	// GCInterval is the minimum delay between watermark-gated sweeps.
	// Zero means DefaultGCInterval.
	GCInterval time.Duration
	// Watermarks is the synchronous medium the GC watermark lives in.
	// Nil means a process-local in-memory medium; pass a filemedium to
	// keep sweep throttling across restarts.
	Watermarks medium.IMedium
	// Clock overrides the time source, for tests. Nil means time.Now.
	Clock func() time.Time
}

// --------------------------------------------------------------------------
// Store Implementation
// --------------------------------------------------------------------------

type storeImpl struct {
	path      string
	namespace string
	version   int
	table     string
	watermark store.Watermark
	clock     func() time.Time
	logger    *slog.Logger

	// connMu guards the lazily opened, memoized connection. Holding the
	// mutex across the open gives single-flight semantics: concurrent
	// first operations share one open instead of racing. The memo is only
	// set on success, so a failed open leaves the store usable for retry.
	connMu sync.Mutex
	conn   *sql.DB

	// defaults are read per-operation and tunable at runtime
	mu         sync.RWMutex
	defaultTTL lifespan.Lifespan
	gcInterval time.Duration
}

// New creates a durable store over a SQLite database file. The connection
// is not opened here: it is established by the first operation and then
// held for the lifetime of the process.
//
// Thread-safety: safe for concurrent use. Operations are not serialized by
// this layer; each runs in its own transaction and relies on SQLite's
// isolation. Two concurrent writes to the same key race at commit order,
// last commit wins.
func New(cfg Config) store.IFullStore {
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
		watermarks = defaultWatermarks
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &storeImpl{
		path:       cfg.Path,
		namespace:  cfg.Namespace,
		version:    cfg.Version,
		table:      tableName(cfg.Namespace),
		watermark:  store.NewWatermark(watermarks, MediumName, cfg.Version, cfg.Namespace),
		clock:      clock,
		logger:     slog.With("component", "dstore", "namespace", cfg.Namespace),
		defaultTTL: ttl,
		gcInterval: interval,
	}
}

// tableName maps a namespace to a SQL identifier. Identifier-like
// namespaces map directly, anything else is hex-encoded so distinct
// namespaces never collide.
func tableName(namespace string) string {
	plain := true
	for _, r := range namespace {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' {
			plain = false
			break
		}
	}
	if plain && namespace != "" {
		return "entries_" + namespace
	}
	return fmt.Sprintf("entries_x%x", namespace)
}

// --------------------------------------------------------------------------
// Connection Handling
// --------------------------------------------------------------------------

// db returns the memoized connection, opening and migrating it on first
// use.
func (s *storeImpl) db(ctx context.Context) (*sql.DB, error) {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn != nil {
		return s.conn, nil
	}

	if strings.TrimSpace(s.path) == "" {
		return nil, store.NewError(store.RetCInvalidOperation, "database path is required")
	}
	if strings.TrimSpace(s.namespace) == "" {
		return nil, store.NewError(store.RetCInvalidOperation, "namespace is required")
	}

	dsn := filepath.Clean(s.path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, store.NewErrorf(store.RetCInternalError, "open database: %v", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, store.NewErrorf(store.RetCInternalError, "ping database: %v", err)
	}
	if err := s.migrate(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	s.conn = conn
	return conn, nil
}

// migrate is the one-time schema hook fired on first open. It creates the
// namespace's record container, and on a version change drops and
// recreates it: old data is abandoned, not migrated.
func (s *storeImpl) migrate(ctx context.Context, conn *sql.DB) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return store.NewErrorf(store.RetCInternalError, "begin migration: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS namespaces (
    namespace TEXT PRIMARY KEY,
    version   INTEGER NOT NULL
);
`); err != nil {
		return store.NewErrorf(store.RetCInternalError, "ensure namespace table: %v", err)
	}

	var current int
	known := true
	err = tx.QueryRowContext(ctx,
		`SELECT version FROM namespaces WHERE namespace = ?`, s.namespace).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		known = false
	} else if err != nil {
		return store.NewErrorf(store.RetCInternalError, "read namespace version: %v", err)
	}

	if known && current == s.version {
		return tx.Commit()
	}

	if known {
		// destructive by design: the old container is gone
		if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+s.table); err != nil {
			return store.NewErrorf(store.RetCInternalError, "drop outdated container: %v", err)
		}
		s.logger.Info("namespace version changed, container wiped",
			"from", current, "to", s.version)
	}

	if _, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS `+s.table+` (
    key       TEXT PRIMARY KEY,
    value     BLOB NOT NULL,
    stored_ms INTEGER NOT NULL,
    expiry_ms INTEGER NOT NULL
);
`); err != nil {
		return store.NewErrorf(store.RetCInternalError, "create container: %v", err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO namespaces (namespace, version) VALUES (?, ?)
ON CONFLICT (namespace) DO UPDATE SET version = excluded.version
`, s.namespace, s.version); err != nil {
		return store.NewErrorf(store.RetCInternalError, "record namespace version: %v", err)
	}

	return tx.Commit()
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

func (s *storeImpl) Set(ctx context.Context, key string, value any, ttl ...lifespan.Lifespan) error {
	entry, err := store.Wrap(value, s.resolveTTL(ttl), s.clock())
	if err != nil {
		return err
	}

	conn, err := s.db(ctx)
	if err != nil {
		return err
	}

	tx, terr := conn.BeginTx(ctx, nil)
	if terr != nil {
		return store.NewErrorf(store.RetCInternalError, "begin set: %v", terr)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO `+s.table+` (key, value, stored_ms, expiry_ms) VALUES (?, ?, ?, ?)
ON CONFLICT (key) DO UPDATE SET
    value = excluded.value, stored_ms = excluded.stored_ms, expiry_ms = excluded.expiry_ms
`, key, []byte(entry.Value), entry.StoredMs, entry.ExpiryMs); err != nil {
		return store.NewErrorf(store.RetCInternalError, "set %q: %v", key, err)
	}
	if err := tx.Commit(); err != nil {
		return store.NewErrorf(store.RetCInternalError, "commit set %q: %v", key, err)
	}

	metricSets.Inc()
	// side effect only: Set does not wait on the GC check
	go s.opportunisticGC()
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

func (s *storeImpl) GetStored(ctx context.Context, key string) (store.Entry, bool, error) {
	metricGets.Inc()

	conn, err := s.db(ctx)
	if err != nil {
		return store.Entry{}, false, err
	}

	tx, terr := conn.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if terr != nil {
		return store.Entry{}, false, store.NewErrorf(store.RetCInternalError, "begin get: %v", terr)
	}

	var (
		value    []byte
		storedMs int64
		expiryMs int64
	)
	err = tx.QueryRowContext(ctx,
		`SELECT value, stored_ms, expiry_ms FROM `+s.table+` WHERE key = ?`, key).
		Scan(&value, &storedMs, &expiryMs)
	_ = tx.Commit()

	if errors.Is(err, sql.ErrNoRows) {
		return store.Entry{}, false, nil
	}
	if err != nil {
		return store.Entry{}, false, store.NewErrorf(store.RetCInternalError, "get %q: %v", key, err)
	}

	entry := store.Entry{
		Key:      key,
		Value:    json.RawMessage(value),
		StoredMs: storedMs,
		ExpiryMs: expiryMs,
	}
	if !store.Validate(entry, s.clock()) {
		if derr := s.deleteKeys(ctx, []string{key}); derr != nil {
			s.logger.Warn("failed to delete dead entry", "key", key, "err", derr)
		}
		go s.opportunisticGC()
		return store.Entry{}, false, nil
	}

	return entry, true, nil
}

func (s *storeImpl) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := s.db(ctx); err != nil {
		return err
	}
	return s.deleteKeys(ctx, keys)
}

// deleteKeys removes a batch of keys in one transaction. Absent keys are
// no-ops.
func (s *storeImpl) deleteKeys(ctx context.Context, keys []string) error {
	conn, err := s.db(ctx)
	if err != nil {
		return err
	}

	tx, terr := conn.BeginTx(ctx, nil)
	if terr != nil {
		return store.NewErrorf(store.RetCInternalError, "begin delete: %v", terr)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE key = ?`, key); err != nil {
			return store.NewErrorf(store.RetCInternalError, "delete %q: %v", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return store.NewErrorf(store.RetCInternalError, "commit delete: %v", err)
	}
	return nil
}

func (s *storeImpl) ForEach(ctx context.Context, fn store.ForEachFn) error {
	dead, err := s.scan(ctx, fn)
	if err != nil {
		return err
	}
	if len(dead) > 0 {
		if err := s.deleteKeys(ctx, dead); err != nil {
			return err
		}
	}
	return nil
}

// scan drives a cursor over the container in a read-only transaction. For
// every record, validation runs inline; live records are handed to fn (if
// non-nil) and the cursor only advances after the callback returns. Dead
// keys are collected and returned so the caller can delete them once the
// cursor is closed - deleting mid-cursor would contend with the read
// transaction's connection.
func (s *storeImpl) scan(ctx context.Context, fn store.ForEachFn) (dead []string, err error) {
	conn, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	tx, terr := conn.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if terr != nil {
		return nil, store.NewErrorf(store.RetCInternalError, "begin scan: %v", terr)
	}
	defer tx.Rollback()

	rows, qerr := tx.QueryContext(ctx,
		`SELECT key, value, stored_ms, expiry_ms FROM `+s.table)
	if qerr != nil {
		return nil, store.NewErrorf(store.RetCInternalError, "scan container: %v", qerr)
	}
	defer rows.Close()

	now := s.clock()
	for rows.Next() {
		var (
			key      string
			value    []byte
			storedMs int64
			expiryMs int64
		)
		if err := rows.Scan(&key, &value, &storedMs, &expiryMs); err != nil {
			return nil, store.NewErrorf(store.RetCInternalError, "scan record: %v", err)
		}

		entry := store.Entry{
			Key:      key,
			Value:    json.RawMessage(value),
			StoredMs: storedMs,
			ExpiryMs: expiryMs,
		}
		if !store.Validate(entry, now) {
			dead = append(dead, key)
			continue
		}
		if fn != nil {
			if err := fn(key, entry); err != nil {
				return nil, err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewErrorf(store.RetCInternalError, "advance cursor: %v", err)
	}
	return dead, tx.Commit()
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

func (s *storeImpl) Clear(ctx context.Context) error {
	conn, err := s.db(ctx)
	if err != nil {
		return err
	}

	tx, terr := conn.BeginTx(ctx, nil)
	if terr != nil {
		return store.NewErrorf(store.RetCInternalError, "begin clear: %v", terr)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+s.table); err != nil {
		return store.NewErrorf(store.RetCInternalError, "clear container: %v", err)
	}
	if err := tx.Commit(); err != nil {
		return store.NewErrorf(store.RetCInternalError, "commit clear: %v", err)
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
