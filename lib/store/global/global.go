package global

import (
	"sync"
	"time"

	"github.com/ValentinKolb/ttlstore/lib/lifespan"
	"github.com/ValentinKolb/ttlstore/lib/medium/filemedium"
	"github.com/ValentinKolb/ttlstore/lib/medium/memmedium"
	"github.com/ValentinKolb/ttlstore/lib/medium/redismedium"
	"github.com/ValentinKolb/ttlstore/lib/store"
	"github.com/ValentinKolb/ttlstore/lib/store/dstore"
	"github.com/ValentinKolb/ttlstore/lib/store/fstore"
)

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// Driver selects the backing medium of the shared store.
type Driver string

const (
	DriverMemory Driver = "memory"
	DriverFile   Driver = "file"
	DriverSQLite Driver = "sqlite"
	DriverRedis  Driver = "redis"
)

// Config is the configuration of the process-wide shared store.
type Config struct {
	// Driver selects the engine and medium. Inert after first use.
	Driver Driver
	// Path is the file-medium root directory or the SQLite database file,
	// depending on Driver. Inert after first use.
	Path string
	// Addr is the redis server address for DriverRedis. Inert after
	// first use.
	Addr string
	// Namespace of the shared store. Inert after first use.
	Namespace string
	// Version of the shared store. Inert after first use.
	Version int
	// DefaultLifespan applies to Set calls without an explicit lifespan.
	// Read per-operation: overrides apply even after first use.
	DefaultLifespan lifespan.Lifespan
	// GCInterval throttles sweeps. Read per-operation: overrides apply
	// even after first use.
	GCInterval time.Duration
}

var (
	mu     sync.Mutex
	cfg    = Config{Driver: DriverMemory, Namespace: "default", Version: 1}
	shared store.IFullStore
)

// Configure mutates the shared configuration. Before the first Store call
// every field applies; afterwards the connection-affecting fields (Driver,
// Path, Addr, Namespace, Version) are inert, while DefaultLifespan and
// GCInterval are forwarded to the live instance and apply to subsequent
// operations.
func Configure(mutate func(*Config)) {
	mu.Lock()
	defer mu.Unlock()

	mutate(&cfg)
	if shared != nil {
		shared.SetDefaults(cfg.DefaultLifespan, cfg.GCInterval)
	}
}

// Store returns the process-wide shared store, building it on first call.
// Concurrent first calls share one build. A failed build is not memoized,
// so the next call retries.
func Store() (store.IFullStore, error) {
	mu.Lock()
	defer mu.Unlock()

	if shared != nil {
		return shared, nil
	}

	s, err := build(cfg)
	if err != nil {
		return nil, err
	}
	shared = s
	return shared, nil
}

func build(cfg Config) (store.IFullStore, error) {
	switch cfg.Driver {
	case DriverMemory:
		return fstore.New(memmedium.New(), fstore.Config{
			Namespace:       cfg.Namespace,
			Version:         cfg.Version,
			DefaultLifespan: cfg.DefaultLifespan,
			GCInterval:      cfg.GCInterval,
		}), nil

	case DriverFile:
		m, err := filemedium.New(cfg.Path)
		if err != nil {
			return nil, store.NewErrorf(store.RetCInternalError, "file medium: %v", err)
		}
		return fstore.New(m, fstore.Config{
			Namespace:       cfg.Namespace,
			Version:         cfg.Version,
			DefaultLifespan: cfg.DefaultLifespan,
			GCInterval:      cfg.GCInterval,
		}), nil

	case DriverRedis:
		m, err := redismedium.New(cfg.Addr)
		if err != nil {
			return nil, store.NewErrorf(store.RetCInternalError, "redis medium: %v", err)
		}
		return fstore.New(m, fstore.Config{
			Namespace:       cfg.Namespace,
			Version:         cfg.Version,
			DefaultLifespan: cfg.DefaultLifespan,
			GCInterval:      cfg.GCInterval,
		}), nil

	case DriverSQLite:
		return dstore.New(dstore.Config{
			Path:            cfg.Path,
			Namespace:       cfg.Namespace,
			Version:         cfg.Version,
			DefaultLifespan: cfg.DefaultLifespan,
			GCInterval:      cfg.GCInterval,
		}), nil

	default:
		return nil, store.NewErrorf(store.RetCInvalidOperation, "unknown driver %q", cfg.Driver)
	}
}
