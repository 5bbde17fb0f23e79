package memmedium

import (
	"github.com/ValentinKolb/ttlstore/lib/medium"
	"github.com/puzpuzpuz/xsync/v3"
)

// MediumName identifies the in-memory medium in store identities and
// watermark keys.
const MediumName = "memory"

type mediumImpl struct {
	data *xsync.MapOf[string, string]
}

// New creates a new in-memory medium backed by a concurrent map.
// The medium is empty on creation and its contents are lost when the
// process exits.
//
// Thread-safety: the returned medium is safe for concurrent use.
func New() medium.IMedium {
	return &mediumImpl{
		data: xsync.NewMapOf[string, string](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see medium/interface.go)
// --------------------------------------------------------------------------

func (m *mediumImpl) Name() string {
	return MediumName
}

func (m *mediumImpl) Get(key string) (string, bool, error) {
	value, found := m.data.Load(key)
	return value, found, nil
}

func (m *mediumImpl) Set(key, value string) error {
	m.data.Store(key, value)
	return nil
}

func (m *mediumImpl) Delete(key string) error {
	m.data.Delete(key)
	return nil
}

func (m *mediumImpl) Keys() ([]string, error) {
	keys := make([]string, 0, m.data.Size())
	m.data.Range(func(key string, _ string) bool {
		keys = append(keys, key)
		return true
	})
	return keys, nil
}

func (m *mediumImpl) Close() error {
	return nil
}
