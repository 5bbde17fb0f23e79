package filemedium

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ValentinKolb/ttlstore/lib/medium"
)

// MediumName identifies the file medium in store identities and watermark
// keys.
const MediumName = "file"

type mediumImpl struct {
	root string
}

// New creates a file-backed medium rooted at the given directory. Every key
// maps to exactly one file directly under root; key characters that are not
// filesystem safe are percent-encoded. The directory is created if it does
// not exist.
//
// Thread-safety: the medium itself holds no mutable state, concurrent
// access is as safe as concurrent filesystem access to distinct files.
func New(root string) (medium.IMedium, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("filemedium: root directory is required")
	}
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("filemedium: create root: %w", err)
	}
	return &mediumImpl{root: root}, nil
}

// fileName maps a key to its file path under root. QueryEscape is used
// instead of PathEscape because it also encodes '/' and ':'.
func (m *mediumImpl) fileName(key string) string {
	return filepath.Join(m.root, url.QueryEscape(key))
}

// --------------------------------------------------------------------------
// Interface Methods (docu see medium/interface.go)
// --------------------------------------------------------------------------

func (m *mediumImpl) Name() string {
	return MediumName
}

func (m *mediumImpl) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(m.fileName(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("filemedium: read %q: %w", key, err)
	}
	return string(data), true, nil
}

func (m *mediumImpl) Set(key, value string) error {
	// write-then-rename so readers never observe a partial value
	path := m.fileName(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		return fmt.Errorf("filemedium: write %q: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("filemedium: rename %q: %w", key, err)
	}
	return nil
}

func (m *mediumImpl) Delete(key string) error {
	if err := os.Remove(m.fileName(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("filemedium: delete %q: %w", key, err)
	}
	return nil
}

func (m *mediumImpl) Keys() ([]string, error) {
	var keys []string
	err := filepath.WalkDir(m.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == m.root {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if path == m.root {
				return nil
			}
			return filepath.SkipDir
		}
		name := d.Name()
		if strings.HasSuffix(name, ".tmp") {
			return nil
		}
		key, err := url.QueryUnescape(name)
		if err != nil {
			// foreign file in the medium directory, not one of ours
			return nil
		}
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("filemedium: enumerate keys: %w", err)
	}
	return keys, nil
}

func (m *mediumImpl) Close() error {
	return nil
}
