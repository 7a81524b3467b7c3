// Package cache provides a small disk-backed key-value cache with TTL
// expiry, used for geocode lookups and other responses worth keeping
// across kiosk restarts. Entries are single JSON files; writes are atomic
// via temp-file-then-rename.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// entry is the on-disk envelope for one cached value.
type entry struct {
	Key     string          `json:"key"`
	Created int64           `json:"created"` // UnixNano
	TTLNS   int64           `json:"ttl_ns"`  // 0 = no expiry
	Value   json.RawMessage `json:"value"`
}

// Store is a disk-backed cache. It is safe for concurrent use.
type Store struct {
	dir        string
	defaultTTL time.Duration

	mu  sync.Mutex
	now func() time.Time
}

// NewStore opens a cache rooted at dir, creating it if needed.
// defaultTTL of 0 means entries never expire unless a TTL is given.
func NewStore(dir string, defaultTTL time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create directory %s: %w", dir, err)
	}
	return &Store{dir: dir, defaultTTL: defaultTTL, now: time.Now}, nil
}

// Get retrieves the raw value for key. Returns (nil, false) when the key
// is missing or expired; expired entries are removed on read.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		_ = os.Remove(path)
		return nil, false
	}
	if s.expired(e) {
		_ = os.Remove(path)
		return nil, false
	}
	return e.Value, true
}

// Put stores value under key with the store's default TTL.
func (s *Store) Put(key string, value []byte) error {
	return s.PutWithTTL(key, value, s.defaultTTL)
}

// PutWithTTL stores value under key with a custom TTL.
func (s *Store) PutWithTTL(key string, value []byte, ttl time.Duration) error {
	e := entry{
		Key:     key,
		Created: s.now().UnixNano(),
		TTLNS:   int64(ttl),
		Value:   value,
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("cache: marshal entry for %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := atomicWrite(s.path(key), raw, s.dir); err != nil {
		return fmt.Errorf("cache: write entry for %q: %w", key, err)
	}
	return nil
}

// Delete removes an entry. Missing keys are a no-op.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cache: delete %q: %w", key, err)
	}
	return nil
}

// Sweep removes all expired entries and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".cache") {
			continue
		}
		path := filepath.Join(s.dir, de.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil || s.expired(e) {
			if os.Remove(path) == nil {
				removed++
			}
		}
	}
	return removed
}

func (s *Store) expired(e entry) bool {
	if e.TTLNS <= 0 {
		return false
	}
	return s.now().Sub(time.Unix(0, e.Created)) > time.Duration(e.TTLNS)
}

// path maps a key to its cache file. Keys are hashed so any string is
// filesystem-safe.
func (s *Store) path(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(h[:8])+".cache")
}

// GetTyped deserializes a cached JSON value into T. Returns the zero
// value and false when the key is missing, expired, or not valid JSON
// for T.
func GetTyped[T any](s *Store, key string) (T, bool) {
	var v T
	raw, ok := s.Get(key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false
	}
	return v, true
}

// PutTyped serializes value as JSON and stores it with the default TTL.
func PutTyped[T any](s *Store, key string, value T) error {
	return PutTypedWithTTL(s, key, value, s.defaultTTL)
}

// PutTypedWithTTL serializes value as JSON and stores it with a custom
// TTL.
func PutTypedWithTTL[T any](s *Store, key string, value T, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal typed value for %q: %w", key, err)
	}
	return s.PutWithTTL(key, raw, ttl)
}

// atomicWrite writes data to path via a temporary file and rename.
func atomicWrite(path string, data []byte, tmpDir string) error {
	tmp, err := os.CreateTemp(tmpDir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
