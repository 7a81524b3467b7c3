package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/peterbourgon/diskv/v3"
)

// metaKey holds the settings-wide modification stamp. It sorts before the
// category keys and is skipped when enumerating categories.
const metaKey = "_meta"

// meta is the persisted modification stamp used for last-write-wins
// conflict resolution across devices sharing the store directory.
type meta struct {
	LastModified time.Time `json:"lastModified"`
}

// DiskStore persists the settings tree as one JSON blob per category in a
// diskv-backed directory, plus a meta blob carrying LastModified.
type DiskStore struct {
	d        *diskv.Diskv
	basePath string
}

// OpenStore opens (creating if needed) a settings store rooted at dir.
func OpenStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("settings: create store dir: %w", err)
	}
	return &DiskStore{
		d: diskv.New(diskv.Options{
			BasePath:     dir,
			CacheSizeMax: 1024 * 1024,
		}),
		basePath: dir,
	}, nil
}

// BasePath returns the store's root directory.
func (s *DiskStore) BasePath() string {
	return s.basePath
}

// WriteCategory persists one category subtree.
func (s *DiskStore) WriteCategory(category string, values any) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("settings: encode category %q: %w", category, err)
	}
	if err := s.d.Write(category, raw); err != nil {
		return fmt.Errorf("settings: write category %q: %w", category, err)
	}
	return nil
}

// ReadCategory loads one category subtree. Missing categories return
// (nil, nil).
func (s *DiskStore) ReadCategory(category string) (map[string]any, error) {
	raw, err := s.d.Read(category)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("settings: read category %q: %w", category, err)
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("settings: decode category %q: %w", category, err)
	}
	return values, nil
}

// WriteMeta persists the modification stamp.
func (s *DiskStore) WriteMeta(lastModified time.Time) error {
	raw, err := json.Marshal(meta{LastModified: lastModified})
	if err != nil {
		return fmt.Errorf("settings: encode meta: %w", err)
	}
	if err := s.d.Write(metaKey, raw); err != nil {
		return fmt.Errorf("settings: write meta: %w", err)
	}
	return nil
}

// ReadMeta loads the modification stamp. A missing meta blob returns the
// zero time.
func (s *DiskStore) ReadMeta() (time.Time, error) {
	raw, err := s.d.Read(metaKey)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("settings: read meta: %w", err)
	}
	var m meta
	if err := json.Unmarshal(raw, &m); err != nil {
		return time.Time{}, fmt.Errorf("settings: decode meta: %w", err)
	}
	return m.LastModified, nil
}

// Categories lists the persisted category names.
func (s *DiskStore) Categories() ([]string, error) {
	var out []string
	for key := range s.d.Keys(nil) {
		if key == metaKey {
			continue
		}
		out = append(out, key)
	}
	return out, nil
}

// Empty reports whether the store has no persisted categories.
func (s *DiskStore) Empty() bool {
	cats, err := s.Categories()
	return err == nil && len(cats) == 0
}

// snapshot is the single-file fallback cache written alongside the store,
// the analog of a local cache a device can boot from when the shared
// store is unreachable.
type snapshot struct {
	LastModified time.Time      `json:"lastModified"`
	Values       map[string]any `json:"values"`
}

// writeSnapshot atomically writes the snapshot file.
func writeSnapshot(path string, snap snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("settings: encode snapshot: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("settings: create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("settings: temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("settings: write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("settings: close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("settings: rename snapshot: %w", err)
	}
	return nil
}

// readSnapshot loads the snapshot file. A missing file returns a zero
// snapshot and no error.
func readSnapshot(path string) (snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return snapshot{}, nil
		}
		return snapshot{}, fmt.Errorf("settings: read snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return snapshot{}, fmt.Errorf("settings: decode snapshot: %w", err)
	}
	return snap, nil
}
