// Package curvecache stores downloaded curve CSVs on disk, with a short
// lived in-memory layer in front of repeated reads.
package curvecache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/quintel/etm/internal/pathutil"
)

const (
	defaultTTL      = 5 * time.Minute
	cleanupInterval = 10 * time.Minute
)

// Store keeps curve files under dir/<scenarioID>/<key>.csv.
type Store struct {
	dir string
	mem *gocache.Cache
}

func New(dir string) *Store {
	return &Store{
		dir: dir,
		mem: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Path returns the on-disk location for a curve, without touching the disk.
func (s *Store) Path(scenarioID int, key string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d", scenarioID), pathutil.SafeName(key)+".csv")
}

// Write persists curve bytes and returns the path written to.
func (s *Store) Write(scenarioID int, key string, data []byte) (string, error) {
	path := s.Path(scenarioID, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating curve cache dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing curve cache file: %w", err)
	}
	s.mem.Set(path, data, gocache.DefaultExpiration)
	return path, nil
}

// Read returns the cached curve bytes, from memory when fresh, falling back
// to disk. A missing file returns os.ErrNotExist.
func (s *Store) Read(scenarioID int, key string) ([]byte, error) {
	path := s.Path(scenarioID, key)
	if v, ok := s.mem.Get(path); ok {
		return v.([]byte), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s.mem.Set(path, data, gocache.DefaultExpiration)
	return data, nil
}

// Has reports whether the curve exists on disk.
func (s *Store) Has(scenarioID int, key string) bool {
	if _, ok := s.mem.Get(s.Path(scenarioID, key)); ok {
		return true
	}
	_, err := os.Stat(s.Path(scenarioID, key))
	return err == nil
}

// Remove drops a curve from memory and disk. Removing a curve that was
// never cached is not an error.
func (s *Store) Remove(scenarioID int, key string) error {
	path := s.Path(scenarioID, key)
	s.mem.Delete(path)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear removes every cached curve for a scenario.
func (s *Store) Clear(scenarioID int) error {
	dir := filepath.Join(s.dir, fmt.Sprintf("%d", scenarioID))
	s.mem.Flush()
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clearing curve cache: %w", err)
	}
	return nil
}
