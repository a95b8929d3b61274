package synth

import (
	"fmt"
	"os"
	"path/filepath"
)

// ClipStore is durable storage for synthesized clips, addressable by a public
// URL. The cache only ever adds entries; there is no eviction.
type ClipStore interface {
	Exists(key string) bool
	Put(key string, data []byte) error
	Remove(key string)
	PublicURL(key string) string
}

// DiskStore keeps clips as files in a directory served as static content
// under baseURL.
type DiskStore struct {
	dir     string
	baseURL string // e.g. "https://host/clips"
}

// NewDiskStore creates the cache directory if needed.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create clip dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: baseURL}, nil
}

// Dir returns the directory clips are stored in.
func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) path(key string) string {
	return filepath.Join(s.dir, key+".mp3")
}

func (s *DiskStore) Exists(key string) bool {
	info, err := os.Stat(s.path(key))
	return err == nil && !info.IsDir()
}

// Put writes the clip atomically: a temp file renamed into place, so a
// concurrent reader never observes a partial clip.
func (s *DiskStore) Put(key string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp clip: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write clip: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close clip: %w", err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish clip: %w", err)
	}
	return nil
}

func (s *DiskStore) Remove(key string) {
	os.Remove(s.path(key))
}

func (s *DiskStore) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s.mp3", s.baseURL, key)
}
