package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"spice/internal/project"
)

// Bump when CacheEntry changes shape.
const cacheSchemaVersion uint16 = 1

// Cache keeps generated IR on disk, keyed by the file hash salted with the
// target and the compiler version. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// CacheEntry is one cached module.
type CacheEntry struct {
	Schema   uint16
	BuildID  string // id of the compilation that wrote the entry
	Path     string
	Triple   string
	Compiler string
	Hash     project.Digest
	Written  time.Time
	IR       string
}

// OpenCache returns the cache under $XDG_CACHE_HOME/app, or ~/.cache/app.
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewCache(filepath.Join(base, app))
}

// NewCache returns a cache rooted at dir, creating it if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir is the cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "ir", hex.EncodeToString(key[:])+".mp")
}

// Put writes entry under key, replacing the previous one atomically.
func (c *Cache) Put(key project.Digest, entry *CacheEntry) (err error) {
	if c == nil || entry == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	entry.Schema = cacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(entry); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the entry under key. Entries of another schema are misses.
func (c *Cache) Get(key project.Digest) (*CacheEntry, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var entry CacheEntry
	if err := msgpack.NewDecoder(f).Decode(&entry); err != nil {
		return nil, false, err
	}
	if entry.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return &entry, true, nil
}

// DropAll removes every entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
