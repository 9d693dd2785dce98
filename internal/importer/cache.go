package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// cacheSchemaVersion bumps whenever cacheEntry's shape changes.
const cacheSchemaVersion uint16 = 1

// cacheEntry is what FileCache persists per source path.
type cacheEntry struct {
	Schema  uint16
	Path    string
	Hash    [32]byte
	Content []byte
}

// FileCache is a disk-backed content cache keyed by path, wrapping a
// FileProvider and persisting each file's content and hash across
// pipeline runs (the LSP re-run scenario). Every read still goes through
// the inner provider and is hashed; the cache does not skip it. It is the one
// long-lived, process-wide resource the pipeline otherwise keeps stateless.
type FileCache struct {
	mu       sync.RWMutex
	dir      string
	inner    FileProvider
	lastHash map[string][32]byte
}

// NewFileCache wraps inner with a disk cache rooted at dir.
func NewFileCache(dir string, inner FileProvider) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, inner: inner, lastHash: make(map[string][32]byte)}, nil
}

func (c *FileCache) pathFor(path string) string {
	sum := sha256.Sum256([]byte(path))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".mp")
}

// ReadFile always reads path through inner and hashes it. If the
// persisted entry's hash matches, it returns the persisted content;
// otherwise it rewrites the entry and returns the fresh content.
func (c *FileCache) ReadFile(path string) ([]byte, error) {
	content, err := c.inner.ReadFile(path)
	if err != nil {
		return nil, err
	}
	hash := sha256.Sum256(content)

	c.mu.RLock()
	cached, ok := c.readEntry(path)
	c.mu.RUnlock()
	if ok && cached.Hash == hash {
		return cached.Content, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.writeEntry(cacheEntry{Schema: cacheSchemaVersion, Path: path, Hash: hash, Content: content})
	c.lastHash[path] = hash
	return content, nil
}

func (c *FileCache) readEntry(path string) (cacheEntry, bool) {
	f, err := os.Open(c.pathFor(path))
	if err != nil {
		return cacheEntry{}, false
	}
	defer f.Close()

	var entry cacheEntry
	if err := msgpack.NewDecoder(f).Decode(&entry); err != nil {
		return cacheEntry{}, false
	}
	if entry.Schema != cacheSchemaVersion || entry.Path != path {
		return cacheEntry{}, false
	}
	return entry, true
}

func (c *FileCache) writeEntry(entry cacheEntry) error {
	p := c.pathFor(entry.Path)
	tmp, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := msgpack.NewEncoder(tmp).Encode(entry); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

