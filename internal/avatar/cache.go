package avatar

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"tools.zach/dev/leaguenotifier/internal/atomicfile"
	"tools.zach/dev/leaguenotifier/internal/roster"
)

// fileExt is the extension of cached icon files.
const fileExt = ".jpg"

// ///////////////////////////////////////////////
// Cache
// ///////////////////////////////////////////////

// Cache keeps at most a fixed number of icon files in a directory. The
// least recently used file is deleted when a new icon pushes past the limit.
type Cache struct {
	// dir holds one file per icon reference.
	dir string
	// index maps icon references to file paths in recency order.
	index *lru.Cache[roster.IconRef, string]
}

// NewCache opens the cache rooted at dir, creating it if needed, and indexes
// files left by earlier runs oldest first.
func NewCache(dir string, size int) (*Cache, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be > 0, got %d", size)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create avatar dir: %w", err)
	}
	index, err := lru.NewWithEvict(size, func(ref roster.IconRef, path string) {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Debug("failed to remove evicted avatar", "icon", string(ref), "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create avatar index: %w", err)
	}
	c := &Cache{dir: dir, index: index}
	c.load()
	return c, nil
}

// load adds existing icon files to the index by ascending modification time
// so that the newest survive if there are more files than slots.
func (c *Cache) load() {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return
	}
	type found struct {
		ref roster.IconRef
		mod time.Time
	}
	var files []found
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, found{ref: roster.IconRef(strings.TrimSuffix(name, fileExt)), mod: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mod.Before(files[j].mod) })
	for _, f := range files {
		c.index.Add(f.ref, c.Path(f.ref))
	}
}

// Path returns the file path used for ref, whether or not it is cached.
func (c *Cache) Path(ref roster.IconRef) string {
	return filepath.Join(c.dir, fileName(ref))
}

// fileName maps ref to a file name, replacing anything outside
// [A-Za-z0-9_-] so references cannot escape the cache directory.
func fileName(ref roster.IconRef) string {
	var b strings.Builder
	for _, r := range string(ref) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String() + fileExt
}

// Get returns the cached file for ref. An index entry whose file vanished is
// dropped and reported as a miss.
func (c *Cache) Get(ref roster.IconRef) (string, bool) {
	path, ok := c.index.Get(ref)
	if !ok {
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		c.index.Remove(ref)
		return "", false
	}
	return path, true
}

// Put stores the bytes read from r as the file for ref and returns its path.
func (c *Cache) Put(ref roster.IconRef, r io.Reader) (string, error) {
	path := c.Path(ref)
	if _, err := atomicfile.WriteReader(path, r, 0o644); err != nil {
		return "", fmt.Errorf("store avatar %s: %w", ref, err)
	}
	c.index.Add(ref, path)
	return path, nil
}

// Len returns the number of indexed icons.
func (c *Cache) Len() int {
	return c.index.Len()
}

// ///////////////////////////////////////////////
// Resolver
// ///////////////////////////////////////////////

// Resolver returns a local image path for an icon, downloading it into the
// cache on a miss.
type Resolver struct {
	fetcher *Fetcher
	cache   *Cache
}

// NewResolver combines a fetcher and a cache.
func NewResolver(f *Fetcher, c *Cache) *Resolver {
	return &Resolver{fetcher: f, cache: c}
}

// Resolve returns the local path of the image for ref.
func (r *Resolver) Resolve(ctx context.Context, ref roster.IconRef) (string, error) {
	if !ref.Valid() {
		return "", ErrNoIcon
	}
	if path, ok := r.cache.Get(ref); ok {
		return path, nil
	}
	body, err := r.fetcher.Open(ctx, ref)
	if err != nil {
		return "", err
	}
	defer body.Close()
	return r.cache.Put(ref, body)
}
