package artwork

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/genricoloni/resonance/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PictureSource is anything exposing an embedded picture, such as a tag container
type PictureSource interface {
	Picture() ([]byte, bool)
}

// Cache maps artwork digests to decoded Artwork. At most one Artwork exists
// per digest and each digest is decoded at most once, even under concurrent
// callers. Entries live for the lifetime of the cache.
type Cache struct {
	logger      *zap.Logger
	decoder     Decoder
	paletteSize int
	dir         string

	mu      sync.Mutex
	entries map[domain.Digest]*Artwork

	// Serializes decode+persist per digest without holding mu across I/O
	flights singleflight.Group
}

// NewCache creates an empty artwork cache
func NewCache(logger *zap.Logger, decoder Decoder, cfg domain.Config) *Cache {
	return &Cache{
		logger:      logger,
		decoder:     decoder,
		paletteSize: cfg.PaletteSize(),
		dir:         cfg.ArtworkCacheDir(),
		entries:     make(map[domain.Digest]*Artwork),
	}
}

// GetOrInsert returns the Artwork for the first picture of src, decoding it on
// first encounter. ownerPath is only used for logging. ok is false when src
// has no picture or the picture cannot be decoded.
func (c *Cache) GetOrInsert(ctx context.Context, ownerPath string, src PictureSource) (art *Artwork, coverUUID string, ok bool) {
	if src == nil {
		return nil, "", false
	}
	data, has := src.Picture()
	if !has || len(data) == 0 {
		return nil, "", false
	}
	return c.Insert(ctx, ownerPath, data)
}

// Insert is GetOrInsert for raw picture bytes
func (c *Cache) Insert(ctx context.Context, ownerPath string, data []byte) (*Artwork, string, bool) {
	digest := domain.SumDigest(data)

	if art, ok := c.Lookup(digest); ok {
		return art, art.uuid, true
	}

	v, err, shared := c.flights.Do(digest.String(), func() (interface{}, error) {
		// A previous flight may have inserted between Lookup and Do
		if art, ok := c.Lookup(digest); ok {
			return art, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		art, err := c.create(digest, data)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[digest] = art
		c.mu.Unlock()
		return art, nil
	})
	if err != nil {
		c.logger.Warn("Failed to load cover art",
			zap.String("path", ownerPath),
			zap.String("digest", digest.Short()),
			zap.Error(err))
		return nil, "", false
	}

	art := v.(*Artwork)
	if shared {
		c.logger.Debug("Shared in-flight cover decode",
			zap.String("path", ownerPath),
			zap.String("digest", digest.Short()))
	}
	return art, art.uuid, true
}

// Lookup returns the cached Artwork for digest
func (c *Cache) Lookup(digest domain.Digest) (*Artwork, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	art, ok := c.entries[digest]
	return art, ok
}

// Len returns the number of distinct covers cached
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) create(digest domain.Digest, data []byte) (*Artwork, error) {
	start := time.Now()

	bitmap, format, err := c.decoder.Decode(data)
	if err != nil {
		return nil, err
	}

	palette, err := extractPalette(bitmap, c.paletteSize)
	if err != nil {
		c.logger.Debug("Palette extraction failed", zap.String("digest", digest.Short()), zap.Error(err))
	}

	art := &Artwork{
		digest:  digest,
		uuid:    CoverUUID(digest),
		format:  format,
		bitmap:  bitmap,
		palette: palette,
	}

	if c.dir != "" {
		path, err := c.persist(digest, format, data)
		if err != nil {
			c.logger.Warn("Failed to persist cover art", zap.String("digest", digest.Short()), zap.Error(err))
		} else {
			art.cachePath = path
		}
	}

	c.logger.Debug("Cover art decoded",
		zap.String("digest", digest.Short()),
		zap.String("format", format),
		zap.Int("colors", len(palette)),
		zap.Duration("elapsed", time.Since(start)))

	return art, nil
}

// persist writes the original bytes to <dir>/<digest>.<ext> unless a previous
// run already did
func (c *Cache) persist(digest domain.Digest, format string, data []byte) (string, error) {
	path := filepath.Join(c.dir, digest.String()+"."+extension(format))
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".cover-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write cover: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close cover: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move cover into place: %w", err)
	}
	return path, nil
}

func extension(format string) string {
	switch format {
	case "jpeg":
		return "jpg"
	case "":
		return "img"
	default:
		return format
	}
}
