package asset

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/ftrvxmtrx/tga"
)

// LoadTexture reads a TGA, PNG or JPEG file and returns an NRGBA image.
func LoadTexture(path string) (*image.NRGBA, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tga", ".png", ".jpg", ".jpeg":
	default:
		return nil, fmt.Errorf("texture: unknown extension: %s", filepath.Ext(path))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return toNRGBA(img), nil
}

// toNRGBA converts any image to NRGBA format.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

// TextureCache is a concurrency-safe texture cache keyed by file path.
// Failed loads are cached as nil so a bad file is read once.
type TextureCache struct {
	mu    sync.RWMutex
	items map[string]*image.NRGBA
}

func NewTextureCache() *TextureCache {
	return &TextureCache{items: make(map[string]*image.NRGBA)}
}

// Resolve loads and caches a texture. Returns nil if it cannot be loaded.
func (c *TextureCache) Resolve(path string) *image.NRGBA {
	// Fast path: read lock
	c.mu.RLock()
	if img, ok := c.items[path]; ok {
		c.mu.RUnlock()
		return img
	}
	c.mu.RUnlock()

	img, _ := LoadTexture(path)

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.items[path]; ok {
		return cached
	}
	c.items[path] = img
	return img
}

// Len returns the number of cached entries, including failed loads.
func (c *TextureCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
