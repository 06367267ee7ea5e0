package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// supportedExtensions lists the file extensions (lower case) that Load can decode.
var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsSupported reports whether path has an image extension Load can decode.
// The comparison is case-insensitive.
func IsSupported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// DefaultMaxEntries bounds a cache created with WithMaxEntries(0).
const DefaultMaxEntries = 32

// ImageCache provides thread-safe caching of decoded image handles to avoid
// redundant disk reads.
//
// The cache stores *Decoded handles keyed by their file path. Each entry
// remembers the file's modification time and size when it was decoded; Load
// stats the file and returns the cached handle only while both still match, so
// a file rewritten in place (scanners reuse names such as scan0001.png) is
// decoded again.
//
// ImageCache is safe for concurrent use by multiple goroutines, which lets a
// batch be decoded in parallel before it is classified sequentially.
//
// # Orientation
//
// Images are opened with EXIF auto-orientation, so a delimiter page scanned
// sideways by a phone camera is sampled in its displayed orientation.
//
// # Smoothing
//
// When created with WithSmoothing, each image is Gaussian-blurred after decoding.
// This suppresses scanner speckle before the sample points are read. Smoothing
// is off by default.
//
// # Memory Management
//
// Without WithMaxEntries, cached images remain in memory until explicitly
// removed via Evict() or Clear(). With it, the oldest entry is dropped once the
// limit is reached.
type ImageCache struct {
	mu           sync.RWMutex
	images       map[string]cacheEntry
	order        []string
	maxEntries   int
	smoothRadius float64
}

type cacheEntry struct {
	decoded *Decoded
	modTime time.Time
	size    int64
}

// CacheOption configures an ImageCache.
type CacheOption func(*ImageCache)

// WithSmoothing enables a Gaussian blur of the given radius (in pixels) after
// decoding. A radius <= 0 disables smoothing.
func WithSmoothing(radius float64) CacheOption {
	return func(c *ImageCache) {
		c.smoothRadius = radius
	}
}

// WithMaxEntries limits the cache to n decoded images. n <= 0 uses
// DefaultMaxEntries.
func WithMaxEntries(n int) CacheOption {
	return func(c *ImageCache) {
		if n <= 0 {
			n = DefaultMaxEntries
		}
		c.maxEntries = n
	}
}

// NewImageCache creates and initializes a new empty image cache.
//
// The returned cache is ready for immediate use and is safe for concurrent access.
func NewImageCache(opts ...CacheOption) *ImageCache {
	c := &ImageCache{
		images: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load retrieves an image handle from the cache or decodes it from disk.
//
// Parameters:
//   - path: Absolute or relative file path. Supported formats are PNG, JPEG,
//     GIF, BMP, TIFF and WebP.
//
// Returns:
//   - *Decoded: The decoded image handle.
//   - error: Non-nil if the file cannot be opened or decoded.
//
// The image is cached using the exact path string provided. Different paths to
// the same file (e.g., relative vs absolute) result in separate cache entries.
func (c *ImageCache) Load(path string) (*Decoded, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat image %s: %w", path, err)
	}

	c.mu.RLock()
	e, ok := c.images[path]
	c.mu.RUnlock()
	if ok && e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
		return e.decoded, nil
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	d := Decode(Smooth(img, c.smoothRadius))

	c.mu.Lock()
	c.store(path, cacheEntry{decoded: d, modTime: info.ModTime(), size: info.Size()})
	c.mu.Unlock()

	return d, nil
}

// store inserts or replaces an entry. The caller holds c.mu.
func (c *ImageCache) store(path string, e cacheEntry) {
	if _, ok := c.images[path]; !ok {
		c.order = append(c.order, path)
	}
	c.images[path] = e

	for c.maxEntries > 0 && len(c.images) > c.maxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.images, oldest)
	}
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]cacheEntry)
	c.order = nil
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.images[path]; !ok {
		return
	}
	delete(c.images, path)
	for i, p := range c.order {
		if p == path {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Smooth applies a Gaussian blur with the given radius. A radius <= 0 returns
// img unchanged.
func Smooth(img image.Image, radius float64) image.Image {
	if radius <= 0 {
		return img
	}
	return blur.Gaussian(img, radius)
}
