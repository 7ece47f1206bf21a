package imaging

import (
	"errors"
	"fmt"
	"image"
	"os"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// ErrNoImage is returned when a tool is called without an image path.
var ErrNoImage = errors.New("invalid image: no image path given")

// ImageCache keeps decoded source images keyed by path so that a chain of
// operations over the same file decodes it only once.
//
// Cached images are treated as read-only by every caller. Entries stay until
// Evict or Clear is called; the server evicts a path whenever an operation
// writes its output to that same path.
//
// ImageCache is safe for concurrent use.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache returns an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load returns the decoded image at path, decoding it on first use.
//
// Supported formats are PNG, JPEG, GIF, BMP and TIFF. JPEG EXIF orientation is
// applied while decoding, so pixel coordinates match what a viewer shows.
//
// The path string is the cache key as given; a relative and an absolute path to
// the same file are separate entries.
//
// Parameters:
//   - path: File path of the image, used verbatim as the cache key.
//
// Returns:
//   - image.Image: The decoded image. Callers must not modify it.
//   - error: Non-nil if the path is empty or the file cannot be decoded.
//
// # Errors
//
//   - ErrNoImage if path is empty
//   - a wrapped os error if the file cannot be opened
//   - a wrapped decode error if the file is not a supported image
func (c *ImageCache) Load(path string) (image.Image, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoImage
	}

	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear drops every cached image.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict drops the image cached under path. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo describes a source image file.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is derived from the file extension: "png", "jpeg", "gif", "bmp",
	// "tiff", or "unknown".
	Format string `json:"format"`

	// ColorDepth is "8-bit" or "16-bit" per channel.
	ColorDepth string `json:"color_depth"`

	HasAlpha      bool  `json:"has_alpha"`
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads path through cache and reports its metadata.
//
// Parameters:
//   - cache: The cache to load through; a decoded image is reused.
//   - path: File path of the image.
//
// Returns:
//   - *ImageInfo: Dimensions, format, color depth, alpha and file size.
//   - error: Non-nil if Load fails or the file cannot be stat'ed.
//
// The format is taken from the file extension and is "unknown" when the
// extension is not one imaging recognises.
//
// Color depth and alpha presence come from the decoded Go image type:
//   - *image.RGBA, *image.NRGBA: 8-bit with alpha
//   - *image.RGBA64, *image.NRGBA64: 16-bit with alpha
//   - *image.Gray16: 16-bit without alpha
//   - anything else: 8-bit without alpha
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	if f, err := imaging.FormatFromFilename(path); err == nil {
		format = strings.ToLower(f.String())
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}

// DimensionsResult is the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions loads path through cache and reports only its size.
//
// Returns the same errors as Load.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
