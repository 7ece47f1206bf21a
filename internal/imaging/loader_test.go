package imaging

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
)

// writeTestImage saves a solid w x h image under dir and returns its path.
// The format follows the file extension of name.
func writeTestImage(t *testing.T, dir, name string, w, h int, c color.Color) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := imaging.Save(imaging.New(w, h, c), path); err != nil {
		t.Fatalf("failed to save test image: %v", err)
	}
	return path
}

func TestImageCache_Load(t *testing.T) {
	dir := t.TempDir()
	path := writeTestImage(t, dir, "red.png", 40, 30, color.NRGBA{255, 0, 0, 255})
	cache := NewImageCache()

	img, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("dimensions: got %dx%d, want 40x30", b.Dx(), b.Dy())
	}
	if cache.Len() != 1 {
		t.Errorf("cache length: got %d, want 1", cache.Len())
	}

	again, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if again != img {
		t.Error("second Load did not return the cached image")
	}
}

func TestImageCache_Load_Errors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"empty path", "", ErrNoImage},
		{"blank path", "   ", ErrNoImage},
		{"missing file", filepath.Join(dir, "missing.png"), os.ErrNotExist},
		{"not an image", garbage, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewImageCache()
			_, err := cache.Load(tt.path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
			if cache.Len() != 0 {
				t.Error("failed load was cached")
			}
		})
	}
}

func TestImageCache_EvictAndClear(t *testing.T) {
	dir := t.TempDir()
	a := writeTestImage(t, dir, "a.png", 10, 10, color.White)
	b := writeTestImage(t, dir, "b.png", 10, 10, color.Black)
	cache := NewImageCache()

	for _, p := range []string{a, b} {
		if _, err := cache.Load(p); err != nil {
			t.Fatal(err)
		}
	}

	cache.Evict(a)
	if cache.Len() != 1 {
		t.Errorf("after Evict: got %d entries, want 1", cache.Len())
	}
	cache.Evict("never-loaded.png")
	if cache.Len() != 1 {
		t.Errorf("evicting an unknown path changed the cache")
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("after Clear: got %d entries, want 0", cache.Len())
	}
}

func TestImageCache_EvictPicksUpRewrite(t *testing.T) {
	dir := t.TempDir()
	path := writeTestImage(t, dir, "img.png", 10, 10, color.White)
	cache := NewImageCache()
	if _, err := cache.Load(path); err != nil {
		t.Fatal(err)
	}

	writeTestImage(t, dir, "img.png", 20, 5, color.White)
	cache.Evict(path)

	img, err := cache.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 20 {
		t.Errorf("got width %d after rewrite, want 20", img.Bounds().Dx())
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	path := writeTestImage(t, dir, "shared.png", 16, 16, color.White)
	cache := NewImageCache()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				t.Errorf("Load failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Errorf("got %d entries, want 1", cache.Len())
	}
}

func TestLoadImageInfo(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		file       string
		wantFormat string
	}{
		{"img.png", "png"},
		{"img.jpg", "jpeg"},
		{"img.gif", "gif"},
		{"img.bmp", "bmp"},
		{"img.tif", "tiff"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := writeTestImage(t, dir, tt.file, 12, 8, color.NRGBA{0, 0, 255, 255})
			info, err := LoadImageInfo(NewImageCache(), path)
			if err != nil {
				t.Fatalf("LoadImageInfo failed: %v", err)
			}
			if info.Width != 12 || info.Height != 8 {
				t.Errorf("dimensions: got %dx%d, want 12x8", info.Width, info.Height)
			}
			if info.Format != tt.wantFormat {
				t.Errorf("format: got %q, want %q", info.Format, tt.wantFormat)
			}
			if info.FileSizeBytes <= 0 {
				t.Errorf("file size: got %d", info.FileSizeBytes)
			}
			if info.ColorDepth != "8-bit" {
				t.Errorf("color depth: got %q", info.ColorDepth)
			}
		})
	}

	if _, err := LoadImageInfo(NewImageCache(), filepath.Join(dir, "nope.png")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestGetDimensions(t *testing.T) {
	dir := t.TempDir()
	path := writeTestImage(t, dir, "dims.png", 123, 45, color.White)

	dims, err := GetDimensions(NewImageCache(), path)
	if err != nil {
		t.Fatalf("GetDimensions failed: %v", err)
	}
	if dims.Width != 123 || dims.Height != 45 {
		t.Errorf("got %dx%d, want 123x45", dims.Width, dims.Height)
	}

	if _, err := GetDimensions(NewImageCache(), ""); !errors.Is(err, ErrNoImage) {
		t.Errorf("empty path: got %v, want ErrNoImage", err)
	}
}

func TestImageCache_LoadKeepsImageType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gray.png")
	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	if err := imaging.Save(gray, path); err != nil {
		t.Fatal(err)
	}

	img, err := NewImageCache().Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := img.(*image.Gray); !ok {
		t.Errorf("gray PNG decoded as %T", img)
	}
}
