package objectstore

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func encodeTestImage(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 10 {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return &buf
}

func TestDownsize_LargeImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3200, 2400))
	dst := Downsize(src, MaxDimension)

	b := dst.Bounds()
	if b.Dx() != 1600 || b.Dy() != 1200 {
		t.Errorf("downsized to %dx%d, want 1600x1200", b.Dx(), b.Dy())
	}
}

func TestDownsize_PortraitImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1000, 4000))
	dst := Downsize(src, MaxDimension)

	b := dst.Bounds()
	if b.Dy() != 1600 || b.Dx() != 400 {
		t.Errorf("downsized to %dx%d, want 400x1600", b.Dx(), b.Dy())
	}
}

func TestDownsize_SmallImageUnchanged(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 640, 480))
	if dst := Downsize(src, MaxDimension); dst != src {
		t.Error("image within bounds should be returned unchanged")
	}
}

func TestDiskStore_PutAndRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "/photos/")
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}

	url, err := store.Put("stage.jpg", encodeTestImage(t, 2000, 1000))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if url != "/photos/stage.jpg" {
		t.Errorf("url = %q, want /photos/stage.jpg", url)
	}

	path := filepath.Join(dir, "stage.jpg")
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	defer f.Close()

	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("stored file is not a valid JPEG: %v", err)
	}
	if img.Bounds().Dx() != 1600 {
		t.Errorf("stored width = %d, want 1600", img.Bounds().Dx())
	}

	if err := store.Remove("stage.jpg"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still present after Remove")
	}
	if err := store.Remove("stage.jpg"); err != nil {
		t.Errorf("removing an absent photo should succeed, got %v", err)
	}
}

func TestDiskStore_PutRejectsGarbage(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "/photos")
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}
	if _, err := store.Put("x.jpg", strings.NewReader("not an image")); err == nil {
		t.Error("expected decode error for non-image upload")
	}
}

func TestDiskStore_PutSanitizesName(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "/photos")
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}

	url, err := store.Put("../../etc/passwd.jpg", encodeTestImage(t, 10, 10))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if strings.Contains(url, "..") {
		t.Errorf("url leaked path traversal: %q", url)
	}
	if _, err := os.Stat(filepath.Join(dir, "passwd.jpg")); err != nil {
		t.Errorf("sanitized file missing: %v", err)
	}
}
