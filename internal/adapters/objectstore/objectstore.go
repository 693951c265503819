// Package objectstore persists uploaded photos on local disk, downsizing
// them to a web-friendly bound before storage.
package objectstore

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoding for uploads
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// MaxDimension is the longest allowed edge of a stored photo, in pixels.
// Larger uploads are scaled down preserving aspect ratio.
const MaxDimension = 1600

// JPEGQuality is the re-encode quality for stored photos.
const JPEGQuality = 85

// DiskStore writes photos under a base directory and serves them by URL path.
type DiskStore struct {
	baseDir string
	baseURL string
}

// NewDiskStore creates a store rooted at baseDir. Stored files are addressed
// as baseURL + "/" + name.
// PRE: baseDir exists or can be created
func NewDiskStore(baseDir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create photo dir: %w", err)
	}
	return &DiskStore{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put decodes, downsizes and stores the photo, returning its public URL.
// PRE: r contains a JPEG or PNG image
// POST: the stored file is a JPEG no larger than MaxDimension on either edge
func (s *DiskStore) Put(name string, r io.Reader) (string, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	dst := Downsize(src, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	name = sanitizeName(name)
	path := filepath.Join(s.baseDir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write photo: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

// Remove deletes a stored photo. Removing an absent photo is not an error.
func (s *DiskStore) Remove(name string) error {
	err := os.Remove(filepath.Join(s.baseDir, sanitizeName(name)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove photo: %w", err)
	}
	return nil
}

// Dir returns the base directory, for static file serving.
func (s *DiskStore) Dir() string {
	return s.baseDir
}

// Downsize scales src so its longest edge is at most maxDim, preserving the
// aspect ratio. Images already within bounds are returned unchanged.
func Downsize(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}

	var nw, nh int
	if w >= h {
		nw = maxDim
		nh = h * maxDim / w
	} else {
		nh = maxDim
		nw = w * maxDim / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// sanitizeName strips path separators so an upload name cannot escape the
// base directory.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	return strings.ReplaceAll(name, string(os.PathSeparator), "_")
}
