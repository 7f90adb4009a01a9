// Package image provides source image loading, encoding and adjustment.
package image

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"bead-scheme/pkg/geometry"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Layer is the picture a pattern is traced from.
type Layer struct {
	Path   string      // Original file path, empty when restored from a scheme
	Name   string      // Base file name, kept in scheme files
	Image  image.Image // Source pixels, always *image.NRGBA at origin 0,0
	Format string      // Decoder that read the file
}

// Load reads and decodes the image at path.
func Load(path string) (*Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	layer, err := Decode(data)
	if err != nil {
		return nil, err
	}
	layer.Path = path
	layer.Name = filepath.Base(path)
	return layer, nil
}

// Decode builds a Layer from encoded image bytes.
func Decode(data []byte) (*Layer, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &Layer{Image: normalize(img), Format: format}, nil
}

// New wraps an in-memory image.
func New(name string, img image.Image) *Layer {
	return &Layer{Name: name, Image: normalize(img)}
}

// normalize converts img to the 8-bit non-premultiplied form PNG stores,
// so a layer adjusts and samples identically before and after a save.
func normalize(img image.Image) image.Image {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// EncodePNG returns the layer pixels as PNG bytes.
func (l *Layer) EncodePNG() ([]byte, error) {
	if l == nil || l.Image == nil {
		return nil, fmt.Errorf("no image to encode")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, l.Image); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Width returns the image width in pixels.
func (l *Layer) Width() int {
	if l == nil || l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (l *Layer) Height() int {
	if l == nil || l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dy()
}

// Size returns the image dimensions.
func (l *Layer) Size() geometry.Size {
	return geometry.Size{
		Width:  float64(l.Width()),
		Height: float64(l.Height()),
	}
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tiff", ".tif"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
