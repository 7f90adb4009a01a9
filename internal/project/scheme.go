// Package project provides scheme file handling and persistence.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bead-scheme/internal/grid"
	"bead-scheme/internal/palette"
	"bead-scheme/internal/pattern"
	"bead-scheme/pkg/colorutil"
	"bead-scheme/pkg/geometry"
)

// Extension is the file extension of scheme files.
const Extension = ".jsonscheme"

// CurrentVersion is written into every saved scheme.
const CurrentVersion = 1

// ErrInvalidScheme is returned when a scheme fails validation.
var ErrInvalidScheme = errors.New("invalid scheme")

// Scheme is everything needed to resume work on a pattern (.jsonscheme).
type Scheme struct {
	Version  int       `json:"version,omitempty"`
	Modified time.Time `json:"modified"`

	// Source image, PNG encoded. encoding/json stores []byte as base64.
	Image         []byte `json:"image_bitmap"`
	ImageFileName string `json:"image_file_name"`

	Brightness float64 `json:"brightness"`
	Saturation float64 `json:"saturation"`
	Contrast   float64 `json:"contrast"`

	// Viewport zoom and pan, kept for viewers.
	Scale  float64          `json:"scale"`
	Offset geometry.Point2D `json:"offset"`

	Palette    map[int]colorutil.RGBA `json:"palette"`
	BeadRatio  int                    `json:"selected_bead_ratio"`
	GridWidth  int                    `json:"grid_width"`
	GridHeight int                    `json:"grid_height"`
	GridState  pattern.State          `json:"grid_state"`
	StitchType grid.StitchType        `json:"stitch_type"`
	Grid       grid.Grid              `json:"grid"`
}

// Load loads a scheme from a .jsonscheme file.
func Load(path string) (*Scheme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// Decode parses and validates a scheme. Unknown fields are ignored.
func Decode(data []byte) (*Scheme, error) {
	var s Scheme
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScheme, err)
	}
	if s.Scale == 0 {
		s.Scale = 1
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Encode returns the indented JSON form of the scheme.
func (s *Scheme) Encode() ([]byte, error) {
	if s.Version == 0 {
		s.Version = CurrentVersion
	}
	return json.MarshalIndent(s, "", "  ")
}

// Save saves the scheme to a file.
func (s *Scheme) Save(path string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.Modified = time.Now()

	data, err := s.Encode()
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the invariants a restored scheme relies on.
func (s *Scheme) Validate() error {
	switch {
	case len(s.Image) == 0:
		return fmt.Errorf("%w: no image", ErrInvalidScheme)
	case s.GridWidth < 2 || s.GridHeight < 2:
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidScheme, s.GridWidth, s.GridHeight)
	case s.BeadRatio <= 0:
		return fmt.Errorf("%w: bead ratio %d", ErrInvalidScheme, s.BeadRatio)
	case !s.StitchType.Known():
		return fmt.Errorf("%w: stitch type %d", ErrInvalidScheme, int(s.StitchType))
	case len(s.Palette) == 0:
		return fmt.Errorf("%w: empty palette", ErrInvalidScheme)
	}
	if _, err := palette.FromMap(s.Palette); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScheme, err)
	}
	for k := range s.Grid {
		if k.Col < 1 || k.Row < 1 {
			return fmt.Errorf("%w: cell %v", ErrInvalidScheme, k)
		}
	}
	return nil
}

// HasExtension reports whether path names a scheme file.
func HasExtension(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Extension)
}

// WithExtension appends the scheme extension unless path already has it.
func WithExtension(path string) string {
	if HasExtension(path) {
		return path
	}
	return path + Extension
}
