// Package colorutil provides shared color utilities for the bead scheme application.
package colorutil

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBA is a non-premultiplied color with every channel normalized to 0-1.
type RGBA struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Common colors used throughout the application.
var (
	Black       = RGBA{R: 0, G: 0, B: 0, A: 1}
	White       = RGBA{R: 1, G: 1, B: 1, A: 1}
	Transparent = RGBA{}

	// Default is returned wherever a cell has no sampled or stored color.
	Default = White
)

// Overlay colors for printed pages.
var (
	Gray      = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	LightGray = color.NRGBA{R: 211, G: 211, B: 211, A: 255}
	DarkGray  = color.NRGBA{R: 64, G: 64, B: 64, A: 255}
)

// FromBytes builds an RGBA from 0-255 channel values.
func FromBytes(r, g, b, a uint8) RGBA {
	return RGBA{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}
}

// FromColor converts any color.Color to a normalized non-premultiplied RGBA.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return FromBytes(n.R, n.G, n.B, n.A)
}

// NRGBA returns the color rounded to 8 bits per channel.
func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

// RGBA implements color.Color.
func (c RGBA) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// Transparent reports whether the color counts as background rather than a bead.
func (c RGBA) Transparent() bool {
	return c.A < 0.5
}

// Colorful returns the RGB part as a go-colorful color.
func (c RGBA) Colorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

// Vector returns the RGB channels, alpha excluded.
func (c RGBA) Vector() []float64 {
	return []float64{c.R, c.G, c.B}
}

// Hex formats the RGB part as #rrggbb.
func (c RGBA) Hex() string {
	return c.Colorful().Clamped().Hex()
}

func (c RGBA) String() string {
	if c.A >= 1 {
		return c.Hex()
	}
	return fmt.Sprintf("%s@%.2f", c.Hex(), c.A)
}

// ParseHex parses #rrggbb or #rgb into an opaque color.
// The result equals FromBytes for the same channel bytes.
func ParseHex(s string) (RGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	cf, err := colorful.Hex(s)
	if err != nil {
		return RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	// Snap to 8 bits so parsed colors compare equal to sampled ones.
	r, g, b := cf.Clamped().RGB255()
	return FromBytes(r, g, b, 255), nil
}

// ParseHexList parses a comma separated list of hex colors.
func ParseHexList(s string) ([]RGBA, error) {
	var out []RGBA
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseHex(part)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Luminance returns the relative luminance of the color.
func (c RGBA) Luminance() float64 {
	r, g, b := c.Colorful().Clamped().LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// ContrastingBW returns black or white, whichever reads better on c.
func ContrastingBW(c RGBA) RGBA {
	l := c.Luminance()
	withBlack := (l + 0.05) / 0.05
	withWhite := 1.05 / (l + 0.05)
	if withBlack > withWhite {
		return Black
	}
	return White
}

func to8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
