// Package palette holds the ordered set of bead colors a pattern may use.
//
// Keys are always dense and zero-based. Key 0 is the background color,
// returned for any sampled color that is mostly transparent.
package palette

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"bead-scheme/pkg/colorutil"

	"github.com/ericpauley/go-quantize/quantize"
	"gonum.org/v1/gonum/floats"
)

var (
	// ErrNonDenseKey is returned when Add would leave a gap in the keys.
	ErrNonDenseKey = errors.New("palette key is not dense")
	// ErrReservedKey is returned when removing the background key.
	ErrReservedKey = errors.New("palette key 0 is reserved")
	// ErrUnknownKey is returned when removing a key that does not exist.
	ErrUnknownKey = errors.New("palette key does not exist")
)

// Store is a dense, zero-based palette. The zero value is empty and
// resolves every color to colorutil.Default.
type Store struct {
	colors []colorutil.RGBA
}

// New returns a palette holding only the background color.
func New() *Store {
	return &Store{colors: []colorutil.RGBA{colorutil.Default}}
}

// FromColors returns a palette with the given colors at keys 0..n-1.
// An empty list yields New().
func FromColors(colors []colorutil.RGBA) *Store {
	if len(colors) == 0 {
		return New()
	}
	return &Store{colors: append([]colorutil.RGBA(nil), colors...)}
}

// FromMap builds a palette from a keyed snapshot, validating density.
func FromMap(m map[int]colorutil.RGBA) (*Store, error) {
	if len(m) == 0 {
		return New(), nil
	}
	colors := make([]colorutil.RGBA, len(m))
	for k, c := range m {
		if k < 0 || k >= len(m) {
			return nil, fmt.Errorf("%w: key %d in palette of %d colors", ErrNonDenseKey, k, len(m))
		}
		colors[k] = c
	}
	return &Store{colors: colors}, nil
}

// Len returns the number of colors.
func (s *Store) Len() int {
	return len(s.colors)
}

// Color returns the color stored at key.
func (s *Store) Color(key int) (colorutil.RGBA, bool) {
	if key < 0 || key >= len(s.colors) {
		return colorutil.RGBA{}, false
	}
	return s.colors[key], true
}

// Background returns the color at key 0.
func (s *Store) Background() colorutil.RGBA {
	if len(s.colors) == 0 {
		return colorutil.Default
	}
	return s.colors[0]
}

// MatchNearest returns the key whose color is closest to c in RGB space.
// Alpha is ignored except that a mostly transparent c always maps to key 0.
// On an exact tie the lowest key wins.
func (s *Store) MatchNearest(c colorutil.RGBA) int {
	if c.Transparent() {
		return 0
	}
	v := c.Vector()
	best, bestDist := 0, math.Inf(1)
	for k, pc := range s.colors {
		if d := floats.Distance(v, pc.Vector(), 2); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

// Resolve returns the palette color for a sampled color.
func (s *Store) Resolve(c colorutil.RGBA) colorutil.RGBA {
	if len(s.colors) == 0 {
		return colorutil.Default
	}
	return s.colors[s.MatchNearest(c)]
}

// KeyOf returns the lowest key holding c, or -1.
func (s *Store) KeyOf(c colorutil.RGBA) int {
	for k, pc := range s.colors {
		if pc == c {
			return k
		}
	}
	return -1
}

// Add stores c at key. Key may overwrite an existing entry or be exactly
// one past the last key; anything else would break density.
func (s *Store) Add(key int, c colorutil.RGBA) error {
	switch {
	case key >= 0 && key < len(s.colors):
		s.colors[key] = c
	case key == len(s.colors):
		s.colors = append(s.colors, c)
	default:
		return fmt.Errorf("%w: add at %d, next is %d", ErrNonDenseKey, key, len(s.colors))
	}
	return nil
}

// Append adds c at the next key and returns it.
func (s *Store) Append(c colorutil.RGBA) int {
	s.colors = append(s.colors, c)
	return len(s.colors) - 1
}

// Remove deletes key and shifts every later key down by one.
func (s *Store) Remove(key int) error {
	if key == 0 {
		return ErrReservedKey
	}
	if key < 0 || key >= len(s.colors) {
		return fmt.Errorf("%w: %d", ErrUnknownKey, key)
	}
	s.colors = append(s.colors[:key], s.colors[key+1:]...)
	return nil
}

// Snapshot returns a copy of the palette keyed by position.
func (s *Store) Snapshot() map[int]colorutil.RGBA {
	m := make(map[int]colorutil.RGBA, len(s.colors))
	for k, c := range s.colors {
		m[k] = c
	}
	return m
}

// Colors returns a copy of the colors in key order.
func (s *Store) Colors() []colorutil.RGBA {
	return append([]colorutil.RGBA(nil), s.colors...)
}

// Clone returns an independent copy.
func (s *Store) Clone() *Store {
	return &Store{colors: s.Colors()}
}

// Suggest proposes up to n opaque colors for img using median-cut
// quantization, most frequent first.
func Suggest(img image.Image, n int) []colorutil.RGBA {
	if img == nil || n <= 0 {
		return nil
	}
	q := quantize.MedianCutQuantizer{AddTransparent: false}
	p := q.Quantize(make(color.Palette, 0, n), img)
	if len(p) == 0 {
		return nil
	}

	weights := make([]int, len(p))
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			weights[p.Index(img.At(x, y))]++
		}
	}

	idx := make([]int, len(p))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return weights[idx[i]] > weights[idx[j]] })

	out := make([]colorutil.RGBA, 0, len(p))
	seen := make(map[colorutil.RGBA]bool)
	for _, i := range idx {
		c := colorutil.FromColor(p[i])
		c.A = 1
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
