// Package grid models the bead grid: stitch types, cells and the geometry
// that lays cell footprints over an image.
package grid

import (
	"sort"

	"bead-scheme/pkg/colorutil"
	"bead-scheme/pkg/geometry"
)

// Cell is one bead of the pattern.
type Cell struct {
	Offset geometry.Point2D `json:"offset"` // relative to the image center
	Size   geometry.Size    `json:"size"`

	// Color is the raw sampled color; Resolved is the palette color shown.
	Color    colorutil.RGBA `json:"color"`
	Resolved colorutil.RGBA `json:"palette_color"`

	// Fixed marks a manual override that recomputation must keep.
	Fixed bool `json:"fixed,omitempty"`
}

// Grid maps 1-based (col, row) coordinates to cells.
type Grid map[geometry.Coord]Cell

// Clone returns an independent copy of g.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for k, v := range g {
		out[k] = v
	}
	return out
}

// Coords returns the keys of g in column-major order.
func (g Grid) Coords() []geometry.Coord {
	keys := make([]geometry.Coord, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Extent returns the largest column and row present.
func (g Grid) Extent() (cols, rows int) {
	for k := range g {
		cols = max(cols, k.Col)
		rows = max(rows, k.Row)
	}
	return cols, rows
}

// Dense reports whether g holds exactly the keys [1..cols] × [1..rows].
func (g Grid) Dense(cols, rows int) bool {
	if len(g) != cols*rows {
		return false
	}
	for k := range g {
		if k.Col < 1 || k.Col > cols || k.Row < 1 || k.Row > rows {
			return false
		}
	}
	return true
}

// Counts returns how many cells resolve to each color.
func (g Grid) Counts() map[colorutil.RGBA]int {
	counts := make(map[colorutil.RGBA]int)
	for _, c := range g {
		counts[c.Resolved]++
	}
	return counts
}
