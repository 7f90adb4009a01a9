// Package pages splits a bead grid into printable pages and renders them.
//
// Page 0 is always an overview of the whole grid in its native coordinates.
// The remaining pages tile the grid after it has been remapped into reading
// order, each holding at most maxCells × maxCells beads.
package pages

import (
	"errors"
	"fmt"

	"bead-scheme/internal/grid"
	"bead-scheme/pkg/geometry"
)

// ErrBadPageSize is returned for a non-positive page size.
var ErrBadPageSize = errors.New("cells per page must be positive")

// DefaultMaxCells is the page size used when none is configured.
const DefaultMaxCells = 50

// Header is a labelled row or column index along a page edge.
type Header struct {
	Index int  // absolute index in the page's coordinate space
	Major bool // every 10th index; the others fall on every 5th
}

// Page is one printable cell set.
type Page struct {
	Label    string // "px/py" for tiles, empty for the overview
	Overview bool

	// Window selects the cells of this page: columns (X, X+Width] and
	// rows (Y, Y+Height].
	Window geometry.RectInt
	// Cols and Rows are the drawn size in cells.
	Cols, Rows int

	// Tile is the stagger used when drawing. Rotated pages swap the
	// bead width and height.
	Tile    grid.StitchType
	Rotated bool

	// Cells are keyed by absolute coordinates in the page's space.
	Cells grid.Grid

	ColHeaders []Header
	RowHeaders []Header
}

// Origin returns the coordinate just before the first cell of the page.
func (p Page) Origin() geometry.Coord {
	return geometry.C(p.Window.X, p.Window.Y)
}

// Remap converts a native grid coordinate into print reading order.
// Brick and Peyote grids store beads in a staggered layout; the remap
// pairs every two native lines into one printed line.
func Remap(c geometry.Coord, stitch grid.StitchType) geometry.Coord {
	switch stitch {
	case grid.Square:
		return c
	case grid.Brick:
		return pairLines(geometry.C(c.Row, c.Col))
	case grid.Peyote:
		return pairLines(c)
	default:
		panic(fmt.Sprintf("pages: unknown stitch type %d", int(stitch)))
	}
}

func pairLines(c geometry.Coord) geometry.Coord {
	return geometry.C(
		(c.Col+1)/2,
		(c.Row-1)*2+((c.Col+1)%2+1),
	)
}

// TileType returns the stagger used to draw remapped pages of stitch.
func TileType(stitch grid.StitchType) grid.StitchType {
	switch stitch {
	case grid.Square:
		return grid.Square
	case grid.Brick, grid.Peyote:
		return grid.Brick
	default:
		panic(fmt.Sprintf("pages: unknown stitch type %d", int(stitch)))
	}
}

// Paginate returns the overview followed by the tiled pages of g, ordered
// by page column and then page row. Tiles never overlap: every cell of g
// lands on exactly one of them.
func Paginate(g grid.Grid, cols, rows int, stitch grid.StitchType, maxCells int) ([]Page, error) {
	if maxCells <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrBadPageSize, maxCells)
	}
	tile := TileType(stitch)

	out := []Page{{
		Overview: true,
		Window:   geometry.RectInt{Width: cols, Height: rows},
		Cols:     cols,
		Rows:     rows,
		Tile:     stitch,
		Cells:    g.Clone(),
	}}

	mapped := make(grid.Grid, len(g))
	for k, c := range g {
		mapped[Remap(k, stitch)] = c
	}
	gw, gh := mapped.Extent()
	if gw == 0 || gh == 0 {
		return out, nil
	}

	pagesX := ceilDiv(gw, maxCells)
	pagesY := ceilDiv(gh, maxCells)
	for px := 1; px <= pagesX; px++ {
		for py := 1; py <= pagesY; py++ {
			win := geometry.RectInt{
				X:      (px - 1) * maxCells,
				Y:      (py - 1) * maxCells,
				Width:  maxCells,
				Height: maxCells,
			}
			cells := grid.Grid{}
			for k, c := range mapped {
				if win.ContainsHalfOpen(k.Col, k.Row) {
					cells[k] = c
				}
			}
			out = append(out, Page{
				Label:      fmt.Sprintf("%d/%d", px, py),
				Window:     win,
				Cols:       min(gw, maxCells),
				Rows:       min(gh, maxCells),
				Tile:       tile,
				Rotated:    stitch == grid.Brick,
				Cells:      cells,
				ColHeaders: headers(win.X, min(win.X+win.Width, gw)),
				RowHeaders: headers(win.Y, min(win.Y+win.Height, gh)),
			})
		}
	}
	return out, nil
}

// headers lists the labelled indices in (from, to].
func headers(from, to int) []Header {
	var out []Header
	for i := from + 1; i <= to; i++ {
		if i%5 == 0 {
			out = append(out, Header{Index: i, Major: i%10 == 0})
		}
	}
	return out
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
