// Package pattern owns the authoritative bead grid and decides, cell by
// cell, whether a color comes from sampling or from a manual override.
package pattern

import (
	"errors"
	"fmt"
	"image"

	"bead-scheme/internal/grid"
	"bead-scheme/internal/palette"
	"bead-scheme/internal/sampler"
	"bead-scheme/pkg/colorutil"
	"bead-scheme/pkg/geometry"
)

// ErrUnknownCell is returned when editing a coordinate outside the grid.
var ErrUnknownCell = errors.New("cell is not part of the grid")

// State tells whether the grid is purely derived or holds manual edits.
type State int

const (
	Free  State = iota // every cell derived from sampling and matching
	Fixed              // at least one cell holds a manual override
)

// Persisted names, kept compatible with existing scheme files.
const (
	freeText  = "generated"
	fixedText = "modified"
)

func (s State) String() string {
	switch s {
	case Free:
		return "free"
	case Fixed:
		return "fixed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	switch s {
	case Free:
		return []byte(freeText), nil
	case Fixed:
		return []byte(fixedText), nil
	}
	return nil, fmt.Errorf("unknown grid state %d", int(s))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case freeText, "free", "":
		*s = Free
	case fixedText, "fixed":
		*s = Fixed
	default:
		return fmt.Errorf("unknown grid state %q", text)
	}
	return nil
}

// Input is everything a recomputation depends on.
type Input struct {
	Image   image.Image
	Cols    int
	Rows    int
	Stitch  grid.StitchType
	Palette *palette.Store
}

// Stats counts sampling outcomes of one recomputation.
type Stats struct {
	Sampled     int
	Empty       int
	OutOfBounds int
	Pinned      int
}

// Machine is the single writer of the bead grid.
type Machine struct {
	state State
	cells grid.Grid

	// pinAll treats every coordinate as pinned. Set when restoring a
	// modified grid saved without per-cell pins.
	pinAll bool
}

// NewMachine returns a machine in the Free state with an empty grid.
func NewMachine() *Machine {
	return &Machine{state: Free, cells: grid.Grid{}}
}

// State returns the current grid state.
func (m *Machine) State() State {
	return m.state
}

// Grid returns a copy of the current grid.
func (m *Machine) Grid() grid.Grid {
	return m.cells.Clone()
}

// Cell returns the cell at c.
func (m *Machine) Cell(c geometry.Coord) (grid.Cell, bool) {
	cell, ok := m.cells[c]
	return cell, ok
}

// Invalidate records a structural change. The next recomputation derives
// every cell afresh and drops manual pins.
func (m *Machine) Invalidate() {
	m.state = Free
	m.pinAll = false
}

// SetCell pins c to a manual color and moves the grid to Fixed. The pin
// survives recomputation until the next Invalidate.
func (m *Machine) SetCell(c geometry.Coord, color colorutil.RGBA) error {
	cell, ok := m.cells[c]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownCell, c)
	}
	cell.Resolved = color
	cell.Fixed = true
	m.cells[c] = cell
	m.state = Fixed
	return nil
}

// Restore replaces the grid and state with a saved snapshot.
func (m *Machine) Restore(state State, cells grid.Grid) {
	restored := cells.Clone()
	if restored == nil {
		restored = grid.Grid{}
	}
	m.pinAll = false
	if state == Fixed && !anyPinned(restored) {
		m.pinAll = true
		for k, c := range restored {
			c.Fixed = true
			restored[k] = c
		}
	}
	m.state = state
	m.cells = restored
}

// Recompute rebuilds the whole grid from in and swaps it in as the new
// backing store. On error the previous grid is kept.
func (m *Machine) Recompute(in Input) (Stats, error) {
	var stats Stats
	if in.Palette == nil {
		return stats, errors.New("recompute: no palette")
	}
	var size geometry.Size
	if in.Image != nil {
		b := in.Image.Bounds()
		size = geometry.NewSize(float64(b.Dx()), float64(b.Dy()))
	}
	fps, err := grid.Layout(size, in.Cols, in.Rows, in.Stitch)
	if err != nil {
		return stats, fmt.Errorf("recompute: %w", err)
	}

	next := make(grid.Grid, len(fps))
	for _, fp := range fps {
		res := sampler.Classify(in.Image, fp.Offset, fp.Size)
		switch res.Outcome {
		case sampler.Sampled:
			stats.Sampled++
		case sampler.Empty:
			stats.Empty++
		case sampler.OutOfBounds:
			stats.OutOfBounds++
		}

		cell := grid.Cell{Offset: fp.Offset, Size: fp.Size, Color: res.Color}
		if resolved, pinned := m.pinned(fp.Coord); pinned {
			cell.Resolved = resolved
			cell.Fixed = true
			stats.Pinned++
		} else {
			cell.Resolved = in.Palette.Resolve(res.Color)
		}
		next[fp.Coord] = cell
	}

	m.cells = next
	return stats, nil
}

// pinned reports the stored color for c when c must not be re-matched.
func (m *Machine) pinned(c geometry.Coord) (colorutil.RGBA, bool) {
	if m.state != Fixed {
		return colorutil.RGBA{}, false
	}
	prev, ok := m.cells[c]
	switch {
	case ok && prev.Fixed:
		return prev.Resolved, true
	case m.pinAll:
		return colorutil.Default, true
	}
	return colorutil.RGBA{}, false
}

func anyPinned(g grid.Grid) bool {
	for _, c := range g {
		if c.Fixed {
			return true
		}
	}
	return false
}
