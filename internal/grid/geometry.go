package grid

import (
	"errors"
	"fmt"
	"math"

	"bead-scheme/pkg/geometry"
)

var (
	// ErrDegenerateDimension is returned for grid dimensions below 2.
	ErrDegenerateDimension = errors.New("grid dimension must be at least 2")
	// ErrBadRatio is returned for a non-positive bead ratio.
	ErrBadRatio = errors.New("bead ratio must be positive")
	// ErrEmptyImage is returned when solving dimensions for a zero-sized image.
	ErrEmptyImage = errors.New("image has no area")
)

// Footprint is the area of the image covered by one cell.
type Footprint struct {
	Coord  geometry.Coord
	Offset geometry.Point2D
	Size   geometry.Size
}

// Steps returns the distance between neighbouring cell origins along each
// axis. Consecutive cells overlap slightly so that the first starts at the
// left/top edge and the last ends at the right/bottom edge.
func Steps(img geometry.Size, cols, rows int) (geometry.Size, error) {
	if cols < 2 || rows < 2 {
		return geometry.Size{}, fmt.Errorf("%w: got %dx%d", ErrDegenerateDimension, cols, rows)
	}
	return geometry.Size{
		Width:  axisStep(img.Width, cols),
		Height: axisStep(img.Height, rows),
	}, nil
}

func axisStep(size float64, count int) float64 {
	n := float64(count)
	return (size - size/n) / (n - 1)
}

// Layout computes the footprint of every cell of a cols×rows grid over an
// image of the given size. Footprints are returned column-major.
func Layout(img geometry.Size, cols, rows int, stitch StitchType) ([]Footprint, error) {
	stitch.mustKnown()
	step, err := Steps(img, cols, rows)
	if err != nil {
		return nil, err
	}

	out := make([]Footprint, 0, cols*rows)
	for i := 1; i <= cols; i++ {
		for j := 1; j <= rows; j++ {
			out = append(out, Footprint{
				Coord:  geometry.C(i, j),
				Offset: CellOffset(img, step, i, j, stitch),
				Size:   step,
			})
		}
	}
	return out, nil
}

// CellOffset returns the offset of cell (i, j) relative to the image center.
func CellOffset(img geometry.Size, step geometry.Size, i, j int, stitch StitchType) geometry.Point2D {
	p := geometry.Point2D{
		X: -img.Width/2 + step.Width*float64(i-1),
		Y: -img.Height/2 + step.Height*float64(j-1),
	}
	switch stitch {
	case Square:
	case Peyote:
		if i%2 == 0 {
			p.Y += step.Height / 2
		}
	case Brick:
		if j%2 == 0 {
			p.X += step.Width / 2
		}
	default:
		stitch.mustKnown()
	}
	return p
}

// SolveRows derives the row count that keeps beads of the given ratio
// correctly proportioned when the grid has cols columns.
func SolveRows(img geometry.Size, cols, ratio int, stitch StitchType) (int, error) {
	stitch.mustKnown()
	if err := checkSolve(img, cols, ratio); err != nil {
		return 0, err
	}
	wStep := axisStep(img.Width, cols)
	var hStep float64
	switch stitch {
	case Square, Peyote:
		hStep = wStep * float64(ratio) / RatioBase
	case Brick:
		hStep = wStep * RatioBase / float64(ratio)
	}
	return solvedCount(img.Height, hStep), nil
}

// SolveCols derives the column count that keeps beads of the given ratio
// correctly proportioned when the grid has rows rows.
func SolveCols(img geometry.Size, rows, ratio int, stitch StitchType) (int, error) {
	stitch.mustKnown()
	if err := checkSolve(img, rows, ratio); err != nil {
		return 0, err
	}
	hStep := axisStep(img.Height, rows)
	var wStep float64
	switch stitch {
	case Square, Peyote:
		wStep = hStep * RatioBase / float64(ratio)
	case Brick:
		wStep = hStep * float64(ratio) / RatioBase
	}
	return solvedCount(img.Width, wStep), nil
}

func checkSolve(img geometry.Size, fixed, ratio int) error {
	if fixed < 2 {
		return fmt.Errorf("%w: got %d", ErrDegenerateDimension, fixed)
	}
	if ratio <= 0 {
		return fmt.Errorf("%w: got %d", ErrBadRatio, ratio)
	}
	if img.Width <= 0 || img.Height <= 0 {
		return ErrEmptyImage
	}
	return nil
}

// solvedCount never drops below 2 so the result stays a valid dimension.
func solvedCount(axis, step float64) int {
	return max(int(math.Floor(axis/step))+1, 2)
}
