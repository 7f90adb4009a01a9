// Package sampler averages the image pixels under a cell footprint.
package sampler

import (
	"image"
	"image/color"
	"math"

	"bead-scheme/pkg/colorutil"
	"bead-scheme/pkg/geometry"
)

// Outcome classifies a sampling attempt.
type Outcome int

const (
	Sampled     Outcome = iota // at least one pixel averaged
	Empty                      // no image, or the footprint covers no pixel
	OutOfBounds                // footprint lies outside the image or is not finite
)

func (o Outcome) String() string {
	switch o {
	case Sampled:
		return "sampled"
	case Empty:
		return "empty"
	case OutOfBounds:
		return "out of bounds"
	default:
		return "unknown"
	}
}

// Result is the color and outcome of one sampling attempt.
// Color is colorutil.Default unless Outcome is Sampled.
type Result struct {
	Color   colorutil.RGBA
	Outcome Outcome
}

// Sample returns the average color under a footprint, or the default
// color when nothing could be sampled.
func Sample(img image.Image, offset geometry.Point2D, size geometry.Size) colorutil.RGBA {
	return Classify(img, offset, size).Color
}

// Classify averages the pixels under a footprint given as an offset from
// the image center. The pixel box is [w/2+x, w/2+x+width) × [h/2+y, h/2+y+height)
// clipped to the image.
func Classify(img image.Image, offset geometry.Point2D, size geometry.Size) Result {
	if img == nil {
		return Result{Color: colorutil.Default, Outcome: Empty}
	}
	if !finite(offset.X, offset.Y, size.Width, size.Height) {
		return Result{Color: colorutil.Default, Outcome: OutOfBounds}
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	x0 := float64(w/2) + offset.X
	y0 := float64(h/2) + offset.Y
	box := image.Rect(
		int(x0), int(y0),
		int(x0+size.Width), int(y0+size.Height),
	)
	if box.Empty() {
		return Result{Color: colorutil.Default, Outcome: Empty}
	}

	clipped := box.Intersect(image.Rect(0, 0, w, h))
	if clipped.Empty() {
		return Result{Color: colorutil.Default, Outcome: OutOfBounds}
	}

	var sum [4]uint64
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		for x := clipped.Min.X; x < clipped.Max.X; x++ {
			px := pixel(img, b.Min.X+x, b.Min.Y+y)
			sum[0] += uint64(px.R)
			sum[1] += uint64(px.G)
			sum[2] += uint64(px.B)
			sum[3] += uint64(px.A)
		}
	}
	n := uint64(clipped.Dx() * clipped.Dy())
	return Result{
		Color: colorutil.FromBytes(
			roundDiv(sum[0], n),
			roundDiv(sum[1], n),
			roundDiv(sum[2], n),
			roundDiv(sum[3], n),
		),
		Outcome: Sampled,
	}
}

func pixel(img image.Image, x, y int) color.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n.NRGBAAt(x, y)
	}
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func roundDiv(sum, n uint64) uint8 {
	return uint8((sum + n/2) / n)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
