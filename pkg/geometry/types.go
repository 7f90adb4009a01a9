// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"fmt"
	"strconv"
	"strings"
)

// Point2D represents a 2D point with floating-point coordinates.
// Cell offsets are Point2D values relative to the image center.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Size represents a 2D size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewSize creates a new Size.
func NewSize(width, height float64) Size {
	return Size{Width: width, Height: height}
}

// Swap returns the size with width and height exchanged.
func (s Size) Swap() Size {
	return Size{Width: s.Height, Height: s.Width}
}

// Coord is a 1-based (column, row) grid position.
//
// Coord marshals as the text "col,row", so maps keyed by Coord encode
// to JSON objects with composite string keys.
type Coord struct {
	Col int
	Row int
}

// C is shorthand for Coord{Col: col, Row: row}.
func C(col, row int) Coord {
	return Coord{Col: col, Row: row}
}

func (c Coord) String() string {
	return strconv.Itoa(c.Col) + "," + strconv.Itoa(c.Row)
}

// Less orders coordinates column-major.
func (c Coord) Less(other Coord) bool {
	if c.Col != other.Col {
		return c.Col < other.Col
	}
	return c.Row < other.Row
}

// ParseCoord parses the "col,row" form produced by String.
func ParseCoord(s string) (Coord, error) {
	colText, rowText, ok := strings.Cut(s, ",")
	if !ok {
		return Coord{}, fmt.Errorf("invalid coordinate %q: missing comma", s)
	}
	col, err := strconv.Atoi(strings.TrimSpace(colText))
	if err != nil {
		return Coord{}, fmt.Errorf("invalid coordinate %q: %w", s, err)
	}
	row, err := strconv.Atoi(strings.TrimSpace(rowText))
	if err != nil {
		return Coord{}, fmt.Errorf("invalid coordinate %q: %w", s, err)
	}
	return Coord{Col: col, Row: row}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Coord) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Coord) UnmarshalText(text []byte) error {
	parsed, err := ParseCoord(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// RectInt represents a rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ContainsHalfOpen reports whether (x, y) lies in (X, X+Width] × (Y, Y+Height].
// Grid coordinates are 1-based, so a window starting at X=0 covers 1..Width.
func (r RectInt) ContainsHalfOpen(x, y int) bool {
	return x > r.X && x <= r.X+r.Width &&
		y > r.Y && y <= r.Y+r.Height
}
