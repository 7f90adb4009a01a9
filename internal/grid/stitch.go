package grid

import (
	"fmt"
	"strings"
)

// StitchType is the tiling pattern that decides how cells are staggered.
type StitchType int

const (
	Square StitchType = iota
	Brick             // even rows shifted right by half a cell
	Peyote            // even columns shifted down by half a cell
)

// StitchTypes lists every known stitch type in display order.
func StitchTypes() []StitchType {
	return []StitchType{Square, Peyote, Brick}
}

func (t StitchType) String() string {
	switch t {
	case Square:
		return "Square"
	case Brick:
		return "Brick"
	case Peyote:
		return "Peyote"
	default:
		return fmt.Sprintf("StitchType(%d)", int(t))
	}
}

// Known reports whether t is one of the defined stitch types.
func (t StitchType) Known() bool {
	return t == Square || t == Brick || t == Peyote
}

// mustKnown panics on a corrupted stitch type. Values only come from
// the constants above or ParseStitchType, so anything else is a bug.
func (t StitchType) mustKnown() {
	if !t.Known() {
		panic(fmt.Sprintf("grid: unknown stitch type %d", int(t)))
	}
}

// ParseStitchType parses a stitch type name, case-insensitively.
func ParseStitchType(s string) (StitchType, error) {
	for _, t := range StitchTypes() {
		if strings.EqualFold(strings.TrimSpace(s), t.String()) {
			return t, nil
		}
	}
	return Square, fmt.Errorf("unknown stitch type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t StitchType) MarshalText() ([]byte, error) {
	if !t.Known() {
		return nil, fmt.Errorf("unknown stitch type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *StitchType) UnmarshalText(text []byte) error {
	parsed, err := ParseStitchType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Bead ratios encode height:width as ratio:RatioBase.
const (
	RatioBase   = 2
	RatioSquare = 2 // 1:1 bead
	RatioOval   = 3 // 3:2 bead
)
