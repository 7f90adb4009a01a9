package prefs

import (
	"errors"
	"fmt"

	"bead-scheme/internal/grid"
	"bead-scheme/pkg/colorutil"
)

// Preference keys.
const (
	KeyStitchType      = "stitch_type"
	KeyBeadRatio       = "bead_ratio"
	KeyGridWidth       = "grid_width"
	KeyMaxCellsPerPage = "max_cells_per_page"
	KeyCellSize        = "cell_size"
	KeyPalette         = "palette"
)

// Config is the typed view of the preferences the pattern engine uses.
type Config struct {
	Stitch          grid.StitchType
	BeadRatio       int
	GridWidth       int
	MaxCellsPerPage int
	CellSize        int // printed pixels per bead
	Palette         []colorutil.RGBA
}

// Defaults returns the configuration used when nothing is stored.
func Defaults() Config {
	return Config{
		Stitch:          grid.Square,
		BeadRatio:       grid.RatioOval,
		GridWidth:       100,
		MaxCellsPerPage: 50,
		CellSize:        20,
		Palette:         []colorutil.RGBA{colorutil.Default},
	}
}

// Validate reports the first value the engine cannot work with.
func (c Config) Validate() error {
	var errs []error
	if !c.Stitch.Known() {
		errs = append(errs, fmt.Errorf("unknown stitch type %d", int(c.Stitch)))
	}
	if c.GridWidth < 2 {
		errs = append(errs, fmt.Errorf("grid width %d: %w", c.GridWidth, grid.ErrDegenerateDimension))
	}
	if c.BeadRatio <= 0 {
		errs = append(errs, fmt.Errorf("bead ratio %d: %w", c.BeadRatio, grid.ErrBadRatio))
	}
	if c.MaxCellsPerPage <= 0 {
		errs = append(errs, fmt.Errorf("max cells per page must be positive, got %d", c.MaxCellsPerPage))
	}
	if c.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("cell size must be positive, got %d", c.CellSize))
	}
	return errors.Join(errs...)
}

// Config reads the typed configuration. Missing or unparsable values
// fall back to Defaults.
func (p *Prefs) Config() Config {
	c := Defaults()
	if s := p.String(KeyStitchType); s != "" {
		if t, err := grid.ParseStitchType(s); err == nil {
			c.Stitch = t
		}
	}
	c.BeadRatio = p.IntWithFallback(KeyBeadRatio, c.BeadRatio)
	c.GridWidth = p.IntWithFallback(KeyGridWidth, c.GridWidth)
	c.MaxCellsPerPage = p.IntWithFallback(KeyMaxCellsPerPage, c.MaxCellsPerPage)
	c.CellSize = p.IntWithFallback(KeyCellSize, c.CellSize)

	if !p.Has(KeyPalette) {
		return c
	}
	var colors []colorutil.RGBA
	for _, hex := range p.Strings(KeyPalette) {
		col, err := colorutil.ParseHex(hex)
		if err != nil {
			colors = nil
			break
		}
		colors = append(colors, col)
	}
	if len(colors) > 0 {
		c.Palette = colors
	}
	return c
}

// SetConfig stores every field of c.
func (p *Prefs) SetConfig(c Config) {
	p.SetString(KeyStitchType, c.Stitch.String())
	p.SetInt(KeyBeadRatio, c.BeadRatio)
	p.SetInt(KeyGridWidth, c.GridWidth)
	p.SetInt(KeyMaxCellsPerPage, c.MaxCellsPerPage)
	p.SetInt(KeyCellSize, c.CellSize)
	hex := make([]string, len(c.Palette))
	for i, col := range c.Palette {
		hex[i] = col.Hex()
	}
	p.SetStrings(KeyPalette, hex)
}
