// Package app provides application state, reactive recomputation, and events.
package app

import (
	"errors"
	"fmt"
	goimage "image"
	"log"
	"sort"
	"sync"

	"bead-scheme/internal/grid"
	"bead-scheme/internal/image"
	"bead-scheme/internal/pages"
	"bead-scheme/internal/palette"
	"bead-scheme/internal/pattern"
	"bead-scheme/internal/prefs"
	"bead-scheme/pkg/colorutil"
	"bead-scheme/pkg/geometry"
)

// ErrNoImage is returned by operations that need a source image.
var ErrNoImage = errors.New("no image loaded")

// State holds the working pattern: source image, adjustments, palette,
// grid configuration and the grid itself. Every mutation recomputes the
// grid before it returns.
type State struct {
	mu sync.RWMutex

	defaults prefs.Config

	// Scheme file
	schemePath string
	modified   bool

	// Images
	source   *image.Layer
	adjusted *image.Layer
	adjust   image.Adjustments

	// Viewport, persisted for viewers
	scale  float64
	offset geometry.Point2D

	// Grid configuration
	palette   *palette.Store
	stitch    grid.StitchType
	beadRatio int
	cols      int
	rows      int

	machine *pattern.Machine
	stats   pattern.Stats

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventImageLoaded EventType = iota
	EventGridChanged
	EventPaletteChanged
	EventSchemeRestored
	EventSchemeSaved
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state with the built-in defaults.
func NewState() *State {
	return NewStateWithConfig(prefs.Defaults())
}

// NewStateWithConfig creates a new application state whose Reset
// returns to cfg.
func NewStateWithConfig(cfg prefs.Config) *State {
	s := &State{
		defaults:  cfg,
		listeners: make(map[EventType][]EventListener),
	}
	s.resetLocked()
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Reset drops the image and grid and restores the configured defaults.
func (s *State) Reset() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	s.Emit(EventGridChanged, nil)
	s.Emit(EventPaletteChanged, nil)
}

func (s *State) resetLocked() {
	cfg := s.defaults
	s.schemePath = ""
	s.modified = false
	s.source = nil
	s.adjusted = nil
	s.adjust = image.DefaultAdjustments()
	s.scale = 1
	s.offset = geometry.Point2D{}
	s.palette = palette.FromColors(cfg.Palette)
	s.stitch = cfg.Stitch
	s.beadRatio = cfg.BeadRatio
	s.cols = cfg.GridWidth
	s.rows = cfg.GridWidth
	s.machine = pattern.NewMachine()
	s.stats = pattern.Stats{}
}

// LoadImage loads the image at path and starts a new pattern from it.
func (s *State) LoadImage(path string) error {
	layer, err := image.Load(path)
	if err != nil {
		return err
	}
	return s.SetImage(layer)
}

// SetImage resets the state and starts a new pattern from layer. The
// grid height is derived from the configured width and bead ratio.
func (s *State) SetImage(layer *image.Layer) error {
	if layer == nil || layer.Image == nil {
		return ErrNoImage
	}
	s.mu.Lock()
	s.resetLocked()
	s.source = layer
	s.adjusted = layer.Adjusted(s.adjust)
	err := s.deriveRowsLocked()
	if err == nil {
		err = s.recomputeLocked()
	}
	if err != nil {
		s.resetLocked()
	}
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to start pattern: %w", err)
	}

	s.Emit(EventImageLoaded, layer)
	s.Emit(EventGridChanged, nil)
	return nil
}

// SetAdjustments changes the tone corrections. Manual edits survive.
func (s *State) SetAdjustments(a image.Adjustments) error {
	return s.mutate(func() error {
		s.adjust = a.Clamp()
		if s.source != nil {
			s.adjusted = s.source.Adjusted(s.adjust)
		}
		return nil
	}, EventGridChanged)
}

// SetGridWidth sets the column count and derives the row count.
func (s *State) SetGridWidth(n int) error {
	if n < 2 {
		return fmt.Errorf("grid width: %w: got %d", grid.ErrDegenerateDimension, n)
	}
	return s.mutate(func() error {
		s.cols = n
		s.machine.Invalidate()
		return s.deriveRowsLocked()
	}, EventGridChanged)
}

// SetGridHeight sets the row count and derives the column count.
func (s *State) SetGridHeight(n int) error {
	if n < 2 {
		return fmt.Errorf("grid height: %w: got %d", grid.ErrDegenerateDimension, n)
	}
	return s.mutate(func() error {
		s.rows = n
		s.machine.Invalidate()
		return s.deriveColsLocked()
	}, EventGridChanged)
}

// SetStitchType changes the stitch. Brick lays beads sideways, so moving
// to or from Brick keeps the row count and derives the columns; other
// changes keep the columns.
func (s *State) SetStitchType(t grid.StitchType) error {
	if !t.Known() {
		return fmt.Errorf("unknown stitch type %d", int(t))
	}
	return s.mutate(func() error {
		old := s.stitch
		s.stitch = t
		s.machine.Invalidate()
		if old == grid.Brick || t == grid.Brick {
			return s.deriveColsLocked()
		}
		return s.deriveRowsLocked()
	}, EventGridChanged)
}

// SetBeadRatio changes the bead proportions and derives the row count.
// Manual edits survive unless the row count changes.
func (s *State) SetBeadRatio(r int) error {
	if r <= 0 {
		return fmt.Errorf("%w: got %d", grid.ErrBadRatio, r)
	}
	return s.mutate(func() error {
		s.beadRatio = r
		rows := s.rows
		if err := s.deriveRowsLocked(); err != nil {
			return err
		}
		if s.rows != rows {
			s.machine.Invalidate()
		}
		return nil
	}, EventGridChanged)
}

// AddColor stores c at key and re-matches the grid.
func (s *State) AddColor(key int, c colorutil.RGBA) error {
	return s.mutate(func() error {
		return s.palette.Add(key, c)
	}, EventPaletteChanged, EventGridChanged)
}

// RemoveColor deletes key, shifting later keys down, and re-matches the grid.
func (s *State) RemoveColor(key int) error {
	return s.mutate(func() error {
		if err := s.palette.Remove(key); err != nil {
			return err
		}
		log.Printf("Removed palette key %d, %d colors left", key, s.palette.Len())
		return nil
	}, EventPaletteChanged, EventGridChanged)
}

// SetPalette replaces the palette with colors at keys 0..n-1 and
// re-matches the grid. An empty list leaves only the default background.
func (s *State) SetPalette(colors []colorutil.RGBA) error {
	return s.mutate(func() error {
		s.palette = palette.FromColors(colors)
		return nil
	}, EventPaletteChanged, EventGridChanged)
}

// SuggestPalette replaces every color but the background with up to n
// colors proposed from the adjusted image.
func (s *State) SuggestPalette(n int) ([]colorutil.RGBA, error) {
	var suggested []colorutil.RGBA
	err := s.mutate(func() error {
		if s.adjusted == nil {
			return ErrNoImage
		}
		suggested = palette.Suggest(s.adjusted.Image, n)
		next := palette.FromColors([]colorutil.RGBA{s.palette.Background()})
		for _, c := range suggested {
			next.Append(c)
		}
		s.palette = next
		return nil
	}, EventPaletteChanged, EventGridChanged)
	return suggested, err
}

// SetCellColor pins the cell at c to a manual color.
func (s *State) SetCellColor(c geometry.Coord, color colorutil.RGBA) error {
	s.mu.Lock()
	err := s.machine.SetCell(c, color)
	if err == nil {
		s.modified = true
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Emit(EventGridChanged, c)
	return nil
}

// mutate runs fn and recomputes the grid under the lock, then emits events.
// On error the configuration change is kept but nothing is emitted.
func (s *State) mutate(fn func() error, events ...EventType) error {
	s.mu.Lock()
	err := fn()
	if err == nil {
		err = s.recomputeLocked()
	}
	if err == nil {
		s.modified = true
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	for _, e := range events {
		s.Emit(e, nil)
	}
	return nil
}

func (s *State) recomputeLocked() error {
	if s.adjusted == nil {
		return nil
	}
	stats, err := s.machine.Recompute(pattern.Input{
		Image:   s.adjusted.Image,
		Cols:    s.cols,
		Rows:    s.rows,
		Stitch:  s.stitch,
		Palette: s.palette,
	})
	if err != nil {
		return err
	}
	s.stats = stats
	if stats.Empty > 0 || stats.OutOfBounds > 0 {
		log.Printf("Grid %dx%d: %d empty and %d out-of-bounds cells use the default color",
			s.cols, s.rows, stats.Empty, stats.OutOfBounds)
	}
	return nil
}

func (s *State) deriveRowsLocked() error {
	if s.source == nil {
		return nil
	}
	rows, err := grid.SolveRows(s.source.Size(), s.cols, s.beadRatio, s.stitch)
	if err != nil {
		return err
	}
	s.rows = rows
	return nil
}

func (s *State) deriveColsLocked() error {
	if s.source == nil {
		return nil
	}
	cols, err := grid.SolveCols(s.source.Size(), s.rows, s.beadRatio, s.stitch)
	if err != nil {
		return err
	}
	s.cols = cols
	return nil
}

// Grid returns a copy of the current grid.
func (s *State) Grid() grid.Grid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.machine.Grid()
}

// Palette returns a copy of the current palette.
func (s *State) Palette() *palette.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.palette.Clone()
}

// GridState reports whether the grid holds manual edits.
func (s *State) GridState() pattern.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.machine.State()
}

// Dimensions returns the column and row counts.
func (s *State) Dimensions() (cols, rows int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cols, s.rows
}

// StitchType returns the current stitch.
func (s *State) StitchType() grid.StitchType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stitch
}

// BeadRatio returns the current bead ratio.
func (s *State) BeadRatio() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.beadRatio
}

// Adjustments returns the current tone corrections.
func (s *State) Adjustments() image.Adjustments {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adjust
}

// Image returns the source layer, or nil.
func (s *State) Image() *image.Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// AdjustedImage returns the layer the grid is sampled from, or nil.
func (s *State) AdjustedImage() *image.Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adjusted
}

// Stats returns the sampling outcome counts of the last recomputation.
func (s *State) Stats() pattern.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// SchemePath returns the file the scheme was last loaded from or saved to.
func (s *State) SchemePath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schemePath
}

// Modified reports whether the state changed since it was loaded or saved.
func (s *State) Modified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// BeadCount is the number of beads of one color.
type BeadCount struct {
	Key   int // palette key, -1 for colors no longer in the palette
	Color colorutil.RGBA
	Count int
}

// BeadCounts returns the bill of materials of the current grid.
func (s *State) BeadCounts() []BeadCount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CountBeads(s.machine.Grid(), s.palette)
}

// CountBeads tallies g by resolved color, ordered by palette key with
// off-palette colors last.
func CountBeads(g grid.Grid, p *palette.Store) []BeadCount {
	var out []BeadCount
	for c, n := range g.Counts() {
		out = append(out, BeadCount{Key: p.KeyOf(c), Color: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Key < 0) != (b.Key < 0) {
			return b.Key < 0
		}
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		return a.Color.Hex() < b.Color.Hex()
	})
	return out
}

// Pages paginates the current grid.
func (s *State) Pages(maxCells int) ([]pages.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pages.Paginate(s.machine.Grid(), s.cols, s.rows, s.stitch, maxCells)
}

// RenderOptions configures RenderPages.
type RenderOptions struct {
	CellSize   int // printed pixels per bead, 0 for the default
	PrintWidth int // resample pages wider than this, 0 to keep
}

// RenderPages paginates and draws the current grid. Pages and renderer
// come from the same snapshot.
func (s *State) RenderPages(maxCells int, opts RenderOptions) ([]goimage.Image, error) {
	s.mu.RLock()
	g, cols, rows := s.machine.Grid(), s.cols, s.rows
	stitch, ratio, pal := s.stitch, s.beadRatio, s.palette.Clone()
	s.mu.RUnlock()

	ps, err := pages.Paginate(g, cols, rows, stitch, maxCells)
	if err != nil {
		return nil, err
	}
	r, err := pages.NewRenderer(pages.Options{
		CellSize:  opts.CellSize,
		BeadRatio: ratio,
		Stitch:    stitch,
		Palette:   pal,
	})
	if err != nil {
		return nil, err
	}
	out := make([]goimage.Image, 0, len(ps))
	for _, img := range r.RenderAll(ps) {
		out = append(out, pages.ScaleToFit(img, opts.PrintWidth))
	}
	return out, nil
}
