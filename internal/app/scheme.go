package app

import (
	"fmt"
	"log"

	"bead-scheme/internal/image"
	"bead-scheme/internal/palette"
	"bead-scheme/internal/project"
	"bead-scheme/pkg/geometry"
)

// Export captures the state as a scheme snapshot.
func (s *State) Export() (*project.Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.source == nil {
		return nil, ErrNoImage
	}
	data, err := s.source.EncodePNG()
	if err != nil {
		return nil, err
	}
	return &project.Scheme{
		Version:       project.CurrentVersion,
		Image:         data,
		ImageFileName: s.source.Name,
		Brightness:    s.adjust.Brightness,
		Saturation:    s.adjust.Saturation,
		Contrast:      s.adjust.Contrast,
		Scale:         s.scale,
		Offset:        s.offset,
		Palette:       s.palette.Snapshot(),
		BeadRatio:     s.beadRatio,
		GridWidth:     s.cols,
		GridHeight:    s.rows,
		GridState:     s.machine.State(),
		StitchType:    s.stitch,
		Grid:          s.machine.Grid(),
	}, nil
}

// Restore replaces the whole state with a scheme snapshot. Saved cells
// of a modified grid keep their colors; the rest is sampled again.
func (s *State) Restore(sc *project.Scheme) error {
	return s.restore(sc, "")
}

// restore loads sc and records path as the scheme file before any event
// fires.
func (s *State) restore(sc *project.Scheme, path string) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	layer, err := image.Decode(sc.Image)
	if err != nil {
		return fmt.Errorf("failed to restore image: %w", err)
	}
	layer.Name = sc.ImageFileName
	pal, err := palette.FromMap(sc.Palette)
	if err != nil {
		return fmt.Errorf("failed to restore palette: %w", err)
	}
	adj := image.Adjustments{
		Brightness: sc.Brightness,
		Saturation: sc.Saturation,
		Contrast:   sc.Contrast,
	}.Clamp()

	s.mu.Lock()
	s.resetLocked()
	s.source = layer
	s.adjust = adj
	s.adjusted = layer.Adjusted(adj)
	s.scale = sc.Scale
	s.offset = sc.Offset
	s.palette = pal
	s.stitch = sc.StitchType
	s.beadRatio = sc.BeadRatio
	s.cols = sc.GridWidth
	s.rows = sc.GridHeight
	s.machine.Restore(sc.GridState, sc.Grid)
	err = s.recomputeLocked()
	if err != nil {
		s.resetLocked()
	} else {
		s.schemePath = path
	}
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to restore grid: %w", err)
	}

	s.Emit(EventSchemeRestored, sc)
	s.Emit(EventImageLoaded, layer)
	s.Emit(EventPaletteChanged, nil)
	s.Emit(EventGridChanged, nil)
	return nil
}

// LoadScheme reads and restores the scheme file at path.
func (s *State) LoadScheme(path string) error {
	sc, err := project.Load(path)
	if err != nil {
		return err
	}
	if err := s.restore(sc, path); err != nil {
		return err
	}
	log.Printf("Loaded scheme %s: %dx%d %v, %d colors", path, sc.GridWidth, sc.GridHeight, sc.StitchType, len(sc.Palette))
	return nil
}

// SaveScheme writes the state to path, adding the scheme extension when
// it is missing.
func (s *State) SaveScheme(path string) error {
	sc, err := s.Export()
	if err != nil {
		return err
	}
	path = project.WithExtension(path)
	if err := sc.Save(path); err != nil {
		return err
	}

	s.mu.Lock()
	s.schemePath = path
	s.modified = false
	s.mu.Unlock()

	s.Emit(EventSchemeSaved, path)
	return nil
}

// Viewport returns the persisted image zoom and pan.
func (s *State) Viewport() (scale float64, offset geometry.Point2D) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scale, s.offset
}

// SetViewport stores the image zoom and pan. The grid is not affected.
func (s *State) SetViewport(scale float64, offset geometry.Point2D) {
	if scale <= 0 {
		scale = 1
	}
	s.mu.Lock()
	s.scale = scale
	s.offset = offset
	s.mu.Unlock()
}
