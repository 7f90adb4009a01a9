package pages

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"bead-scheme/internal/grid"
	"bead-scheme/internal/palette"
	"bead-scheme/pkg/colorutil"
	"bead-scheme/pkg/geometry"

	"github.com/google/go-cmp/cmp"
)

var red = colorutil.RGBA{R: 1, A: 1}

func filled(cols, rows int, c colorutil.RGBA) grid.Grid {
	g := make(grid.Grid, cols*rows)
	for i := 1; i <= cols; i++ {
		for j := 1; j <= rows; j++ {
			g[geometry.C(i, j)] = grid.Cell{Resolved: c}
		}
	}
	return g
}

func TestRemapIsInjective(t *testing.T) {
	for _, st := range grid.StitchTypes() {
		seen := make(map[geometry.Coord]geometry.Coord)
		for i := 1; i <= 13; i++ {
			for j := 1; j <= 9; j++ {
				native := geometry.C(i, j)
				m := Remap(native, st)
				if m.Col < 1 || m.Row < 1 {
					t.Errorf("%v: %v remapped to %v", st, native, m)
				}
				if prev, dup := seen[m]; dup {
					t.Errorf("%v: %v and %v both remap to %v", st, prev, native, m)
				}
				seen[m] = native
			}
		}
	}
}

func TestRemapValues(t *testing.T) {
	cases := []struct {
		st   grid.StitchType
		in   geometry.Coord
		want geometry.Coord
	}{
		{grid.Square, geometry.C(7, 3), geometry.C(7, 3)},
		{grid.Peyote, geometry.C(1, 1), geometry.C(1, 1)},
		{grid.Peyote, geometry.C(2, 1), geometry.C(1, 2)},
		{grid.Peyote, geometry.C(3, 2), geometry.C(2, 3)},
		{grid.Brick, geometry.C(1, 1), geometry.C(1, 1)},
		{grid.Brick, geometry.C(1, 2), geometry.C(1, 2)},
		{grid.Brick, geometry.C(2, 3), geometry.C(2, 3)},
		{grid.Brick, geometry.C(5, 4), geometry.C(2, 10)},
	}
	for _, tc := range cases {
		if got := Remap(tc.in, tc.st); got != tc.want {
			t.Errorf("Remap(%v, %v) = %v, want %v", tc.in, tc.st, got, tc.want)
		}
	}
}

func TestRemapUnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Remap accepted an unknown stitch type")
		}
	}()
	Remap(geometry.C(1, 1), grid.StitchType(42))
}

func TestPaginateSquareCount(t *testing.T) {
	ps, err := Paginate(filled(12, 12, red), 12, 12, grid.Square, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 10 {
		t.Fatalf("got %d pages, want 3x3 tiles plus overview", len(ps))
	}
	if !ps[0].Overview || ps[0].Label != "" || len(ps[0].Cells) != 144 {
		t.Errorf("page 0 = %+v, want overview of every cell", ps[0])
	}
	var labels []string
	for _, p := range ps[1:] {
		labels = append(labels, p.Label)
	}
	want := []string{"1/1", "1/2", "1/3", "2/1", "2/2", "2/3", "3/1", "3/2", "3/3"}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}
	if got := len(ps[9].Cells); got != 4 {
		t.Errorf("corner page holds %d cells, want 2x2", got)
	}
}

func TestPaginateBrickCount(t *testing.T) {
	ps, err := Paginate(filled(12, 12, red), 12, 12, grid.Brick, 5)
	if err != nil {
		t.Fatal(err)
	}
	// 12x12 native remaps to a 6x24 extent: 2x5 tiles.
	if len(ps) != 11 {
		t.Errorf("got %d pages, want 11", len(ps))
	}
	for _, p := range ps[1:] {
		if p.Tile != grid.Brick || !p.Rotated {
			t.Errorf("page %s: tile %v rotated %v", p.Label, p.Tile, p.Rotated)
		}
	}
}

func TestEveryCellOnExactlyOneTile(t *testing.T) {
	for _, st := range grid.StitchTypes() {
		for _, maxCells := range []int{1, 4, 5, 7, 50} {
			g := filled(11, 9, red)
			ps, err := Paginate(g, 11, 9, st, maxCells)
			if err != nil {
				t.Fatal(err)
			}
			count := make(map[geometry.Coord]int)
			for _, p := range ps[1:] {
				for k := range p.Cells {
					if !p.Window.ContainsHalfOpen(k.Col, k.Row) {
						t.Errorf("%v/%d: page %s holds %v outside its window", st, maxCells, p.Label, k)
					}
					count[k]++
				}
			}
			for k := range g {
				if n := count[Remap(k, st)]; n != 1 {
					t.Errorf("%v/%d: cell %v on %d tiles", st, maxCells, k, n)
				}
			}
		}
	}
}

func TestPaginateTileTypes(t *testing.T) {
	cases := map[grid.StitchType]grid.StitchType{
		grid.Square: grid.Square,
		grid.Brick:  grid.Brick,
		grid.Peyote: grid.Brick,
	}
	for st, want := range cases {
		ps, err := Paginate(filled(4, 4, red), 4, 4, st, 50)
		if err != nil {
			t.Fatal(err)
		}
		if ps[0].Tile != st {
			t.Errorf("%v overview tile = %v", st, ps[0].Tile)
		}
		if ps[1].Tile != want {
			t.Errorf("%v page tile = %v, want %v", st, ps[1].Tile, want)
		}
	}
}

func TestPaginateBadSize(t *testing.T) {
	for _, n := range []int{0, -3} {
		if _, err := Paginate(filled(2, 2, red), 2, 2, grid.Square, n); !errors.Is(err, ErrBadPageSize) {
			t.Errorf("maxCells=%d: err = %v, want ErrBadPageSize", n, err)
		}
	}
}

func TestPaginateEmptyGrid(t *testing.T) {
	ps, err := Paginate(grid.Grid{}, 0, 0, grid.Square, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 1 || !ps[0].Overview {
		t.Errorf("got %d pages, want the overview only", len(ps))
	}
}

func TestHeaderPositions(t *testing.T) {
	ps, err := Paginate(filled(23, 12, red), 23, 12, grid.Square, 20)
	if err != nil {
		t.Fatal(err)
	}
	first, second := ps[1], ps[2]
	if first.Label != "1/1" || second.Label != "2/1" {
		t.Fatalf("unexpected page order: %s, %s", first.Label, second.Label)
	}
	wantCols := []Header{{5, false}, {10, true}, {15, false}, {20, true}}
	if diff := cmp.Diff(wantCols, first.ColHeaders); diff != "" {
		t.Errorf("first page columns (-want +got):\n%s", diff)
	}
	if second.ColHeaders != nil {
		t.Errorf("columns 21..23 carry no header, got %v", second.ColHeaders)
	}
	wantRows := []Header{{5, false}, {10, true}}
	if diff := cmp.Diff(wantRows, first.RowHeaders); diff != "" {
		t.Errorf("rows (-want +got):\n%s", diff)
	}
}

func TestCellDim(t *testing.T) {
	cases := []struct {
		st   grid.StitchType
		want geometry.Size
	}{
		{grid.Square, geometry.NewSize(20, 30)},
		{grid.Peyote, geometry.NewSize(20, 30)},
		{grid.Brick, geometry.NewSize(30, 20)},
	}
	for _, tc := range cases {
		if got := CellDim(20, grid.RatioOval, tc.st); got != tc.want {
			t.Errorf("CellDim(%v) = %v, want %v", tc.st, got, tc.want)
		}
	}
}

func TestRenderedSize(t *testing.T) {
	cases := []struct {
		st   grid.StitchType
		want []image.Point
	}{
		// overview then one tile; ratio 3 beads are 20x30 (30x20 for brick,
		// swapped back on its remapped tile which is 2x6 cells)
		{grid.Square, []image.Point{{80, 120}, {80, 120}}},
		{grid.Peyote, []image.Point{{80, 135}, {70, 210}}},
		{grid.Brick, []image.Point{{135, 80}, {70, 210}}},
	}
	for _, tc := range cases {
		r, err := NewRenderer(Options{CellSize: 20, BeadRatio: grid.RatioOval, Stitch: tc.st})
		if err != nil {
			t.Fatal(err)
		}
		ps, err := Paginate(filled(3, 3, red), 3, 3, tc.st, 50)
		if err != nil {
			t.Fatal(err)
		}
		imgs := r.RenderAll(ps)
		for i, img := range imgs {
			if got := img.Bounds().Size(); got != tc.want[i] {
				t.Errorf("%v page %d size = %v, want %v", tc.st, i, got, tc.want[i])
			}
		}
	}
}

func TestRenderFillsBeads(t *testing.T) {
	r, err := NewRenderer(Options{CellSize: 20, BeadRatio: grid.RatioSquare, Stitch: grid.Square})
	if err != nil {
		t.Fatal(err)
	}
	ps, err := Paginate(filled(3, 3, red), 3, 3, grid.Square, 50)
	if err != nil {
		t.Fatal(err)
	}
	img := r.Render(ps[0])
	if got := img.RGBAAt(30, 30); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("bead center = %v, want red", got)
	}
	if got := img.RGBAAt(5, 5); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("header corner of overview = %v, want white", got)
	}
}

func TestLabelCacheReused(t *testing.T) {
	pal := palette.FromColors([]colorutil.RGBA{colorutil.White, red})
	r, err := NewRenderer(Options{CellSize: 20, BeadRatio: grid.RatioSquare, Stitch: grid.Square, Palette: pal})
	if err != nil {
		t.Fatal(err)
	}
	ps, err := Paginate(filled(4, 4, red), 4, 4, grid.Square, 50)
	if err != nil {
		t.Fatal(err)
	}
	r.RenderAll(ps)
	n := len(r.labels)
	if _, ok := r.labels["1"]; !ok {
		t.Error("palette number 1 was not drawn")
	}
	r.RenderAll(ps)
	if len(r.labels) != n {
		t.Errorf("label cache grew from %d to %d on a repeat render", n, len(r.labels))
	}
}

func TestScaleToFit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	got := ScaleToFit(src, 100)
	if got.Bounds().Size() != image.Pt(100, 50) {
		t.Errorf("scaled size = %v", got.Bounds().Size())
	}
	if ScaleToFit(src, 800) != image.Image(src) {
		t.Error("narrow image was resampled")
	}
}

func TestRenderTiledPageUsesOrigin(t *testing.T) {
	g := filled(6, 3, colorutil.White)
	for j := 1; j <= 3; j++ {
		g[geometry.C(4, j)] = grid.Cell{Resolved: red}
	}
	r, err := NewRenderer(Options{CellSize: 20, BeadRatio: grid.RatioSquare, Stitch: grid.Square})
	if err != nil {
		t.Fatal(err)
	}
	ps, err := Paginate(g, 6, 3, grid.Square, 3)
	if err != nil {
		t.Fatal(err)
	}
	p := ps[2]
	if p.Label != "2/1" || p.Origin() != geometry.C(3, 0) {
		t.Fatalf("page %s origin %v", p.Label, p.Origin())
	}
	// Column 4 is the first column of the second page.
	if got := r.Render(p).RGBAAt(30, 30); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("first bead of page 2/1 = %v, want red", got)
	}
}
