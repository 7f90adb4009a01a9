package grid

import (
	"errors"
	"testing"

	"bead-scheme/pkg/colorutil"
	"bead-scheme/pkg/geometry"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var (
	colorRed   = colorutil.RGBA{R: 1, A: 1}
	colorWhite = colorutil.White
)

func TestLayoutIsDense(t *testing.T) {
	img := geometry.NewSize(123, 77)
	for _, st := range StitchTypes() {
		for cols := 2; cols <= 7; cols++ {
			for rows := 2; rows <= 7; rows++ {
				fps, err := Layout(img, cols, rows, st)
				if err != nil {
					t.Fatalf("%v %dx%d: %v", st, cols, rows, err)
				}
				g := make(Grid, len(fps))
				for _, fp := range fps {
					g[fp.Coord] = Cell{Offset: fp.Offset, Size: fp.Size}
				}
				if len(fps) != cols*rows || !g.Dense(cols, rows) {
					t.Errorf("%v %dx%d: layout not dense over [1..%d]x[1..%d]", st, cols, rows, cols, rows)
				}
			}
		}
	}
}

func TestStepsRejectsDegenerateDimensions(t *testing.T) {
	for _, dims := range [][2]int{{1, 5}, {5, 1}, {0, 0}, {-3, 4}} {
		_, err := Steps(geometry.NewSize(100, 100), dims[0], dims[1])
		if !errors.Is(err, ErrDegenerateDimension) {
			t.Errorf("Steps(%v) error = %v, want ErrDegenerateDimension", dims, err)
		}
	}
}

func TestSquareOffsetsTileImage(t *testing.T) {
	fps, err := Layout(geometry.NewSize(90, 90), 3, 3, Square)
	if err != nil {
		t.Fatal(err)
	}
	want := map[geometry.Coord]geometry.Point2D{
		geometry.C(1, 1): {X: -45, Y: -45},
		geometry.C(2, 1): {X: -15, Y: -45},
		geometry.C(3, 3): {X: 15, Y: 15},
	}
	for _, fp := range fps {
		if fp.Size != geometry.NewSize(30, 30) {
			t.Errorf("cell %v size = %v, want 30x30", fp.Coord, fp.Size)
		}
		if w, ok := want[fp.Coord]; ok {
			if diff := cmp.Diff(w, fp.Offset, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("cell %v offset mismatch (-want +got):\n%s", fp.Coord, diff)
			}
		}
	}
}

func TestStaggeredOffsets(t *testing.T) {
	img := geometry.NewSize(100, 100)
	step, err := Steps(img, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name   string
		stitch StitchType
		col    int
		row    int
		want   geometry.Point2D
	}{
		{"peyote odd column", Peyote, 1, 2, geometry.NewPoint2D(-50, -25)},
		{"peyote even column", Peyote, 2, 1, geometry.NewPoint2D(-25, -37.5)},
		{"brick odd row", Brick, 2, 1, geometry.NewPoint2D(-25, -50)},
		{"brick even row", Brick, 1, 2, geometry.NewPoint2D(-37.5, -25)},
		{"square", Square, 2, 2, geometry.NewPoint2D(-25, -25)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CellOffset(img, step, tc.col, tc.row, tc.stitch)
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("offset mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnknownStitchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Layout with an unknown stitch type did not panic")
		}
	}()
	_, _ = Layout(geometry.NewSize(10, 10), 2, 2, StitchType(42))
}

func TestSolveDimensions(t *testing.T) {
	img := geometry.NewSize(90, 90)
	cases := []struct {
		name   string
		solve  func(geometry.Size, int, int, StitchType) (int, error)
		fixed  int
		ratio  int
		stitch StitchType
		want   int
	}{
		{"rows square bead", SolveRows, 3, RatioSquare, Square, 4},
		{"rows oval bead", SolveRows, 3, RatioOval, Square, 3},
		{"rows oval peyote", SolveRows, 3, RatioOval, Peyote, 3},
		{"rows oval brick", SolveRows, 3, RatioOval, Brick, 5},
		{"cols oval square", SolveCols, 3, RatioOval, Square, 5},
		{"cols oval brick", SolveCols, 3, RatioOval, Brick, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.solve(img, tc.fixed, tc.ratio, tc.stitch)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSolveRejectsBadInput(t *testing.T) {
	img := geometry.NewSize(90, 90)
	if _, err := SolveRows(img, 1, RatioOval, Square); !errors.Is(err, ErrDegenerateDimension) {
		t.Errorf("cols=1: err = %v", err)
	}
	if _, err := SolveCols(img, 5, 0, Square); !errors.Is(err, ErrBadRatio) {
		t.Errorf("ratio=0: err = %v", err)
	}
	if _, err := SolveRows(geometry.Size{}, 5, RatioOval, Square); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("empty image: err = %v", err)
	}
}

func TestSolveNeverBelowTwo(t *testing.T) {
	// A very wide bead on a flat image would otherwise give a single row.
	got, err := SolveRows(geometry.NewSize(1000, 10), 2, 40, Square)
	if err != nil {
		t.Fatal(err)
	}
	if got != 2 {
		t.Errorf("SolveRows = %d, want clamp to 2", got)
	}
}

func TestParseStitchType(t *testing.T) {
	for _, st := range StitchTypes() {
		got, err := ParseStitchType(st.String())
		if err != nil || got != st {
			t.Errorf("ParseStitchType(%q) = %v, %v", st.String(), got, err)
		}
	}
	if got, err := ParseStitchType("brick"); err != nil || got != Brick {
		t.Errorf("case-insensitive parse failed: %v, %v", got, err)
	}
	if _, err := ParseStitchType("herringbone"); err == nil {
		t.Error("ParseStitchType accepted an unknown name")
	}
	if _, err := StitchType(9).MarshalText(); err == nil {
		t.Error("MarshalText accepted an unknown value")
	}
}

func TestGridHelpers(t *testing.T) {
	red := Cell{Resolved: colorRed}
	white := Cell{Resolved: colorWhite}
	g := Grid{
		geometry.C(2, 1): red,
		geometry.C(1, 2): white,
		geometry.C(1, 1): red,
		geometry.C(2, 2): red,
	}
	if diff := cmp.Diff([]geometry.Coord{geometry.C(1, 1), geometry.C(1, 2), geometry.C(2, 1), geometry.C(2, 2)}, g.Coords()); diff != "" {
		t.Errorf("Coords mismatch (-want +got):\n%s", diff)
	}
	if c, r := g.Extent(); c != 2 || r != 2 {
		t.Errorf("Extent = %d,%d", c, r)
	}
	counts := g.Counts()
	if counts[colorRed] != 3 || counts[colorWhite] != 1 {
		t.Errorf("Counts = %v", counts)
	}
	clone := g.Clone()
	clone[geometry.C(1, 1)] = white
	if g[geometry.C(1, 1)] != red {
		t.Error("Clone shares storage with the original")
	}
	delete(clone, geometry.C(1, 1))
	if clone.Dense(2, 2) {
		t.Error("Dense ignored a missing key")
	}
}
