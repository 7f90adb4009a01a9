package pages

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"bead-scheme/internal/grid"
	"bead-scheme/internal/palette"
	"bead-scheme/pkg/colorutil"
	"bead-scheme/pkg/geometry"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// DefaultCellSize is the printed size in pixels of the shorter bead side.
const DefaultCellSize = 20

const (
	outlineWidth = 2
	lineWidth    = 2
	// kappa places cubic control points for a quarter ellipse.
	kappa = 0.5522847
)

// Options configures a Renderer.
type Options struct {
	CellSize  int
	BeadRatio int
	Stitch    grid.StitchType

	// Palette numbers the beads on tiled pages. Nil draws no numbers.
	Palette *palette.Store
}

// Renderer draws pages as raster images. It owns a cache of rasterized
// labels and is not safe for concurrent use.
type Renderer struct {
	stitch  grid.StitchType
	cell    geometry.Size
	palette *palette.Store

	face   font.Face
	labels map[string]*image.Alpha
	raster *vector.Rasterizer
}

// NewRenderer returns a renderer for beads of the configured size and ratio.
func NewRenderer(opts Options) (*Renderer, error) {
	if !opts.Stitch.Known() {
		return nil, fmt.Errorf("renderer: unknown stitch type %d", int(opts.Stitch))
	}
	if opts.CellSize <= 0 {
		opts.CellSize = DefaultCellSize
	}
	if opts.BeadRatio <= 0 {
		opts.BeadRatio = grid.RatioSquare
	}

	r := &Renderer{
		stitch:  opts.Stitch,
		cell:    CellDim(opts.CellSize, opts.BeadRatio, opts.Stitch),
		palette: opts.Palette,
		labels:  make(map[string]*image.Alpha),
		raster:  vector.NewRasterizer(0, 0),
	}
	face, err := labelFace(math.Min(r.cell.Width, r.cell.Height) * 0.6)
	if err != nil {
		return nil, err
	}
	r.face = face
	return r, nil
}

// CellDim returns the printed size of one bead. The bead ratio stretches
// the axis perpendicular to the stitch rows.
func CellDim(base, ratio int, stitch grid.StitchType) geometry.Size {
	b := float64(base)
	stretched := b * float64(ratio) / grid.RatioBase
	switch stitch {
	case grid.Brick:
		return geometry.NewSize(stretched, b)
	default:
		return geometry.NewSize(b, stretched)
	}
}

func labelFace(size float64) (font.Face, error) {
	if size < 8 {
		return basicfont.Face7x13, nil
	}
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse label font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("label font face: %w", err)
	}
	return face, nil
}

// PageSize returns the pixel size of the image Render produces for p.
func (r *Renderer) PageSize(p Page) image.Point {
	cell := r.cellFor(p)
	extraW, extraH := 0.0, 0.0
	switch p.Tile {
	case grid.Brick:
		extraW = 0.5
	case grid.Peyote:
		extraH = 0.5
	}
	return image.Pt(
		int((float64(p.Cols)+1+extraW)*cell.Width),
		int((float64(p.Rows)+1+extraH)*cell.Height),
	)
}

func (r *Renderer) cellFor(p Page) geometry.Size {
	if p.Rotated {
		return r.cell.Swap()
	}
	return r.cell
}

// Render draws one page. Row 0 and column 0 are reserved for headers.
func (r *Renderer) Render(p Page) *image.RGBA {
	size := r.PageSize(p)
	dst := image.NewRGBA(image.Rectangle{Max: size})
	xdraw.Draw(dst, dst.Bounds(), image.White, image.Point{}, xdraw.Src)

	pc := pageCanvas{r: r, p: p, dst: dst, cell: r.cellFor(p)}
	labelled := !p.Overview
	if labelled {
		pc.cornerLabel()
		pc.headers()
	}
	o := p.Origin()
	for x := 1; x <= p.Cols; x++ {
		for y := 1; y <= p.Rows; y++ {
			cell, ok := p.Cells[geometry.C(x+o.Col, y+o.Row)]
			if !ok {
				continue
			}
			pc.bead(x, y, cell, labelled)
		}
	}
	pc.guides()
	return dst
}

// RenderAll draws every page in order.
func (r *Renderer) RenderAll(ps []Page) []*image.RGBA {
	out := make([]*image.RGBA, 0, len(ps))
	for _, p := range ps {
		out = append(out, r.Render(p))
	}
	return out
}

// label returns the cached mask for text.
func (r *Renderer) label(text string) *image.Alpha {
	if m, ok := r.labels[text]; ok {
		return m
	}
	metrics := r.face.Metrics()
	w := font.MeasureString(r.face, text).Ceil()
	h := (metrics.Ascent + metrics.Descent).Ceil()
	mask := image.NewAlpha(image.Rect(0, 0, max(w, 1), max(h, 1)))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: r.face,
		Dot:  fixed.Point26_6{Y: metrics.Ascent},
	}
	d.DrawString(text)
	r.labels[text] = mask
	return mask
}

type pageCanvas struct {
	r    *Renderer
	p    Page
	dst  *image.RGBA
	cell geometry.Size
}

// shift returns the stagger of local cell (x, y). Parity follows the
// absolute index so that adjacent pages line up.
func (pc pageCanvas) shift(x, y int) (dx, dy float64) {
	switch pc.p.Tile {
	case grid.Brick:
		if (y+pc.p.Window.Y)%2 == 0 {
			dx = pc.cell.Width / 2
		}
	case grid.Peyote:
		if (x+pc.p.Window.X)%2 == 0 {
			dy = pc.cell.Height / 2
		}
	}
	return dx, dy
}

func (pc pageCanvas) bead(x, y int, cell grid.Cell, labelled bool) {
	if cell.Resolved.A <= 0 {
		return
	}
	dx, dy := pc.shift(x, y)
	x0 := pc.cell.Width*float64(x) + dx
	y0 := pc.cell.Height*float64(y) + dy

	outline := colorutil.FromColor(colorutil.Gray)
	outline.A = cell.Resolved.A
	pc.roundRect(x0, y0, pc.cell.Width, pc.cell.Height, 0, outline)
	pc.roundRect(x0, y0, pc.cell.Width, pc.cell.Height, outlineWidth, cell.Resolved)

	if !labelled || pc.r.palette == nil {
		return
	}
	key := pc.r.palette.KeyOf(cell.Resolved)
	if key < 0 {
		return
	}
	pc.text(strconv.Itoa(key), x0+pc.cell.Width/2, y0+pc.cell.Height/2, colorutil.ContrastingBW(cell.Resolved))
}

// roundRect fills a rectangle with elliptic corners, inset on every side.
func (pc pageCanvas) roundRect(x0, y0, w, h, inset float64, c colorutil.RGBA) {
	x0, y0 = x0+inset, y0+inset
	w, h = w-2*inset, h-2*inset
	if w <= 0 || h <= 0 {
		return
	}
	ix, iy := math.Floor(x0), math.Floor(y0)
	fx, fy := float32(x0-ix), float32(y0-iy)
	cw, ch := int(math.Ceil(float64(fx)+w)), int(math.Ceil(float64(fy)+h))

	z := pc.r.raster
	z.Reset(cw, ch)
	x1, y1 := fx+float32(w), fy+float32(h)
	rx, ry := float32(w/3), float32(h/3)
	kx, ky := rx*kappa, ry*kappa

	z.MoveTo(fx+rx, fy)
	z.LineTo(x1-rx, fy)
	z.CubeTo(x1-rx+kx, fy, x1, fy+ry-ky, x1, fy+ry)
	z.LineTo(x1, y1-ry)
	z.CubeTo(x1, y1-ry+ky, x1-rx+kx, y1, x1-rx, y1)
	z.LineTo(fx+rx, y1)
	z.CubeTo(fx+rx-kx, y1, fx, y1-ry+ky, fx, y1-ry)
	z.LineTo(fx, fy+ry)
	z.CubeTo(fx, fy+ry-ky, fx+rx-kx, fy, fx+rx, fy)
	z.ClosePath()

	// The rasterizer does not clip; only the far edges can overhang.
	r := image.Rect(int(ix), int(iy), int(ix)+cw, int(iy)+ch).Intersect(pc.dst.Bounds())
	if r.Empty() || r.Min != image.Pt(int(ix), int(iy)) {
		return
	}
	z.Draw(pc.dst, r, image.NewUniform(c), image.Point{})
}

// text draws s centered on (cx, cy).
func (pc pageCanvas) text(s string, cx, cy float64, ink color.Color) {
	mask := pc.r.label(s)
	b := mask.Bounds()
	at := image.Pt(int(cx)-b.Dx()/2, int(cy)-b.Dy()/2)
	xdraw.DrawMask(pc.dst, b.Add(at), image.NewUniform(ink), image.Point{}, mask, image.Point{}, xdraw.Over)
}

// box outlines the header cell at local (x, y).
func (pc pageCanvas) box(x, y int) image.Rectangle {
	r := image.Rect(
		int(pc.cell.Width*float64(x)), int(pc.cell.Height*float64(y)),
		int(pc.cell.Width*float64(x+1)), int(pc.cell.Height*float64(y+1)),
	)
	pc.stroke(r, colorutil.LightGray)
	return r
}

func (pc pageCanvas) stroke(r image.Rectangle, c color.Color) {
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+outlineWidth),
		image.Rect(r.Min.X, r.Max.Y-outlineWidth, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+outlineWidth, r.Max.Y),
		image.Rect(r.Max.X-outlineWidth, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		xdraw.Draw(pc.dst, e, src, image.Point{}, xdraw.Over)
	}
}

func (pc pageCanvas) centerText(r image.Rectangle, s string) {
	pc.text(s, float64(r.Min.X+r.Max.X)/2, float64(r.Min.Y+r.Max.Y)/2, color.Black)
}

func (pc pageCanvas) cornerLabel() {
	pc.centerText(pc.box(0, 0), pc.p.Label)
}

// headers outlines a header cell for every occupied column and row and
// numbers the ones listed on the page.
func (pc pageCanvas) headers() {
	p := pc.p
	cols := make(map[int]bool, len(p.ColHeaders))
	for _, h := range p.ColHeaders {
		cols[h.Index] = true
	}
	rows := make(map[int]bool, len(p.RowHeaders))
	for _, h := range p.RowHeaders {
		rows[h.Index] = true
	}
	for x := 1; x <= p.Cols; x++ {
		abs := x + p.Window.X
		if !pc.columnUsed(abs) {
			continue
		}
		r := pc.box(x, 0)
		if cols[abs] {
			pc.centerText(r, strconv.Itoa(abs))
		}
	}
	for y := 1; y <= p.Rows; y++ {
		abs := y + p.Window.Y
		if !pc.rowUsed(abs) {
			continue
		}
		r := pc.box(0, y)
		if rows[abs] {
			pc.centerText(r, strconv.Itoa(abs))
		}
	}
}

func (pc pageCanvas) columnUsed(col int) bool {
	for k := range pc.p.Cells {
		if k.Col == col {
			return true
		}
	}
	return false
}

func (pc pageCanvas) rowUsed(row int) bool {
	for k := range pc.p.Cells {
		if k.Row == row {
			return true
		}
	}
	return false
}

// guides draws counting lines after every 5th (dark gray) and 10th
// (black) absolute index, plus the edge of the header band.
func (pc pageCanvas) guides() {
	p := pc.p
	maxX := int(pc.cell.Width * float64(p.Cols+1))
	maxY := int(pc.cell.Height * float64(p.Rows+1))
	if p.Tile == grid.Brick {
		maxX += int(pc.cell.Width / 2)
	}
	if p.Tile == grid.Peyote {
		maxY += int(pc.cell.Height / 2)
	}
	top, left := int(pc.cell.Height), int(pc.cell.Width)

	for x := 0; x <= p.Cols; x++ {
		c, ok := guideColor(x, x+p.Window.X)
		if !ok {
			continue
		}
		at := int(pc.cell.Width * float64(x+1))
		xdraw.Draw(pc.dst, image.Rect(at-lineWidth/2, top, at+lineWidth-lineWidth/2, maxY), image.NewUniform(c), image.Point{}, xdraw.Over)
	}
	for y := 0; y <= p.Rows; y++ {
		c, ok := guideColor(y, y+p.Window.Y)
		if !ok {
			continue
		}
		at := int(pc.cell.Height * float64(y+1))
		xdraw.Draw(pc.dst, image.Rect(left, at-lineWidth/2, maxX, at+lineWidth-lineWidth/2), image.NewUniform(c), image.Point{}, xdraw.Over)
	}
}

func guideColor(local, abs int) (color.Color, bool) {
	switch {
	case local == 0, abs%10 == 0:
		return color.Black, true
	case abs%5 == 0:
		return colorutil.DarkGray, true
	}
	return nil, false
}

// ScaleToFit resamples img to the given width, keeping its aspect ratio.
// Images already narrower than width are returned unchanged.
func ScaleToFit(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || b.Dx() <= width {
		return img
	}
	height := max(b.Dy()*width/b.Dx(), 1)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
