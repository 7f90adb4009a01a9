package image

import (
	"image"
	"math"

	"github.com/disintegration/gift"
)

// Adjustment limits and neutral values.
const (
	BrightnessMin    = -1.0
	BrightnessMax    = 1.0
	BrightnessNormal = 0.0

	SaturationMin    = 0.0
	SaturationMax    = 3.0
	SaturationNormal = 1.0

	ContrastMin    = 0.0
	ContrastMax    = 3.0
	ContrastNormal = 1.0
)

// Adjustments are the tone corrections applied before sampling.
type Adjustments struct {
	Brightness float64 `json:"brightness"` // shift added to every channel
	Saturation float64 `json:"saturation"` // 1 keeps the original saturation
	Contrast   float64 `json:"contrast"`   // gamma correction with exponent 1/Contrast
}

// DefaultAdjustments leaves the image unchanged.
func DefaultAdjustments() Adjustments {
	return Adjustments{
		Brightness: BrightnessNormal,
		Saturation: SaturationNormal,
		Contrast:   ContrastNormal,
	}
}

// Clamp limits every value to its range. NaN resets to the neutral value.
func (a Adjustments) Clamp() Adjustments {
	return Adjustments{
		Brightness: clamp(a.Brightness, BrightnessMin, BrightnessMax, BrightnessNormal),
		Saturation: clamp(a.Saturation, SaturationMin, SaturationMax, SaturationNormal),
		Contrast:   clamp(a.Contrast, ContrastMin, ContrastMax, ContrastNormal),
	}
}

// IsIdentity reports whether applying a would not change any pixel.
func (a Adjustments) IsIdentity() bool {
	return a.Clamp() == DefaultAdjustments()
}

func clamp(v, lo, hi, normal float64) float64 {
	if math.IsNaN(v) {
		return normal
	}
	return math.Max(lo, math.Min(hi, v))
}

// filters returns brightness, saturation and contrast in that order.
func (a Adjustments) filters() []gift.Filter {
	a = a.Clamp()
	var fs []gift.Filter
	if a.Brightness != BrightnessNormal {
		fs = append(fs, gift.Brightness(float32(a.Brightness*100)))
	}
	if a.Saturation != SaturationNormal {
		fs = append(fs, gift.Saturation(float32((a.Saturation-1)*100)))
	}
	if a.Contrast != ContrastNormal {
		// gift raises channels to 1/gamma.
		fs = append(fs, gift.Gamma(float32(a.Contrast)))
	}
	return fs
}

// Adjust returns src with a applied. The identity adjustment returns src itself.
func Adjust(src image.Image, a Adjustments) image.Image {
	if src == nil {
		return nil
	}
	fs := a.filters()
	if len(fs) == 0 {
		return src
	}
	g := gift.New(fs...)
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}

// Adjusted returns a new layer holding the adjusted pixels.
func (l *Layer) Adjusted(a Adjustments) *Layer {
	if l == nil {
		return nil
	}
	out := *l
	out.Image = Adjust(l.Image, a)
	return &out
}
