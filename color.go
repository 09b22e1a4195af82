package picasso

import (
	"image/color"
	"math"
	"strconv"
)

// Color is a triplet of real channels. Channels are not limited to
// [ColorMin, ColorMax]; only conversion to a display color clamps them.
type Color struct {
	R, G, B float64
}

// Gray returns a color with all three channels set to v.
func Gray(v float64) Color {
	return Color{v, v, v}
}

// Map applies f to each channel.
func (c Color) Map(f func(float64) float64) Color {
	return Color{f(c.R), f(c.G), f(c.B)}
}

// Zip combines the channels of c and d pairwise with f.
func (c Color) Zip(d Color, f func(a, b float64) float64) Color {
	return Color{f(c.R, d.R), f(c.G, d.G), f(c.B, d.B)}
}

func (c Color) String() string {
	return "[" + fmtnum(c.R) + ", " + fmtnum(c.G) + ", " + fmtnum(c.B) + "]"
}

func fmtnum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// RGBA implements image/color.Color. Channels are clamped to
// [ColorMin, ColorMax] and mapped linearly onto the full 16-bit range. The
// color is opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	return channel16(c.R), channel16(c.G), channel16(c.B), 0xffff
}

// NRGBA converts c to an 8-bit display color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(channel16(c.R) >> 8),
		G: uint8(channel16(c.G) >> 8),
		B: uint8(channel16(c.B) >> 8),
		A: 0xff,
	}
}

func channel16(v float64) uint32 {
	if math.IsNaN(v) {
		v = 0
	}
	v = clamp(v)
	return uint32((v - ColorMin) / (ColorMax - ColorMin) * 0xffff)
}

// ColorOf converts a display color to a Color, mapping each 8-bit channel v
// to v/255*2 - 1.
func ColorOf(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{unit8(n.R), unit8(n.G), unit8(n.B)}
}

func unit8(v uint8) float64 {
	return float64(v)/255*(ColorMax-ColorMin) + ColorMin
}

var _ color.Color = Color{}
