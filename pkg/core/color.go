package core

import "math"

// RGB is a linear RGB color triple
type RGB struct {
	R, G, B float32
}

// NewRGB creates a new RGB color
func NewRGB(r, g, b float32) RGB {
	return RGB{R: r, G: g, B: b}
}

// Add returns the component-wise sum of two colors
func (c RGB) Add(o RGB) RGB {
	return RGB{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Scale returns the color multiplied by a scalar
func (c RGB) Scale(s float32) RGB {
	return RGB{c.R * s, c.G * s, c.B * s}
}

// Mul returns the component-wise product of two colors
func (c RGB) Mul(o RGB) RGB {
	return RGB{c.R * o.R, c.G * o.G, c.B * o.B}
}

// Lerp mixes c toward o by t (t=0 gives c, t=1 gives o)
func (c RGB) Lerp(o RGB, t float32) RGB {
	return RGB{Lerp(c.R, o.R, t), Lerp(c.G, o.G, t), Lerp(c.B, o.B, t)}
}

// Luminance returns the Rec. 709 luminance of a linear color
func (c RGB) Luminance() float32 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// IsFinite reports whether every channel is finite
func (c RGB) IsFinite() bool {
	return IsFinite(c.R) && IsFinite(c.G) && IsFinite(c.B)
}

// RGBA is a linear color with straight (non-premultiplied) coverage alpha
type RGBA struct {
	RGB
	A float32
}

// Opaque wraps a color with alpha 1
func Opaque(c RGB) RGBA {
	return RGBA{RGB: c, A: 1}
}

// Over blends front over back using front's alpha as coverage
func (front RGBA) Over(back RGBA, coverage float32) RGBA {
	return RGBA{
		RGB: back.RGB.Lerp(front.RGB, coverage),
		A:   Lerp(back.A, front.A, coverage),
	}
}

// IsFinite reports whether every channel including alpha is finite
func (c RGBA) IsFinite() bool {
	return c.RGB.IsFinite() && IsFinite(c.A)
}

// LinearFromSRGB converts an sRGB encoded channel in [0,1] to linear
func LinearFromSRGB(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return float32(math.Pow(float64(v+0.055)/1.055, 2.4))
}

// SRGBFromLinear encodes a linear channel with the sRGB transfer curve
func SRGBFromLinear(v float32) float32 {
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return 1.055*float32(math.Pow(float64(v), 1.0/2.4)) - 0.055
}

// LinearRGB converts an sRGB color to linear space, the space materials work in
func LinearRGB(r, g, b float32) RGB {
	return RGB{LinearFromSRGB(r), LinearFromSRGB(g), LinearFromSRGB(b)}
}
