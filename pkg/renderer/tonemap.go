package renderer

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/df07/go-analytic-raytracer/pkg/core"
)

// ToneMap selects how linear radiance is compressed into [0, 1]
type ToneMap string

const (
	ToneMapNone     ToneMap = "none"     // clamp only
	ToneMapReinhard ToneMap = "reinhard" // c / (1 + c) per channel
)

// ParseToneMap validates a tone map name
func ParseToneMap(name string) (ToneMap, error) {
	switch tm := ToneMap(strings.ToLower(name)); tm {
	case ToneMapNone, ToneMapReinhard:
		return tm, nil
	case "":
		return ToneMapNone, nil
	default:
		return "", fmt.Errorf("unknown tone map %q", name)
	}
}

// apply maps one linear channel value to [0, 1]
func (tm ToneMap) apply(v float32) float32 {
	if tm == ToneMapReinhard && v > 0 {
		v = v / (1 + v)
	}
	return core.Clamp01(v)
}

// toByte quantizes a [0, 1] value with rounding
func toByte(v float32) uint8 {
	return uint8(v*255 + 0.5)
}

// encodePixel applies exposure, the tone curve and sRGB encoding
func encodePixel(c core.RGBA, exposure float32, tm ToneMap) color.NRGBA {
	rgb := c.RGB.Scale(exposure)
	return color.NRGBA{
		R: toByte(core.SRGBFromLinear(tm.apply(rgb.R))),
		G: toByte(core.SRGBFromLinear(tm.apply(rgb.G))),
		B: toByte(core.SRGBFromLinear(tm.apply(rgb.B))),
		A: toByte(core.Clamp01(c.A)),
	}
}

// Resolve writes the averaged framebuffer into img, which must match its size.
// Pixels without samples become transparent black.
func (fb *Framebuffer) Resolve(img *image.NRGBA, exposure float32, tm ToneMap) {
	for y := 0; y < fb.height; y++ {
		for x := 0; x < fb.width; x++ {
			c, n := fb.Pixel(x, y)
			if n == 0 {
				img.SetNRGBA(x, y, color.NRGBA{})
				continue
			}
			img.SetNRGBA(x, y, encodePixel(c, exposure, tm))
		}
	}
}
