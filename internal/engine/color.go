package engine

import "github.com/chewxy/math32"

// Color is a linear RGB color with components in [0, 1].
type Color struct {
	R, G, B float32
}

var (
	Black = Color{}
	White = Color{1, 1, 1}
)

// Hex builds a color from a 0xRRGGBB value.
func Hex(v uint32) Color {
	return Color{
		R: float32((v>>16)&0xff) / 255,
		G: float32((v>>8)&0xff) / 255,
		B: float32(v&0xff) / 255,
	}
}

// HSL builds a color from hue, saturation and lightness in [0, 1].
func HSL(h, s, l float32) Color {
	if s == 0 {
		return Color{l, l, l}
	}
	var q float32
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return Color{
		R: hueToRGB(p, q, h+1.0/3),
		G: hueToRGB(p, q, h),
		B: hueToRGB(p, q, h-1.0/3),
	}
}

func hueToRGB(p, q, t float32) float32 {
	t -= math32.Floor(t)
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*6*(2.0/3-t)
	}
	return p
}

// Luminance returns the relative luminance of c.
func (c Color) Luminance() float32 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}
