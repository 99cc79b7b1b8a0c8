package random

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/sparkles/vecmath"
)

// Color is a color description: RGB, HSB or Palette.
type Color interface {
	sampleColor(g *Generator) (vecmath.Vec4, error)
	validate() error
}

// RGB samples red, green, blue and alpha independently.
type RGB struct {
	Red, Green, Blue, Alpha Scalar
}

// HSB samples hue (in turns, wrapped into [0,1)), saturation, brightness and
// alpha, then converts to RGB. Saturation and brightness are clamped to [0,1].
type HSB struct {
	Hue, Saturation, Brightness, Alpha Scalar
}

// Solid returns an RGB description that always yields c.
func Solid(c vecmath.Vec4) RGB {
	return RGB{
		Red:   Constant(c[0]),
		Green: Constant(c[1]),
		Blue:  Constant(c[2]),
		Alpha: Constant(c[3]),
	}
}

func (c RGB) sampleColor(g *Generator) (vecmath.Vec4, error) {
	v, err := sampleAll(g, c.Red, c.Green, c.Blue, c.Alpha)
	if err != nil {
		return vecmath.Vec4{}, err
	}
	return vecmath.Vec4{v[0], v[1], v[2], v[3]}, nil
}

func (c RGB) validate() error {
	return firstErr(c.Red.Validate(), c.Green.Validate(), c.Blue.Validate(), c.Alpha.Validate())
}

func (c HSB) sampleColor(g *Generator) (vecmath.Vec4, error) {
	v, err := sampleAll(g, c.Hue, c.Saturation, c.Brightness, c.Alpha)
	if err != nil {
		return vecmath.Vec4{}, err
	}
	hue := float64(v[0]) - math.Floor(float64(v[0]))
	sat := vecmath.Clamp(v[1], 0, 1)
	bri := vecmath.Clamp(v[2], 0, 1)

	rgb := colorful.Hsv(hue*360, float64(sat), float64(bri)).Clamped()
	return vecmath.Vec4{float32(rgb.R), float32(rgb.G), float32(rgb.B), v[3]}, nil
}

func (c HSB) validate() error {
	return firstErr(c.Hue.Validate(), c.Saturation.Validate(), c.Brightness.Validate(), c.Alpha.Validate())
}

// Swatch is one weighted palette entry.
type Swatch struct {
	Color  vecmath.Vec4 `yaml:"color"`
	Weight float32      `yaml:"weight"`
}

// Palette picks one of its colors with probability proportional to weight.
type Palette []Swatch

// Pick walks the palette with the draw u in [0,1) and returns the chosen
// color and its index. When nothing is chosen (empty palette or zero total
// weight) it returns transparent black and -1.
func (p Palette) Pick(u float32) (vecmath.Vec4, int) {
	var total float32
	for _, s := range p {
		total += s.Weight
	}

	r := total * u
	var cursor float32
	for i, s := range p {
		if r < cursor+s.Weight {
			return s.Color, i
		}
		cursor += s.Weight
	}
	return vecmath.Vec4{}, -1
}

func (p Palette) sampleColor(g *Generator) (vecmath.Vec4, error) {
	c, _ := p.Pick(g.Uniform())
	return c, nil
}

func (p Palette) validate() error { return nil }

// Color samples c.
func (g *Generator) Color(c Color) (vecmath.Vec4, error) {
	if c == nil {
		return vecmath.Vec4{}, fmt.Errorf("%w: nil", ErrUnsupportedColorSystem)
	}
	return c.sampleColor(g)
}

// ValidateColor reports whether c can be sampled.
func ValidateColor(c Color) error {
	if c == nil {
		return fmt.Errorf("%w: nil", ErrUnsupportedColorSystem)
	}
	return c.validate()
}
