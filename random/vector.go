package random

import (
	"fmt"
	"math"

	"github.com/pthm-cable/sparkles/vecmath"
)

// Vec2 is a 2D vector description. Its concrete type is the coordinate
// system: Cartesian or Polar.
type Vec2 interface {
	sample2(g *Generator) (vecmath.Vec2, error)
	validate() error
}

// Cartesian samples x and y independently.
type Cartesian struct {
	X, Y Scalar
}

// Polar samples an angle (radians) and a radius independently.
type Polar struct {
	Angle, Radius Scalar
}

// Rect returns a uniform cartesian range.
func Rect(minX, maxX, minY, maxY float32) Cartesian {
	return Cartesian{X: Range(minX, maxX), Y: Range(minY, maxY)}
}

// Ring returns a uniform polar range.
func Ring(minRadius, maxRadius, minAngle, maxAngle float32) Polar {
	return Polar{Angle: Range(minAngle, maxAngle), Radius: Range(minRadius, maxRadius)}
}

func (c Cartesian) sample2(g *Generator) (vecmath.Vec2, error) {
	x, err := g.Scalar(c.X)
	if err != nil {
		return vecmath.Vec2{}, err
	}
	y, err := g.Scalar(c.Y)
	if err != nil {
		return vecmath.Vec2{}, err
	}
	return vecmath.Vec2{x, y}, nil
}

func (c Cartesian) validate() error {
	return firstErr(c.X.Validate(), c.Y.Validate())
}

func (p Polar) sample2(g *Generator) (vecmath.Vec2, error) {
	angle, err := g.Scalar(p.Angle)
	if err != nil {
		return vecmath.Vec2{}, err
	}
	radius, err := g.Scalar(p.Radius)
	if err != nil {
		return vecmath.Vec2{}, err
	}
	return vecmath.Polar(radius, angle), nil
}

func (p Polar) validate() error {
	return firstErr(p.Angle.Validate(), p.Radius.Validate())
}

// Vec2 samples v.
func (g *Generator) Vec2(v Vec2) (vecmath.Vec2, error) {
	if v == nil {
		return vecmath.Vec2{}, fmt.Errorf("%w: nil", ErrUnsupportedCoordinates)
	}
	return v.sample2(g)
}

// ValidateVec2 reports whether v can be sampled.
func ValidateVec2(v Vec2) error {
	if v == nil {
		return fmt.Errorf("%w: nil", ErrUnsupportedCoordinates)
	}
	return v.validate()
}

// Vec3 is a 3D vector description: Cartesian3, Spherical or Cylindrical.
type Vec3 interface {
	sample3(g *Generator) (vecmath.Vec3, error)
}

// Cartesian3 samples x, y and z independently.
type Cartesian3 struct {
	X, Y, Z Scalar
}

// Spherical samples a radius, an azimuth around z and an inclination from +z.
type Spherical struct {
	Radius, Azimuth, Inclination Scalar
}

// Cylindrical samples a radius and angle in the xy plane plus a height.
type Cylindrical struct {
	Radius, Angle, Z Scalar
}

func (c Cartesian3) sample3(g *Generator) (vecmath.Vec3, error) {
	v, err := sampleAll(g, c.X, c.Y, c.Z)
	if err != nil {
		return vecmath.Vec3{}, err
	}
	return vecmath.Vec3{v[0], v[1], v[2]}, nil
}

func (s Spherical) sample3(g *Generator) (vecmath.Vec3, error) {
	v, err := sampleAll(g, s.Radius, s.Azimuth, s.Inclination)
	if err != nil {
		return vecmath.Vec3{}, err
	}
	r, az, inc := float64(v[0]), float64(v[1]), float64(v[2])
	return vecmath.Vec3{
		float32(r * math.Sin(inc) * math.Cos(az)),
		float32(r * math.Sin(inc) * math.Sin(az)),
		float32(r * math.Cos(inc)),
	}, nil
}

func (c Cylindrical) sample3(g *Generator) (vecmath.Vec3, error) {
	v, err := sampleAll(g, c.Radius, c.Angle, c.Z)
	if err != nil {
		return vecmath.Vec3{}, err
	}
	xy := vecmath.Polar(v[0], v[1])
	return vecmath.Vec3{xy[0], xy[1], v[2]}, nil
}

// Vec3 samples v.
func (g *Generator) Vec3(v Vec3) (vecmath.Vec3, error) {
	if v == nil {
		return vecmath.Vec3{}, fmt.Errorf("%w: nil", ErrUnsupportedCoordinates)
	}
	return v.sample3(g)
}

// Vec4 samples four independent components.
type Vec4 struct {
	X, Y, Z, W Scalar
}

// Vec4 samples v.
func (g *Generator) Vec4(v Vec4) (vecmath.Vec4, error) {
	s, err := sampleAll(g, v.X, v.Y, v.Z, v.W)
	if err != nil {
		return vecmath.Vec4{}, err
	}
	return vecmath.Vec4{s[0], s[1], s[2], s[3]}, nil
}

func sampleAll(g *Generator, specs ...Scalar) ([4]float32, error) {
	var out [4]float32
	for i, s := range specs {
		v, err := g.Scalar(s)
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
