package render

import (
	"math"

	"github.com/pthm-cable/sparkles/vecmath"
)

var white = vecmath.Vec4{1, 1, 1, 1}

// Quad returns a two-triangle quad spanning corners p0 and p1. UVs run
// from (0,0) at p0 to (1,1) at p1.
func Quad(p0, p1 vecmath.Vec2) ([]Vertex, []uint32) {
	vertices := []Vertex{
		{Position: vecmath.Vec3{p0.X(), p0.Y(), 0}, Color: white, UV: vecmath.Vec2{0, 0}},
		{Position: vecmath.Vec3{p1.X(), p0.Y(), 0}, Color: white, UV: vecmath.Vec2{1, 0}},
		{Position: vecmath.Vec3{p1.X(), p1.Y(), 0}, Color: white, UV: vecmath.Vec2{1, 1}},
		{Position: vecmath.Vec3{p0.X(), p1.Y(), 0}, Color: white, UV: vecmath.Vec2{0, 1}},
	}
	return vertices, []uint32{0, 1, 2, 0, 2, 3}
}

// RegularPolygon returns a triangle fan of the given number of sides,
// centered on the origin with the given circumradius.
func RegularPolygon(sides int, radius float32) ([]Vertex, []uint32) {
	if sides < 3 {
		sides = 3
	}
	vertices := make([]Vertex, 0, sides+1)
	vertices = append(vertices, Vertex{Color: white, UV: vecmath.Vec2{0.5, 0.5}})
	for i := 0; i < sides; i++ {
		a := float32(i) * vecmath.Tau / float32(sides)
		p := vecmath.Polar(radius, a)
		vertices = append(vertices, Vertex{
			Position: p.Vec3(0),
			Color:    white,
			UV:       vecmath.Vec2{0.5 + p.X()/(2*radius), 0.5 + p.Y()/(2*radius)},
		})
	}
	indices := make([]uint32, 0, sides*3)
	for i := 0; i < sides; i++ {
		next := (i+1)%sides + 1
		indices = append(indices, 0, uint32(i+1), uint32(next))
	}
	return vertices, indices
}

// LightMask returns RGBA8 pixels of a white radial light. Alpha is
// (1-d)^sharpness with d the distance from the center, 1 at the edge
// midpoints; values below cutoff are cleared.
func LightMask(width, height int, cutoff, sharpness float32) []byte {
	pixels := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := (float64(x)+0.5)/float64(width)*2 - 1
			dy := (float64(y)+0.5)/float64(height)*2 - 1
			d := math.Sqrt(dx*dx + dy*dy)
			v := math.Pow(math.Max(0, 1-d), float64(sharpness))
			if v < float64(cutoff) {
				v = 0
			}
			i := (y*width + x) * 4
			pixels[i] = 255
			pixels[i+1] = 255
			pixels[i+2] = 255
			pixels[i+3] = uint8(math.Round(v * 255))
		}
	}
	return pixels
}
