package render

import (
	"github.com/pthm-cable/sparkles/particle"
	"github.com/pthm-cable/sparkles/vecmath"
)

// Vertex is the mesh vertex format: position, color, uv (9 floats).
type Vertex struct {
	Position vecmath.Vec3
	Color    vecmath.Vec4
	UV       vecmath.Vec2
}

// VertexStride is the size of Vertex in bytes.
const VertexStride = 36

// Attribute describes one float vertex attribute.
type Attribute struct {
	Name       string
	Location   uint32
	Components int32
	Offset     int
}

// Mesh attributes, read per vertex.
var VertexAttributes = []Attribute{
	{Name: "a_position", Location: 0, Components: 3, Offset: 0},
	{Name: "a_color", Location: 1, Components: 4, Offset: 12},
	{Name: "a_uv", Location: 2, Components: 2, Offset: 28},
}

// Particle attributes, read per instance with divisor 1. Velocity and life
// are uploaded but not bound.
var InstanceAttributes = []Attribute{
	{Name: "i_position", Location: 3, Components: 3, Offset: particle.OffsetPosition},
	{Name: "i_scale", Location: 4, Components: 1, Offset: particle.OffsetScale},
	{Name: "i_color", Location: 5, Components: 4, Offset: particle.OffsetColor},
}
