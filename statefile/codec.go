package statefile

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pthm-cable/sparkles/emission"
	"github.com/pthm-cable/sparkles/random"
	"github.com/pthm-cable/sparkles/sandbox"
	"github.com/pthm-cable/sparkles/sim"
	"github.com/pthm-cable/sparkles/vecmath"
)

// Coordinate tags for random.Vec2 values.
const (
	tagNone      uint8 = 0
	tagCartesian uint8 = 1
	tagPolar     uint8 = 2
)

// maxItems bounds decoded collection lengths.
const maxItems = 1 << 12

type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) put(v any) {
	if e.err == nil {
		e.err = binary.Write(e.w, binary.LittleEndian, v)
	}
}

func (e *encoder) count(n int) { e.put(uint32(n)) }

func (e *encoder) scalar(s random.Scalar) {
	e.put(uint32(s.Distribution))
	e.put(s.Min)
	e.put(s.Max)
}

func (e *encoder) vec2(v random.Vec2) {
	switch c := v.(type) {
	case nil:
		e.put(tagNone)
	case random.Cartesian:
		e.put(tagCartesian)
		e.scalar(c.X)
		e.scalar(c.Y)
	case random.Polar:
		e.put(tagPolar)
		e.scalar(c.Angle)
		e.scalar(c.Radius)
	default:
		if e.err == nil {
			e.err = fmt.Errorf("%w: %T", random.ErrUnsupportedCoordinates, v)
		}
	}
}

func (e *encoder) state(st *sandbox.State) {
	e.put(st.SpaceWidth)
	e.put(st.SpaceHeight)

	ph := &st.Physics
	e.put(ph.Gravity)
	e.put(ph.Friction)
	e.put(uint8(ph.FrictionMode))
	e.count(len(ph.Attractors))
	for _, a := range ph.Attractors {
		e.put(a.Active)
		e.put(a.Position)
		e.put(uint32(a.Law))
		e.put(a.Radius)
		e.put(a.Factor)
		e.put(a.MagnitudeCap)
	}

	e.count(len(st.Emitters))
	for i := range st.Emitters {
		em := &st.Emitters[i]
		e.put(em.Active)
		e.put(em.Position)
		e.scalar(em.Interval)
		e.scalar(em.PerEmission)
		e.put(em.Rate)
		e.vec2(em.Burst)
		e.put(uint32(em.Mesh))
		e.put(uint32(em.Texture))
		e.vec2(em.Offset)
		e.vec2(em.Velocity)
		e.scalar(em.Size)
		e.scalar(em.Life)
		e.count(len(em.Palette))
		for _, sw := range em.Palette {
			e.put(sw.Color)
			e.put(sw.Weight)
		}
	}
}

type decoder struct {
	r   io.Reader
	err error
}

func (d *decoder) get(v any) {
	if d.err == nil {
		d.err = binary.Read(d.r, binary.LittleEndian, v)
	}
}

func (d *decoder) count() int {
	var n uint32
	d.get(&n)
	if d.err == nil && n > maxItems {
		d.err = fmt.Errorf("%w: collection of %d items", ErrSize, n)
	}
	if d.err != nil {
		return 0
	}
	return int(n)
}

func (d *decoder) f32() float32 {
	var v float32
	d.get(&v)
	return v
}

func (d *decoder) u32() uint32 {
	var v uint32
	d.get(&v)
	return v
}

func (d *decoder) flag() bool {
	var v bool
	d.get(&v)
	return v
}

func (d *decoder) scalar() random.Scalar {
	var s random.Scalar
	s.Distribution = random.Distribution(d.u32())
	s.Min = d.f32()
	s.Max = d.f32()
	return s
}

func (d *decoder) vec2() random.Vec2 {
	var tag uint8
	d.get(&tag)
	switch tag {
	case tagNone:
		return nil
	case tagCartesian:
		return random.Cartesian{X: d.scalar(), Y: d.scalar()}
	case tagPolar:
		return random.Polar{Angle: d.scalar(), Radius: d.scalar()}
	}
	if d.err == nil {
		d.err = fmt.Errorf("%w: tag %d", random.ErrUnsupportedCoordinates, tag)
	}
	return nil
}

func (d *decoder) state(st *sandbox.State) {
	st.SpaceWidth = d.f32()
	st.SpaceHeight = d.f32()

	ph := &st.Physics
	d.get(&ph.Gravity)
	ph.Friction = d.f32()
	var mode uint8
	d.get(&mode)
	ph.FrictionMode = sim.FrictionMode(mode)
	if n := d.count(); n > 0 {
		ph.Attractors = make([]sim.Attractor, n)
	}
	for i := range ph.Attractors {
		a := &ph.Attractors[i]
		a.Active = d.flag()
		d.get(&a.Position)
		a.Law = sim.ForceLaw(d.u32())
		a.Radius = d.f32()
		a.Factor = d.f32()
		a.MagnitudeCap = d.f32()
	}

	st.Emitters = make([]emission.Emitter, d.count())
	for i := range st.Emitters {
		em := &st.Emitters[i]
		em.Active = d.flag()
		d.get(&em.Position)
		em.Interval = d.scalar()
		em.PerEmission = d.scalar()
		em.Rate = d.f32()
		em.Burst = d.vec2()
		em.Mesh = int(d.u32())
		em.Texture = int(d.u32())
		em.Offset = d.vec2()
		em.Velocity = d.vec2()
		em.Size = d.scalar()
		em.Life = d.scalar()
		em.Palette = make(random.Palette, d.count())
		for k := range em.Palette {
			var c vecmath.Vec4
			d.get(&c)
			em.Palette[k] = random.Swatch{Color: c, Weight: d.f32()}
		}
	}
}
