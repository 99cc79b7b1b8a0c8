// Package particle holds the particle data model: fixed-capacity systems of
// particle slots that are spawned into, simulated in place and recycled.
package particle

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/sparkles/random"
	"github.com/pthm-cable/sparkles/vecmath"
)

// Particle is one simulated slot. The field order is the per-instance layout
// uploaded to the GPU.
type Particle struct {
	Position vecmath.Vec3
	Scale    float32
	Color    vecmath.Vec4
	Velocity vecmath.Vec3
	Life     float32
}

// Layout of Particle in bytes.
const (
	OffsetPosition = 0
	OffsetScale    = 12
	OffsetColor    = 16
	OffsetVelocity = 32
	OffsetLife     = 44
	Stride         = 48
)

// Dead reports whether the slot is free for spawning.
func (p *Particle) Dead() bool {
	return p.Life < 0
}

// Kill marks the slot dead and invisible.
func (p *Particle) Kill() {
	p.Life = -1
	p.Scale = 0
}

// Buffer is backend-side instance storage for one system.
type Buffer interface {
	Capacity() int
}

// BufferAllocator creates instance storage. Render backends implement it.
type BufferAllocator interface {
	CreateParticleBuffer(capacity int) (Buffer, error)
}

// ErrCapacity is returned for a non-positive capacity.
var ErrCapacity = errors.New("particle: capacity must be positive")

// System is a fixed-capacity pool of particles. Its capacity never changes.
type System struct {
	particles []Particle
	buffer    Buffer
}

// NewSystem allocates capacity dead particles and, when alloc is non-nil, a
// backend instance buffer sized for all of them.
func NewSystem(capacity int, alloc BufferAllocator) (*System, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrCapacity, capacity)
	}

	s := &System{particles: make([]Particle, capacity)}
	s.Reset()

	if alloc != nil {
		buf, err := alloc.CreateParticleBuffer(capacity)
		if err != nil {
			return nil, fmt.Errorf("creating particle buffer: %w", err)
		}
		s.buffer = buf
	}
	return s, nil
}

// Particles returns the slot array. Callers mutate slots in place.
func (s *System) Particles() []Particle {
	return s.particles
}

// Count returns the fixed capacity.
func (s *System) Count() int {
	return len(s.particles)
}

// Buffer returns the backend instance buffer, or nil for CPU-only systems.
func (s *System) Buffer() Buffer {
	return s.buffer
}

// Live counts slots that are not dead.
func (s *System) Live() int {
	n := 0
	for i := range s.particles {
		if !s.particles[i].Dead() {
			n++
		}
	}
	return n
}

// Reset kills every slot.
func (s *System) Reset() {
	for i := range s.particles {
		s.particles[i] = Particle{}
		s.particles[i].Kill()
	}
}

// DefaultVelocityScale damps sampled velocities on the Spawn path.
const DefaultVelocityScale = 0.2

// SpawnParams describes how to fill a slot.
type SpawnParams struct {
	// Origin is added to the sampled position.
	Origin   vecmath.Vec2
	Position random.Vec2
	Scale    random.Scalar
	Color    random.Color
	Velocity random.Vec2
	Life     random.Scalar

	// VelocityScale multiplies the sampled velocity.
	VelocityScale float32
}

// Validate reports whether every range in sp can be sampled.
func (sp *SpawnParams) Validate() error {
	if err := random.ValidateVec2(sp.Position); err != nil {
		return fmt.Errorf("position: %w", err)
	}
	if err := sp.Scale.Validate(); err != nil {
		return fmt.Errorf("scale: %w", err)
	}
	if err := random.ValidateColor(sp.Color); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	if err := random.ValidateVec2(sp.Velocity); err != nil {
		return fmt.Errorf("velocity: %w", err)
	}
	if err := sp.Life.Validate(); err != nil {
		return fmt.Errorf("life: %w", err)
	}
	return nil
}

// Spawn overwrites p by sampling sp. Position and velocity keep z = 0.
func Spawn(p *Particle, sp *SpawnParams, g *random.Generator) error {
	pos, err := g.Vec2(sp.Position)
	if err != nil {
		return fmt.Errorf("position: %w", err)
	}
	vel, err := g.Vec2(sp.Velocity)
	if err != nil {
		return fmt.Errorf("velocity: %w", err)
	}
	life, err := g.Scalar(sp.Life)
	if err != nil {
		return fmt.Errorf("life: %w", err)
	}
	scale, err := g.Scalar(sp.Scale)
	if err != nil {
		return fmt.Errorf("scale: %w", err)
	}
	color, err := g.Color(sp.Color)
	if err != nil {
		return fmt.Errorf("color: %w", err)
	}

	pos = pos.Add(sp.Origin)
	vel = vel.Mul(sp.VelocityScale)

	p.Position = pos.Vec3(0)
	p.Velocity = vel.Vec3(0)
	p.Life = life
	p.Scale = scale
	p.Color = color
	return nil
}
