// Package sim integrates particle physics: gravity, radial attractor fields,
// friction, life decay and the fade-out policy.
package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/sparkles/particle"
	"github.com/pthm-cable/sparkles/vecmath"
)

var (
	ErrUnknownForceLaw     = errors.New("sim: unknown force law")
	ErrUnknownFrictionMode = errors.New("sim: unknown friction mode")
)

// ForceLaw selects how an attractor's force scales with distance.
type ForceLaw uint32

const (
	Linear ForceLaw = iota
	Inverse
	InverseSquared
)

// Valid reports whether l is one of the defined laws.
func (l ForceLaw) Valid() bool {
	return l <= InverseSquared
}

func (l ForceLaw) String() string {
	switch l {
	case Linear:
		return "linear"
	case Inverse:
		return "inverse"
	case InverseSquared:
		return "inverse_squared"
	default:
		return fmt.Sprintf("force_law(%d)", uint32(l))
	}
}

// Attractor is a radial force field. A negative factor repels.
type Attractor struct {
	Active       bool
	Position     vecmath.Vec2
	Law          ForceLaw
	Radius       float32
	Factor       float32
	MagnitudeCap float32
}

// Force returns the force the attractor applies at p, already clamped to
// MagnitudeCap. Outside the radius, or exactly at the center, it is zero.
func (a *Attractor) Force(p vecmath.Vec2) vecmath.Vec2 {
	delta := a.Position.Sub(p)
	dist2 := delta.LenSqr()
	if dist2 >= a.Radius*a.Radius {
		return vecmath.Vec2{}
	}

	dist := float32(math.Sqrt(float64(dist2)))
	if dist == 0 {
		return vecmath.Vec2{}
	}
	dir := vecmath.Normalize(delta)

	var force vecmath.Vec2
	switch a.Law {
	case Linear:
		force = dir.Mul(a.Factor * dist)
	case Inverse:
		force = dir.Mul(a.Factor / dist)
	case InverseSquared:
		force = dir.Mul(a.Factor / dist2)
	default:
		// Validate keeps unknown laws out of a running state.
		panic(fmt.Sprintf("%v: %v", ErrUnknownForceLaw, a.Law))
	}

	if mag := force.Len(); mag > a.MagnitudeCap {
		force = force.Mul(a.MagnitudeCap / mag)
	}
	return force
}

// FrictionMode selects how Friction damps velocity.
type FrictionMode uint8

const (
	// FrictionPerStep multiplies velocity by Friction once per step. The
	// result depends on frame rate.
	FrictionPerStep FrictionMode = iota
	// FrictionExponential multiplies velocity by Friction^dt.
	FrictionExponential
)

// ParseFrictionMode maps a config name to a mode.
func ParseFrictionMode(s string) (FrictionMode, error) {
	switch s {
	case "", "per_step":
		return FrictionPerStep, nil
	case "exponential":
		return FrictionExponential, nil
	default:
		return FrictionPerStep, fmt.Errorf("%w: %q", ErrUnknownFrictionMode, s)
	}
}

// Valid reports whether m is one of the defined modes.
func (m FrictionMode) Valid() bool {
	return m <= FrictionExponential
}

func (m FrictionMode) String() string {
	switch m {
	case FrictionPerStep:
		return "per_step"
	case FrictionExponential:
		return "exponential"
	default:
		return fmt.Sprintf("friction_mode(%d)", uint8(m))
	}
}

// Physics is the global simulation configuration shared by all particles
// of a frame.
type Physics struct {
	Gravity      vecmath.Vec2
	Friction     float32
	FrictionMode FrictionMode
	Attractors   []Attractor
}

// Validate rejects unknown friction modes and force laws.
func (ph *Physics) Validate() error {
	if !ph.FrictionMode.Valid() {
		return fmt.Errorf("%w: %v", ErrUnknownFrictionMode, ph.FrictionMode)
	}
	for i := range ph.Attractors {
		if law := ph.Attractors[i].Law; !law.Valid() {
			return fmt.Errorf("attractor %d: %w: %v", i, ErrUnknownForceLaw, law)
		}
	}
	return nil
}

// Step advances one particle by dt.
func (ph *Physics) Step(p *particle.Particle, dt float32) {
	vel := p.Velocity.Vec2().Add(ph.Gravity.Mul(dt))

	pos := p.Position.Vec2()
	for i := range ph.Attractors {
		a := &ph.Attractors[i]
		if !a.Active {
			continue
		}
		vel = vel.Add(a.Force(pos).Mul(dt))
	}
	p.Velocity[0], p.Velocity[1] = vel[0], vel[1]

	p.Position = p.Position.Add(p.Velocity.Mul(dt))
	p.Velocity = p.Velocity.Mul(ph.damping(dt))

	p.Life -= dt
	if p.Life < p.Color[3] {
		p.Color[3] = p.Life
	}
	if p.Life < 0 {
		p.Scale = 0
	}
}

// StepAll advances every slot, dead or alive.
func (ph *Physics) StepAll(ps []particle.Particle, dt float32) {
	for i := range ps {
		ph.Step(&ps[i], dt)
	}
}

func (ph *Physics) damping(dt float32) float32 {
	switch ph.FrictionMode {
	case FrictionPerStep:
		return ph.Friction
	case FrictionExponential:
		return float32(math.Pow(float64(ph.Friction), float64(dt)))
	default:
		panic(fmt.Sprintf("%v: %v", ErrUnknownFrictionMode, ph.FrictionMode))
	}
}

// ActiveAttractors counts attractors that apply force.
func (ph *Physics) ActiveAttractors() int {
	n := 0
	for i := range ph.Attractors {
		if ph.Attractors[i].Active {
			n++
		}
	}
	return n
}
