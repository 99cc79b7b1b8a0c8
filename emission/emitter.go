// Package emission decides when and how many particles each emitter spawns,
// and fills dead slots with sampled particles.
package emission

import (
	"fmt"

	"github.com/pthm-cable/sparkles/particle"
	"github.com/pthm-cable/sparkles/random"
	"github.com/pthm-cable/sparkles/vecmath"
)

// Emitter is a spawn site.
type Emitter struct {
	Active   bool
	Position vecmath.Vec2

	// Interval is the time between bursts, PerEmission the burst size.
	Interval    random.Scalar
	PerEmission random.Scalar

	// Rate, when positive, replaces bursts with continuous emission in
	// particles per second.
	Rate float32

	// Burst, when set, is sampled once per burst and shifts every particle
	// of that burst.
	Burst random.Vec2

	Mesh    int
	Texture int

	Offset   random.Vec2
	Velocity random.Vec2
	Size     random.Scalar
	Life     random.Scalar
	Palette  random.Palette
}

// Clone returns a copy that shares no palette storage with e.
func (e *Emitter) Clone() Emitter {
	c := *e
	c.Palette = append(random.Palette(nil), e.Palette...)
	return c
}

// SpawnParams returns the particle spawn description for a burst at origin.
func (e *Emitter) SpawnParams(origin vecmath.Vec2) particle.SpawnParams {
	return particle.SpawnParams{
		Origin:        origin,
		Position:      e.Offset,
		Scale:         e.Size,
		Color:         e.Palette,
		Velocity:      e.Velocity,
		Life:          e.Life,
		VelocityScale: 1,
	}
}

// Validate reports whether every range of e can be sampled.
func (e *Emitter) Validate() error {
	if err := e.Interval.Validate(); err != nil {
		return fmt.Errorf("interval: %w", err)
	}
	if err := e.PerEmission.Validate(); err != nil {
		return fmt.Errorf("per emission: %w", err)
	}
	if e.Burst != nil {
		if err := random.ValidateVec2(e.Burst); err != nil {
			return fmt.Errorf("burst: %w", err)
		}
	}
	sp := e.SpawnParams(e.Position)
	return sp.Validate()
}
