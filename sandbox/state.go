package sandbox

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/sparkles/emission"
	"github.com/pthm-cable/sparkles/random"
	"github.com/pthm-cable/sparkles/render"
	"github.com/pthm-cable/sparkles/sim"
	"github.com/pthm-cable/sparkles/vecmath"
)

// StateVersion is the current State schema version.
const StateVersion = 1

var (
	ErrCapacity = errors.New("sandbox: capacity reached")
	ErrIndex    = errors.New("sandbox: index out of range")
)

// State is the editable sandbox configuration: the space, the shared
// physics and the ordered emitters.
type State struct {
	Version     uint32
	SpaceWidth  float32
	SpaceHeight float32
	Physics     sim.Physics
	Emitters    []emission.Emitter
}

// Limits caps the editable collections.
type Limits struct {
	MaxEmitters         int
	MaxColors           int
	MaxAttractors       int
	ParticlesPerEmitter int
}

// DefaultLimits returns the stock caps.
func DefaultLimits() Limits {
	return Limits{
		MaxEmitters:         8,
		MaxColors:           16,
		MaxAttractors:       8,
		ParticlesPerEmitter: 5000,
	}
}

// DefaultEmitter returns a white, once-a-second emitter at the origin.
func DefaultEmitter() emission.Emitter {
	return emission.Emitter{
		Active:      true,
		Interval:    random.Constant(1),
		PerEmission: random.Range(0, 10),
		Offset:      random.Rect(0, 0, 0, 0),
		Velocity:    random.Ring(0, 1, 0, vecmath.Tau),
		Size:        random.Constant(0.5),
		Life:        random.Constant(1),
		Palette:     random.Palette{DefaultSwatch()},
	}
}

// DefaultSwatch is an opaque white color of weight 1.
func DefaultSwatch() random.Swatch {
	return random.Swatch{Color: vecmath.Vec4{1, 1, 1, 1}, Weight: 1}
}

// DefaultAttractor returns a linear attractor at the origin.
func DefaultAttractor() sim.Attractor {
	return sim.Attractor{
		Active:       true,
		Law:          sim.Linear,
		Radius:       0.5,
		Factor:       1,
		MagnitudeCap: 10,
	}
}

// DefaultState returns a 16x9 space with light downward gravity and one
// default emitter.
func DefaultState() State {
	return State{
		Version:     StateVersion,
		SpaceWidth:  16,
		SpaceHeight: 9,
		Physics: sim.Physics{
			Gravity:  vecmath.Polar(0.001, -vecmath.Tau/4),
			Friction: 1,
		},
		Emitters: []emission.Emitter{DefaultEmitter()},
	}
}

// Clone returns a deep copy of s.
func (s *State) Clone() State {
	c := *s
	c.Physics.Attractors = append([]sim.Attractor(nil), s.Physics.Attractors...)
	c.Emitters = make([]emission.Emitter, len(s.Emitters))
	for i := range s.Emitters {
		c.Emitters[i] = s.Emitters[i].Clone()
	}
	return c
}

// Validate checks the version, the caps, the physics modes and every
// emitter, including its mesh and texture presets.
func (s *State) Validate(l Limits) error {
	if s.Version != StateVersion {
		return fmt.Errorf("state version %d, want %d", s.Version, StateVersion)
	}
	if s.SpaceWidth <= 0 || s.SpaceHeight <= 0 {
		return fmt.Errorf("space %vx%v must be positive", s.SpaceWidth, s.SpaceHeight)
	}
	if len(s.Emitters) > l.MaxEmitters {
		return fmt.Errorf("%w: %d emitters, max %d", ErrCapacity, len(s.Emitters), l.MaxEmitters)
	}
	if len(s.Physics.Attractors) > l.MaxAttractors {
		return fmt.Errorf("%w: %d attractors, max %d", ErrCapacity, len(s.Physics.Attractors), l.MaxAttractors)
	}
	if err := s.Physics.Validate(); err != nil {
		return err
	}
	for i := range s.Emitters {
		e := &s.Emitters[i]
		if len(e.Palette) > l.MaxColors {
			return fmt.Errorf("emitter %d: %w: %d colors, max %d", i, ErrCapacity, len(e.Palette), l.MaxColors)
		}
		if e.Mesh < 0 || e.Mesh >= render.NumMeshPresets {
			return fmt.Errorf("emitter %d: %w: mesh preset %d", i, ErrIndex, e.Mesh)
		}
		if e.Texture < 0 || e.Texture >= render.NumTexturePresets {
			return fmt.Errorf("emitter %d: %w: texture preset %d", i, ErrIndex, e.Texture)
		}
		if err := e.Validate(); err != nil {
			return fmt.Errorf("emitter %d: %w", i, err)
		}
	}
	return nil
}

// AddEmitter appends a copy of the last emitter, or the default emitter
// when there is none, and returns its index.
func (s *State) AddEmitter(l Limits) (int, error) {
	if len(s.Emitters) >= l.MaxEmitters {
		return -1, fmt.Errorf("%w: %d emitters", ErrCapacity, l.MaxEmitters)
	}
	e := DefaultEmitter()
	if n := len(s.Emitters); n > 0 {
		e = s.Emitters[n-1].Clone()
	}
	s.Emitters = append(s.Emitters, e)
	return len(s.Emitters) - 1, nil
}

// RemoveEmitter deletes emitter i, keeping the order of the rest.
func (s *State) RemoveEmitter(i int) error {
	if i < 0 || i >= len(s.Emitters) {
		return fmt.Errorf("%w: emitter %d", ErrIndex, i)
	}
	s.Emitters = append(s.Emitters[:i], s.Emitters[i+1:]...)
	return nil
}

// AddAttractor appends a copy of the last attractor, or the default one.
func (s *State) AddAttractor(l Limits) (int, error) {
	as := s.Physics.Attractors
	if len(as) >= l.MaxAttractors {
		return -1, fmt.Errorf("%w: %d attractors", ErrCapacity, l.MaxAttractors)
	}
	a := DefaultAttractor()
	if n := len(as); n > 0 {
		a = as[n-1]
	}
	s.Physics.Attractors = append(as, a)
	return len(s.Physics.Attractors) - 1, nil
}

// RemoveAttractor deletes attractor i, keeping the order of the rest.
func (s *State) RemoveAttractor(i int) error {
	as := s.Physics.Attractors
	if i < 0 || i >= len(as) {
		return fmt.Errorf("%w: attractor %d", ErrIndex, i)
	}
	s.Physics.Attractors = append(as[:i], as[i+1:]...)
	return nil
}

// AddColor appends a copy of the emitter's last color with weight 1.
func (s *State) AddColor(emitter int, l Limits) (int, error) {
	if emitter < 0 || emitter >= len(s.Emitters) {
		return -1, fmt.Errorf("%w: emitter %d", ErrIndex, emitter)
	}
	e := &s.Emitters[emitter]
	if len(e.Palette) >= l.MaxColors {
		return -1, fmt.Errorf("%w: %d colors", ErrCapacity, l.MaxColors)
	}
	sw := DefaultSwatch()
	if n := len(e.Palette); n > 0 {
		sw = e.Palette[n-1]
		sw.Weight = 1
	}
	e.Palette = append(e.Palette, sw)
	return len(e.Palette) - 1, nil
}

// RemoveColor deletes a color from an emitter's palette. The first color
// is never removed so every emitter keeps one.
func (s *State) RemoveColor(emitter, color int) error {
	if emitter < 0 || emitter >= len(s.Emitters) {
		return fmt.Errorf("%w: emitter %d", ErrIndex, emitter)
	}
	e := &s.Emitters[emitter]
	if color <= 0 || color >= len(e.Palette) {
		return fmt.Errorf("%w: color %d", ErrIndex, color)
	}
	e.Palette = append(e.Palette[:color], e.Palette[color+1:]...)
	return nil
}

// Projection maps the space, centered on the origin with +y up, to clip
// space.
func (s *State) Projection() vecmath.Mat4 {
	w, h := s.SpaceWidth/2, s.SpaceHeight/2
	return vecmath.Orthographic(-w, w, h, -h, -1, 1)
}

// LogValue implements slog.LogValuer.
func (s State) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("version", int(s.Version)),
		slog.Float64("space_width", float64(s.SpaceWidth)),
		slog.Float64("space_height", float64(s.SpaceHeight)),
		slog.Int("emitters", len(s.Emitters)),
		slog.Int("attractors", len(s.Physics.Attractors)),
		slog.String("friction_mode", s.Physics.FrictionMode.String()),
	)
}
