package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/sparkles/particle"
	"github.com/pthm-cable/sparkles/vecmath"
)

func approx(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) <= float64(eps)
}

func TestAttractorForceLaws(t *testing.T) {
	tests := []struct {
		name    string
		law     ForceLaw
		factor  float32
		cap     float32
		pos     vecmath.Vec2
		wantMag float32
	}{
		{"inverse squared below cap", InverseSquared, 2, 100, vecmath.Vec2{2, 0}, 0.5},
		{"inverse squared clamped", InverseSquared, 2, 100, vecmath.Vec2{0.1, 0}, 100},
		{"inverse", Inverse, 2, 100, vecmath.Vec2{0, 4}, 0.5},
		{"linear", Linear, 2, 100, vecmath.Vec2{3, 0}, 6},
		{"outside radius", Linear, 2, 100, vecmath.Vec2{11, 0}, 0},
		{"at center", InverseSquared, 2, 100, vecmath.Vec2{0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Attractor{Active: true, Law: tt.law, Radius: 10, Factor: tt.factor, MagnitudeCap: tt.cap}
			f := a.Force(tt.pos)
			if !approx(f.Len(), tt.wantMag, 1e-3) {
				t.Errorf("|force| = %v, want %v", f.Len(), tt.wantMag)
			}
			if tt.wantMag > 0 {
				// Force points from the particle toward the attractor.
				dir := vecmath.Normalize(tt.pos.Mul(-1))
				got := vecmath.Normalize(f)
				if !approx(got[0], dir[0], 1e-5) || !approx(got[1], dir[1], 1e-5) {
					t.Errorf("direction = %v, want %v", got, dir)
				}
			}
		})
	}
}

func TestAttractorRepels(t *testing.T) {
	a := Attractor{Active: true, Law: Linear, Radius: 5, Factor: -1, MagnitudeCap: 10}
	f := a.Force(vecmath.Vec2{1, 0})
	if f[0] <= 0 {
		t.Errorf("negative factor should push away, got %v", f)
	}
}

func TestStepEndToEnd(t *testing.T) {
	ph := Physics{Gravity: vecmath.Vec2{0, -1}, Friction: 1}
	p := particle.Particle{Life: 1, Scale: 1, Color: vecmath.Vec4{1, 1, 1, 1}}

	ph.Step(&p, 0.1)

	if !approx(p.Velocity[0], 0, 1e-6) || !approx(p.Velocity[1], -0.1, 1e-6) {
		t.Errorf("velocity = %v, want (0, -0.1)", p.Velocity)
	}
	if !approx(p.Position[0], 0, 1e-6) || !approx(p.Position[1], -0.01, 1e-6) {
		t.Errorf("position = %v, want (0, -0.01)", p.Position)
	}
	if !approx(p.Life, 0.9, 1e-6) {
		t.Errorf("life = %v, want 0.9", p.Life)
	}
	if p.Color[3] != p.Life {
		t.Errorf("alpha = %v, want min(1, life) = %v", p.Color[3], p.Life)
	}
	if p.Scale != 1 {
		t.Errorf("scale = %v, want unchanged 1", p.Scale)
	}
}

func TestStepKeepsLowerAlpha(t *testing.T) {
	ph := Physics{Friction: 1}
	p := particle.Particle{Life: 5, Scale: 1, Color: vecmath.Vec4{1, 1, 1, 0.3}}
	ph.Step(&p, 0.1)
	if p.Color[3] != 0.3 {
		t.Errorf("alpha = %v, want 0.3", p.Color[3])
	}
}

func TestStepDeathZeroesScale(t *testing.T) {
	ph := Physics{Friction: 1}
	p := particle.Particle{Life: 0.05, Scale: 2, Color: vecmath.Vec4{1, 1, 1, 1}}
	ph.Step(&p, 0.1)
	if !p.Dead() {
		t.Fatalf("life = %v, want < 0", p.Life)
	}
	if p.Scale != 0 {
		t.Errorf("scale = %v, want 0 after death", p.Scale)
	}
	if p.Color[3] >= 0 {
		t.Errorf("alpha = %v, want negative life", p.Color[3])
	}
}

func TestStepAttractorClampThenAccumulate(t *testing.T) {
	ph := Physics{
		Friction: 1,
		Attractors: []Attractor{
			{Active: true, Law: InverseSquared, Radius: 10, Factor: 2, MagnitudeCap: 100},
			{Active: false, Law: Linear, Radius: 10, Factor: 1000, MagnitudeCap: 1000},
		},
	}
	p := particle.Particle{Position: vecmath.Vec3{0.1, 0, 0}, Life: 1, Scale: 1}
	ph.Step(&p, 0.01)

	// Clamped force 100 toward origin over dt 0.01.
	if !approx(p.Velocity[0], -1, 1e-4) || !approx(p.Velocity[1], 0, 1e-6) {
		t.Errorf("velocity = %v, want (-1, 0)", p.Velocity)
	}
	if !approx(p.Position[0], 0.09, 1e-5) {
		t.Errorf("position x = %v, want 0.09", p.Position[0])
	}
}

func TestFrictionModes(t *testing.T) {
	tests := []struct {
		name string
		mode FrictionMode
		dt   float32
		want float32
	}{
		{"per step ignores dt", FrictionPerStep, 0.5, 0.5},
		{"exponential full second", FrictionExponential, 1, 0.5},
		{"exponential half second", FrictionExponential, 0.5, float32(math.Sqrt(0.5))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ph := Physics{Friction: 0.5, FrictionMode: tt.mode}
			p := particle.Particle{Velocity: vecmath.Vec3{1, 0, 0}, Life: 10}
			ph.Step(&p, tt.dt)
			if !approx(p.Velocity[0], tt.want, 1e-5) {
				t.Errorf("velocity = %v, want %v", p.Velocity[0], tt.want)
			}
		})
	}
}

func TestParseFrictionMode(t *testing.T) {
	if m, err := ParseFrictionMode("exponential"); err != nil || m != FrictionExponential {
		t.Errorf("exponential: %v, %v", m, err)
	}
	if m, err := ParseFrictionMode(""); err != nil || m != FrictionPerStep {
		t.Errorf("empty: %v, %v", m, err)
	}
	if _, err := ParseFrictionMode("bogus"); !errors.Is(err, ErrUnknownFrictionMode) {
		t.Errorf("bogus: err = %v, want ErrUnknownFrictionMode", err)
	}
}

func TestPhysicsValidate(t *testing.T) {
	tests := []struct {
		name string
		ph   Physics
		want error
	}{
		{"defaults", Physics{Friction: 1}, nil},
		{"exponential", Physics{FrictionMode: FrictionExponential, Attractors: []Attractor{{Law: InverseSquared}}}, nil},
		{"unknown friction mode", Physics{FrictionMode: FrictionMode(9)}, ErrUnknownFrictionMode},
		{"unknown force law", Physics{Attractors: []Attractor{{Law: Linear}, {Law: ForceLaw(7)}}}, ErrUnknownForceLaw},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ph.Validate()
			if tt.want == nil && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUnknownModesDoNotFallThrough(t *testing.T) {
	mustPanic := func(t *testing.T, f func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		f()
	}

	t.Run("force law", func(t *testing.T) {
		a := Attractor{Active: true, Law: ForceLaw(7), Radius: 5, Factor: 1, MagnitudeCap: 10}
		mustPanic(t, func() { a.Force(vecmath.Vec2{1, 0}) })
	})
	t.Run("friction mode", func(t *testing.T) {
		ph := Physics{Friction: 0.5, FrictionMode: FrictionMode(9)}
		p := particle.Particle{Life: 1}
		mustPanic(t, func() { ph.Step(&p, 0.1) })
	})

	if got := FrictionMode(9).String(); got != "friction_mode(9)" {
		t.Errorf("String() = %q", got)
	}
}

func TestStepAllSpawnDeathCycle(t *testing.T) {
	ph := Physics{Gravity: vecmath.Vec2{0, -1}, Friction: 1}
	ps := make([]particle.Particle, 2)
	ps[0] = particle.Particle{Life: 0.3, Scale: 0.7, Color: vecmath.Vec4{1, 1, 1, 1}}
	ps[1].Kill()

	for i := 0; i < 10 && !ps[0].Dead(); i++ {
		ph.StepAll(ps, 0.1)
	}
	if !ps[0].Dead() || ps[0].Scale != 0 {
		t.Errorf("particle should die with scale 0, got life=%v scale=%v", ps[0].Life, ps[0].Scale)
	}
	if ps[1].Scale != 0 {
		t.Errorf("dead slot scale = %v, want 0", ps[1].Scale)
	}
}
