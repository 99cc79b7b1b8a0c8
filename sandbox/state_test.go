package sandbox

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/sparkles/random"
	"github.com/pthm-cable/sparkles/render"
	"github.com/pthm-cable/sparkles/sim"
	"github.com/pthm-cable/sparkles/vecmath"
)

func TestDefaultStateValid(t *testing.T) {
	st := DefaultState()
	if err := st.Validate(DefaultLimits()); err != nil {
		t.Fatalf("default state invalid: %v", err)
	}
	g := st.Physics.Gravity
	if math.Abs(float64(g.X())) > 1e-6 || math.Abs(float64(g.Y())+0.001) > 1e-6 {
		t.Errorf("gravity = %v, want (0, -0.001)", g)
	}
}

func TestProjectionCorners(t *testing.T) {
	st := DefaultState()
	m := st.Projection()
	tests := []struct {
		in   vecmath.Vec3
		want vecmath.Vec3
	}{
		{vecmath.Vec3{8, 4.5, 0}, vecmath.Vec3{1, 1, 0}},
		{vecmath.Vec3{-8, -4.5, 0}, vecmath.Vec3{-1, -1, 0}},
		{vecmath.Vec3{0, 0, 0}, vecmath.Vec3{0, 0, 0}},
	}
	for _, tt := range tests {
		got := vecmath.Transform(m, tt.in)
		for k := 0; k < 2; k++ {
			if math.Abs(float64(got[k]-tt.want[k])) > 1e-5 {
				t.Errorf("Transform(%v) = %v, want %v", tt.in, got, tt.want)
				break
			}
		}
	}
}

func TestAddEmitterCopiesLast(t *testing.T) {
	st := DefaultState()
	st.Emitters[0].Rate = 42
	i, err := st.AddEmitter(DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	if i != 1 || st.Emitters[1].Rate != 42 {
		t.Errorf("new emitter %d has rate %v, want copy of last", i, st.Emitters[1].Rate)
	}
	st.Emitters[1].Palette[0].Weight = 7
	if st.Emitters[0].Palette[0].Weight != 1 {
		t.Errorf("copied emitter shares palette storage")
	}

	empty := State{Version: StateVersion, SpaceWidth: 1, SpaceHeight: 1}
	if _, err := empty.AddEmitter(DefaultLimits()); err != nil {
		t.Fatal(err)
	}
	if !empty.Emitters[0].Active || len(empty.Emitters[0].Palette) != 1 {
		t.Errorf("first emitter should be the default")
	}
}

func TestEditorCaps(t *testing.T) {
	l := Limits{MaxEmitters: 2, MaxColors: 2, MaxAttractors: 1, ParticlesPerEmitter: 10}

	tests := []struct {
		name string
		op   func(st *State) error
		want error
	}{
		{"emitter cap", func(st *State) error {
			if _, err := st.AddEmitter(l); err != nil {
				return err
			}
			_, err := st.AddEmitter(l)
			return err
		}, ErrCapacity},
		{"attractor cap", func(st *State) error {
			if _, err := st.AddAttractor(l); err != nil {
				return err
			}
			_, err := st.AddAttractor(l)
			return err
		}, ErrCapacity},
		{"color cap", func(st *State) error {
			if _, err := st.AddColor(0, l); err != nil {
				return err
			}
			_, err := st.AddColor(0, l)
			return err
		}, ErrCapacity},
		{"remove missing emitter", func(st *State) error { return st.RemoveEmitter(3) }, ErrIndex},
		{"remove missing attractor", func(st *State) error { return st.RemoveAttractor(0) }, ErrIndex},
		{"remove first color", func(st *State) error { return st.RemoveColor(0, 0) }, ErrIndex},
		{"color of missing emitter", func(st *State) error {
			_, err := st.AddColor(5, l)
			return err
		}, ErrIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := DefaultState()
			if err := tt.op(&st); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestColorEditing(t *testing.T) {
	l := DefaultLimits()
	st := DefaultState()
	st.Emitters[0].Palette[0] = random.Swatch{Color: vecmath.Vec4{1, 0, 0, 1}, Weight: 5}

	i, err := st.AddColor(0, l)
	if err != nil {
		t.Fatal(err)
	}
	sw := st.Emitters[0].Palette[i]
	if sw.Color != (vecmath.Vec4{1, 0, 0, 1}) || sw.Weight != 1 {
		t.Errorf("added swatch = %+v, want last color with weight 1", sw)
	}
	if err := st.RemoveColor(0, i); err != nil {
		t.Fatal(err)
	}
	if len(st.Emitters[0].Palette) != 1 {
		t.Errorf("palette len = %d, want 1", len(st.Emitters[0].Palette))
	}
}

func TestRemoveKeepsOrder(t *testing.T) {
	l := DefaultLimits()
	st := DefaultState()
	for k := 0; k < 3; k++ {
		i, err := st.AddEmitter(l)
		if err != nil {
			t.Fatal(err)
		}
		st.Emitters[i].Rate = float32(i)
	}
	if err := st.RemoveEmitter(1); err != nil {
		t.Fatal(err)
	}
	want := []float32{0, 2, 3}
	for i, e := range st.Emitters {
		if e.Rate != want[i] {
			t.Errorf("emitter %d rate = %v, want %v", i, e.Rate, want[i])
		}
	}
}

func TestValidate(t *testing.T) {
	l := DefaultLimits()
	tests := []struct {
		name   string
		mutate func(st *State)
		ok     bool
	}{
		{"default", func(*State) {}, true},
		{"version", func(st *State) { st.Version = 2 }, false},
		{"empty space", func(st *State) { st.SpaceWidth = 0 }, false},
		{"bad range", func(st *State) { st.Emitters[0].Life.Distribution = 9 }, false},
		{"last presets", func(st *State) {
			st.Emitters[0].Mesh = render.NumMeshPresets - 1
			st.Emitters[0].Texture = render.NumTexturePresets - 1
		}, true},
		{"unknown mesh", func(st *State) { st.Emitters[0].Mesh = 42 }, false},
		{"negative mesh", func(st *State) { st.Emitters[0].Mesh = -1 }, false},
		{"unknown texture", func(st *State) { st.Emitters[0].Texture = render.NumTexturePresets }, false},
		{"unknown friction mode", func(st *State) { st.Physics.FrictionMode = sim.FrictionMode(9) }, false},
		{"unknown force law", func(st *State) {
			a := DefaultAttractor()
			a.Law = sim.ForceLaw(7)
			st.Physics.Attractors = append(st.Physics.Attractors, a)
		}, false},
		{"too many colors", func(st *State) {
			for len(st.Emitters[0].Palette) <= l.MaxColors {
				st.Emitters[0].Palette = append(st.Emitters[0].Palette, DefaultSwatch())
			}
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := DefaultState()
			tt.mutate(&st)
			err := st.Validate(l)
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestPresets(t *testing.T) {
	for _, name := range PresetNames() {
		st, err := Preset(name)
		if err != nil {
			t.Fatal(err)
		}
		if err := st.Validate(DefaultLimits()); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
	if _, err := Preset("nope"); err == nil {
		t.Errorf("unknown preset accepted")
	}
}
