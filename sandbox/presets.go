package sandbox

import (
	"fmt"
	"sort"

	"github.com/pthm-cable/sparkles/emission"
	"github.com/pthm-cable/sparkles/random"
	"github.com/pthm-cable/sparkles/render"
	"github.com/pthm-cable/sparkles/sim"
	"github.com/pthm-cable/sparkles/vecmath"
)

var presets = map[string]func() State{
	"default":   DefaultState,
	"firework":  FireworkState,
	"waterfall": WaterfallState,
}

// Preset returns the named starting state.
func Preset(name string) (State, error) {
	fn, ok := presets[name]
	if !ok {
		return State{}, fmt.Errorf("unknown preset %q (have %v)", name, PresetNames())
	}
	return fn(), nil
}

// PresetNames lists the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FireworkState bursts hundreds of red sparks from a jittered point every
// half to two seconds.
func FireworkState() State {
	return State{
		Version:     StateVersion,
		SpaceWidth:  1.6,
		SpaceHeight: 1,
		Physics: sim.Physics{
			Gravity:  vecmath.Vec2{0, -0.2},
			Friction: 0.99,
		},
		Emitters: []emission.Emitter{{
			Active:      true,
			Interval:    random.Range(0.5, 2),
			PerEmission: random.Range(300, 700),
			Burst:       random.Rect(-0.01, 0.01, -0.01, 0.01),
			Mesh:        render.MeshCircle,
			Texture:     render.TextureSharpestLight,
			Offset:      random.Ring(0, 0.01, 0, vecmath.Tau),
			Velocity:    random.Ring(0, 2, 0, vecmath.Tau),
			Size:        random.Range(0.01, 0.1),
			Life:        random.Range(0.5, 2),
			Palette: random.Palette{
				{Color: vecmath.Vec4{0.8, 0.2, 0.2, 1}, Weight: 1},
				{Color: vecmath.Vec4{0.9, 0.3, 0.3, 1}, Weight: 1},
				{Color: vecmath.Vec4{1, 0.4, 0.4, 1}, Weight: 1},
			},
		}},
	}
}

// WaterfallState pours a continuous blue stream from the upper left.
func WaterfallState() State {
	return State{
		Version:     StateVersion,
		SpaceWidth:  1.6,
		SpaceHeight: 1,
		Physics: sim.Physics{
			Gravity:  vecmath.Vec2{0, -2},
			Friction: 1,
		},
		Emitters: []emission.Emitter{{
			Active:      true,
			Position:    vecmath.Vec2{-0.5, 0.3},
			Interval:    random.Constant(1),
			PerEmission: random.Constant(0),
			Rate:        1000,
			Mesh:        render.MeshCircle,
			Texture:     render.TextureBlank,
			Offset:      random.Ring(0, 0.05, 0, vecmath.Tau),
			Velocity:    random.Ring(3, 5, 0.05*vecmath.Tau, 0.1*vecmath.Tau),
			Size:        random.Range(0.004, 0.05),
			Life:        random.Range(0.1, 3),
			Palette: random.Palette{
				{Color: vecmath.Vec4{0, 0.7, 0.9, 0.2}, Weight: 1},
				{Color: vecmath.Vec4{0.1, 0.8, 0.95, 0.3}, Weight: 2},
				{Color: vecmath.Vec4{0.2, 0.9, 1, 0.4}, Weight: 1},
			},
		}},
	}
}
