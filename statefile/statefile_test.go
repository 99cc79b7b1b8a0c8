package statefile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pthm-cable/sparkles/random"
	"github.com/pthm-cable/sparkles/sandbox"
	"github.com/pthm-cable/sparkles/sim"
	"github.com/pthm-cable/sparkles/vecmath"
)

func richState(t *testing.T) sandbox.State {
	t.Helper()
	st, err := sandbox.Preset("firework")
	if err != nil {
		t.Fatal(err)
	}
	st.Physics.FrictionMode = sim.FrictionExponential
	st.Physics.Attractors = []sim.Attractor{{
		Active:       true,
		Position:     vecmath.Vec2{0.2, -0.1},
		Law:          sim.InverseSquared,
		Radius:       10,
		Factor:       -2,
		MagnitudeCap: 100,
	}}
	return st
}

func encode(t *testing.T, st *sandbox.State) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(&buf, st); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestEncodeDecode(t *testing.T) {
	st := richState(t)
	got, err := Decode(bytes.NewReader(encode(t, &st)))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, st) {
		t.Errorf("decoded state differs\n got: %+v\nwant: %+v", got, st)
	}
	if _, ok := got.Emitters[0].Burst.(random.Cartesian); !ok {
		t.Errorf("burst lost its coordinate system: %T", got.Emitters[0].Burst)
	}
}

func TestDecodeRejects(t *testing.T) {
	st := richState(t)
	good := encode(t, &st)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
	}{
		{"magic", func(b []byte) []byte { b[0] = 'X'; return b }, ErrMagic},
		{"empty", func([]byte) []byte { return nil }, ErrMagic},
		{"version", func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[4:8], 2)
			return b
		}, ErrVersion},
		{"size too small", func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[8:12], binary.LittleEndian.Uint32(b[8:12])-4)
			return b
		}, ErrSize},
		{"size too large", func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[8:12], binary.LittleEndian.Uint32(b[8:12])+4)
			return b
		}, ErrSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.mutate(append([]byte(nil), good...))
			if _, err := Decode(bytes.NewReader(b)); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sandbox.spkl")
	st := sandbox.DefaultState()
	if err := Save(path, &st); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path, sandbox.DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, st) {
		t.Errorf("loaded state differs")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind")
	}
}

func TestLoadValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.spkl")
	st := sandbox.DefaultState()
	l := sandbox.DefaultLimits()
	for len(st.Emitters) <= l.MaxEmitters {
		st.Emitters = append(st.Emitters, sandbox.DefaultEmitter())
	}
	if err := Save(path, &st); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, l); !errors.Is(err, sandbox.ErrCapacity) {
		t.Errorf("err = %v, want ErrCapacity", err)
	}
}

func TestLoadRejectsUnknownModes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(st *sandbox.State)
		want   error
	}{
		{"force law", func(st *sandbox.State) {
			a := sandbox.DefaultAttractor()
			a.Law = sim.ForceLaw(7)
			st.Physics.Attractors = append(st.Physics.Attractors, a)
		}, sim.ErrUnknownForceLaw},
		{"friction mode", func(st *sandbox.State) { st.Physics.FrictionMode = sim.FrictionMode(9) }, sim.ErrUnknownFrictionMode},
		{"mesh preset", func(st *sandbox.State) { st.Emitters[0].Mesh = 42 }, sandbox.ErrIndex},
		{"texture preset", func(st *sandbox.State) { st.Emitters[0].Texture = 42 }, sandbox.ErrIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.spkl")
			st := sandbox.DefaultState()
			tt.mutate(&st)
			if err := Save(path, &st); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path, sandbox.DefaultLimits()); !errors.Is(err, tt.want) {
				t.Errorf("Load() err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	st := richState(t)
	var buf bytes.Buffer
	if err := WriteYAML(&buf, &st); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"coordinates: polar", "coordinates: cartesian", "law: inverse_squared", "friction_mode: exponential"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml missing %q:\n%s", want, out)
		}
	}
	got, err := ReadYAML(strings.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, st) {
		t.Errorf("yaml round trip differs\n got: %+v\nwant: %+v", got, st)
	}
}

func TestReadYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"coordinates", "version: 1\nemitters:\n  - offset: {coordinates: spherical}\n"},
		{"missing axis", "version: 1\nemitters:\n  - offset: {coordinates: cartesian}\n"},
		{"law", "version: 1\nphysics:\n  attractors:\n    - law: cubic\n"},
		{"friction", "version: 1\nphysics:\n  friction_mode: sticky\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadYAML(strings.NewReader(tt.doc)); err == nil {
				t.Errorf("accepted %q", tt.doc)
			}
		})
	}
}
