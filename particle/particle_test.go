package particle

import (
	"errors"
	"math/rand"
	"testing"
	"unsafe"

	"github.com/pthm-cable/sparkles/random"
	"github.com/pthm-cable/sparkles/vecmath"
)

type fakeBuffer struct{ capacity int }

func (b *fakeBuffer) Capacity() int { return b.capacity }

type fakeAllocator struct {
	requested []int
	err       error
}

func (a *fakeAllocator) CreateParticleBuffer(capacity int) (Buffer, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.requested = append(a.requested, capacity)
	return &fakeBuffer{capacity: capacity}, nil
}

func TestLayout(t *testing.T) {
	var p Particle
	if got := unsafe.Sizeof(p); got != Stride {
		t.Errorf("sizeof(Particle) = %d, want %d", got, Stride)
	}
	offsets := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"position", unsafe.Offsetof(p.Position), OffsetPosition},
		{"scale", unsafe.Offsetof(p.Scale), OffsetScale},
		{"color", unsafe.Offsetof(p.Color), OffsetColor},
		{"velocity", unsafe.Offsetof(p.Velocity), OffsetVelocity},
		{"life", unsafe.Offsetof(p.Life), OffsetLife},
	}
	for _, o := range offsets {
		if o.got != o.want {
			t.Errorf("offset of %s = %d, want %d", o.name, o.got, o.want)
		}
	}
}

func TestNewSystemAllDead(t *testing.T) {
	alloc := &fakeAllocator{}
	s, err := NewSystem(64, alloc)
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}

	if s.Count() != 64 {
		t.Errorf("Count = %d, want 64", s.Count())
	}
	for i, p := range s.Particles() {
		if !p.Dead() || p.Life >= 0 {
			t.Fatalf("slot %d not dead: life=%v", i, p.Life)
		}
		if p.Scale != 0 {
			t.Fatalf("slot %d scale = %v, want 0", i, p.Scale)
		}
	}
	if s.Live() != 0 {
		t.Errorf("Live = %d, want 0", s.Live())
	}
	if len(alloc.requested) != 1 || alloc.requested[0] != 64 {
		t.Errorf("buffer requests = %v, want [64]", alloc.requested)
	}
	if s.Buffer() == nil || s.Buffer().Capacity() != 64 {
		t.Errorf("buffer capacity mismatch")
	}
}

func TestNewSystemErrors(t *testing.T) {
	if _, err := NewSystem(0, nil); !errors.Is(err, ErrCapacity) {
		t.Errorf("expected ErrCapacity, got %v", err)
	}

	boom := errors.New("boom")
	if _, err := NewSystem(4, &fakeAllocator{err: boom}); !errors.Is(err, boom) {
		t.Errorf("expected wrapped allocator error, got %v", err)
	}
}

func testParams() SpawnParams {
	return SpawnParams{
		Origin:        vecmath.Vec2{1, 2},
		Position:      random.Rect(0, 0, 0, 0),
		Scale:         random.Range(0.5, 1),
		Color:         random.Solid(vecmath.Vec4{1, 1, 1, 1}),
		Velocity:      random.Rect(5, 5, -5, -5),
		Life:          random.Constant(2),
		VelocityScale: DefaultVelocityScale,
	}
}

func TestSpawn(t *testing.T) {
	g := random.NewWithSource(rand.NewSource(1))
	sp := testParams()

	var p Particle
	p.Kill()
	if err := Spawn(&p, &sp, g); err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	if p.Position != (vecmath.Vec3{1, 2, 0}) {
		t.Errorf("position = %v, want origin (1,2,0)", p.Position)
	}
	if p.Velocity != (vecmath.Vec3{1, -1, 0}) {
		t.Errorf("velocity = %v, want (1,-1,0) after 0.2 scale", p.Velocity)
	}
	if p.Life != 2 || p.Dead() {
		t.Errorf("life = %v, want 2", p.Life)
	}
	if p.Scale < 0.5 || p.Scale > 1 {
		t.Errorf("scale = %v, want in [0.5, 1]", p.Scale)
	}
	if p.Color != (vecmath.Vec4{1, 1, 1, 1}) {
		t.Errorf("color = %v", p.Color)
	}
}

func TestSpawnUnsupported(t *testing.T) {
	g := random.NewWithSource(rand.NewSource(1))
	sp := testParams()
	sp.Life = random.Scalar{Distribution: random.Distribution(2)}

	var p Particle
	p.Kill()
	err := Spawn(&p, &sp, g)
	if !errors.Is(err, random.ErrUnsupportedDistribution) {
		t.Errorf("expected ErrUnsupportedDistribution, got %v", err)
	}
	if err := sp.Validate(); !errors.Is(err, random.ErrUnsupportedDistribution) {
		t.Errorf("Validate: expected ErrUnsupportedDistribution, got %v", err)
	}
}

func TestReset(t *testing.T) {
	s, _ := NewSystem(3, nil)
	s.Particles()[1] = Particle{Life: 1, Scale: 1}
	if s.Live() != 1 {
		t.Fatalf("Live = %d, want 1", s.Live())
	}
	s.Reset()
	if s.Live() != 0 {
		t.Errorf("Live after Reset = %d, want 0", s.Live())
	}
}
