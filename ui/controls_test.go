package ui

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/sparkles/random"
	"github.com/pthm-cable/sparkles/render"
	"github.com/pthm-cable/sparkles/sandbox"
	"github.com/pthm-cable/sparkles/vecmath"
)

func newSandbox(t *testing.T, l sandbox.Limits) *sandbox.Sandbox {
	t.Helper()
	sb := sandbox.New(render.NewRecorder(), sandbox.DefaultState(), l,
		random.NewWithSource(rand.NewSource(1)), sandbox.Options{Width: 320, Height: 180})
	if err := sb.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return sb
}

func TestEditorApplyEmitters(t *testing.T) {
	sb := newSandbox(t, sandbox.DefaultLimits())
	e := NewEditor(0, 0, 280)
	e.Clamp(&sb.State)
	if e.Selected != 0 || e.SelectedAttractor != -1 {
		t.Fatalf("selection = %d/%d, want 0/-1", e.Selected, e.SelectedAttractor)
	}

	if err := e.Apply(sb, ActionAddEmitter); err != nil {
		t.Fatal(err)
	}
	if len(sb.State.Emitters) != 2 || e.Selected != 1 {
		t.Fatalf("after add: %d emitters, selected %d", len(sb.State.Emitters), e.Selected)
	}

	e.Apply(sb, ActionNextEmitter)
	if e.Selected != 0 {
		t.Errorf("next should wrap to 0, got %d", e.Selected)
	}
	e.Apply(sb, ActionPrevEmitter)
	if e.Selected != 1 {
		t.Errorf("prev should wrap to 1, got %d", e.Selected)
	}

	e.Apply(sb, ActionToggleEmitter)
	if sb.State.Emitters[1].Active {
		t.Error("toggle should deactivate the selected emitter")
	}

	if err := e.Apply(sb, ActionRemoveEmitter); err != nil {
		t.Fatal(err)
	}
	if len(sb.State.Emitters) != 1 || e.Selected != 0 {
		t.Errorf("after remove: %d emitters, selected %d", len(sb.State.Emitters), e.Selected)
	}

	e.Apply(sb, ActionRemoveEmitter)
	if e.Selected != -1 {
		t.Errorf("empty state should clear the selection, got %d", e.Selected)
	}
	if err := e.Apply(sb, ActionRemoveEmitter); err != nil {
		t.Errorf("remove with no selection should be a no-op: %v", err)
	}
}

func TestEditorApplyCapacity(t *testing.T) {
	l := sandbox.DefaultLimits()
	l.MaxEmitters = 1
	sb := newSandbox(t, l)
	e := NewEditor(0, 0, 280)

	err := e.Apply(sb, ActionAddEmitter)
	if !errors.Is(err, sandbox.ErrCapacity) {
		t.Fatalf("err = %v, want ErrCapacity", err)
	}
	if e.Selected != 0 {
		t.Errorf("failed add moved selection to %d", e.Selected)
	}
}

func TestEditorApplyAttractors(t *testing.T) {
	sb := newSandbox(t, sandbox.DefaultLimits())
	e := NewEditor(0, 0, 280)

	for range 2 {
		if err := e.Apply(sb, ActionAddAttractor); err != nil {
			t.Fatal(err)
		}
	}
	if e.SelectedAttractor != 1 {
		t.Fatalf("selected attractor = %d, want 1", e.SelectedAttractor)
	}
	e.Apply(sb, ActionToggleAttractor)
	if sb.State.Physics.Attractors[1].Active {
		t.Error("toggle should deactivate attractor 1")
	}
	e.Apply(sb, ActionNextAttractor)
	if e.SelectedAttractor != 0 {
		t.Errorf("next should wrap to 0, got %d", e.SelectedAttractor)
	}
	e.Apply(sb, ActionRemoveAttractor)
	e.Apply(sb, ActionRemoveAttractor)
	if len(sb.State.Physics.Attractors) != 0 || e.SelectedAttractor != -1 {
		t.Errorf("after removing both: %d left, selected %d",
			len(sb.State.Physics.Attractors), e.SelectedAttractor)
	}
}

func TestEditorApplyColors(t *testing.T) {
	sb := newSandbox(t, sandbox.DefaultLimits())
	e := NewEditor(0, 0, 280)
	e.Clamp(&sb.State)

	if err := e.Apply(sb, ActionAddColor); err != nil {
		t.Fatal(err)
	}
	if n := len(sb.State.Emitters[0].Palette); n != 2 {
		t.Fatalf("palette = %d, want 2", n)
	}
	if err := e.Apply(sb, ActionRemoveColor); err != nil {
		t.Fatal(err)
	}
	if err := e.Apply(sb, ActionRemoveColor); !errors.Is(err, sandbox.ErrIndex) {
		t.Errorf("removing the only color: err = %v, want ErrIndex", err)
	}
	if n := len(sb.State.Emitters[0].Palette); n != 1 {
		t.Errorf("palette = %d, want 1", n)
	}
}

func TestEditorApplyIgnoresCallerActions(t *testing.T) {
	sb := newSandbox(t, sandbox.DefaultLimits())
	e := NewEditor(0, 0, 280)
	before := sb.State.Clone()
	for _, a := range []Action{ActionPause, ActionSave, ActionLoad, ActionReset, ActionNone} {
		if err := e.Apply(sb, a); err != nil {
			t.Errorf("%s: %v", a, err)
		}
	}
	if len(sb.State.Emitters) != len(before.Emitters) {
		t.Error("caller actions must not change the state")
	}
}

func TestActionString(t *testing.T) {
	if ActionSave.String() != "save" || ActionNone.String() != "none" {
		t.Errorf("got %q and %q", ActionSave, ActionNone)
	}
}

func TestGravityPolarRoundTrip(t *testing.T) {
	tests := []vecmath.Vec2{
		{0, -1},
		{0.5, 0.5},
		{-2, 0},
	}
	for _, g := range tests {
		s, a := GravityPolar(g)
		back := vecmath.Polar(s, a)
		if !back.ApproxEqualThreshold(g, 1e-5) {
			t.Errorf("GravityPolar(%v) = %v, %v -> %v", g, s, a, back)
		}
	}
	if s, _ := GravityPolar(vecmath.Vec2{0, -1}); math.Abs(float64(s)-1) > 1e-6 {
		t.Errorf("strength = %v, want 1", s)
	}
}

func TestSetMinMaxKeepOrder(t *testing.T) {
	s := random.Range(1, 2)
	SetMin(&s, 3)
	if s.Min != 3 || s.Max != 3 {
		t.Errorf("SetMin above max: got [%v, %v]", s.Min, s.Max)
	}
	SetMax(&s, 0.5)
	if s.Min != 0.5 || s.Max != 0.5 {
		t.Errorf("SetMax below min: got [%v, %v]", s.Min, s.Max)
	}
	SetMax(&s, 4)
	if s.Min != 0.5 || s.Max != 4 {
		t.Errorf("SetMax above min: got [%v, %v]", s.Min, s.Max)
	}
}
