package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sparkles/random"
	"github.com/pthm-cable/sparkles/render"
	"github.com/pthm-cable/sparkles/sandbox"
	"github.com/pthm-cable/sparkles/vecmath"
)

// Action is a discrete editor command produced by a button or key.
type Action int

const (
	ActionNone Action = iota
	ActionPrevEmitter
	ActionNextEmitter
	ActionAddEmitter
	ActionRemoveEmitter
	ActionToggleEmitter
	ActionAddColor
	ActionRemoveColor
	ActionPrevAttractor
	ActionNextAttractor
	ActionAddAttractor
	ActionRemoveAttractor
	ActionToggleAttractor
	// Handled by the caller.
	ActionPause
	ActionSave
	ActionLoad
	ActionReset
)

var actionNames = map[Action]string{
	ActionPrevEmitter:     "prev_emitter",
	ActionNextEmitter:     "next_emitter",
	ActionAddEmitter:      "add_emitter",
	ActionRemoveEmitter:   "remove_emitter",
	ActionToggleEmitter:   "toggle_emitter",
	ActionAddColor:        "add_color",
	ActionRemoveColor:     "remove_color",
	ActionPrevAttractor:   "prev_attractor",
	ActionNextAttractor:   "next_attractor",
	ActionAddAttractor:    "add_attractor",
	ActionRemoveAttractor: "remove_attractor",
	ActionToggleAttractor: "toggle_attractor",
	ActionPause:           "pause",
	ActionSave:            "save",
	ActionLoad:            "load",
	ActionReset:           "reset",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "none"
}

// Editor is the raygui panel that edits the sandbox state in place.
// Sliders write straight into the state; buttons produce Actions.
type Editor struct {
	// Selected is the edited emitter, -1 when there are none.
	Selected int
	// SelectedAttractor is the edited attractor, -1 when there are none.
	SelectedAttractor int

	renderer *Renderer
	x, y     float32
	width    float32
}

// NewEditor creates an editor panel at the given position.
func NewEditor(x, y, width float32) *Editor {
	return &Editor{
		SelectedAttractor: -1,
		renderer:          NewRenderer(),
		x:                 x,
		y:                 y,
		width:             width,
	}
}

// Clamp keeps the selections inside the state.
func (e *Editor) Clamp(st *sandbox.State) {
	e.Selected = clampIndex(e.Selected, len(st.Emitters))
	e.SelectedAttractor = clampIndex(e.SelectedAttractor, len(st.Physics.Attractors))
}

func clampIndex(i, n int) int {
	if n == 0 {
		return -1
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Apply performs a sandbox action. Caller-handled actions are ignored.
func (e *Editor) Apply(sb *sandbox.Sandbox, a Action) error {
	defer e.Clamp(&sb.State)
	st := &sb.State

	switch a {
	case ActionPrevEmitter:
		if n := len(st.Emitters); n > 0 {
			e.Selected = (e.Selected - 1 + n) % n
		}
	case ActionNextEmitter:
		if n := len(st.Emitters); n > 0 {
			e.Selected = (e.Selected + 1) % n
		}
	case ActionAddEmitter:
		i, err := sb.AddEmitter()
		if err != nil {
			return err
		}
		e.Selected = i
	case ActionRemoveEmitter:
		if e.Selected < 0 {
			return nil
		}
		return sb.RemoveEmitter(e.Selected)
	case ActionToggleEmitter:
		if e.Selected >= 0 {
			st.Emitters[e.Selected].Active = !st.Emitters[e.Selected].Active
		}
	case ActionAddColor:
		if e.Selected < 0 {
			return nil
		}
		_, err := sb.AddColor(e.Selected)
		return err
	case ActionRemoveColor:
		if e.Selected < 0 {
			return nil
		}
		return sb.RemoveColor(e.Selected, len(st.Emitters[e.Selected].Palette)-1)
	case ActionPrevAttractor:
		if n := len(st.Physics.Attractors); n > 0 {
			e.SelectedAttractor = (e.SelectedAttractor - 1 + n) % n
		}
	case ActionNextAttractor:
		if n := len(st.Physics.Attractors); n > 0 {
			e.SelectedAttractor = (e.SelectedAttractor + 1) % n
		}
	case ActionAddAttractor:
		i, err := sb.AddAttractor()
		if err != nil {
			return err
		}
		e.SelectedAttractor = i
	case ActionRemoveAttractor:
		if e.SelectedAttractor < 0 {
			return nil
		}
		return sb.RemoveAttractor(e.SelectedAttractor)
	case ActionToggleAttractor:
		if i := e.SelectedAttractor; i >= 0 {
			st.Physics.Attractors[i].Active = !st.Physics.Attractors[i].Active
		}
	}
	return nil
}

// GravityPolar splits a gravity vector into strength and angle.
func GravityPolar(g vecmath.Vec2) (strength, angle float32) {
	return g.Len(), float32(math.Atan2(float64(g[1]), float64(g[0])))
}

// SetMin sets s.Min, pushing Max up to keep the range ordered.
func SetMin(s *random.Scalar, v float32) {
	s.Min = v
	if s.Max < v {
		s.Max = v
	}
}

// SetMax sets s.Max, pulling Min down to keep the range ordered.
func SetMax(s *random.Scalar, v float32) {
	s.Max = v
	if s.Min > v {
		s.Min = v
	}
}

// layout is a top-to-bottom cursor through the panel.
type layout struct {
	x, y, w float32
}

func (l *layout) row(h float32) rl.Rectangle {
	r := rl.Rectangle{X: l.x, Y: l.y, Width: l.w, Height: h}
	l.y += h + 4
	return r
}

func (e *Editor) slider(l *layout, label string, v, lo, hi float32) float32 {
	rl.DrawText(fmt.Sprintf("%s  %.3f", label, v), int32(l.x), int32(l.y), e.renderer.Theme.FontSize, e.renderer.Theme.LabelColor)
	l.y += float32(e.renderer.Theme.LineHeight)
	return gui.SliderBar(l.row(14), "", "", v, lo, hi)
}

func (e *Editor) header(l *layout, title string) {
	l.y += 4
	rl.DrawText(title, int32(l.x), int32(l.y), e.renderer.Theme.HeaderFontSize, e.renderer.Theme.SectionHeader)
	l.y += float32(e.renderer.Theme.LineHeight) + 2
}

// buttons lays out a row of equal buttons and returns the clicked action.
func (e *Editor) buttons(l *layout, labels []string, actions []Action) Action {
	r := l.row(22)
	w := (r.Width - float32(len(labels)-1)*4) / float32(len(labels))
	clicked := ActionNone
	for i, label := range labels {
		b := rl.Rectangle{X: r.X + float32(i)*(w+4), Y: r.Y, Width: w, Height: r.Height}
		if gui.Button(b, label) {
			clicked = actions[i]
		}
	}
	return clicked
}

// Draw renders the editor and returns the actions clicked this frame.
func (e *Editor) Draw(sb *sandbox.Sandbox, paused bool) []Action {
	e.Clamp(&sb.State)
	st := &sb.State
	var actions []Action
	push := func(a Action) {
		if a != ActionNone {
			actions = append(actions, a)
		}
	}

	pad := float32(e.renderer.Theme.Padding)
	e.renderer.DrawPanel(int32(e.x), int32(e.y), int32(e.width), e.height(st))
	l := &layout{x: e.x + pad, y: e.y + pad, w: e.width - 2*pad}

	pause := "Pause"
	if paused {
		pause = "Resume"
	}
	push(e.buttons(l, []string{pause, "Save", "Load", "Reset"},
		[]Action{ActionPause, ActionSave, ActionLoad, ActionReset}))

	e.header(l, "Physics")
	strength, angle := GravityPolar(st.Physics.Gravity)
	strength = e.slider(l, "Gravity", strength, 0, 5)
	angle = e.slider(l, "Gravity angle", angle, -math.Pi, math.Pi)
	st.Physics.Gravity = vecmath.Polar(strength, angle)
	st.Physics.Friction = e.slider(l, "Friction", st.Physics.Friction, 0.9, 1)

	e.header(l, fmt.Sprintf("Emitter %d / %d", e.Selected+1, len(st.Emitters)))
	push(e.buttons(l, []string{"<", ">", "+", "-", "On/Off"},
		[]Action{ActionPrevEmitter, ActionNextEmitter, ActionAddEmitter, ActionRemoveEmitter, ActionToggleEmitter}))
	if e.Selected >= 0 {
		e.drawEmitter(l, st, &push)
	}

	e.header(l, fmt.Sprintf("Attractor %d / %d", e.SelectedAttractor+1, len(st.Physics.Attractors)))
	push(e.buttons(l, []string{"<", ">", "+", "-", "On/Off"},
		[]Action{ActionPrevAttractor, ActionNextAttractor, ActionAddAttractor, ActionRemoveAttractor, ActionToggleAttractor}))
	if i := e.SelectedAttractor; i >= 0 {
		a := &st.Physics.Attractors[i]
		a.Position[0] = e.slider(l, "X", a.Position[0], -st.SpaceWidth/2, st.SpaceWidth/2)
		a.Position[1] = e.slider(l, "Y", a.Position[1], -st.SpaceHeight/2, st.SpaceHeight/2)
		a.Radius = e.slider(l, "Radius", a.Radius, 0.05, 5)
		a.Factor = e.slider(l, "Factor", a.Factor, -10, 10)
		a.MagnitudeCap = e.slider(l, "Cap", a.MagnitudeCap, 0, 50)
	}

	return actions
}

func (e *Editor) drawEmitter(l *layout, st *sandbox.State, push *func(Action)) {
	em := &st.Emitters[e.Selected]
	em.Position[0] = e.slider(l, "X", em.Position[0], -st.SpaceWidth/2, st.SpaceWidth/2)
	em.Position[1] = e.slider(l, "Y", em.Position[1], -st.SpaceHeight/2, st.SpaceHeight/2)
	em.Rate = e.slider(l, "Rate (0 = bursts)", em.Rate, 0, 5000)
	if em.Rate <= 0 {
		SetMin(&em.Interval, e.slider(l, "Interval min", em.Interval.Min, 0.01, 5))
		SetMax(&em.Interval, e.slider(l, "Interval max", em.Interval.Max, 0.01, 5))
		SetMin(&em.PerEmission, e.slider(l, "Per burst min", em.PerEmission.Min, 0, 1000))
		SetMax(&em.PerEmission, e.slider(l, "Per burst max", em.PerEmission.Max, 0, 1000))
	}
	SetMin(&em.Life, e.slider(l, "Life min", em.Life.Min, 0.05, 10))
	SetMax(&em.Life, e.slider(l, "Life max", em.Life.Max, 0.05, 10))
	SetMin(&em.Size, e.slider(l, "Size min", em.Size.Min, 0.005, 2))
	SetMax(&em.Size, e.slider(l, "Size max", em.Size.Max, 0.005, 2))
	em.Mesh = int(math.Round(float64(e.slider(l, "Mesh", float32(em.Mesh), 0, render.NumMeshPresets-1))))
	em.Texture = int(math.Round(float64(e.slider(l, "Texture", float32(em.Texture), 0, render.NumTexturePresets-1))))
	(*push)(e.buttons(l, []string{fmt.Sprintf("+ Color (%d)", len(em.Palette)), "- Color"},
		[]Action{ActionAddColor, ActionRemoveColor}))
}

// Bounds returns the panel rectangle for the current state.
func (e *Editor) Bounds(st *sandbox.State) rl.Rectangle {
	e.Clamp(st)
	return rl.Rectangle{X: e.x, Y: e.y, Width: e.width, Height: float32(e.height(st))}
}

// SetPosition moves the panel.
func (e *Editor) SetPosition(x, y float32) {
	e.x, e.y = x, y
}

// height estimates the panel height for the current selections.
func (e *Editor) height(st *sandbox.State) int32 {
	t := e.renderer.Theme
	sliderH := t.LineHeight + 18
	rows := 3 // physics sliders
	if e.Selected >= 0 {
		rows += 9
		if st.Emitters[e.Selected].Rate <= 0 {
			rows += 4
		}
	}
	if e.SelectedAttractor >= 0 {
		rows += 5
	}
	buttonRows := int32(4)
	headers := int32(3)
	return t.Padding*2 + int32(rows)*sliderH + buttonRows*26 + headers*(t.LineHeight+6)
}
