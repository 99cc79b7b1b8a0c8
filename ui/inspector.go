package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sparkles/emission"
	"github.com/pthm-cable/sparkles/render"
	"github.com/pthm-cable/sparkles/sandbox"
	"github.com/pthm-cable/sparkles/vecmath"
)

// EmitterView is the data the emitter inspector shows.
type EmitterView struct {
	Index    int
	Count    int
	Emitter  *emission.Emitter
	Live     int
	Capacity int
	Timer    float32
	Next     float32
}

// NewEmitterView snapshots emitter i of the sandbox.
func NewEmitterView(sb *sandbox.Sandbox, i int) EmitterView {
	sys := sb.System(i)
	sched := sb.Scheduler(i)
	return EmitterView{
		Index:    i,
		Count:    len(sb.State.Emitters),
		Emitter:  &sb.State.Emitters[i],
		Live:     sys.Live(),
		Capacity: sys.Count(),
		Timer:    sched.Timer,
		Next:     sched.NextInterval,
	}
}

func ev(data any) EmitterView { return data.(EmitterView) }

func rangeText(lo, hi float32) string {
	if lo == hi {
		return fmt.Sprintf("%.2f", lo)
	}
	return fmt.Sprintf("%.2f .. %.2f", lo, hi)
}

// ToColor converts a linear RGBA vector to a raylib color.
func ToColor(c vecmath.Vec4) rl.Color {
	return rl.ColorFromNormalized(rl.NewVector4(c[0], c[1], c[2], c[3]))
}

// EmitterPanel describes the emitter inspector. Palette swatches are
// generated per color so the layout follows the emitter.
func EmitterPanel(view EmitterView) PanelDescriptor {
	palette := SectionDescriptor{ID: "palette", Title: "Palette"}
	for i := range view.Emitter.Palette {
		palette.Fields = append(palette.Fields, FieldDescriptor{
			ID:     fmt.Sprintf("color_%d", i),
			Label:  fmt.Sprintf("#%d  w=%.2f", i, view.Emitter.Palette[i].Weight),
			Widget: WidgetColorSwatch,
			ColorGetter: func(d any) rl.Color {
				return ToColor(ev(d).Emitter.Palette[i].Color)
			},
		})
	}

	return PanelDescriptor{
		ID:     "emitter",
		Title:  "Emitter",
		Width:  260,
		Anchor: AnchorTopRight,
		Sections: []SectionDescriptor{
			{
				ID: "identity",
				Fields: []FieldDescriptor{
					{ID: "index", Label: "Emitter", Widget: WidgetText, TextGetter: func(d any) string {
						v := ev(d)
						return fmt.Sprintf("%d / %d", v.Index+1, v.Count)
					}},
					{ID: "active", Label: "Active", Widget: WidgetText, TextGetter: func(d any) string {
						if ev(d).Emitter.Active {
							return "yes"
						}
						return "no"
					}},
					{ID: "position", Label: "Position", Widget: WidgetText, TextGetter: func(d any) string {
						p := ev(d).Emitter.Position
						return fmt.Sprintf("%.2f, %.2f", p[0], p[1])
					}},
				},
			},
			{
				ID:    "schedule",
				Title: "Schedule",
				Fields: []FieldDescriptor{
					{ID: "rate", Label: "Rate", Widget: WidgetText, Format: "%.0f /s",
						Visible: func(d any) bool { return ev(d).Emitter.Rate > 0 },
						Getter:  func(d any) float32 { return ev(d).Emitter.Rate }},
					{ID: "interval", Label: "Interval", Widget: WidgetText,
						Visible: func(d any) bool { return ev(d).Emitter.Rate <= 0 },
						TextGetter: func(d any) string {
							s := ev(d).Emitter.Interval
							return rangeText(s.Min, s.Max)
						}},
					{ID: "per_emission", Label: "Per burst", Widget: WidgetText,
						Visible: func(d any) bool { return ev(d).Emitter.Rate <= 0 },
						TextGetter: func(d any) string {
							s := ev(d).Emitter.PerEmission
							return rangeText(s.Min, s.Max)
						}},
					{ID: "timer", Label: "Timer", Widget: WidgetText,
						Visible: func(d any) bool { return ev(d).Emitter.Rate <= 0 && ev(d).Next >= 0 },
						TextGetter: func(d any) string {
							v := ev(d)
							return fmt.Sprintf("%.2f / %.2f", v.Timer, v.Next)
						}},
				},
			},
			{
				ID:    "particles",
				Title: "Particles",
				Fields: []FieldDescriptor{
					{ID: "live", Label: "Live", Widget: WidgetText, TextGetter: func(d any) string {
						v := ev(d)
						return fmt.Sprintf("%d / %d", v.Live, v.Capacity)
					}},
					{ID: "load", Label: "Load", Widget: WidgetBar, Range: DefaultRange(), Getter: func(d any) float32 {
						v := ev(d)
						if v.Capacity == 0 {
							return 0
						}
						return float32(v.Live) / float32(v.Capacity)
					}},
					{ID: "life", Label: "Life", Widget: WidgetText, TextGetter: func(d any) string {
						s := ev(d).Emitter.Life
						return rangeText(s.Min, s.Max)
					}},
					{ID: "size", Label: "Size", Widget: WidgetText, TextGetter: func(d any) string {
						s := ev(d).Emitter.Size
						return rangeText(s.Min, s.Max)
					}},
					{ID: "mesh", Label: "Mesh", Widget: WidgetText, TextGetter: func(d any) string {
						return presetName(render.MeshPresetNames[:], ev(d).Emitter.Mesh)
					}},
					{ID: "texture", Label: "Texture", Widget: WidgetText, TextGetter: func(d any) string {
						return presetName(render.TexturePresetNames[:], ev(d).Emitter.Texture)
					}},
				},
			},
			palette,
		},
	}
}

func presetName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("#%d", i)
	}
	return names[i]
}

// Inspector draws the emitter panel for the editor's selection.
type Inspector struct {
	renderer *Renderer
}

// NewInspector creates an inspector.
func NewInspector() *Inspector {
	return &Inspector{renderer: NewRenderer()}
}

// Draw renders the inspector for emitter i.
func (ins *Inspector) Draw(sb *sandbox.Sandbox, i int, screenW, screenH int32) {
	if i < 0 || i >= len(sb.State.Emitters) {
		return
	}
	view := NewEmitterView(sb, i)
	ins.renderer.DrawDescribedPanel(EmitterPanel(view), view, screenW, screenH)
}
