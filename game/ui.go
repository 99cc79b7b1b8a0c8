package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sparkles/ui"
)

const controlsLegend = "SPACE: Pause | Click: Select | Shift+Drag: Move emitter | Right Drag: Move attractor | " +
	"Arrows/Wheel: View | Ctrl+S/L/R: Save/Load/Reset | H Tab I P E A: Panels"

// statusDuration is how long an action message stays up, in seconds.
const statusDuration = 2

// uiState holds the raylib panels.
type uiState struct {
	hud       *ui.HUD
	editor    *ui.Editor
	inspector *ui.Inspector
	perfPanel *ui.PerfPanel
	overlays  *ui.OverlayRegistry

	status      string
	statusTimer float32
}

// EnableUI creates the raylib HUD, editor and overlays. Call it only with
// the raylib backend.
func (g *Game) EnableUI() {
	g.ui = &uiState{
		hud:       ui.NewHUD(),
		editor:    ui.NewEditor(10, 100, 280),
		inspector: ui.NewInspector(),
		perfPanel: ui.NewPerfPanel(0, 10),
		overlays:  ui.NewOverlayRegistry(),
	}
	g.ui.editor.Clamp(&g.sb.State)
}

func (u *uiState) notify(msg string) {
	u.status = msg
	u.statusTimer = statusDuration
}

// apply runs an editor action and reports the outcome on screen.
func (g *Game) apply(a ui.Action) {
	var err error
	switch a {
	case ui.ActionNone:
		return
	case ui.ActionPause:
		g.TogglePause()
		return
	case ui.ActionSave:
		err = g.SaveState()
	case ui.ActionLoad:
		err = g.LoadState()
	case ui.ActionReset:
		err = g.ResetState()
	default:
		err = g.ui.editor.Apply(g.sb, a)
	}

	if err != nil {
		slog.Warn("editor action failed", "action", a.String(), "error", err)
		g.ui.notify(err.Error())
		return
	}
	switch a {
	case ui.ActionSave:
		g.ui.notify("saved " + g.statePath)
	case ui.ActionLoad:
		g.ui.notify("loaded " + g.statePath)
	case ui.ActionReset:
		g.ui.notify("reset to " + g.preset)
	}
}

// drawUI draws markers and panels over the particles.
func (g *Game) drawUI() {
	u := g.ui
	st := &g.sb.State
	sw, sh := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	u.editor.Clamp(st)

	if u.overlays.IsEnabled(ui.OverlayAttractors) {
		ui.DrawAttractorMarkers(g.camera, &st.Physics, u.editor.SelectedAttractor)
	}
	if u.overlays.IsEnabled(ui.OverlayEmitters) {
		ui.DrawEmitterMarkers(g.camera, st, u.editor.Selected)
	}

	if u.overlays.IsEnabled(ui.OverlayHUD) {
		u.hud.Draw(ui.HUDData{
			Title:      g.cfg.Screen.Title,
			Preset:     g.preset,
			FPS:        rl.GetFPS(),
			Frame:      g.frame,
			Live:       g.sb.Last.Live,
			Capacity:   g.capacity(),
			Emitters:   len(st.Emitters),
			Attractors: len(st.Physics.Attractors),
			Zoom:       g.camera.Zoom,
			Paused:     g.sb.Paused,
		})
		u.hud.DrawControls(sw, sh, controlsLegend)
	}

	if u.overlays.IsEnabled(ui.OverlayEditor) {
		for _, a := range u.editor.Draw(g.sb, g.sb.Paused) {
			g.apply(a)
		}
	}
	if u.overlays.IsEnabled(ui.OverlayInspector) {
		u.inspector.Draw(g.sb, u.editor.Selected, sw, sh)
	}
	if u.overlays.IsEnabled(ui.OverlayPerf) {
		u.perfPanel.SetPosition(sw-270, 10)
		u.perfPanel.Draw(g.lastPerf)
	}

	if g.sb.Starvation.Warning() {
		u.hud.DrawStarvationWarning(sw, sh)
	}

	if u.statusTimer > 0 {
		u.statusTimer -= rl.GetFrameTime()
		w := rl.MeasureText(u.status, 16)
		rl.DrawText(u.status, (sw-w)/2, sh-50, 16, rl.Yellow)
	}
}
