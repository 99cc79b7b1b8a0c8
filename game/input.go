package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sparkles/ui"
	"github.com/pthm-cable/sparkles/vecmath"
)

// HandleInput processes raylib keyboard and mouse input.
func (g *Game) HandleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.TogglePause()
	}

	if g.ui != nil {
		g.handleOverlayKeys()
		g.handleEditorKeys()
		g.handleMouse()
	}

	// Camera controls
	g.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	g.camera.Resize(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
}

// handleOverlayKeys checks for overlay toggle key presses.
func (g *Game) handleOverlayKeys() {
	if ctrlDown() {
		return
	}
	for _, desc := range g.ui.overlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			g.ui.overlays.Toggle(desc.ID)
		}
	}
}

func ctrlDown() bool {
	return rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl)
}

func shiftDown() bool {
	return rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)
}

// handleEditorKeys maps shortcuts onto editor actions.
func (g *Game) handleEditorKeys() {
	if ctrlDown() {
		switch {
		case rl.IsKeyPressed(rl.KeyS):
			g.apply(ui.ActionSave)
		case rl.IsKeyPressed(rl.KeyL):
			g.apply(ui.ActionLoad)
		case rl.IsKeyPressed(rl.KeyR):
			g.apply(ui.ActionReset)
		}
		return
	}
	switch {
	case rl.IsKeyPressed(rl.KeyLeftBracket):
		g.apply(ui.ActionPrevEmitter)
	case rl.IsKeyPressed(rl.KeyRightBracket):
		g.apply(ui.ActionNextEmitter)
	case rl.IsKeyPressed(rl.KeyInsert):
		g.apply(ui.ActionAddEmitter)
	case rl.IsKeyPressed(rl.KeyDelete):
		g.apply(ui.ActionRemoveEmitter)
	}
}

// handleMouse selects markers on click and drags the selection.
func (g *Game) handleMouse() {
	m := rl.GetMousePosition()
	mouse := vecmath.Vec2{m.X, m.Y}

	if g.ui.overlays.IsEnabled(ui.OverlayEditor) &&
		rl.CheckCollisionPointRec(m, g.ui.editor.Bounds(&g.sb.State)) {
		return
	}

	switch {
	case rl.IsMouseButtonDown(rl.MouseButtonLeft) && shiftDown():
		g.moveSelectedEmitter(mouse)
	case rl.IsMouseButtonPressed(rl.MouseButtonLeft):
		g.selectAt(mouse)
	case rl.IsMouseButtonDown(rl.MouseButtonRight):
		g.moveSelectedAttractor(mouse)
	}
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	const panSpeed = 8 // pixels per frame

	// Arrow key panning
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	// Zoom toward the cursor with the wheel
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		m := rl.GetMousePosition()
		g.camera.ZoomAt(vecmath.Vec2{m.X, m.Y}, 1+wheel*0.1)
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
