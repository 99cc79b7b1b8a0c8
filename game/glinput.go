package game

import (
	"log/slog"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// glInput tracks key state between polls so presses fire once.
type glInput struct {
	prevKeys map[glfw.Key]bool
}

func newGLInput() *glInput {
	return &glInput{prevKeys: make(map[glfw.Key]bool)}
}

func (in *glInput) justPressed(window *glfw.Window, key glfw.Key) bool {
	down := window.GetKey(key) == glfw.Press
	jp := down && !in.prevKeys[key]
	in.prevKeys[key] = down
	return jp
}

// handleGLInput is the keyboard-only control set of the GL window.
func (g *Game) handleGLInput(window *glfw.Window, in *glInput) {
	if window.GetKey(glfw.KeyEscape) == glfw.Press {
		window.SetShouldClose(true)
		return
	}
	if in.justPressed(window, glfw.KeySpace) {
		g.TogglePause()
	}

	ctrl := window.GetKey(glfw.KeyLeftControl) == glfw.Press ||
		window.GetKey(glfw.KeyRightControl) == glfw.Press
	save := in.justPressed(window, glfw.KeyS)
	load := in.justPressed(window, glfw.KeyL)
	reset := in.justPressed(window, glfw.KeyR)
	var err error
	switch {
	case ctrl && save:
		err = g.SaveState()
	case ctrl && load:
		err = g.LoadState()
	case ctrl && reset:
		err = g.ResetState()
	}
	if err != nil {
		slog.Warn("state action failed", "error", err)
	}

	const panSpeed = 8
	if window.GetKey(glfw.KeyRight) == glfw.Press {
		g.camera.Pan(panSpeed, 0)
	}
	if window.GetKey(glfw.KeyLeft) == glfw.Press {
		g.camera.Pan(-panSpeed, 0)
	}
	if window.GetKey(glfw.KeyDown) == glfw.Press {
		g.camera.Pan(0, panSpeed)
	}
	if window.GetKey(glfw.KeyUp) == glfw.Press {
		g.camera.Pan(0, -panSpeed)
	}
	if in.justPressed(window, glfw.KeyEqual) {
		g.camera.ZoomBy(1.25)
	}
	if in.justPressed(window, glfw.KeyMinus) {
		g.camera.ZoomBy(0.8)
	}
	if in.justPressed(window, glfw.KeyHome) {
		g.camera.Reset()
	}
}
