package game

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/pthm-cable/sparkles/config"
	"github.com/pthm-cable/sparkles/render"
	"github.com/pthm-cable/sparkles/render/glbackend"
	"github.com/pthm-cable/sparkles/render/rlbackend"
)

// Run opens the named backend and runs frames until the window closes or
// the frame limit is reached. The GL backend must run on the main thread.
func Run(cfg *config.Config, backend string, opts Options) error {
	switch backend {
	case BackendHeadless:
		return RunHeadless(cfg, opts)
	case BackendGL:
		return runGL(cfg, opts)
	case BackendRaylib:
		return runRaylib(cfg, opts)
	}
	return fmt.Errorf("unknown backend %q", backend)
}

// RunHeadless steps the sandbox on a recording backend at a fixed delta of
// one target frame.
func RunHeadless(cfg *config.Config, opts Options) error {
	rec := render.NewRecorder()
	g, err := NewGame(cfg, rec, opts)
	if err != nil {
		return err
	}
	defer g.Unload()

	dt := float32(1.0 / 60.0)
	if cfg.Screen.TargetFPS > 0 {
		dt = 1 / float32(cfg.Screen.TargetFPS)
	}

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"dt", dt,
		"max_frames", opts.MaxFrames,
	)

	for !g.Done() {
		rec.Reset()
		if err := g.Step(dt); err != nil {
			return err
		}
	}
	slog.Info("max frames reached", "frame", g.Frame())
	return nil
}

func runRaylib(cfg *config.Config, opts Options) error {
	// The HDR target is sized once, so only plain rendering may resize.
	if !cfg.Render.HDR {
		rl.SetConfigFlags(rl.FlagWindowResizable)
	}
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := NewGame(cfg, rlbackend.New(), opts)
	if err != nil {
		return err
	}
	defer g.Unload()
	g.EnableUI()

	for !rl.WindowShouldClose() {
		g.HandleInput()

		rl.BeginDrawing()
		err := g.Step(rl.GetFrameTime())
		rl.EndDrawing()
		if err != nil {
			return err
		}
		g.perfCollector.Present()

		if g.Done() {
			slog.Info("max frames reached", "frame", g.Frame())
			break
		}
	}
	return nil
}

func runGL(cfg *config.Config, opts Options) error {
	window, err := glbackend.OpenWindow(cfg.Screen.Width, cfg.Screen.Height, cfg.Screen.Title)
	if err != nil {
		return err
	}
	defer glfw.Terminate()
	defer window.Destroy()

	backend, err := glbackend.New(window.GetFramebufferSize())
	if err != nil {
		return err
	}
	g, err := NewGame(cfg, backend, opts)
	if err != nil {
		backend.Close()
		return err
	}
	defer g.Unload()

	input := newGLInput()
	last := glfw.GetTime()
	for !window.ShouldClose() {
		now := glfw.GetTime()
		dt := float32(now - last)
		last = now

		glfw.PollEvents()
		g.handleGLInput(window, input)

		if err := g.Step(dt); err != nil {
			return err
		}
		window.SwapBuffers()
		g.perfCollector.Present()

		if g.Done() {
			slog.Info("max frames reached", "frame", g.Frame())
			break
		}
	}
	return nil
}
