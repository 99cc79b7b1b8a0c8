// Package game runs the sandbox: it builds the starting state, drives one
// sandbox frame per display frame on the chosen backend, and feeds the
// telemetry collectors.
package game

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pthm-cable/sparkles/camera"
	"github.com/pthm-cable/sparkles/config"
	"github.com/pthm-cable/sparkles/random"
	"github.com/pthm-cable/sparkles/render"
	"github.com/pthm-cable/sparkles/sandbox"
	"github.com/pthm-cable/sparkles/statefile"
	"github.com/pthm-cable/sparkles/telemetry"
)

// Game holds the sandbox and everything wrapped around it.
type Game struct {
	cfg  *config.Config
	opts Options

	sb      *sandbox.Sandbox
	backend render.Backend
	camera  *camera.Camera

	frame     int64
	preset    string
	statePath string

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	incidents     *telemetry.IncidentDetector
	outputManager *telemetry.OutputManager
	lastPerf      telemetry.PerfStats

	// Raylib-only UI; nil on the other backends.
	ui *uiState
}

// NewGame builds the starting state, initializes the sandbox on backend and
// opens the telemetry output. The game owns backend from here on.
func NewGame(cfg *config.Config, backend render.Backend, opts Options) (*Game, error) {
	g := &Game{
		cfg:       cfg,
		opts:      opts,
		backend:   backend,
		preset:    opts.Preset,
		statePath: opts.StatePath,
	}
	if g.preset == "" {
		g.preset = cfg.Sandbox.Preset
	}
	if g.statePath == "" {
		g.statePath = cfg.State.Path
	}

	st, err := g.initialState()
	if err != nil {
		return nil, err
	}

	g.sb = sandbox.New(backend, st, cfg.Derived.Limits, random.New(opts.Seed), sandbox.Options{
		Width:            cfg.Screen.Width,
		Height:           cfg.Screen.Height,
		HDR:              cfg.Render.HDR,
		AdditiveTextures: cfg.Render.AdditiveTextures,
		ClearColor:       cfg.Derived.ClearColor,
	})
	if err := g.sb.Init(); err != nil {
		return nil, fmt.Errorf("init sandbox: %w", err)
	}

	g.camera = camera.New(cfg.Derived.ScreenW32, cfg.Derived.ScreenH32, st.SpaceWidth, st.SpaceHeight)
	g.sb.SetViewer(g.camera)

	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	g.sb.SetPhaseTimer(g.perfCollector)

	window := opts.StatsWindowSec
	if window <= 0 {
		window = cfg.Telemetry.StatsWindow
	}
	g.collector = telemetry.NewCollector(window)
	g.incidents = telemetry.NewIncidentDetector(cfg.Telemetry.IncidentHistorySize, thresholds(cfg))

	g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	slog.Info("sandbox ready",
		"preset", g.preset,
		"state", g.sb.State,
		"output_dir", g.outputManager.Dir(),
	)
	return g, nil
}

// initialState loads the state file when one exists at the state path and
// falls back to the preset otherwise.
func (g *Game) initialState() (sandbox.State, error) {
	if g.opts.StatePath != "" {
		st, err := statefile.Load(g.opts.StatePath, g.cfg.Derived.Limits)
		switch {
		case err == nil:
			slog.Info("state file loaded", "path", g.opts.StatePath)
			return st, nil
		case !errors.Is(err, fs.ErrNotExist):
			return sandbox.State{}, fmt.Errorf("load %s: %w", g.opts.StatePath, err)
		}
		slog.Info("no state file yet, starting from preset", "path", g.opts.StatePath)
	}
	return g.presetState()
}

func (g *Game) presetState() (sandbox.State, error) {
	cfg := *g.cfg
	cfg.Sandbox.Preset = g.preset
	st, err := cfg.InitialState()
	if err != nil {
		return sandbox.State{}, fmt.Errorf("preset: %w", err)
	}
	return st, nil
}

// Step runs one frame: emission, simulation and rendering in the sandbox,
// the UI when there is one, then telemetry.
func (g *Game) Step(dt float32) error {
	g.perfCollector.BeginFrame()
	dt = g.cfg.ClampDT(dt)

	if err := g.sb.Frame(dt); err != nil {
		return fmt.Errorf("frame %d: %w", g.frame, err)
	}

	if g.ui != nil {
		g.perfCollector.EnterPhase(telemetry.PhaseUI)
		g.drawUI()
	}

	g.perfCollector.EnterPhase(telemetry.PhaseTelemetry)
	simDT := dt
	if g.sb.Paused {
		simDT = 0
	}
	g.collector.Record(frameSample(simDT, &g.sb.Last, g.capacity()))
	g.frame++
	g.flushTelemetry()

	g.perfCollector.EndFrame()
	return nil
}

// capacity is the total particle slots across emitters.
func (g *Game) capacity() int {
	return len(g.sb.State.Emitters) * g.sb.Limits.ParticlesPerEmitter
}

// Done reports whether the frame limit has been reached.
func (g *Game) Done() bool {
	return g.opts.MaxFrames > 0 && g.frame >= g.opts.MaxFrames
}

// Frame returns the number of frames run.
func (g *Game) Frame() int64 {
	return g.frame
}

// Sandbox returns the running sandbox.
func (g *Game) Sandbox() *sandbox.Sandbox {
	return g.sb
}

// Camera returns the view camera.
func (g *Game) Camera() *camera.Camera {
	return g.camera
}

// TogglePause pauses or resumes the simulation.
func (g *Game) TogglePause() {
	g.sb.Paused = !g.sb.Paused
	slog.Info("pause", "paused", g.sb.Paused, "frame", g.frame)
}

// Unload autosaves when configured, closes the telemetry output and
// releases the backend.
func (g *Game) Unload() {
	if g.cfg.State.Autosave {
		if err := g.SaveState(); err != nil {
			slog.Error("autosave failed", "error", err)
		}
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	if err := g.backend.Close(); err != nil {
		slog.Error("failed to close backend", "error", err)
	}
}
