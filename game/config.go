package game

import "github.com/pthm-cable/sparkles/telemetry"

// Backend names accepted by render.backend and -backend.
const (
	BackendRaylib   = "raylib"
	BackendGL       = "gl"
	BackendHeadless = "headless"
)

// Options holds per-run settings that override the loaded config.
type Options struct {
	Seed           int64
	Preset         string  // empty = sandbox.preset
	StatePath      string  // empty = state.path
	OutputDir      string  // empty = no CSV output
	LogStats       bool    // log each stats window
	StatsWindowSec float64 // 0 = telemetry.stats_window
	MaxFrames      int64   // 0 = unlimited

	// StatsCallback, when set, receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}
