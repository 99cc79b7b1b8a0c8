package game

import (
	"log/slog"

	"github.com/pthm-cable/sparkles/config"
	"github.com/pthm-cable/sparkles/sandbox"
	"github.com/pthm-cable/sparkles/telemetry"
)

// thresholds maps the incidents config section onto the detector.
func thresholds(cfg *config.Config) telemetry.Thresholds {
	in := cfg.Incidents
	return telemetry.Thresholds{
		StarvationMinEvents:  in.SustainedStarvation.MinEvents,
		StarvationMinWindows: in.SustainedStarvation.MinWindows,
		SaturationFraction:   in.Saturation.Fraction,
		DrainDropPercent:     in.Drain.DropPercent,
		DrainMinDrop:         in.Drain.MinDrop,
		SteadyMinLive:        in.SteadyState.MinLive,
		SteadyCVThreshold:    in.SteadyState.CVThreshold,
		SteadyStableWindows:  in.SteadyState.StableWindows,
	}
}

// frameSample converts the sandbox's frame totals for the collector.
func frameSample(dt float32, fs *sandbox.FrameStats, capacity int) telemetry.FrameSample {
	return telemetry.FrameSample{
		DT:               dt,
		Spawned:          fs.Spawned,
		Starved:          fs.Starved,
		StarvationEvents: fs.StarvationEvents,
		Bursts:           fs.Bursts,
		Live:             fs.Live,
		Capacity:         capacity,
		ActiveEmitters:   fs.ActiveEmitters,
		ActiveAttractors: fs.ActiveAttractors,
	}
}

// flushTelemetry checks if the stats window should be flushed and handles incidents.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush() {
		return
	}

	stats := g.collector.Flush()
	g.lastPerf = g.perfCollector.Stats()

	if g.opts.StatsCallback != nil {
		g.opts.StatsCallback(stats)
	}

	if g.opts.LogStats {
		stats.LogStats()
		g.lastPerf.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(g.lastPerf, stats.WindowEndFrame); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, in := range g.incidents.Check(stats) {
		in.LogIncident()
		if err := g.outputManager.WriteIncident(in); err != nil {
			slog.Error("failed to write incident", "error", err)
		}
	}
}
