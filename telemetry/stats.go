package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartFrame int64   `csv:"-"`
	WindowEndFrame   int64   `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`
	Frames           int     `csv:"frames"`

	// Emission during window
	Spawned          int `csv:"spawned"`
	Starved          int `csv:"starved"`
	StarvationEvents int `csv:"starvation_events"`
	Bursts           int `csv:"bursts"`

	// Live particle distribution (sampled every frame)
	LiveMean float64 `csv:"live_mean"`
	LiveStd  float64 `csv:"live_std"`
	LiveP10  float64 `csv:"live_p10"`
	LiveP50  float64 `csv:"live_p50"`
	LiveP90  float64 `csv:"live_p90"`
	LiveMax  int     `csv:"live_max"`
	LiveEnd  int     `csv:"live_end"`

	// Capacity is the sum of active emitter pools at window end.
	Capacity   int     `csv:"capacity"`
	Saturation float64 `csv:"saturation"` // LiveP90 / Capacity

	ActiveEmitters   int `csv:"active_emitters"`
	ActiveAttractors int `csv:"active_attractors"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeLiveStats returns mean, sample standard deviation and percentiles.
// A single sample has zero deviation.
func ComputeLiveStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}
	if n == 1 {
		v := values[0]
		return v, 0, v, v, v
	}

	mean, std = stat.MeanStdDev(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartFrame),
		slog.Int64("window_end", s.WindowEndFrame),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("frames", s.Frames),
		slog.Int("spawned", s.Spawned),
		slog.Int("starved", s.Starved),
		slog.Int("starvation_events", s.StarvationEvents),
		slog.Int("bursts", s.Bursts),
		slog.Float64("live_mean", s.LiveMean),
		slog.Float64("live_std", s.LiveStd),
		slog.Float64("live_p10", s.LiveP10),
		slog.Float64("live_p50", s.LiveP50),
		slog.Float64("live_p90", s.LiveP90),
		slog.Int("live_max", s.LiveMax),
		slog.Int("capacity", s.Capacity),
		slog.Float64("saturation", s.Saturation),
		slog.Int("active_emitters", s.ActiveEmitters),
		slog.Int("active_attractors", s.ActiveAttractors),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndFrame,
		"sim_time", s.SimTimeSec,
		"spawned", s.Spawned,
		"starved", s.Starved,
		"starvation_events", s.StarvationEvents,
		"bursts", s.Bursts,
		"live_mean", s.LiveMean,
		"live_p90", s.LiveP90,
		"live_end", s.LiveEnd,
		"saturation", s.Saturation,
		"active_emitters", s.ActiveEmitters,
	)
}
