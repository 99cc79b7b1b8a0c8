// Package telemetry aggregates per-frame emission and timing data into
// windows, detects incidents and writes CSV run output.
package telemetry

// FrameSample is what one rendered frame contributes to a window.
type FrameSample struct {
	DT               float32
	Spawned          int
	Starved          int
	StarvationEvents int
	Bursts           int
	Live             int
	Capacity         int
	ActiveEmitters   int
	ActiveAttractors int
}

// Collector accumulates frame samples within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec float64

	frame            int64
	simTime          float64
	windowStartFrame int64
	windowStartTime  float64

	spawned          int
	starved          int
	starvationEvents int
	bursts           int
	live             []float64
	liveMax          int
	last             FrameSample
}

// NewCollector creates a collector whose windows last windowDurationSec
// seconds of simulated time.
func NewCollector(windowDurationSec float64) *Collector {
	if windowDurationSec <= 0 {
		windowDurationSec = 1
	}
	return &Collector{windowDurationSec: windowDurationSec}
}

// Record adds one frame to the current window.
func (c *Collector) Record(f FrameSample) {
	c.frame++
	c.simTime += float64(f.DT)

	c.spawned += f.Spawned
	c.starved += f.Starved
	c.starvationEvents += f.StarvationEvents
	c.bursts += f.Bursts
	c.live = append(c.live, float64(f.Live))
	if f.Live > c.liveMax {
		c.liveMax = f.Live
	}
	c.last = f
}

// ShouldFlush returns true once the window has covered its duration.
func (c *Collector) ShouldFlush() bool {
	return c.simTime-c.windowStartTime >= c.windowDurationSec
}

// Frame returns the number of frames recorded so far.
func (c *Collector) Frame() int64 {
	return c.frame
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush() WindowStats {
	mean, std, p10, p50, p90 := ComputeLiveStats(c.live)

	var saturation float64
	if c.last.Capacity > 0 {
		saturation = p90 / float64(c.last.Capacity)
	}

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   c.frame,
		SimTimeSec:       c.simTime,
		Frames:           int(c.frame - c.windowStartFrame),

		Spawned:          c.spawned,
		Starved:          c.starved,
		StarvationEvents: c.starvationEvents,
		Bursts:           c.bursts,

		LiveMean: mean,
		LiveStd:  std,
		LiveP10:  p10,
		LiveP50:  p50,
		LiveP90:  p90,
		LiveMax:  c.liveMax,
		LiveEnd:  c.last.Live,

		Capacity:   c.last.Capacity,
		Saturation: saturation,

		ActiveEmitters:   c.last.ActiveEmitters,
		ActiveAttractors: c.last.ActiveAttractors,
	}

	c.windowStartFrame = c.frame
	c.windowStartTime = c.simTime
	c.spawned = 0
	c.starved = 0
	c.starvationEvents = 0
	c.bursts = 0
	c.live = c.live[:0]
	c.liveMax = 0

	return stats
}
