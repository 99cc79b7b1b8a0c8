package telemetry

import (
	"fmt"
	"log/slog"
	"time"
)

// Phase is a stage of a frame.
type Phase int

const (
	PhaseEmission Phase = iota
	PhaseSimulation
	PhaseRender
	PhaseUI
	PhaseTelemetry
	NumPhases
)

var phaseNames = [NumPhases]string{"emission", "simulation", "render", "ui", "telemetry"}

func (p Phase) String() string {
	if p < 0 || p >= NumPhases {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

const noPhase Phase = -1

// frameTiming is the cost of one frame, split by phase.
type frameTiming struct {
	total  time.Duration
	phases [NumPhases]time.Duration
}

// PerfCollector times frame phases and averages them over the last
// windowSize frames. It also measures the presentation interval.
type PerfCollector struct {
	ring   []frameTiming
	next   int
	filled int

	cur        frameTiming
	frameStart time.Time
	phaseStart time.Time
	phase      Phase

	lastPresent time.Time
	present     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize frames.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{ring: make([]frameTiming, windowSize), phase: noPhase}
}

// BeginFrame starts timing a frame. Time before the first EnterPhase is
// counted in the frame total only.
func (p *PerfCollector) BeginFrame() {
	p.frameStart = time.Now()
	p.cur = frameTiming{}
	p.phase = noPhase
}

// EnterPhase closes the running phase and opens ph. Re-entering a phase in
// the same frame adds to it.
func (p *PerfCollector) EnterPhase(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.phase = ph
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase >= 0 && p.phase < NumPhases {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
}

// EndFrame closes the running phase and stores the frame in the window.
func (p *PerfCollector) EndFrame() {
	now := time.Now()
	p.closePhase(now)
	p.phase = noPhase
	p.cur.total = now.Sub(p.frameStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.filled < len(p.ring) {
		p.filled++
	}
}

// Present marks a buffer swap; the interval between two swaps gives FPS.
func (p *PerfCollector) Present() {
	now := time.Now()
	if !p.lastPresent.IsZero() {
		p.present = now.Sub(p.lastPresent)
	}
	p.lastPresent = now
}

// PerfStats is the window average of frame costs.
type PerfStats struct {
	Frames   int
	AvgFrame time.Duration
	MaxFrame time.Duration
	Phase    [NumPhases]time.Duration // average per frame

	// FPS comes from the presentation interval; 0 when nothing presents.
	FPS float64
}

// Share returns ph's percentage of the average frame.
func (s PerfStats) Share(ph Phase) float64 {
	if s.AvgFrame <= 0 || ph < 0 || ph >= NumPhases {
		return 0
	}
	return float64(s.Phase[ph]) / float64(s.AvgFrame) * 100
}

// Stats averages the frames currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Frames: p.filled}
	if p.present > 0 {
		s.FPS = float64(time.Second) / float64(p.present)
	}
	if p.filled == 0 {
		return s
	}

	var total time.Duration
	var phases [NumPhases]time.Duration
	for _, f := range p.ring[:p.filled] {
		total += f.total
		s.MaxFrame = max(s.MaxFrame, f.total)
		for ph, d := range f.phases {
			phases[ph] += d
		}
	}
	n := time.Duration(p.filled)
	s.AvgFrame = total / n
	for ph := range phases {
		s.Phase[ph] = phases[ph] / n
	}
	return s
}

// LogStats logs the window averages.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer. Phases under 0.1% are left out.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("frames", s.Frames),
		slog.Int64("avg_frame_us", s.AvgFrame.Microseconds()),
		slog.Int64("max_frame_us", s.MaxFrame.Microseconds()),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for ph := range NumPhases {
		if pct := s.Share(ph); pct > 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfRow is one perf.csv line.
type PerfRow struct {
	WindowEnd     int64   `csv:"window_end"`
	Frames        int     `csv:"frames"`
	AvgFrameUS    int64   `csv:"avg_frame_us"`
	MaxFrameUS    int64   `csv:"max_frame_us"`
	FPS           float64 `csv:"fps"`
	EmissionPct   float64 `csv:"emission_pct"`
	SimulationPct float64 `csv:"simulation_pct"`
	RenderPct     float64 `csv:"render_pct"`
	UIPct         float64 `csv:"ui_pct"`
	TelemetryPct  float64 `csv:"telemetry_pct"`
}

// Row flattens s for the window ending at frame windowEnd.
func (s PerfStats) Row(windowEnd int64) PerfRow {
	return PerfRow{
		WindowEnd:     windowEnd,
		Frames:        s.Frames,
		AvgFrameUS:    s.AvgFrame.Microseconds(),
		MaxFrameUS:    s.MaxFrame.Microseconds(),
		FPS:           s.FPS,
		EmissionPct:   s.Share(PhaseEmission),
		SimulationPct: s.Share(PhaseSimulation),
		RenderPct:     s.Share(PhaseRender),
		UIPct:         s.Share(PhaseUI),
		TelemetryPct:  s.Share(PhaseTelemetry),
	}
}
