package telemetry

import (
	"testing"
	"time"
)

func runFrame(pc *PerfCollector, phases map[Phase]time.Duration, order ...Phase) {
	pc.BeginFrame()
	for _, ph := range order {
		pc.EnterPhase(ph)
		time.Sleep(phases[ph])
	}
	pc.EndFrame()
}

func TestPerfCollectorPhases(t *testing.T) {
	pc := NewPerfCollector(10)
	sleep := map[Phase]time.Duration{
		PhaseEmission:   100 * time.Microsecond,
		PhaseSimulation: 2 * time.Millisecond,
	}
	for i := 0; i < 5; i++ {
		runFrame(pc, sleep, PhaseEmission, PhaseSimulation)
	}

	stats := pc.Stats()
	if stats.Frames != 5 {
		t.Errorf("Frames = %d, want 5", stats.Frames)
	}
	if stats.AvgFrame <= 0 || stats.MaxFrame < stats.AvgFrame {
		t.Errorf("avg = %v, max = %v", stats.AvgFrame, stats.MaxFrame)
	}
	if stats.Phase[PhaseSimulation] < 2*time.Millisecond {
		t.Errorf("simulation = %v, want at least 2ms", stats.Phase[PhaseSimulation])
	}
	if stats.Phase[PhaseRender] != 0 {
		t.Errorf("render = %v, want 0 for an unused phase", stats.Phase[PhaseRender])
	}
	if stats.Share(PhaseSimulation) <= stats.Share(PhaseEmission) {
		t.Errorf("simulation share %v <= emission share %v",
			stats.Share(PhaseSimulation), stats.Share(PhaseEmission))
	}
	if sum := stats.Share(PhaseEmission) + stats.Share(PhaseSimulation); sum > 100.001 {
		t.Errorf("phase shares sum to %v", sum)
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	pc := NewPerfCollector(3)
	slow := map[Phase]time.Duration{PhaseRender: 5 * time.Millisecond}
	runFrame(pc, slow, PhaseRender)
	for i := 0; i < 3; i++ {
		runFrame(pc, nil, PhaseRender)
	}

	stats := pc.Stats()
	if stats.Frames != 3 {
		t.Errorf("Frames = %d, want the window size 3", stats.Frames)
	}
	if stats.MaxFrame >= 5*time.Millisecond {
		t.Errorf("MaxFrame = %v, the slow frame should have left the window", stats.MaxFrame)
	}
}

func TestPerfCollectorRepeatedPhaseAccumulates(t *testing.T) {
	pc := NewPerfCollector(4)
	sleep := map[Phase]time.Duration{PhaseRender: 200 * time.Microsecond}
	runFrame(pc, sleep, PhaseRender, PhaseEmission, PhaseRender)

	if got := pc.Stats().Phase[PhaseRender]; got < 400*time.Microsecond {
		t.Errorf("render phase = %v, want at least 400µs across both entries", got)
	}
}

func TestPerfCollectorEmpty(t *testing.T) {
	stats := NewPerfCollector(0).Stats()
	if stats.Frames != 0 || stats.AvgFrame != 0 || stats.FPS != 0 {
		t.Errorf("empty stats = %+v", stats)
	}
	if stats.Share(PhaseRender) != 0 {
		t.Error("share of an empty window should be 0")
	}
}

func TestPerfCollectorPresent(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.Present()
	if pc.Stats().FPS != 0 {
		t.Error("a single present has no interval")
	}
	time.Sleep(16 * time.Millisecond)
	pc.Present()

	fps := pc.Stats().FPS
	if fps <= 0 || fps > 70 {
		t.Errorf("FPS = %v, want about 60", fps)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		ph   Phase
		want string
	}{
		{PhaseEmission, "emission"},
		{PhaseTelemetry, "telemetry"},
		{NumPhases, "phase(5)"},
		{noPhase, "phase(-1)"},
	}
	for _, tt := range tests {
		if got := tt.ph.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(tt.ph), got, tt.want)
		}
	}
}

func TestPerfStatsRow(t *testing.T) {
	s := PerfStats{Frames: 60, AvgFrame: 1000 * time.Microsecond, MaxFrame: 1500 * time.Microsecond, FPS: 60}
	s.Phase[PhaseEmission] = 100 * time.Microsecond
	s.Phase[PhaseSimulation] = 300 * time.Microsecond
	s.Phase[PhaseRender] = 600 * time.Microsecond

	row := s.Row(120)
	if row.WindowEnd != 120 || row.Frames != 60 || row.AvgFrameUS != 1000 || row.MaxFrameUS != 1500 {
		t.Errorf("row header fields = %+v", row)
	}
	if row.EmissionPct != 10 || row.SimulationPct != 30 || row.RenderPct != 60 {
		t.Errorf("phase pcts = %v/%v/%v", row.EmissionPct, row.SimulationPct, row.RenderPct)
	}
	if row.UIPct != 0 {
		t.Errorf("ui pct = %v, want 0", row.UIPct)
	}
}
