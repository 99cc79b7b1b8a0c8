package telemetry

import "testing"

func countIncidents(incidents []Incident, t IncidentType) int {
	n := 0
	for _, in := range incidents {
		if in.Type == t {
			n++
		}
	}
	return n
}

func TestIncidentDetector_SustainedStarvation(t *testing.T) {
	d := NewIncidentDetector(10, DefaultThresholds())

	var fired []int
	for i := 0; i < 6; i++ {
		got := d.Check(WindowStats{WindowEndFrame: int64(i), StarvationEvents: 5, Starved: 100})
		if countIncidents(got, IncidentSustainedStarvation) > 0 {
			fired = append(fired, i)
		}
	}
	// third consecutive window, once
	if len(fired) != 1 || fired[0] != 2 {
		t.Errorf("fired at %v, want [2]", fired)
	}

	// a quiet window resets the run
	d.Check(WindowStats{StarvationEvents: 0})
	for i := 0; i < 2; i++ {
		if got := d.Check(WindowStats{StarvationEvents: 5}); countIncidents(got, IncidentSustainedStarvation) > 0 {
			t.Errorf("fired after %d windows of new run", i+1)
		}
	}
	if got := d.Check(WindowStats{StarvationEvents: 5}); countIncidents(got, IncidentSustainedStarvation) != 1 {
		t.Error("expected second run to fire")
	}
}

func TestIncidentDetector_SaturationRisingEdge(t *testing.T) {
	d := NewIncidentDetector(10, DefaultThresholds())

	tests := []struct {
		saturation float64
		want       int
	}{
		{0.5, 0},
		{0.97, 1},
		{0.99, 0}, // still saturated
		{0.6, 0},
		{0.96, 1},
	}
	for i, tt := range tests {
		got := d.Check(WindowStats{Capacity: 1000, Saturation: tt.saturation, LiveP90: tt.saturation * 1000})
		if n := countIncidents(got, IncidentSaturation); n != tt.want {
			t.Errorf("window %d (%.2f): %d incidents, want %d", i, tt.saturation, n, tt.want)
		}
	}
}

func TestIncidentDetector_Drain(t *testing.T) {
	d := NewIncidentDetector(10, DefaultThresholds())

	for i := 0; i < 3; i++ {
		d.Check(WindowStats{LiveMean: 1000})
	}

	// 40% drop is under the threshold
	if got := d.Check(WindowStats{LiveMean: 600}); countIncidents(got, IncidentDrain) != 0 {
		t.Error("40% drop should not fire")
	}
	got := d.Check(WindowStats{LiveMean: 300})
	if countIncidents(got, IncidentDrain) != 1 {
		t.Fatal("expected drain incident")
	}
	// peak reset to the drained level
	if got := d.Check(WindowStats{LiveMean: 250}); countIncidents(got, IncidentDrain) != 0 {
		t.Error("drain fired again without a new peak")
	}
}

func TestIncidentDetector_DrainNeedsAbsoluteDrop(t *testing.T) {
	d := NewIncidentDetector(10, DefaultThresholds())
	d.Check(WindowStats{LiveMean: 100})
	if got := d.Check(WindowStats{LiveMean: 10}); countIncidents(got, IncidentDrain) != 0 {
		t.Error("90 particle drop is below min_drop")
	}
}

func TestIncidentDetector_SteadyState(t *testing.T) {
	d := NewIncidentDetector(10, DefaultThresholds())

	var fired []int
	for i := 0; i < 12; i++ {
		live := 500.0
		if i%2 == 1 {
			live = 505
		}
		got := d.Check(WindowStats{WindowEndFrame: int64(i), LiveMean: live})
		if countIncidents(got, IncidentSteadyState) > 0 {
			fired = append(fired, i)
		}
	}
	// counting starts once three windows of history exist
	if len(fired) != 1 || fired[0] != 7 {
		t.Errorf("fired at %v, want [7]", fired)
	}
}

func TestIncidentDetector_SteadyStateNeedsLive(t *testing.T) {
	d := NewIncidentDetector(10, DefaultThresholds())
	for i := 0; i < 12; i++ {
		if got := d.Check(WindowStats{LiveMean: 10}); countIncidents(got, IncidentSteadyState) > 0 {
			t.Fatal("steady state fired below min_live")
		}
	}
}

func TestIncidentDetector_RecentOrder(t *testing.T) {
	d := NewIncidentDetector(4, DefaultThresholds())
	for i := 0; i < 6; i++ {
		d.addToHistory(WindowStats{WindowEndFrame: int64(i)})
	}
	got := d.recent(3)
	for i, want := range []int64{3, 4, 5} {
		if got[i].WindowEndFrame != want {
			t.Errorf("recent[%d] = %d, want %d", i, got[i].WindowEndFrame, want)
		}
	}
}
