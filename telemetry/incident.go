package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// IncidentType identifies the type of incident.
type IncidentType string

const (
	IncidentSustainedStarvation IncidentType = "sustained_starvation"
	IncidentSaturation          IncidentType = "saturation"
	IncidentDrain               IncidentType = "drain"
	IncidentSteadyState         IncidentType = "steady_state"
)

// Incident is a noteworthy moment detected from window stats.
type Incident struct {
	Type        IncidentType `csv:"type"`
	Frame       int64        `csv:"frame"`
	SimTimeSec  float64      `csv:"sim_time"`
	Description string       `csv:"description"`
}

// LogIncident logs the incident using slog.
func (in Incident) LogIncident() {
	slog.Info("incident",
		"type", string(in.Type),
		"frame", in.Frame,
		"sim_time", in.SimTimeSec,
		"description", in.Description,
	)
}

// Thresholds tune the incident detector.
type Thresholds struct {
	StarvationMinEvents  int // starvation events per window
	StarvationMinWindows int // consecutive windows

	SaturationFraction float64 // live p90 / capacity

	DrainDropPercent float64 // drop from recent peak of live mean
	DrainMinDrop     int

	SteadyMinLive       int
	SteadyCVThreshold   float64
	SteadyStableWindows int
}

// DefaultThresholds mirrors the shipped configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		StarvationMinEvents:  3,
		StarvationMinWindows: 3,
		SaturationFraction:   0.95,
		DrainDropPercent:     0.5,
		DrainMinDrop:         200,
		SteadyMinLive:        50,
		SteadyCVThreshold:    0.1,
		SteadyStableWindows:  5,
	}
}

// steadySpan is how many windows, including the current one, the
// steady-state check measures variation over.
const steadySpan = 4

// IncidentDetector watches window stats for noteworthy moments.
type IncidentDetector struct {
	th Thresholds

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	starvingWindows int
	saturated       bool
	recentLivePeak  float64
	stableWindows   int
}

// NewIncidentDetector creates a detector with the given history size.
func NewIncidentDetector(historySize int, th Thresholds) *IncidentDetector {
	if historySize < steadySpan {
		historySize = steadySpan
	}
	return &IncidentDetector{
		th:          th,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered incidents.
func (d *IncidentDetector) Check(stats WindowStats) []Incident {
	var incidents []Incident

	for _, check := range []func(WindowStats) *Incident{
		d.checkSustainedStarvation,
		d.checkSaturation,
		d.checkDrain,
		d.checkSteadyState,
	} {
		if in := check(stats); in != nil {
			incidents = append(incidents, *in)
		}
	}

	d.addToHistory(stats)
	if stats.LiveMean > d.recentLivePeak {
		d.recentLivePeak = stats.LiveMean
	}

	return incidents
}

func (d *IncidentDetector) addToHistory(stats WindowStats) {
	d.history[d.historyIdx] = stats
	d.historyIdx = (d.historyIdx + 1) % d.historySize
	if d.historyIdx == 0 {
		d.historyFull = true
	}
}

// recent returns up to n of the newest history entries, oldest first.
func (d *IncidentDetector) recent(n int) []WindowStats {
	have := d.historyIdx
	if d.historyFull {
		have = d.historySize
	}
	if n > have {
		n = have
	}
	out := make([]WindowStats, n)
	for i := 0; i < n; i++ {
		idx := (d.historyIdx - n + i + d.historySize) % d.historySize
		out[i] = d.history[idx]
	}
	return out
}

func (d *IncidentDetector) incident(t IncidentType, stats WindowStats, format string, args ...any) *Incident {
	return &Incident{
		Type:        t,
		Frame:       stats.WindowEndFrame,
		SimTimeSec:  stats.SimTimeSec,
		Description: fmt.Sprintf(format, args...),
	}
}

func (d *IncidentDetector) checkSustainedStarvation(stats WindowStats) *Incident {
	if stats.StarvationEvents < d.th.StarvationMinEvents || stats.StarvationEvents == 0 {
		d.starvingWindows = 0
		return nil
	}
	d.starvingWindows++
	if d.starvingWindows == d.th.StarvationMinWindows {
		return d.incident(IncidentSustainedStarvation, stats,
			"Emitters starved in %d consecutive windows (%d particles refused this window)",
			d.starvingWindows, stats.Starved)
	}
	return nil
}

func (d *IncidentDetector) checkSaturation(stats WindowStats) *Incident {
	if stats.Capacity == 0 {
		d.saturated = false
		return nil
	}
	now := stats.Saturation >= d.th.SaturationFraction
	was := d.saturated
	d.saturated = now
	if now && !was {
		return d.incident(IncidentSaturation, stats,
			"Live p90 %.0f is %.0f%% of capacity %d",
			stats.LiveP90, stats.Saturation*100, stats.Capacity)
	}
	return nil
}

func (d *IncidentDetector) checkDrain(stats WindowStats) *Incident {
	if d.recentLivePeak == 0 {
		return nil
	}
	drop := 1 - stats.LiveMean/d.recentLivePeak
	if drop > d.th.DrainDropPercent && d.recentLivePeak-stats.LiveMean >= float64(d.th.DrainMinDrop) {
		oldPeak := d.recentLivePeak
		d.recentLivePeak = stats.LiveMean
		return d.incident(IncidentDrain, stats,
			"Live particles fell %.0f%% from peak %.0f to %.0f",
			drop*100, oldPeak, stats.LiveMean)
	}
	return nil
}

func (d *IncidentDetector) checkSteadyState(stats WindowStats) *Incident {
	if stats.LiveMean < float64(d.th.SteadyMinLive) {
		d.stableWindows = 0
		return nil
	}

	prev := d.recent(steadySpan - 1)
	if len(prev) < steadySpan-1 {
		return nil
	}
	means := make([]float64, 0, steadySpan)
	for _, h := range prev {
		means = append(means, h.LiveMean)
	}
	means = append(means, stats.LiveMean)

	mean, std := stat.MeanStdDev(means, nil)
	cv := 0.0
	if mean > 0 {
		cv = std / mean
	}

	if cv < d.th.SteadyCVThreshold {
		d.stableWindows++
	} else {
		d.stableWindows = 0
	}

	// fires once per stable run
	if d.stableWindows == d.th.SteadyStableWindows {
		return d.incident(IncidentSteadyState, stats,
			"Live count steady near %.0f over %d windows", mean, d.stableWindows)
	}
	return nil
}
