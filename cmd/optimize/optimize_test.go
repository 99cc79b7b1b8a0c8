package main

import (
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/sparkles/config"
	"github.com/pthm-cable/sparkles/sandbox"
	"github.com/pthm-cable/sparkles/telemetry"
)

func TestParamVectorBurstEmitter(t *testing.T) {
	em := sandbox.DefaultEmitter()
	pv := NewParamVector(&em)

	want := []string{"interval", "per_emission", "life"}
	if pv.Dim() != len(want) {
		t.Fatalf("Dim() = %d, want %d", pv.Dim(), len(want))
	}
	for i, name := range want {
		if pv.Specs[i].Name != name {
			t.Errorf("Specs[%d].Name = %q, want %q", i, pv.Specs[i].Name, name)
		}
	}

	def := pv.DefaultVector()
	if def[0] != 1 || def[1] != 5 || def[2] != 1 {
		t.Errorf("DefaultVector() = %v, want [1 5 1]", def)
	}
}

func TestParamVectorRateEmitter(t *testing.T) {
	em := sandbox.DefaultEmitter()
	em.Rate = 1 // below the tuning range
	pv := NewParamVector(&em)

	if pv.Specs[0].Name != "rate" || pv.Dim() != 2 {
		t.Fatalf("specs = %+v, want rate and life", pv.Specs)
	}
	if got := pv.DefaultVector()[0]; got != 10 {
		t.Errorf("default rate = %v, want clamped to 10", got)
	}
}

func TestParamVectorApplyKeepsSpread(t *testing.T) {
	em := sandbox.DefaultEmitter()
	pv := NewParamVector(&em)

	pv.Apply(&em, []float64{0.5, 50, 100})

	if em.Interval.Min != 0.5 || em.Interval.Max != 0.5 {
		t.Errorf("Interval = %+v, want 0.5 .. 0.5", em.Interval)
	}
	if em.PerEmission.Min != 0 || em.PerEmission.Max != 100 {
		t.Errorf("PerEmission = %+v, want 0 .. 100", em.PerEmission)
	}
	// life clamps to its max
	if em.Life.Min != 10 || em.Life.Max != 10 {
		t.Errorf("Life = %+v, want 10 .. 10", em.Life)
	}

	got := pv.Extract(&em)
	if got[0] != 0.5 || got[1] != 50 || got[2] != 10 {
		t.Errorf("Extract() = %v, want [0.5 50 10]", got)
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	em := sandbox.DefaultEmitter()
	pv := NewParamVector(&em)

	raw := []float64{0.3, 400, 2}
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("param %d: got %v, want %v", i, back[i], raw[i])
		}
	}
}

func TestScaleRange(t *testing.T) {
	tests := []struct {
		name             string
		min, max         float32
		mid              float64
		wantMin, wantMax float32
	}{
		{"double", 1, 3, 4, 2, 6},
		{"constant", 2, 2, 1, 1, 1},
		{"zero range", 0, 0, 3, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := tt.min, tt.max
			scaleRange(&lo, &hi, tt.mid)
			if lo != tt.wantMin || hi != tt.wantMax {
				t.Errorf("scaleRange = %v .. %v, want %v .. %v", lo, hi, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	windows := []telemetry.WindowStats{
		{LiveMean: 1},
		{LiveMean: 50},
		{LiveMean: 100, Spawned: 90, Starved: 10},
		{LiveMean: 100, Spawned: 100},
	}
	s := summarize(windows)
	if s.windows != 2 {
		t.Errorf("windows = %d, want 2", s.windows)
	}
	if s.liveMean != 100 {
		t.Errorf("liveMean = %v, want 100", s.liveMean)
	}
	if s.liveCV != 0 {
		t.Errorf("liveCV = %v, want 0", s.liveCV)
	}
	if math.Abs(s.starvedShare-0.05) > 1e-9 {
		t.Errorf("starvedShare = %v, want 0.05", s.starvedShare)
	}

	if got := summarize(windows[:2]); got.windows != 0 {
		t.Errorf("warmup-only summary = %+v, want empty", got)
	}
}

func TestComputeFitness(t *testing.T) {
	fe := &FitnessEvaluator{target: 100}

	perfect := fe.computeFitness(runSummary{liveMean: 100})
	if perfect != 0 {
		t.Errorf("on-target fitness = %v, want 0", perfect)
	}
	starved := fe.computeFitness(runSummary{liveMean: 100, starvedShare: 0.5})
	off := fe.computeFitness(runSummary{liveMean: 50})
	empty := fe.computeFitness(runSummary{})
	if !(perfect < starved && perfect < off && off < empty) {
		t.Errorf("fitness order wrong: perfect=%v starved=%v off=%v empty=%v", perfect, starved, off, empty)
	}
}

func TestEvaluateRunsHeadless(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.State.Autosave = false

	st, err := cfg.InitialState()
	if err != nil {
		t.Fatalf("InitialState: %v", err)
	}
	pv := NewParamVector(&st.Emitters[0])
	fe := NewFitnessEvaluator(pv, cfg, cfg.Sandbox.Preset, 0, 20, 300, []int64{1, 2})

	fitness := fe.Evaluate(pv.DefaultVector())
	if math.IsNaN(fitness) || math.IsInf(fitness, 0) {
		t.Fatalf("Evaluate() = %v, want finite", fitness)
	}
	if s := fe.LastSummary(); s.windows == 0 {
		t.Errorf("LastSummary() = %+v, want post-warmup windows", s)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{65 * time.Second, "1m05s"},
		{3*time.Hour + 2*time.Minute + 1*time.Second, "3h02m01s"},
		{400 * time.Millisecond, "0m00s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
