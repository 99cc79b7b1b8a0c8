package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/sparkles/config"
	"github.com/pthm-cable/sparkles/game"
	"github.com/pthm-cable/sparkles/render"
	"github.com/pthm-cable/sparkles/telemetry"
	"github.com/pthm-cable/sparkles/vecmath"
)

// quietRecorder forgets the previous frame's calls whenever a frame clears,
// so long runs do not accumulate them.
type quietRecorder struct {
	*render.Recorder
}

func newQuietRecorder() *quietRecorder {
	return &quietRecorder{Recorder: render.NewRecorder()}
}

func (r *quietRecorder) Clear(rt render.RenderTarget, c vecmath.Vec4) {
	if rt == nil {
		r.Recorder.Reset()
	}
	r.Recorder.Clear(rt, c)
}

// FitnessEvaluator runs headless sandboxes and scores how close the live
// particle count settles to the target.
type FitnessEvaluator struct {
	params    *ParamVector
	cfg       *config.Config
	preset    string
	emitter   int
	target    float64
	maxFrames int64
	seeds     []int64

	statsWindow float64

	mu          sync.Mutex
	lastSummary runSummary
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, cfg *config.Config, preset string, emitter int, target float64, maxFrames int64, seeds []int64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		cfg:         cfg,
		preset:      preset,
		emitter:     emitter,
		target:      target,
		maxFrames:   maxFrames,
		seeds:       seeds,
		statsWindow: 1.0,
	}
}

// Fitness weights.
const (
	weightLiveError  = 1.0
	weightStarvation = 2.0
	weightInstabilty = 0.5

	warmupWindows = 2 // skip windows while the population builds up
)

// runSummary is what one run contributes to the fitness.
type runSummary struct {
	liveMean     float64
	liveCV       float64
	starvedShare float64
	windows      int
}

// LastSummary returns the averaged summary of the most recent evaluation.
func (fe *FitnessEvaluator) LastSummary() runSummary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSummary
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runSummary, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var avg runSummary
	var total float64
	for _, r := range results {
		total += fe.computeFitness(r)
		avg.liveMean += r.liveMean
		avg.liveCV += r.liveCV
		avg.starvedShare += r.starvedShare
		avg.windows += r.windows
	}
	n := float64(len(results))
	avg.liveMean /= n
	avg.liveCV /= n
	avg.starvedShare /= n

	fe.mu.Lock()
	fe.lastSummary = avg
	fe.mu.Unlock()

	return total / n
}

// runSimulation executes a single headless run with the parameters applied
// to the tuned emitter.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) runSummary {
	var windows []telemetry.WindowStats
	g, err := game.NewGame(fe.cfg, newQuietRecorder(), game.Options{
		Seed:           seed,
		Preset:         fe.preset,
		StatsWindowSec: fe.statsWindow,
		MaxFrames:      fe.maxFrames,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return runSummary{}
	}
	defer g.Unload()

	fe.params.Apply(&g.Sandbox().State.Emitters[fe.emitter], x)

	dt := float32(1.0 / 60.0)
	for !g.Done() {
		if err := g.Step(dt); err != nil {
			return runSummary{}
		}
	}
	return summarize(windows)
}

// summarize reduces the post-warmup windows of a run.
func summarize(windows []telemetry.WindowStats) runSummary {
	if len(windows) <= warmupWindows {
		return runSummary{}
	}
	valid := windows[warmupWindows:]

	means := make([]float64, len(valid))
	var spawned, starved int
	for i, w := range valid {
		means[i] = w.LiveMean
		spawned += w.Spawned
		starved += w.Starved
	}

	mean, std := stat.MeanStdDev(means, nil)
	if len(means) < 2 {
		std = 0
	}
	s := runSummary{liveMean: mean, windows: len(valid)}
	if mean > 0 {
		s.liveCV = std / mean
	}
	if spawned+starved > 0 {
		s.starvedShare = float64(starved) / float64(spawned+starved)
	}
	return s
}

// computeFitness scores a run. A run that produced no windows scores as
// badly as an empty sandbox.
func (fe *FitnessEvaluator) computeFitness(r runSummary) float64 {
	liveErr := math.Abs(r.liveMean-fe.target) / fe.target
	return weightLiveError*liveErr +
		weightStarvation*r.starvedShare +
		weightInstabilty*r.liveCV
}
